package cmd

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/SimoneColli/PanDelos-plus/internal/config"
	"github.com/SimoneColli/PanDelos-plus/internal/fasta"
	"github.com/SimoneColli/PanDelos-plus/internal/homology"
	"github.com/SimoneColli/PanDelos-plus/internal/sink"
)

var bbhCmd = &cobra.Command{
	Use:   "bbh",
	Short: "Compute Bidirectional Best Hits across genomes",
	Long: `Compute Bidirectional Best Hits across genomes

Each input FASTA/Q file is one genome; each record in a file is one gene.
Similarity between two genes is the Generalized Jaccard similarity of their
k-mer multisets. A pair (row gene, column gene) is emitted as an edge when
each is a best hit of the other, honoring ties, per genome pair.
`,
	Run: runBBH,
}

func init() {
	bbhCmd.Flags().IntP("kmer", "k", 0, "k-mer length (required, > 0)")
	bbhCmd.Flags().StringP("mode", "m", "on-demand", `k-mer index lifecycle: "on-demand" or "build-once"`)
	bbhCmd.Flags().StringP("out", "o", "", "output edges file (required)")
	bbhCmd.Flags().StringP("in-dir", "I", "", "directory of genome files (alternative to positional args)")
	bbhCmd.Flags().StringP("file-regexp", "r", `\.(fa|fasta|fq|fastq)(\.gz|\.xz|\.zst|\.bz2)?$`, "pattern matched against file names under --in-dir")
	bbhCmd.Flags().Bool("gzip-out", false, "compress the output edges stream with pgzip")
	bbhCmd.Flags().String("debug-dir", "", "write per-pair score-matrix/candidate diagnostics under this directory")

	rootCmd.AddCommand(bbhCmd)
}

func runBBH(cmd *cobra.Command, args []string) {
	quiet, closeLog := setupLogging(cmd)
	defer closeLog()

	opt, err := config.Load(getFlagString(cmd, "config"))
	checkError(err)

	opt.Inputs = args
	checkError(config.ApplyFlags(cmd, &opt))
	checkError(config.CheckOptions(opt))

	files := opt.Inputs
	if opt.InDir != "" {
		pattern, err := regexp.Compile(opt.FileRegexp)
		checkError(err)
		files, err = fasta.DiscoverFiles(opt.InDir, pattern, opt.ThreadCount)
		checkError(err)
	}
	if len(files) == 0 {
		fatalf("no genome files found")
	}

	checkError(withTiming(!quiet, func() error {
		return runBBHPipeline(opt, files, !quiet)
	}))
}

func runBBHPipeline(opt config.Options, files []string, verbose bool) error {
	log.Infof("reading %d genome file(s)", len(files))
	genomes, err := fasta.ReadGenomes(files)
	if err != nil {
		return err
	}

	if err := config.EnsureOutputDir(opt.OutputPath); err != nil {
		return err
	}

	out, err := sink.Open(opt.OutputPath, sink.Options{
		Compress:         opt.Compress,
		CompressionLevel: opt.CompressionLevel,
	})
	if err != nil {
		return err
	}

	driver, err := homology.NewDriver(opt.K, opt.ThreadCount, out)
	if err != nil {
		return err
	}
	if opt.DebugDir != "" {
		driver.SetDebugDir(opt.DebugDir)
	}

	var pbs *mpb.Progress
	if verbose {
		pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
		bar := pbs.AddBar(int64(len(genomes.Genomes)),
			mpb.PrependDecorators(
				decor.Name("genomes processed: ", decor.WC{W: len("genomes processed: "), C: decor.DindentRight}),
				decor.Name("", decor.WCSyncSpaceR),
				decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(
				decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
				decor.EwmaETA(decor.ET_STYLE_GO, 10),
				decor.OnComplete(decor.Name(""), ". done"),
			),
		)

		start := time.Now()
		driver.SetProgress(func() {
			bar.EwmaIncrBy(1, time.Since(start))
			start = time.Now()
		})
	}

	runErr := driver.ComputeAllBBH(genomes, opt.Mode)

	if verbose {
		pbs.Wait()
	}

	closeErr := driver.Close()
	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return closeErr
	}

	log.Info(fmt.Sprintf("wrote edges to %s", opt.OutputPath))
	return nil
}
