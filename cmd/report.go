package cmd

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize a previously-written BBH edges file",
	Long: `Summarize a previously-written BBH edges file

Reads a CSV edges file produced by "pandelos bbh" and reports the edge
count and the mean/standard deviation of their scores. With --plot, also
renders a histogram of the score distribution as a PNG.
`,
	Run: runReport,
}

func init() {
	reportCmd.Flags().String("plot", "", "write a score-distribution histogram PNG to this path")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) {
	if len(args) != 1 {
		fatalf("expected exactly one edges file argument")
	}

	scores, err := readEdgeScores(args[0])
	checkError(err)

	if len(scores) == 0 {
		log.Warning("no edges found")
		return
	}

	mean, std := stat.MeanStdDev(scores, nil)
	log.Infof("edges: %d", len(scores))
	log.Infof("mean score: %g", mean)
	log.Infof("stdev: %g", std)

	if plotPath := getFlagString(cmd, "plot"); plotPath != "" {
		checkError(renderHistogram(scores, plotPath))
		log.Infof("wrote histogram to %s", plotPath)
	}
}

// readEdgeScores parses the third column ("row,col,score") of an edges
// file written by internal/sink.
func readEdgeScores(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening edges file %s", path)
	}
	defer f.Close()

	var scores []float64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 3 {
			return nil, errors.Errorf("malformed edge line %q", line)
		}
		s, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing score in line %q", line)
		}
		scores = append(scores, s)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading edges file %s", path)
	}
	return scores, nil
}

func renderHistogram(scores []float64, outPath string) error {
	values := make(plotter.Values, len(scores))
	copy(values, scores)

	p := plot.New()
	p.Title.Text = "BBH score distribution"
	p.X.Label.Text = "score"
	p.Y.Label.Text = "count"

	hist, err := plotter.NewHist(values, 20)
	if err != nil {
		return errors.Wrap(err, "building histogram")
	}
	p.Add(hist)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, outPath); err != nil {
		return errors.Wrapf(err, "saving histogram to %s", outPath)
	}
	return nil
}
