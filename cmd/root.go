// Package cmd is the pandelos CLI surface: cobra commands wiring the
// internal packages together, getFlag* helpers feeding internal/config's
// Options, and a package-level colorized logger.
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pandelos",
	Short: "Bidirectional Best Hit engine over k-mer Generalized Jaccard similarity",
	Long: `pandelos computes Bidirectional Best Hits between genes across genomes,
using Generalized Jaccard similarity over k-mer multisets.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command; main calls this and nothing else.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		checkError(err)
	}
}

func init() {
	rootCmd.PersistentFlags().IntP("threads", "j", 0, "number of worker threads (0 = host parallelism)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress INFO-level progress output")
	rootCmd.PersistentFlags().String("log", "", "additionally tee log output to this file")
	rootCmd.PersistentFlags().String("config", "", "TOML config file overlaid under CLI flags")
}

// withTiming runs fn, logging elapsed wall-clock time when verbose is set.
func withTiming(verbose bool, fn func() error) error {
	start := time.Now()
	err := fn()
	if verbose {
		log.Infof("elapsed time: %s", time.Since(start))
	}
	return err
}

func setupLogging(cmd *cobra.Command) (quiet bool, closeLog func()) {
	quiet = getFlagBool(cmd, "quiet")
	setLogLevel(!quiet)

	logFile := getFlagString(cmd, "log")
	if logFile == "" {
		return quiet, func() {}
	}

	fh := addLog(logFile, !quiet)
	return quiet, func() { fh.Close() }
}

func fatalf(format string, args ...interface{}) {
	checkError(fmt.Errorf(format, args...))
}
