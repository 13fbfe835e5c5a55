// Package config assembles run options from hard-coded defaults, an
// optional TOML file, and CLI flags, in that overlay order.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/klauspost/pgzip"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"
)

// ErrConfiguration is the sentinel for construction-time
// validation failures (non-positive k, non-positive thread count, missing
// required paths).
var ErrConfiguration = errors.New("pandelos: invalid configuration")

// Options holds everything a run of the bbh pipeline needs: the driver's
// own knobs (K, ThreadCount, Mode) plus the ambient CLI/IO knobs around it.
type Options struct {
	K           int
	ThreadCount int
	Mode        bool // true = on-demand, false = build-once

	Inputs     []string
	InDir      string
	FileRegexp string

	OutputPath       string
	Compress         bool
	CompressionLevel int
	DebugDir         string

	Quiet   bool
	LogFile string
}

// Defaults returns the hard-coded baseline every Options starts from.
func Defaults() Options {
	return Options{
		ThreadCount:      runtime.NumCPU(),
		Mode:             true,
		FileRegexp:       `\.(fa|fasta|fq|fastq)(\.gz|\.xz|\.zst|\.bz2)?$`,
		CompressionLevel: pgzip.DefaultCompression,
	}
}

// fileOptions mirrors Options but with pointer fields, so a TOML file that
// omits a key leaves the corresponding Options field untouched.
type fileOptions struct {
	K                *int    `toml:"k"`
	ThreadCount      *int    `toml:"threads"`
	Mode             *string `toml:"mode"`
	InDir            *string `toml:"in_dir"`
	FileRegexp       *string `toml:"file_regexp"`
	OutputPath       *string `toml:"out"`
	Compress         *bool   `toml:"gzip_out"`
	CompressionLevel *int    `toml:"compression_level"`
	DebugDir         *string `toml:"debug_dir"`
	Quiet            *bool   `toml:"quiet"`
	LogFile          *string `toml:"log"`
}

// Load returns Defaults(), overlaid with configPath's contents when
// configPath is non-empty. configPath may use a leading "~".
func Load(configPath string) (Options, error) {
	opt := Defaults()
	if configPath == "" {
		return opt, nil
	}

	expanded, err := homedir.Expand(configPath)
	if err != nil {
		return opt, errors.Wrapf(err, "expanding config path %s", configPath)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return opt, errors.Wrapf(err, "reading config file %s", expanded)
	}

	var fo fileOptions
	if err := toml.Unmarshal(data, &fo); err != nil {
		return opt, errors.Wrapf(err, "parsing config file %s", expanded)
	}
	applyFileOptions(&opt, fo)
	return opt, nil
}

func applyFileOptions(opt *Options, fo fileOptions) {
	if fo.K != nil {
		opt.K = *fo.K
	}
	if fo.ThreadCount != nil {
		opt.ThreadCount = *fo.ThreadCount
	}
	if fo.Mode != nil {
		opt.Mode = *fo.Mode == "on-demand"
	}
	if fo.InDir != nil {
		opt.InDir = *fo.InDir
	}
	if fo.FileRegexp != nil {
		opt.FileRegexp = *fo.FileRegexp
	}
	if fo.OutputPath != nil {
		opt.OutputPath = *fo.OutputPath
	}
	if fo.Compress != nil {
		opt.Compress = *fo.Compress
	}
	if fo.CompressionLevel != nil {
		opt.CompressionLevel = *fo.CompressionLevel
	}
	if fo.DebugDir != nil {
		opt.DebugDir = *fo.DebugDir
	}
	if fo.Quiet != nil {
		opt.Quiet = *fo.Quiet
	}
	if fo.LogFile != nil {
		opt.LogFile = *fo.LogFile
	}
}

// ParseMode maps the CLI's -m/--mode string onto Options.Mode.
func ParseMode(s string) (bool, error) {
	switch s {
	case "on-demand":
		return true, nil
	case "build-once":
		return false, nil
	default:
		return false, errors.Wrapf(ErrConfiguration, "unknown mode %q, want \"on-demand\" or \"build-once\"", s)
	}
}

// ApplyFlags overlays cmd's explicitly-set flags onto opt, so an unset flag
// never clobbers a value already loaded from a config file.
func ApplyFlags(cmd *cobra.Command, opt *Options) error {
	flags := cmd.Flags()

	if flags.Changed("kmer") {
		k, err := flags.GetInt("kmer")
		if err != nil {
			return err
		}
		opt.K = k
	}
	if flags.Changed("threads") {
		threads, err := flags.GetInt("threads")
		if err != nil {
			return err
		}
		if threads == 0 {
			threads = runtime.NumCPU()
		}
		opt.ThreadCount = threads
	}
	if flags.Changed("mode") {
		modeStr, err := flags.GetString("mode")
		if err != nil {
			return err
		}
		mode, err := ParseMode(modeStr)
		if err != nil {
			return err
		}
		opt.Mode = mode
	}
	if flags.Changed("in-dir") {
		dir, err := flags.GetString("in-dir")
		if err != nil {
			return err
		}
		opt.InDir = dir
	}
	if flags.Changed("file-regexp") {
		re, err := flags.GetString("file-regexp")
		if err != nil {
			return err
		}
		opt.FileRegexp = re
	}
	if flags.Changed("out") {
		out, err := flags.GetString("out")
		if err != nil {
			return err
		}
		expanded, err := homedir.Expand(out)
		if err != nil {
			return errors.Wrapf(err, "expanding output path %s", out)
		}
		opt.OutputPath = expanded
	}
	if flags.Changed("gzip-out") {
		gz, err := flags.GetBool("gzip-out")
		if err != nil {
			return err
		}
		opt.Compress = gz
	}
	if flags.Changed("debug-dir") {
		dir, err := flags.GetString("debug-dir")
		if err != nil {
			return err
		}
		opt.DebugDir = dir
	}
	if flags.Changed("quiet") {
		q, err := flags.GetBool("quiet")
		if err != nil {
			return err
		}
		opt.Quiet = q
	}
	if flags.Changed("log") {
		lf, err := flags.GetString("log")
		if err != nil {
			return err
		}
		opt.LogFile = lf
	}

	if args := cmd.Flags().Args(); len(args) > 0 {
		opt.Inputs = args
	}
	return nil
}

// CheckOptions validates opt: descriptive errors, never a panic.
func CheckOptions(opt Options) error {
	if opt.K <= 0 {
		return errors.Wrapf(ErrConfiguration, "k must be > 0, got %d", opt.K)
	}
	if opt.ThreadCount <= 0 {
		return errors.Wrapf(ErrConfiguration, "thread count must be > 0, got %d", opt.ThreadCount)
	}
	if opt.OutputPath == "" {
		return errors.Wrap(ErrConfiguration, "an output path is required (-o/--out)")
	}
	if opt.InDir == "" && len(opt.Inputs) == 0 {
		return errors.Wrap(ErrConfiguration, "no input genomes given (positional files or -I/--in-dir)")
	}
	if opt.InDir != "" {
		info, err := os.Stat(opt.InDir)
		if err != nil {
			return errors.Wrapf(ErrConfiguration, "in-dir %s: %v", opt.InDir, err)
		}
		if !info.IsDir() {
			return errors.Wrapf(ErrConfiguration, "in-dir %s is not a directory", opt.InDir)
		}
	}
	for _, f := range opt.Inputs {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(ErrConfiguration, "input file %s: %v", f, err)
		}
	}
	return nil
}

// EnsureOutputDir creates outputPath's parent directory if it does not yet
// exist. The output here is a single append-only file, not a directory,
// so there is no "must be empty" check to make.
func EnsureOutputDir(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if dir == "." || dir == "" {
		return nil
	}

	existed, err := pathutil.DirExists(dir)
	if err != nil {
		return errors.Wrapf(err, "checking output directory %s", dir)
	}
	if existed {
		return nil
	}
	return errors.Wrapf(os.MkdirAll(dir, 0777), "creating output directory %s", dir)
}
