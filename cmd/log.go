package cmd

import (
	"os"

	"github.com/mattn/go-colorable"
	logging "github.com/shenwei356/go-logging"
)

var log = logging.MustGetLogger("pandelos")

var logFormat = logging.MustStringFormatter(
	`%{color}[%{level:.4s}]%{color:reset} %{message}`,
)

func init() {
	backend := logging.NewLogBackend(colorable.NewColorableStderr(), "", 0)
	formatted := logging.NewBackendFormatter(backend, logFormat)
	logging.SetBackend(formatted)
}

// addLog additionally tees log output to path, returning the open file so
// the caller can close it once the run finishes. verbose controls whether
// INFO-level lines reach either backend.
func addLog(path string, verbose bool) *os.File {
	fh, err := os.Create(path)
	checkError(err)

	fileBackend := logging.NewLogBackend(fh, "", 0)
	fileFormatted := logging.NewBackendFormatter(fileBackend, logFormat)

	stderrBackend := logging.NewLogBackend(colorable.NewColorableStderr(), "", 0)
	stderrFormatted := logging.NewBackendFormatter(stderrBackend, logFormat)

	logging.SetBackend(stderrFormatted, fileFormatted)
	setLogLevel(verbose)
	return fh
}

func setLogLevel(verbose bool) {
	if verbose {
		logging.SetLevel(logging.INFO, "pandelos")
	} else {
		logging.SetLevel(logging.WARNING, "pandelos")
	}
}
