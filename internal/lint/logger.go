package lint

import (
	"os"

	"github.com/charmbracelet/log"
)

// NewLogger returns the session logger. It writes to stderr so that report
// output on stdout stays machine readable.
func NewLogger(quiet, verbose bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "modcycle",
	})

	switch {
	case verbose:
		logger.SetLevel(log.DebugLevel)
	case quiet:
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}
