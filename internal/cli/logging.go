package cli

import (
	"os"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
)

// NewLogger writes human-readable lines to a terminal and JSON otherwise.
func NewLogger(out *os.File, debug bool) *log.Logger {
	logger := log.New()
	logger.SetOutput(out)
	if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&log.JSONFormatter{})
	}
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
