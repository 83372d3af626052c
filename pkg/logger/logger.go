package logger

import (
	"log"
	"os"
)

// New returns a stdlib logger for bootstrap messages emitted before slog is configured.
func New(component string) *log.Logger {
	return log.New(os.Stderr, "["+component+"] ", log.LstdFlags|log.Lmsgprefix)
}
