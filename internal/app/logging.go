package app

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogging points the global zerolog logger at a console writer on
// stderr and, when logFile is set, also at a size-rotated JSON log file. The
// returned closer flushes the file; it is a no-op without one.
func SetupLogging(verbose bool, logFile string) io.Closer {
	zerolog.TimeFieldFormat = time.RFC3339
	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	var closer io.Closer = nopCloser{}
	if logFile != "" {
		lj := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		w = zerolog.MultiLevelWriter(w, lj)
		closer = lj
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
