// Package logging configures the standard logger.
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects where log output goes.
type Options struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Writer returns stderr, teed to a rotating file when opts.File is set.
func Writer(stderr io.Writer, opts Options) (io.Writer, io.Closer) {
	if opts.File == "" {
		return stderr, nopCloser{}
	}
	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
	}
	return io.MultiWriter(stderr, rotator), rotator
}

// Setup points the standard logger at Writer(os.Stderr, opts). The returned
// closer flushes and closes the log file.
func Setup(opts Options) io.Closer {
	w, closer := Writer(os.Stderr, opts)
	log.SetOutput(w)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	return closer
}
