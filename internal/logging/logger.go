package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

var isTerminal = term.IsTerminal

// New builds the process logger. Output goes to stderr so that stdout stays
// clean for translations; a human-readable console format is used when
// stderr is a terminal.
func New(level string) (zerolog.Logger, error) {
	return NewWithWriter(os.Stderr, level, isTerminal(int(os.Stderr.Fd())))
}

func NewWithWriter(out io.Writer, level string, console bool) (zerolog.Logger, error) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level %q: %w", level, err)
	}

	writer := out
	if console {
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	return zerolog.New(writer).
		Level(parsed).
		With().
		Timestamp().
		Str("service", "simtran").
		Logger(), nil
}
