package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns the process logger. Campaign runs are interactive, so output
// goes through the console writer rather than raw JSON.
func New() zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}
