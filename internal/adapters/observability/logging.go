package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns the process logger tagged with the binary name.
// APP_ENV=dev (or development) switches to the console writer and debug level.
func NewLogger(env, service string) zerolog.Logger {
	dev := env == "dev" || env == "development"
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if dev {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Str("svc", service).Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Str("svc", service).Logger()
}
