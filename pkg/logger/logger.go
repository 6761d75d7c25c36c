package logx

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/subscription-bot/server/internal/core"
)

var DefaultLoggerOpts = &LoggerOpts{
	Environment: core.Development,
}

type LoggerOpts struct {
	Environment core.Environment
	// File duplicates every event into an append-only log file when set.
	File string
}

func safe(otps ...LoggerOpts) *LoggerOpts {
	if len(otps) == 0 {
		return DefaultLoggerOpts
	}
	return &otps[0]
}

// Init configures the global logger. The returned closer releases the log
// file, if any; it is always non-nil.
func Init(otps ...LoggerOpts) (io.Closer, error) {
	opts := safe(otps...)
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	var console io.Writer = os.Stdout
	if !opts.Environment.IsProduction() {
		console = zerolog.NewConsoleWriter()
	}

	var closer io.Closer = nopCloser{}
	out := console
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return closer, err
		}
		closer = f
		out = zerolog.MultiLevelWriter(console, f)
	}

	if opts.Environment.IsProduction() {
		log.Logger = zerolog.New(out).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	} else {
		log.Logger = zerolog.New(out).With().Timestamp().Caller().Logger().Level(zerolog.DebugLevel)
	}
	zerolog.DefaultContextLogger = &log.Logger
	return closer, nil
}

// WithCorrelation returns a context whose logger tags every event with id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	l := log.Logger.With().Str("correlation_id", id).Logger()
	return l.WithContext(ctx)
}

// Ctx returns the context logger, falling back to the global one.
func Ctx(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Panic() *zerolog.Event {
	return log.Panic()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
