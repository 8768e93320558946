package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// pgxLogger adapts zerolog.Logger to pgx's tracelog interface.
type pgxLogger struct {
	logger zerolog.Logger
}

// newPgxLogger builds a child logger tagged with component=pgx so SQL noise stays filterable.
func newPgxLogger(logger zerolog.Logger) *pgxLogger {
	l := logger.With().Str("component", "pgx").Logger()
	return &pgxLogger{logger: l}
}

// Log implements tracelog.Logger. SQL text and arguments are only emitted at
// trace/debug so filter values never reach info-level logs.
func (l *pgxLogger) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	var event *zerolog.Event
	verbose := false

	switch level {
	case tracelog.LogLevelNone:
		return
	case tracelog.LogLevelTrace:
		event, verbose = l.logger.Trace(), true
	case tracelog.LogLevelDebug:
		event, verbose = l.logger.Debug(), true
	case tracelog.LogLevelInfo:
		event = l.logger.Info()
	case tracelog.LogLevelWarn:
		event = l.logger.Warn()
	case tracelog.LogLevelError:
		event = l.logger.Error()
	default:
		event = l.logger.Info().Str("pgx_log_level", level.String())
	}

	for k, v := range data {
		switch k {
		case "sql", "args":
			if verbose {
				event = event.Interface(k, v)
			}
		case "time":
			if d, ok := v.(time.Duration); ok {
				event = event.Dur("took", d)
				continue
			}
			event = event.Interface(k, v)
		case "err":
			if err, ok := v.(error); ok {
				event = event.Err(err)
				continue
			}
			event = event.Interface(k, v)
		default:
			event = event.Interface(k, v)
		}
	}
	event.Msg(msg)
}
