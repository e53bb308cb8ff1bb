package trace

import (
	"context"
	"log/slog"
	"time"
)

// Op tracks an operation boundary: Begin logs the start at Debug level and
// End logs completion with duration, at Warn level when an error occurred.
type Op struct {
	ctx    context.Context
	logger *slog.Logger
	name   string
	start  time.Time
}

// Begin starts an operation boundary. The returned Op is valid even with a
// nil logger; End becomes a no-op then.
func Begin(ctx context.Context, logger *slog.Logger, name string, attrs ...slog.Attr) Op {
	op := Op{ctx: ctx, logger: logger, name: name, start: time.Now()}
	if logger != nil && logger.Enabled(ctx, slog.LevelDebug) {
		logger.LogAttrs(ctx, slog.LevelDebug, name+" begin", attrs...)
	}
	return op
}

// End completes the operation, logging its duration. A non-nil err raises
// the completion log to Warn and attaches the error.
func (o Op) End(err error) {
	if o.logger == nil {
		return
	}
	dur := time.Since(o.start)
	if err != nil {
		if o.logger.Enabled(o.ctx, slog.LevelWarn) {
			o.logger.LogAttrs(o.ctx, slog.LevelWarn, o.name+" failed",
				slog.Duration("duration", dur), slog.String("error", err.Error()))
		}
		return
	}
	if o.logger.Enabled(o.ctx, slog.LevelDebug) {
		o.logger.LogAttrs(o.ctx, slog.LevelDebug, o.name+" end",
			slog.Duration("duration", dur))
	}
}
