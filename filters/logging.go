package filters

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/dispatch/internal"
)

// Logging writes one access record per dispatched request.
type Logging struct {
	level slog.Level
}

// NewLogging returns an access log filter logging at level.
func NewLogging(level slog.Level) *Logging {
	return &Logging{level: level}
}

// LoggingFactory builds Logging from level (debug, info, warn, error).
func LoggingFactory(a map[string]any) (internal.Filter, error) {
	s, err := attrs(a).string("level", "info")
	if err != nil {
		return nil, err
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return nil, ErrInvalidAttribute
	}
	return NewLogging(level), nil
}

// DoFilter implements internal.Filter.
func (f *Logging) DoFilter(c internal.Context, chain *internal.FilterChain) error {
	start := time.Now()
	err := chain.Proceed(c)

	status := c.Response().Status()
	if err != nil {
		status = internal.StatusOf(err)
	}
	attrs := []slog.Attr{
		slog.String("method", c.Request().Method()),
		slog.String("uri", c.Request().URI()),
		slog.Int("status", status),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	c.Logger().LogAttrs(c, f.level, "request dispatched", attrs...)

	return err
}
