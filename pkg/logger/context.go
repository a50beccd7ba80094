package logger

import (
	"context"
	"log/slog"
)

type attrsKey struct{}

// ContextExtractor returns an attribute to add to a record logged with ctx.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// WithAttrs returns a context carrying attrs in addition to any already stored.
// A later attribute with the same key replaces the earlier one.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}
	prev := Attrs(ctx)
	merged := make([]slog.Attr, 0, len(prev)+len(attrs))
	for _, a := range prev {
		if !hasKey(attrs, a.Key) {
			merged = append(merged, a)
		}
	}
	merged = append(merged, attrs...)
	return context.WithValue(ctx, attrsKey{}, merged)
}

// Attrs returns the attributes stored on ctx by WithAttrs.
func Attrs(ctx context.Context) []slog.Attr {
	attrs, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	return attrs
}

// FromContext groups all attributes stored by WithAttrs.
// Registered by default on loggers built by New.
func FromContext(ctx context.Context) (slog.Attr, bool) {
	attrs := Attrs(ctx)
	if len(attrs) == 0 {
		return slog.Attr{}, false
	}
	// Empty group key inlines the attributes into the record.
	return slog.Attr{Key: "", Value: slog.GroupValue(attrs...)}, true
}

func hasKey(attrs []slog.Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}
