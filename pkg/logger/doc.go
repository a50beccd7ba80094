// Package logger builds the slog loggers used by the dispatcher.
//
// Every logger is a JSON handler wrapped in a decorator that copies
// request-scoped attributes from the context into each record. The dispatcher
// stores the request id, module and action on the request context with
// WithAttrs, so any log call made with that context carries them:
//
//	ctx = logger.WithAttrs(ctx, slog.String("module", "shop"))
//	log.InfoContext(ctx, "forward")
//	// {"level":"INFO","msg":"forward","module":"shop"}
//
// Custom ContextExtractor functions can be added for values stored elsewhere.
//
// # Sentry
//
// When Config.SentryDSN is set, records at warn level and above are also sent
// to Sentry; errors become issues. If the DSN is empty or the SDK fails to
// initialize, the logger writes to the configured writer only.
package logger
