// Package db opens the PostgreSQL pool used by the session store and applies
// the dispatch schema.
//
//	pool, err := db.Open(ctx, cfg.DatabaseURL, db.WithMaxConns(20))
//	if err != nil {
//		return err
//	}
//	if err := db.Migrate(ctx, pool, log); err != nil {
//		return err
//	}
//	store := session.NewPostgresStore(pool)
//
// Open pings the server before returning and retries with a linear backoff.
// Migrate runs the embedded goose migrations; it is safe to call on every
// start. Check adapts the pool to health.CheckFunc.
package db
