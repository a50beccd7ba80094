// Package redis opens the go-redis client shared by the session store and the
// readiness probe.
//
//	client, err := redis.Open(ctx, cfg.RedisURL, redis.WithRetry(3, time.Second))
//	if err != nil {
//		return err
//	}
//	store := session.NewRedisStore(client)
//
// Open pings the server before returning and retries with a linear backoff.
// Check adapts the client to health.CheckFunc.
package redis
