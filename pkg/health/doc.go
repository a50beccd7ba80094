// Package health serves liveness and readiness probes.
//
//	r.Get("/health/live", health.Live())
//	r.Get("/health/ready", health.Ready(health.Checks{
//		"redis": redis.Check(client),
//	}, health.WithTimeout(2*time.Second)))
//
// Readiness runs every check concurrently under a shared timeout and answers
// 503 if any fails. Responses are plain text unless the client asks for JSON
// via the Accept header or ?format=json.
package health
