// Package session keeps per-visitor state between requests: the logged-in
// user, their roles and arbitrary values.
//
// A Manager loads the session named by a cookie at the start of a request and
// persists it at the end if it changed. Storage is pluggable through Store;
// MemoryStore suits tests and single-instance deployments, RedisStore is
// backed by go-redis and PostgresStore by a pgx pool.
//
// WithSecret signs the cookie value, so a forged or guessed session ID is
// treated as no session at all.
package session
