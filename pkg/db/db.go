package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Option configures Open.
type Option func(*options)

type options struct {
	maxConns        int32
	minConns        int32
	maxConnIdleTime time.Duration
	maxConnLifetime time.Duration
	retryAttempts   int
	retryInterval   time.Duration
}

// WithMaxConns sets the pool size. Default: 10.
func WithMaxConns(n int32) Option {
	return func(o *options) {
		if n > 0 {
			o.maxConns = n
		}
	}
}

// WithMinConns sets how many idle connections the pool keeps open.
func WithMinConns(n int32) Option {
	return func(o *options) {
		if n >= 0 {
			o.minConns = n
		}
	}
}

// WithConnLifetime limits how long a connection lives and how long it may
// stay idle.
func WithConnLifetime(lifetime, idle time.Duration) Option {
	return func(o *options) {
		o.maxConnLifetime = lifetime
		o.maxConnIdleTime = idle
	}
}

// WithRetry sets how many times Open pings before giving up and the base
// delay between attempts. Default: 3 attempts, 1s.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(o *options) {
		o.retryAttempts = attempts
		o.retryInterval = interval
	}
}

// Open parses a postgres:// URL and returns a connected pool.
func Open(ctx context.Context, url string, opts ...Option) (*pgxpool.Pool, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}

	o := &options{
		maxConns:        10,
		maxConnIdleTime: 10 * time.Minute,
		maxConnLifetime: 30 * time.Minute,
		retryAttempts:   3,
		retryInterval:   time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}
	cfg.MaxConns = o.maxConns
	cfg.MinConns = min(o.minConns, o.maxConns)
	if o.maxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = o.maxConnIdleTime
	}
	if o.maxConnLifetime > 0 {
		cfg.MaxConnLifetime = o.maxConnLifetime
	}

	var lastErr error
	for i := range max(o.retryAttempts, 1) {
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err == nil {
			if lastErr = pool.Ping(ctx); lastErr == nil {
				return pool, nil
			}
			pool.Close()
		} else {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(i+1) * o.retryInterval):
		}
	}
	return nil, errors.Join(ErrConnectionFailed, lastErr)
}

// Check returns a readiness check that pings pool.
func Check(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if pool == nil {
			return ErrUnavailable
		}
		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrUnavailable, err)
		}
		return nil
	}
}

// Shutdown returns a shutdown hook that closes pool.
func Shutdown(pool *pgxpool.Pool) func(context.Context) error {
	return func(context.Context) error {
		pool.Close()
		return nil
	}
}
