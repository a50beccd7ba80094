package db

import "errors"

var (
	ErrEmptyURL         = errors.New("db: empty connection URL")
	ErrInvalidURL       = errors.New("db: invalid connection URL")
	ErrConnectionFailed = errors.New("db: connection failed")
	ErrUnavailable      = errors.New("db: unavailable")
	ErrSetDialect       = errors.New("db: failed to set migration dialect")
	ErrApplyMigrations  = errors.New("db: failed to apply migrations")
)
