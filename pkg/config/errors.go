package config

import "errors"

var (
	ErrInvalidConfig = errors.New("config: invalid configuration")
	ErrReadFile      = errors.New("config: failed to read file")
)
