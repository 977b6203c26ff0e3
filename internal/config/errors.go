package config

import "errors"

var (
	ErrInvalidMode       = errors.New("mode must be 'server' or 'client'")
	ErrVariantMismatch   = errors.New("run configuration is not fully server- or client-shaped")
	ErrMissingPassword   = errors.New("password is required")
	ErrEmptyList         = errors.New("at least one entry is required")
	ErrInvalidServerName = errors.New("invalid server name")
	ErrInvalidAddr       = errors.New("invalid address")
	ErrInvalidThreads    = errors.New("threads must be between 0 and 255")
)
