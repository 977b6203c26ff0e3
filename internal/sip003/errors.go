package sip003

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyOptions       = errors.New("SS_PLUGIN_OPTIONS is set but empty")
	ErrEmptyKey           = errors.New("empty key in plugin options")
	ErrDanglingEscape     = errors.New("nothing following final escape")
	ErrMissingOption      = errors.New("missing required plugin option")
	ErrInvalidThreads     = errors.New("invalid threads value")
	ErrInvalidTLSAddrs    = errors.New("invalid tls parameter")
	ErrInvalidTLSNames    = errors.New("invalid host parameter")
	ErrInvalidFingerprint = errors.New("invalid fingerprint parameter")
	ErrInvalidWildcardSNI = errors.New("invalid wildcard-sni parameter")
)

// MissingOptionError reports a required key absent from SS_PLUGIN_OPTIONS.
// Hint shows the expected format.
type MissingOptionError struct {
	Key  string
	Hint string
}

func (e *MissingOptionError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("need %s param", e.Key)
	}
	return fmt.Sprintf("need %s param (like %s)", e.Key, e.Hint)
}

func (e *MissingOptionError) Is(target error) bool {
	return target == ErrMissingOption
}
