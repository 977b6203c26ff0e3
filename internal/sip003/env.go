// Package sip003 reads plugin parameters handed over by a shadowsocks-style
// parent process through SS_* environment variables.
//
// See https://shadowsocks.org/doc/sip003.html for the convention.
package sip003

import (
	"fmt"

	"shadowtls/internal/config"
)

const (
	EnvRemoteHost    = "SS_REMOTE_HOST"
	EnvRemotePort    = "SS_REMOTE_PORT"
	EnvLocalHost     = "SS_LOCAL_HOST"
	EnvLocalPort     = "SS_LOCAL_PORT"
	EnvPluginOptions = "SS_PLUGIN_OPTIONS"
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Env holds the raw handshake variables.
type Env struct {
	RemoteHost string
	RemotePort string
	LocalHost  string
	LocalPort  string
	Options    string
}

// LookupEnv reads the handshake variables. It returns nil and no error when
// the process was not launched as a plugin: any address variable missing or
// empty, or SS_PLUGIN_OPTIONS missing. SS_PLUGIN_OPTIONS set to "" is an error.
func LookupEnv(lookup LookupFunc) (*Env, error) {
	var env Env
	for _, v := range []struct {
		key string
		dst *string
	}{
		{EnvRemoteHost, &env.RemoteHost},
		{EnvRemotePort, &env.RemotePort},
		{EnvLocalHost, &env.LocalHost},
		{EnvLocalPort, &env.LocalPort},
	} {
		val, ok := lookup(v.key)
		if !ok || val == "" {
			return nil, nil
		}
		*v.dst = val
	}

	opts, ok := lookup(EnvPluginOptions)
	if !ok {
		return nil, nil
	}
	if opts == "" {
		return nil, ErrEmptyOptions
	}
	env.Options = opts
	return &env, nil
}

// Config parses the options and builds the run configuration.
func (e *Env) Config() (*config.RunConfig, error) {
	opts, err := ParseOptions(e.Options)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", EnvPluginOptions, err)
	}
	return Build(opts.Map(), e)
}

// Resolve is the single entry point: it returns nil, nil when no plugin
// handshake is in effect, so the caller can fall back to its own flags.
func Resolve(lookup LookupFunc) (*config.RunConfig, error) {
	env, err := LookupEnv(lookup)
	if err != nil || env == nil {
		return nil, err
	}
	return env.Config()
}
