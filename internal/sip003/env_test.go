package sip003

import (
	"errors"
	"testing"

	"shadowtls/internal/config"
)

func fakeEnv(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func pluginEnv(options string) map[string]string {
	return map[string]string{
		EnvRemoteHost:    "203.0.113.7",
		EnvRemotePort:    "443",
		EnvLocalHost:     "127.0.0.1",
		EnvLocalPort:     "8388",
		EnvPluginOptions: options,
	}
}

func TestLookupEnvNotApplicable(t *testing.T) {
	for _, key := range []string{EnvRemoteHost, EnvRemotePort, EnvLocalHost, EnvLocalPort, EnvPluginOptions} {
		vars := pluginEnv("passwd=x;host=a.example")
		delete(vars, key)
		env, err := LookupEnv(fakeEnv(vars))
		if err != nil || env != nil {
			t.Fatalf("without %s: got (%v, %v), want (nil, nil)", key, env, err)
		}
	}

	for _, key := range []string{EnvRemoteHost, EnvRemotePort, EnvLocalHost, EnvLocalPort} {
		vars := pluginEnv("passwd=x;host=a.example")
		vars[key] = ""
		env, err := LookupEnv(fakeEnv(vars))
		if err != nil || env != nil {
			t.Fatalf("with empty %s: got (%v, %v), want (nil, nil)", key, env, err)
		}
	}
}

func TestLookupEnvEmptyOptions(t *testing.T) {
	_, err := LookupEnv(fakeEnv(pluginEnv("")))
	if !errors.Is(err, ErrEmptyOptions) {
		t.Fatalf("expected ErrEmptyOptions, got %v", err)
	}
}

func TestLookupEnvEmptyOptionsIgnoredWithoutAddresses(t *testing.T) {
	env, err := LookupEnv(fakeEnv(map[string]string{EnvPluginOptions: ""}))
	if err != nil || env != nil {
		t.Fatalf("got (%v, %v), want (nil, nil)", env, err)
	}
}

func TestResolveClient(t *testing.T) {
	cfg, err := Resolve(fakeEnv(pluginEnv("passwd=x;host=a.example")))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Mode != config.ModeClient || cfg.Client == nil {
		t.Fatalf("expected client config, got %+v", cfg)
	}
	if cfg.Client.Listen != "127.0.0.1:8388" {
		t.Fatalf("listen = %q", cfg.Client.Listen)
	}
	if cfg.Client.ServerAddr != "203.0.113.7:443" {
		t.Fatalf("server addr = %q", cfg.Client.ServerAddr)
	}
}

func TestResolveServerWithEscapedTLSList(t *testing.T) {
	cfg, err := Resolve(fakeEnv(pluginEnv(`server;passwd=x;tls=b.example:1.2.3.4:443\;a.example`)))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Server == nil {
		t.Fatalf("expected server config, got %+v", cfg)
	}
	if len(cfg.Server.TLSAddrs) != 2 {
		t.Fatalf("tls addrs = %v", cfg.Server.TLSAddrs)
	}
	if addr, _ := cfg.Server.TLSAddrs.Dispatch("b.example"); addr != "1.2.3.4:443" {
		t.Fatalf("dispatch b.example = %q", addr)
	}
}

func TestResolveNotApplicable(t *testing.T) {
	cfg, err := Resolve(fakeEnv(nil))
	if err != nil || cfg != nil {
		t.Fatalf("got (%v, %v), want (nil, nil)", cfg, err)
	}
}

func TestResolveMalformedOptions(t *testing.T) {
	_, err := Resolve(fakeEnv(pluginEnv(";passwd=x")))
	if !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}

func TestResolveIPv6Addresses(t *testing.T) {
	vars := pluginEnv("passwd=x;host=a.example")
	vars[EnvRemoteHost] = "2001:db8::1"
	vars[EnvLocalHost] = "::1"
	cfg, err := Resolve(fakeEnv(vars))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Client.ServerAddr != "[2001:db8::1]:443" || cfg.Client.Listen != "[::1]:8388" {
		t.Fatalf("got listen=%q server=%q", cfg.Client.Listen, cfg.Client.ServerAddr)
	}
}
