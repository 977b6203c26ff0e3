package sip003

import (
	"fmt"
	"strconv"
	"strings"

	"shadowtls/internal/config"
	"shadowtls/internal/tlsutil"
)

const (
	keyThreads     = "threads"
	keyV3          = "v3"
	keyStrict      = "strict"
	keyFastOpen    = "fastopen"
	keyPasswd      = "passwd"
	keyServer      = "server"
	keyTLS         = "tls"
	keyHost        = "host"
	keyALPN        = "alpn"
	keyFingerprint = "fingerprint"
	keyWildcardSNI = "wildcard-sni"
)

const (
	hintPasswd   = "passwd=123456"
	hintTLS      = "tls=xxx.com:443"
	hintTLSAddrs = "tls=xxx.com:443 or tls=yyy.com:1.2.3.4:443;zzz.com:443;xxx.com"
	hintHost     = "host=www.example.com"
)

// Build turns collapsed plugin options into a run configuration. The map is
// only read. The presence of "server" selects server mode; otherwise the
// process runs as a client.
func Build(opts map[string]string, env *Env) (*config.RunConfig, error) {
	var shared config.Opts
	if v, ok := opts[keyThreads]; ok {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w %q: must be 0-255", ErrInvalidThreads, v)
		}
		threads := uint8(n)
		shared.Threads = &threads
	}
	_, shared.V3 = opts[keyV3]
	_, shared.Strict = opts[keyStrict]
	_, shared.FastOpen = opts[keyFastOpen]

	passwd := opts[keyPasswd]
	if passwd == "" {
		return nil, &MissingOptionError{Key: keyPasswd, Hint: hintPasswd}
	}

	if _, ok := opts[keyServer]; ok {
		return buildServer(opts, env, passwd, shared)
	}
	return buildClient(opts, env, passwd, shared)
}

func buildServer(opts map[string]string, env *Env, passwd string, shared config.Opts) (*config.RunConfig, error) {
	tls, ok := opts[keyTLS]
	if !ok {
		return nil, &MissingOptionError{Key: keyTLS, Hint: hintTLS}
	}
	addrs, err := config.ParseTLSAddrs(tls)
	if err != nil {
		return nil, fmt.Errorf("%w (like %s): %w", ErrInvalidTLSAddrs, hintTLSAddrs, err)
	}
	cfg := config.NewServer(
		config.JoinHostPort(env.RemoteHost, env.RemotePort),
		config.JoinHostPort(env.LocalHost, env.LocalPort),
		addrs,
		passwd,
		shared,
	)
	if v, ok := opts[keyWildcardSNI]; ok {
		mode, err := config.ParseWildcardSNI(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidWildcardSNI, err)
		}
		cfg.Server.WildcardSNI = mode
	}
	return cfg, nil
}

func buildClient(opts map[string]string, env *Env, passwd string, shared config.Opts) (*config.RunConfig, error) {
	host, ok := opts[keyHost]
	if !ok {
		return nil, &MissingOptionError{Key: keyHost, Hint: hintHost}
	}
	names, err := config.ParseTLSNames(host)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTLSNames, err)
	}
	cfg := config.NewClient(
		config.JoinHostPort(env.LocalHost, env.LocalPort),
		config.JoinHostPort(env.RemoteHost, env.RemotePort),
		names,
		passwd,
		shared,
	)
	if v, ok := opts[keyALPN]; ok {
		cfg.Client.ALPN = splitList(v)
	}
	if v, ok := opts[keyFingerprint]; ok {
		if _, err := tlsutil.LookupFingerprint(v); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFingerprint, err)
		}
		cfg.Client.Fingerprint = strings.ToLower(strings.TrimSpace(v))
	}
	return cfg, nil
}

// splitList splits a comma-separated option value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
