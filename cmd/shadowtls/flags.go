package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
)

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("shadowtls", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", "", "Path to YAML config file (ignored when launched as a SIP003 plugin)")
	fs.BoolVar(&opts.watch, "watch", false, "Keep running and re-emit the configuration when -config changes")
	fs.StringVar(&opts.format, "format", "yaml", "Output format: yaml or json")
	fs.BoolVar(&opts.showSecrets, "show-secrets", false, "Print the password instead of masking it")
	fs.StringVar(&opts.metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file")
	fs.StringVar(&opts.statusListen, "status-listen", "", "With -watch: serve /metrics, /healthz and /api/v1/status on this address")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version and exit")

	f := &opts.file
	fs.StringVar(&f.Mode, "mode", "client", "Run mode: server or client")
	fs.StringVar(&f.Listen, "listen", "", "Listen address (host:port)")
	fs.StringVar(&f.ServerAddr, "server", "", "Client: shadowtls server address (host:port)")
	fs.StringVar(&f.Upstream, "upstream", "", "Server: data server address behind the tunnel (host:port)")
	fs.StringVar(&f.TLS, "tls", "", "Server: handshake addresses, like xxx.com:443 or yyy.com:1.2.3.4:443;xxx.com")
	fs.StringVar(&f.Host, "host", "", "Client: TLS server names, like www.example.com;cdn.example.net")
	fs.StringVar(&f.Password, "password", "", "Shared password")
	fs.StringVar(&f.Fingerprint, "fingerprint", "", "Client: uTLS ClientHello fingerprint")
	fs.StringVar(&f.WildcardSNI, "wildcard-sni", "off", "Server: accept other SNI values: off, authed or all")
	fs.BoolVar(&f.V3, "v3", false, "Use protocol v3")
	fs.BoolVar(&f.Strict, "strict", false, "Enforce strict v3 checks")
	fs.BoolVar(&f.FastOpen, "fastopen", false, "Enable TCP Fast Open")
	fs.Func("alpn", "Client: comma-separated ALPN protocols", func(s string) error {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				f.ALPN = append(f.ALPN, p)
			}
		}
		return nil
	})
	fs.Func("threads", "Worker thread count (0-255, default: engine decides)", func(s string) error {
		n, err := strconv.ParseUint(s, 10, 8)
		if err != nil {
			return fmt.Errorf("must be 0-255")
		}
		v := int(n)
		f.Threads = &v
		return nil
	})

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	switch opts.format {
	case "yaml", "json":
	default:
		err := fmt.Errorf("-format must be yaml or json, got %q", opts.format)
		fmt.Fprintln(stderr, err)
		return nil, err
	}
	if opts.watch && opts.configPath == "" {
		err := fmt.Errorf("-watch requires -config")
		fmt.Fprintln(stderr, err)
		return nil, err
	}
	if opts.statusListen != "" && !opts.watch {
		err := fmt.Errorf("-status-listen requires -watch")
		fmt.Fprintln(stderr, err)
		return nil, err
	}
	return opts, nil
}
