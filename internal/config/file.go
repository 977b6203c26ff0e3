package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"shadowtls/internal/tlsutil"
)

// File is the flat form used by YAML config files and command-line flags.
// TLS and Host use the same ';'-separated syntax as the plugin options.
type File struct {
	Mode        string   `yaml:"mode"`
	Listen      string   `yaml:"listen"`
	ServerAddr  string   `yaml:"server_addr"` // client
	Upstream    string   `yaml:"upstream"`    // server
	TLS         string   `yaml:"tls"`         // server
	Host        string   `yaml:"host"`        // client
	Password    string   `yaml:"password"`
	ALPN        []string `yaml:"alpn"`
	Fingerprint string   `yaml:"fingerprint"`
	WildcardSNI string   `yaml:"wildcard_sni"`
	Threads     *int     `yaml:"threads"`
	V3          bool     `yaml:"v3"`
	Strict      bool     `yaml:"strict"`
	FastOpen    bool     `yaml:"fastopen"`
}

// Load reads a YAML file and resolves it into a run configuration.
func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*RunConfig, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.RunConfig()
}

func (f *File) applyDefaults() {
	f.Mode = strings.ToLower(strings.TrimSpace(f.Mode))
	if f.Mode == "" {
		f.Mode = string(ModeClient)
	}
	if f.WildcardSNI == "" {
		f.WildcardSNI = string(WildcardSNIOff)
	}
	if f.Fingerprint != "" {
		f.Fingerprint = strings.ToLower(strings.TrimSpace(f.Fingerprint))
	}
}

// RunConfig validates f and builds the configuration it describes.
func (f *File) RunConfig() (*RunConfig, error) {
	f.applyDefaults()

	var opts Opts
	if f.Threads != nil {
		if *f.Threads < 0 || *f.Threads > 255 {
			return nil, fmt.Errorf("%w (got %d)", ErrInvalidThreads, *f.Threads)
		}
		n := uint8(*f.Threads)
		opts.Threads = &n
	}
	opts.V3 = f.V3
	opts.Strict = f.Strict
	opts.FastOpen = f.FastOpen

	if f.Password == "" {
		return nil, ErrMissingPassword
	}

	var cfg *RunConfig
	switch Mode(f.Mode) {
	case ModeServer:
		if f.TLS == "" {
			return nil, fmt.Errorf("tls is required in server mode")
		}
		addrs, err := ParseTLSAddrs(f.TLS)
		if err != nil {
			return nil, fmt.Errorf("tls: %w", err)
		}
		wildcard, err := ParseWildcardSNI(f.WildcardSNI)
		if err != nil {
			return nil, err
		}
		cfg = NewServer(f.Listen, f.Upstream, addrs, f.Password, opts)
		cfg.Server.WildcardSNI = wildcard
	case ModeClient:
		if f.Host == "" {
			return nil, fmt.Errorf("host is required in client mode")
		}
		names, err := ParseTLSNames(f.Host)
		if err != nil {
			return nil, fmt.Errorf("host: %w", err)
		}
		if f.Fingerprint != "" {
			if _, err := tlsutil.LookupFingerprint(f.Fingerprint); err != nil {
				return nil, fmt.Errorf("fingerprint: %w", err)
			}
		}
		cfg = NewClient(f.Listen, f.ServerAddr, names, f.Password, opts)
		cfg.Client.ALPN = f.ALPN
		cfg.Client.Fingerprint = f.Fingerprint
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, f.Mode)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
