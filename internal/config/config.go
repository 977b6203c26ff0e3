package config

import (
	"fmt"
	"net"
	"strings"

	utls "github.com/refraction-networking/utls"

	"shadowtls/internal/tlsutil"
)

type Mode string

const (
	ModeServer Mode = "server"
	ModeClient Mode = "client"
)

// RunConfig is the fully resolved configuration handed to the tunnel engine.
// Exactly one of Server and Client is set, matching Mode.
type RunConfig struct {
	Mode   Mode          `yaml:"mode" json:"mode"`
	Server *ServerConfig `yaml:"server,omitempty" json:"server,omitempty"`
	Client *ClientConfig `yaml:"client,omitempty" json:"client,omitempty"`
	Opts   Opts          `yaml:"opts" json:"opts"`
}

type ServerConfig struct {
	Listen      string      `yaml:"listen" json:"listen"`     // address exposed to remote clients
	Upstream    string      `yaml:"upstream" json:"upstream"` // data server behind the tunnel
	TLSAddrs    TLSAddrs    `yaml:"tls_addrs" json:"tls_addrs"`
	Password    string      `yaml:"password" json:"password"`
	WildcardSNI WildcardSNI `yaml:"wildcard_sni" json:"wildcard_sni"`
}

type ClientConfig struct {
	Listen      string   `yaml:"listen" json:"listen"`
	ServerAddr  string   `yaml:"server_addr" json:"server_addr"`
	TLSNames    TLSNames `yaml:"tls_names" json:"tls_names"`
	Password    string   `yaml:"password" json:"password"`
	ALPN        []string `yaml:"alpn,omitempty" json:"alpn,omitempty"`
	Fingerprint string   `yaml:"fingerprint,omitempty" json:"fingerprint,omitempty"`
}

// Opts holds settings shared by both modes.
type Opts struct {
	Threads  *uint8 `yaml:"threads,omitempty" json:"threads,omitempty"` // nil = engine default
	V3       bool   `yaml:"v3" json:"v3"`
	Strict   bool   `yaml:"strict" json:"strict"`
	FastOpen bool   `yaml:"fastopen" json:"fastopen"`
}

// WildcardSNI controls whether the server accepts SNI values outside TLSAddrs.
type WildcardSNI string

const (
	WildcardSNIOff    WildcardSNI = "off"
	WildcardSNIAuthed WildcardSNI = "authed"
	WildcardSNIAll    WildcardSNI = "all"
)

func ParseWildcardSNI(s string) (WildcardSNI, error) {
	switch w := WildcardSNI(strings.ToLower(strings.TrimSpace(s))); w {
	case "":
		return WildcardSNIOff, nil
	case WildcardSNIOff, WildcardSNIAuthed, WildcardSNIAll:
		return w, nil
	default:
		return "", fmt.Errorf("wildcard sni mode must be one of: off, authed, all (got %q)", s)
	}
}

func NewServer(listen, upstream string, addrs TLSAddrs, password string, opts Opts) *RunConfig {
	return &RunConfig{
		Mode: ModeServer,
		Server: &ServerConfig{
			Listen:      listen,
			Upstream:    upstream,
			TLSAddrs:    addrs,
			Password:    password,
			WildcardSNI: WildcardSNIOff,
		},
		Opts: opts,
	}
}

func NewClient(listen, serverAddr string, names TLSNames, password string, opts Opts) *RunConfig {
	return &RunConfig{
		Mode: ModeClient,
		Client: &ClientConfig{
			Listen:     listen,
			ServerAddr: serverAddr,
			TLSNames:   names,
			Password:   password,
		},
		Opts: opts,
	}
}

// JoinHostPort renders a host/port pair from the plugin environment. IPv6
// literals are bracketed.
func JoinHostPort(host, port string) string {
	return net.JoinHostPort(strings.Trim(host, "[]"), port)
}

// Listen returns the address the process should bind, whichever the mode.
func (c *RunConfig) Listen() string {
	switch {
	case c.Server != nil:
		return c.Server.Listen
	case c.Client != nil:
		return c.Client.Listen
	}
	return ""
}

// Password returns the shared secret, whichever the mode.
func (c *RunConfig) Password() string {
	switch {
	case c.Server != nil:
		return c.Server.Password
	case c.Client != nil:
		return c.Client.Password
	}
	return ""
}

func (c *RunConfig) Validate() error {
	switch c.Mode {
	case ModeServer:
		if c.Server == nil || c.Client != nil {
			return fmt.Errorf("%w: server mode requires exactly the server block", ErrVariantMismatch)
		}
		return c.Server.validate()
	case ModeClient:
		if c.Client == nil || c.Server != nil {
			return fmt.Errorf("%w: client mode requires exactly the client block", ErrVariantMismatch)
		}
		return c.Client.validate()
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}
}

func (s *ServerConfig) validate() error {
	if s.Password == "" {
		return ErrMissingPassword
	}
	if err := validateAddr("server.listen", s.Listen); err != nil {
		return err
	}
	if err := validateAddr("server.upstream", s.Upstream); err != nil {
		return err
	}
	if len(s.TLSAddrs) == 0 {
		return fmt.Errorf("server.tls_addrs: %w", ErrEmptyList)
	}
	if _, err := ParseWildcardSNI(string(s.WildcardSNI)); err != nil {
		return fmt.Errorf("server.wildcard_sni: %w", err)
	}
	return nil
}

func (c *ClientConfig) validate() error {
	if c.Password == "" {
		return ErrMissingPassword
	}
	if err := validateAddr("client.listen", c.Listen); err != nil {
		return err
	}
	if err := validateAddr("client.server_addr", c.ServerAddr); err != nil {
		return err
	}
	if len(c.TLSNames) == 0 {
		return fmt.Errorf("client.tls_names: %w", ErrEmptyList)
	}
	if c.Fingerprint != "" {
		if _, err := tlsutil.LookupFingerprint(c.Fingerprint); err != nil {
			return fmt.Errorf("client.fingerprint: %w", err)
		}
	}
	return nil
}

func validateAddr(field, addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("%s invalid (expected host:port): %w", field, err)
	}
	if host == "" {
		return fmt.Errorf("%s missing host", field)
	}
	if port == "" {
		return fmt.Errorf("%s missing port", field)
	}
	return nil
}

// HelloID returns the uTLS ClientHello the client should mimic.
func (c *ClientConfig) HelloID() utls.ClientHelloID {
	if c.Fingerprint == "" {
		return utls.HelloChrome_Auto
	}
	id, err := tlsutil.LookupFingerprint(c.Fingerprint)
	if err != nil {
		return utls.HelloChrome_Auto
	}
	return id
}

const redacted = "******"

// Redacted returns a copy safe to print: the password is masked.
func (c *RunConfig) Redacted() *RunConfig {
	out := *c
	if c.Server != nil {
		s := *c.Server
		if s.Password != "" {
			s.Password = redacted
		}
		out.Server = &s
	}
	if c.Client != nil {
		cl := *c.Client
		if cl.Password != "" {
			cl.Password = redacted
		}
		out.Client = &cl
	}
	return &out
}
