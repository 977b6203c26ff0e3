package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

const defaultTLSPort = "443"

// TLSAddr maps a client-offered SNI to the real TLS server the handshake is
// relayed to. SNI is empty when the entry names an IP literal without one.
type TLSAddr struct {
	SNI  string `yaml:"sni,omitempty" json:"sni,omitempty"`
	Addr string `yaml:"addr" json:"addr"`
}

func (a TLSAddr) String() string {
	if a.SNI == "" {
		return a.Addr
	}
	return a.SNI + ":" + a.Addr
}

// TLSAddrs is the server's handshake address list in declaration order.
// The last entry doubles as the fallback for unknown SNI values.
type TLSAddrs []TLSAddr

// ParseTLSAddrs parses the server "tls" value, a ';'-separated list of
// [sni:]host[:port] entries, for example
//
//	xxx.com:443
//	yyy.com:1.2.3.4:443;zzz.com:443;xxx.com
//
// A missing port means 443. IPv6 hosts must be bracketed.
func ParseTLSAddrs(s string) (TLSAddrs, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyList
	}
	parts := strings.Split(s, ";")
	addrs := make(TLSAddrs, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("entry %d is empty", i+1)
		}
		a, err := parseTLSAddr(p)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", p, err)
		}
		addrs = append(addrs, a)
	}
	return addrs, nil
}

func parseTLSAddr(entry string) (TLSAddr, error) {
	if strings.HasPrefix(entry, "[") {
		addr, err := normalizeAddr(entry)
		if err != nil {
			return TLSAddr{}, err
		}
		return TLSAddr{Addr: addr}, nil
	}

	head, rest, found := strings.Cut(entry, ":")
	if _, err := strconv.Atoi(rest); found && err == nil && !isPort(rest) {
		return TLSAddr{}, fmt.Errorf("%w: %q has invalid port", ErrInvalidAddr, entry)
	}
	if !found || isPort(rest) {
		// host or host:port; the host doubles as SNI
		addr, err := normalizeAddr(entry)
		if err != nil {
			return TLSAddr{}, err
		}
		a := TLSAddr{Addr: addr}
		if net.ParseIP(head) == nil {
			sni, err := NormalizeServerName(head)
			if err != nil {
				return TLSAddr{}, err
			}
			a.SNI = sni
		}
		return a, nil
	}

	sni, err := NormalizeServerName(head)
	if err != nil {
		return TLSAddr{}, err
	}
	addr, err := normalizeAddr(rest)
	if err != nil {
		return TLSAddr{}, err
	}
	return TLSAddr{SNI: sni, Addr: addr}, nil
}

// normalizeAddr accepts host, host:port, [v6] or [v6]:port and returns
// host:port with the default TLS port filled in.
func normalizeAddr(s string) (string, error) {
	var host, port string
	switch {
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		host, port = s[1:len(s)-1], defaultTLSPort
	case strings.Contains(s, ":"):
		h, p, err := net.SplitHostPort(s)
		if err != nil {
			if strings.Count(s, ":") > 1 && !strings.HasPrefix(s, "[") {
				return "", fmt.Errorf("%w: %q must be host:port; for IPv6 use [ipv6]:port", ErrInvalidAddr, s)
			}
			return "", fmt.Errorf("%w: %v", ErrInvalidAddr, err)
		}
		host, port = h, p
	default:
		host, port = s, defaultTLSPort
	}
	if host == "" {
		return "", fmt.Errorf("%w: %q missing host", ErrInvalidAddr, s)
	}
	if !isPort(port) {
		return "", fmt.Errorf("%w: %q has invalid port", ErrInvalidAddr, s)
	}
	return net.JoinHostPort(host, port), nil
}

func isPort(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n >= 1 && n <= 65535
}

// Fallback returns the entry used when no SNI matches.
func (t TLSAddrs) Fallback() (TLSAddr, bool) {
	if len(t) == 0 {
		return TLSAddr{}, false
	}
	return t[len(t)-1], true
}

// Dispatch returns the handshake address for a client-offered SNI, falling
// back to the last entry.
func (t TLSAddrs) Dispatch(sni string) (string, bool) {
	for _, a := range t {
		if a.SNI != "" && strings.EqualFold(a.SNI, sni) {
			return a.Addr, true
		}
	}
	fb, ok := t.Fallback()
	return fb.Addr, ok
}

// ServerNames lists every explicit SNI in declaration order.
func (t TLSAddrs) ServerNames() []string {
	names := make([]string, 0, len(t))
	for _, a := range t {
		if a.SNI != "" {
			names = append(names, a.SNI)
		}
	}
	return names
}

func (t TLSAddrs) String() string {
	parts := make([]string, len(t))
	for i, a := range t {
		parts[i] = a.String()
	}
	return strings.Join(parts, ";")
}
