package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/miekg/dns"
	"golang.org/x/net/idna"

	"shadowtls/internal/tlsutil"
)

// TLSNames are the SNI values a client may present, one picked per connection.
type TLSNames []string

// ParseTLSNames parses the client "host" value, a ';'-separated list of
// hostnames such as "www.example.com;cdn.example.net".
func ParseTLSNames(s string) (TLSNames, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyList
	}
	parts := strings.Split(s, ";")
	names := make(TLSNames, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("name %d is empty", i+1)
		}
		if net.ParseIP(p) != nil {
			return nil, fmt.Errorf("%w: %q is an IP address, not a hostname", ErrInvalidServerName, p)
		}
		name, err := NormalizeServerName(p)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// NormalizeServerName converts name to its lower-case ASCII (punycode) form
// and checks it is a valid DNS name.
func NormalizeServerName(name string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".")
	if name == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidServerName)
	}
	ascii, err := idna.Lookup.ToASCII(name)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidServerName, name, err)
	}
	if _, ok := dns.IsDomainName(ascii); !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidServerName, name)
	}
	return strings.ToLower(ascii), nil
}

// Pool returns a pool that hands out a random name per connection.
func (n TLSNames) Pool() *tlsutil.SNIPool {
	return tlsutil.NewSNIPool(n, tlsutil.StrategyRandom)
}

func (n TLSNames) String() string {
	return strings.Join(n, ";")
}
