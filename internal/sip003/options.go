package sip003

import (
	"fmt"
	"slices"
)

// flagValue stands in for the value of a bare key such as "server" or "v3".
const flagValue = "1"

var optionTerms = []byte{'=', ';'}

// Option is one key/value pair from SS_PLUGIN_OPTIONS.
type Option struct {
	Key   string
	Value string
}

// Options keeps every pair in the order it appeared, duplicates included.
type Options []Option

// ParseOptions splits a SIP003 option string of the form
// "key[=value][;key[=value]]..." into pairs. Backslash escapes the next
// byte, so "\;" and "\=" can appear inside keys and values.
func ParseOptions(s string) (Options, error) {
	var opts Options
	i := 0
	for i < len(s) {
		n, key, err := indexUnescaped(s[i:], optionTerms)
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		if key == "" {
			return nil, fmt.Errorf("%w in %q", ErrEmptyKey, s[i:])
		}
		i += n
		if i >= len(s) {
			opts = append(opts, Option{Key: key, Value: flagValue})
			break
		}
		if s[i] != '=' {
			opts = append(opts, Option{Key: key, Value: flagValue})
			i++
			continue
		}

		i++
		n, value, err := indexUnescaped(s[i:], optionTerms)
		if err != nil {
			return nil, fmt.Errorf("read value: %w", err)
		}
		i += n
		opts = append(opts, Option{Key: key, Value: value})
		if i < len(s) && s[i] == ';' {
			i++
		}
	}
	return opts, nil
}

// indexUnescaped copies s up to the first unescaped byte from term,
// dropping escape backslashes. It returns the number of source bytes
// consumed, which stops short of the terminator.
func indexUnescaped(s string, term []byte) (int, string, error) {
	buf := make([]byte, 0, len(s))
	i := 0
	for i < len(s) {
		b := s[i]
		if slices.Contains(term, b) {
			break
		}
		if b == '\\' {
			i++
			if i >= len(s) {
				return 0, "", fmt.Errorf("%w in %q", ErrDanglingEscape, s)
			}
			b = s[i]
		}
		buf = append(buf, b)
		i++
	}
	return i, string(buf), nil
}

// Map folds the pairs into a map. A later duplicate overwrites an earlier one.
func (o Options) Map() map[string]string {
	m := make(map[string]string, len(o))
	for _, opt := range o {
		m[opt.Key] = opt.Value
	}
	return m
}

// Get returns the last value given for key.
func (o Options) Get(key string) (string, bool) {
	for i := len(o) - 1; i >= 0; i-- {
		if o[i].Key == key {
			return o[i].Value, true
		}
	}
	return "", false
}

// Values returns every value given for key, in order.
func (o Options) Values(key string) []string {
	var out []string
	for _, opt := range o {
		if opt.Key == key {
			out = append(out, opt.Value)
		}
	}
	return out
}
