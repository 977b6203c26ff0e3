package tlsutil

import (
	"sort"
	"strings"
	"testing"

	utls "github.com/refraction-networking/utls"
)

func TestLookupFingerprint(t *testing.T) {
	tests := []struct {
		name string
		want utls.ClientHelloID
	}{
		{"chrome", utls.HelloChrome_Auto},
		{"Chrome", utls.HelloChrome_Auto},
		{" firefox ", utls.HelloFirefox_Auto},
		{"ios", utls.HelloIOS_Auto},
		{"randomized", utls.HelloRandomized},
	}
	for _, tt := range tests {
		got, err := LookupFingerprint(tt.name)
		if err != nil {
			t.Fatalf("LookupFingerprint(%q): %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("LookupFingerprint(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLookupFingerprintUnknown(t *testing.T) {
	_, err := LookupFingerprint("netscape")
	if err == nil {
		t.Fatalf("expected error for unknown fingerprint")
	}
	if !strings.Contains(err.Error(), "chrome") {
		t.Fatalf("error should list known names: %v", err)
	}
}

func TestFingerprintNamesSorted(t *testing.T) {
	names := FingerprintNames()
	if len(names) != len(fingerprintDatabase) {
		t.Fatalf("got %d names, want %d", len(names), len(fingerprintDatabase))
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("names not sorted: %v", names)
	}
}
