package tlsutil

import (
	"fmt"
	"sort"
	"strings"

	utls "github.com/refraction-networking/utls"
)

// fingerprintDatabase maps the names accepted by the "fingerprint" option to
// the ClientHello uTLS reproduces.
var fingerprintDatabase = map[string]utls.ClientHelloID{
	// Chrome
	"chrome":      utls.HelloChrome_Auto,
	"chrome_auto": utls.HelloChrome_Auto,
	"chrome_120":  utls.HelloChrome_120,
	"chrome_102":  utls.HelloChrome_102,
	"chrome_100":  utls.HelloChrome_100,

	// Firefox
	"firefox":      utls.HelloFirefox_Auto,
	"ff":           utls.HelloFirefox_Auto,
	"firefox_auto": utls.HelloFirefox_Auto,
	"firefox_105":  utls.HelloFirefox_105,
	"firefox_102":  utls.HelloFirefox_102,

	// Safari / iOS
	"safari":      utls.HelloSafari_Auto,
	"safari_auto": utls.HelloSafari_Auto,
	"safari_16":   utls.HelloSafari_16_0,
	"ios":         utls.HelloIOS_Auto,
	"ios_auto":    utls.HelloIOS_Auto,

	"edge":      utls.HelloEdge_Auto,
	"edge_auto": utls.HelloEdge_Auto,
	"360":       utls.Hello360_Auto,
	"qq":        utls.HelloQQ_Auto,

	"random":            utls.HelloRandomized,
	"randomized":        utls.HelloRandomized,
	"randomized_noalpn": utls.HelloRandomizedNoALPN,
	"golang":            utls.HelloGolang,
}

// LookupFingerprint resolves a fingerprint name, case-insensitively.
func LookupFingerprint(name string) (utls.ClientHelloID, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if id, ok := fingerprintDatabase[key]; ok {
		return id, nil
	}
	return utls.ClientHelloID{}, fmt.Errorf("unknown fingerprint %q (known: %s)", name, strings.Join(FingerprintNames(), ", "))
}

// FingerprintNames returns the accepted fingerprint names, sorted.
func FingerprintNames() []string {
	names := make([]string, 0, len(fingerprintDatabase))
	for name := range fingerprintDatabase {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
