package metrics

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWebServerEndpoints(t *testing.T) {
	r := New()
	r.ObserveResolution(SourceFile, nil)
	r.SetActive("server", true, SourceFile)

	ws := NewWebServer(r, func() any { return map[string]string{"mode": "server"} })
	srv := httptest.NewServer(ws.Handler())
	defer srv.Close()

	body := get(t, srv.URL+"/metrics")
	for _, want := range []string{
		"shadowtls_config_resolutions_total",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("/metrics missing %q", want)
		}
	}

	if got := get(t, srv.URL+"/healthz"); got != "ok" {
		t.Fatalf("/healthz = %q", got)
	}

	var status WebStatusData
	if err := json.Unmarshal([]byte(get(t, srv.URL+"/api/v1/status")), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	cfg, ok := status.Config.(map[string]any)
	if !ok || cfg["mode"] != "server" {
		t.Fatalf("status config = %#v", status.Config)
	}

	if !strings.Contains(get(t, srv.URL+"/debug/status/text"), "Goroutines:") {
		t.Fatalf("text status missing goroutine count")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{3 << 20, "3.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Fatalf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func get(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", url, err)
	}
	return string(b)
}
