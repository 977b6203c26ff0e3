package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveResolution(t *testing.T) {
	r := New()
	r.ObserveResolution(SourceSIP003, nil)
	r.ObserveResolution(SourceSIP003, errors.New("boom"))
	r.ObserveResolution(SourceSIP003, nil)

	if got := testutil.ToFloat64(r.resolutions.WithLabelValues(SourceSIP003, ResultOK)); got != 2 {
		t.Fatalf("ok resolutions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.resolutions.WithLabelValues(SourceSIP003, ResultError)); got != 1 {
		t.Fatalf("error resolutions = %v, want 1", got)
	}
}

func TestSetActiveKeepsSingleSeries(t *testing.T) {
	r := New()
	r.SetActive("client", false, SourceFile)
	r.SetActive("server", true, SourceFile)

	if n := testutil.CollectAndCount(r.info); n != 1 {
		t.Fatalf("info series = %d, want 1", n)
	}
	if got := testutil.ToFloat64(r.info.WithLabelValues("server", "true", SourceFile)); got != 1 {
		t.Fatalf("info gauge = %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.ObserveResolution(SourceFlags, nil)
	r.ObserveReload(errors.New("rejected"))

	path := filepath.Join(t.TempDir(), "shadowtls.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		`shadowtls_config_resolutions_total{result="ok",source="flags"} 1`,
		`shadowtls_config_reloads_total{result="error"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("textfile missing %q:\n%s", want, out)
		}
	}
}
