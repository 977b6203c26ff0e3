package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WebServer exposes the resolution metrics and the active configuration
// while the binary stays up in -watch mode.
type WebServer struct {
	gatherer  prometheus.Gatherer
	status    func() any
	startTime time.Time
}

// WebStatusData is the JSON body of /api/v1/status.
type WebStatusData struct {
	Timestamp     string `json:"timestamp"`
	Version       string `json:"version"`
	GoVersion     string `json:"go_version"`
	Uptime        string `json:"uptime"`
	NumGoroutines int    `json:"goroutines"`
	Config        any    `json:"config,omitempty"`
}

// Version is reported on the status endpoints.
var Version = "dev"

// NewWebServer serves r plus Go runtime and process collectors. status is
// called per request and should return an already redacted value.
func NewWebServer(r *Registry, status func() any) *WebServer {
	runtimeReg := prometheus.NewRegistry()
	runtimeReg.MustRegister(collectors.NewGoCollector())
	runtimeReg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &WebServer{
		gatherer:  prometheus.Gatherers{r.registry, runtimeReg},
		status:    status,
		startTime: time.Now(),
	}
}

func (s *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/api/v1/status", s.handleAPIStatus)
	mux.HandleFunc("/debug/status/text", s.handleTextStatus)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

// Serve listens on addr until ctx is cancelled.
func (s *WebServer) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *WebServer) collectStatusData() WebStatusData {
	data := WebStatusData{
		Timestamp:     time.Now().Format(time.RFC3339),
		Version:       Version,
		GoVersion:     runtime.Version(),
		Uptime:        time.Since(s.startTime).Truncate(time.Second).String(),
		NumGoroutines: runtime.NumGoroutine(),
	}
	if s.status != nil {
		data.Config = s.status()
	}
	return data
}

func (s *WebServer) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(s.collectStatusData())
}

func (s *WebServer) handleTextStatus(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "=== shadowtls status ===\n\n")
	fmt.Fprintf(w, "Version:      %s\n", Version)
	fmt.Fprintf(w, "Uptime:       %s\n", time.Since(s.startTime).Truncate(time.Second))
	fmt.Fprintf(w, "Go Version:   %s\n", runtime.Version())
	fmt.Fprintf(w, "Platform:     %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "Goroutines:   %d\n\n", runtime.NumGoroutine())

	fmt.Fprintf(w, "--- Memory ---\n")
	fmt.Fprintf(w, "Alloc:        %s\n", formatBytes(m.Alloc))
	fmt.Fprintf(w, "Sys:          %s\n", formatBytes(m.Sys))
	fmt.Fprintf(w, "NumGC:        %d\n", m.NumGC)
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
