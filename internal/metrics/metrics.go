package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Configuration sources, in the order the binary tries them.
const (
	SourceSIP003 = "sip003"
	SourceFile   = "file"
	SourceFlags  = "flags"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Registry collects configuration resolution metrics. It uses a private
// prometheus registry so nothing leaks into the default one.
type Registry struct {
	registry    *prometheus.Registry
	resolutions *prometheus.CounterVec
	reloads     *prometheus.CounterVec
	info        *prometheus.GaugeVec
}

func New() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shadowtls_config_resolutions_total",
			Help: "Configuration resolutions by source and result.",
		}, []string{"source", "result"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shadowtls_config_reloads_total",
			Help: "Config file reloads by result.",
		}, []string{"result"}),
		info: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "shadowtls_config_info",
			Help: "Active configuration; always 1.",
		}, []string{"mode", "v3", "source"}),
	}
	r.registry.MustRegister(r.resolutions, r.reloads, r.info)
	return r
}

func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveResolution counts one attempt to build a configuration from source.
func (r *Registry) ObserveResolution(source string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	r.resolutions.WithLabelValues(source, result).Inc()
}

func (r *Registry) ObserveReload(err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	r.reloads.WithLabelValues(result).Inc()
}

// SetActive replaces the info series with the active configuration.
func (r *Registry) SetActive(mode string, v3 bool, source string) {
	r.info.Reset()
	r.info.WithLabelValues(mode, strconv.FormatBool(v3), source).Set(1)
}

// WriteTextfile writes all metrics in the text exposition format, for
// node_exporter's textfile collector. The write is atomic.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
