// Command shadowtls resolves the tunnel configuration and prints it for the
// tunnel engine. When launched as a SIP003 plugin the SS_* environment wins;
// otherwise a YAML file (-config) or command-line flags are used.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"shadowtls/internal/config"
	"shadowtls/internal/metrics"
	"shadowtls/internal/sip003"
)

// Set via -ldflags at build time.
var version = "dev"

type options struct {
	configPath      string
	watch           bool
	format          string
	showSecrets     bool
	metricsTextfile string
	statusListen    string
	showVersion     bool
	file            config.File
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	if opts.showVersion {
		fmt.Println(version)
		return
	}

	metrics.Version = version
	m := metrics.New()
	cfg, source, err := resolve(opts, os.LookupEnv, m)
	if err != nil {
		writeMetrics(m, opts.metricsTextfile)
		log.Fatalf("%s configuration: %v", source, err)
	}
	log.Printf("resolved %s configuration from %s, listening on %s", cfg.Mode, source, cfg.Listen())
	m.SetActive(string(cfg.Mode), cfg.Opts.V3, source)
	writeMetrics(m, opts.metricsTextfile)

	if err := emit(os.Stdout, cfg, opts.format, opts.showSecrets); err != nil {
		log.Fatalf("write configuration: %v", err)
	}

	if opts.watch && source == metrics.SourceFile {
		if err := watch(opts, m, os.Stdout); err != nil {
			log.Fatalf("watch %s: %v", opts.configPath, err)
		}
	}
}

// resolve tries the plugin handshake first, then the config file, then flags.
func resolve(opts *options, lookup sip003.LookupFunc, m *metrics.Registry) (*config.RunConfig, string, error) {
	cfg, err := sip003.Resolve(lookup)
	if err != nil || cfg != nil {
		m.ObserveResolution(metrics.SourceSIP003, err)
		return cfg, metrics.SourceSIP003, err
	}

	if opts.configPath != "" {
		cfg, err := config.Load(opts.configPath)
		m.ObserveResolution(metrics.SourceFile, err)
		return cfg, metrics.SourceFile, err
	}

	cfg, err = opts.file.RunConfig()
	m.ObserveResolution(metrics.SourceFlags, err)
	return cfg, metrics.SourceFlags, err
}

func watch(opts *options, m *metrics.Registry, out io.Writer) error {
	reloader, err := config.NewReloadable(opts.configPath)
	if err != nil {
		return err
	}
	defer reloader.Close()

	reloader.OnError(func(err error) {
		m.ObserveReload(err)
		writeMetrics(m, opts.metricsTextfile)
		log.Printf("config reload rejected: %v", err)
	})
	reloader.Watch(func(_, next *config.RunConfig) {
		m.ObserveReload(nil)
		m.SetActive(string(next.Mode), next.Opts.V3, metrics.SourceFile)
		writeMetrics(m, opts.metricsTextfile)
		log.Printf("config reloaded from %s", opts.configPath)
		if err := emit(out, next, opts.format, opts.showSecrets); err != nil {
			log.Printf("write configuration: %v", err)
		}
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if opts.statusListen == "" {
		<-ctx.Done()
		return nil
	}
	ws := metrics.NewWebServer(m, func() any { return reloader.Get().Redacted() })
	log.Printf("status endpoint listening on %s", opts.statusListen)
	return ws.Serve(ctx, opts.statusListen)
}

func writeMetrics(m *metrics.Registry, path string) {
	if path == "" {
		return
	}
	if err := m.WriteTextfile(path); err != nil {
		log.Printf("write metrics textfile: %v", err)
	}
}
