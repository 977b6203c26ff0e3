package main

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"shadowtls/internal/config"
)

func emit(w io.Writer, cfg *config.RunConfig, format string, showSecrets bool) error {
	if !showSecrets {
		cfg = cfg.Redacted()
	}
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
