package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/pagelens/pagelens/internal/auth"
	"github.com/pagelens/pagelens/internal/config"
)

// ensureService returns the process-wide auth service, building it from the
// environment configuration on first use.
func ensureService() (*auth.Service, error) {
	if svc := auth.Default(); svc != nil {
		return svc, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	svc, err := auth.NewService(auth.ServiceConfig{Provider: cfg.Provider()})
	if err != nil {
		return nil, err
	}

	auth.SetDefault(svc)
	return svc, nil
}

// writeStructured renders v as JSON or YAML per the --output flag.
func writeStructured(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported output format %q (expected text, json, or yaml)", format)
	}
}
