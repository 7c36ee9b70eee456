package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/viant/wfsync/layer"
	"github.com/viant/wfsync/request"
	"github.com/viant/wfsync/syncerr"
)

// Config is a validated wfsync configuration.
type Config struct {
	Source      Source
	Destination Destination
	Layers      []layer.Config
}

// Source describes the WFS server.
type Source struct {
	URL        string
	Key        string
	Version    string
	Service    string
	Format     string
	ConnString string
	Timeout    time.Duration
}

// Params returns the request builder parameters of s.
func (s Source) Params() request.Params {
	return request.Params{
		URL:        s.URL,
		Key:        s.Key,
		Service:    s.Service,
		Version:    s.Version,
		Format:     s.Format,
		ConnString: s.ConnString,
	}
}

// Destination describes where layers are written.
type Destination struct {
	Type DestinationType
	Path string
	CQL  string
}

// MapConfig validates dto; path is reported in errors.
func MapConfig(path string, dto YAMLConfig) (Config, error) {
	cfg := Config{
		Source: Source{
			URL:        strings.TrimSpace(dto.Source.URL),
			Key:        strings.TrimSpace(dto.Source.Key),
			Version:    strings.TrimSpace(dto.Source.Version),
			Service:    strings.TrimSpace(dto.Source.Service),
			Format:     strings.TrimSpace(dto.Source.Format),
			ConnString: strings.TrimSpace(dto.Source.ConnString),
			Timeout:    dto.Source.Timeout,
		},
		Destination: Destination{
			Path: strings.TrimSpace(dto.Destination.Path),
			CQL:  dto.Destination.CQL,
		},
	}
	if cfg.Source.Version == "" {
		return Config{}, invalidField(path, "source.version", "", "version is required")
	}
	if _, err := request.ParseVersion(cfg.Source.Version); err != nil {
		return Config{}, invalidField(path, "source.version", cfg.Source.Version, err.Error())
	}
	if cfg.Source.Timeout < 0 {
		return Config{}, invalidField(path, "source.timeout", cfg.Source.Timeout.String(), "timeout must not be negative")
	}

	cfg.Destination.Type = DestinationSQLite
	if t := strings.TrimSpace(dto.Destination.Type); t != "" {
		dt, err := ParseDestinationType(t)
		if err != nil {
			return Config{}, invalidField(path, "destination.type", t, err.Error())
		}
		cfg.Destination.Type = dt
	}

	seen := map[layer.ID]int{}
	for i, yl := range dto.Layers {
		field := fmt.Sprintf("layers[%d]", i)
		id := layer.ID(strings.TrimSpace(yl.ID))
		if !id.Valid() || id != id.TrimChangeset() {
			return Config{}, invalidField(path, field+".id", string(id), "want v:x<digits> or x<digits>")
		}
		if j, dup := seen[id.Normalize()]; dup {
			return Config{}, invalidField(path, field+".id", string(id), fmt.Sprintf("duplicates layers[%d]", j))
		}
		seen[id.Normalize()] = i
		cfg.Layers = append(cfg.Layers, layer.Config{
			ID:     id.Canonical(),
			Name:   strings.TrimSpace(yl.Name),
			PKey:   strings.TrimSpace(yl.PKey),
			CQL:    yl.CQL,
			Groups: yl.Groups,
		})
	}
	return cfg, nil
}

func invalidField(path, field, value, msg string) error {
	return syncerr.Configf("config.map", field, value, "%s: %s", path, msg)
}

func sameLayer(a, b string) bool {
	return layer.Same(layer.ID(strings.TrimSpace(a)), layer.ID(strings.TrimSpace(b)))
}
