package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/viant/wfsync/syncerr"
)

// Load reads the main configuration file at path and, when userPath is not
// empty, overlays the user configuration file on top of it.
func Load(path, userPath string) (Config, error) {
	main, err := readYAML(path)
	if err != nil {
		return Config{}, err
	}
	if userPath != "" {
		user, err := readYAML(userPath)
		if err != nil {
			return Config{}, err
		}
		main = Merge(main, user)
	}
	return MapConfig(path, main)
}

func readYAML(path string) (YAMLConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return YAMLConfig{}, syncerr.Config("config.load", "path", path, err)
	}
	var dto YAMLConfig
	if err := yaml.Unmarshal(b, &dto); err != nil {
		return YAMLConfig{}, syncerr.Config("config.load", "path", path, err)
	}
	return dto, nil
}

// Merge overlays user on base field by field. Empty user values leave base
// untouched; user layers replace base layers with the same id and are
// appended otherwise.
func Merge(base, user YAMLConfig) YAMLConfig {
	out := base
	overlay(&out.Source.URL, user.Source.URL)
	overlay(&out.Source.Key, user.Source.Key)
	overlay(&out.Source.Version, user.Source.Version)
	overlay(&out.Source.Service, user.Source.Service)
	overlay(&out.Source.Format, user.Source.Format)
	overlay(&out.Source.ConnString, user.Source.ConnString)
	if user.Source.Timeout != 0 {
		out.Source.Timeout = user.Source.Timeout
	}
	overlay(&out.Destination.Type, user.Destination.Type)
	overlay(&out.Destination.Path, user.Destination.Path)
	overlay(&out.Destination.CQL, user.Destination.CQL)

	out.Layers = append([]YAMLLayer(nil), base.Layers...)
	for _, ul := range user.Layers {
		replaced := false
		for i := range out.Layers {
			if sameLayer(out.Layers[i].ID, ul.ID) {
				out.Layers[i] = ul
				replaced = true
				break
			}
		}
		if !replaced {
			out.Layers = append(out.Layers, ul)
		}
	}
	return out
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
