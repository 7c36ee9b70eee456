package config

import "time"

type YAMLConfig struct {
	Source      YAMLSource      `yaml:"source"`
	Destination YAMLDestination `yaml:"destination"`
	Layers      []YAMLLayer     `yaml:"layers"`
}

type YAMLSource struct {
	URL        string        `yaml:"url"`
	Key        string        `yaml:"key"`
	Version    string        `yaml:"version"`
	Service    string        `yaml:"service"`
	Format     string        `yaml:"format"`
	ConnString string        `yaml:"connstring"`
	Timeout    time.Duration `yaml:"timeout"`
}

type YAMLDestination struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
	CQL  string `yaml:"cql"`
}

type YAMLLayer struct {
	ID     string   `yaml:"id"`
	Name   string   `yaml:"name"`
	PKey   string   `yaml:"pkey"`
	CQL    string   `yaml:"cql"`
	Groups []string `yaml:"groups"`
}
