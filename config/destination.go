package config

import (
	"fmt"
	"strings"
)

// DestinationType is a destination kind.
type DestinationType string

const (
	DestinationSQLite   DestinationType = "sqlite"
	DestinationPostgres DestinationType = "postgres"
	DestinationMSSQL    DestinationType = "mssql"
	DestinationFileGDB  DestinationType = "filegdb"
)

var destinationTokens = map[string]DestinationType{
	"sl":         DestinationSQLite,
	"slite":      DestinationSQLite,
	"sqlite":     DestinationSQLite,
	"spatialite": DestinationSQLite,
	"pg":         DestinationPostgres,
	"postgres":   DestinationPostgres,
	"ms":         DestinationMSSQL,
	"mssql":      DestinationMSSQL,
	"fg":         DestinationFileGDB,
	"fgdb":       DestinationFileGDB,
	"filegdb":    DestinationFileGDB,
}

// ParseDestinationType maps an output type token onto a destination kind.
func ParseDestinationType(token string) (DestinationType, error) {
	if t, ok := destinationTokens[strings.ToLower(strings.TrimSpace(token))]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown output type %q", token)
}

// Builtin reports whether this binary can write to t.
func (t DestinationType) Builtin() bool { return t == DestinationSQLite }
