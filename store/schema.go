package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const bookkeepingSchema = `
CREATE TABLE IF NOT EXISTS wfsync_watermark (
    layer_id      TEXT PRIMARY KEY,
    last_modified TEXT NOT NULL,
    updated_at    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS wfsync_layer_config (
    layer_id TEXT PRIMARY KEY,
    name     TEXT NOT NULL DEFAULT '',
    pkey     TEXT NOT NULL DEFAULT '',
    cql      TEXT NOT NULL DEFAULT '',
    groups   TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS wfsync_run (
    run_id      TEXT NOT NULL,
    layer_id    TEXT NOT NULL,
    mode        TEXT NOT NULL,
    from_date   TEXT,
    to_date     TEXT,
    features    INTEGER NOT NULL DEFAULT 0,
    bytes       INTEGER NOT NULL DEFAULT 0,
    status      TEXT NOT NULL,
    error       TEXT,
    started_at  TEXT NOT NULL,
    finished_at TEXT NOT NULL,
    PRIMARY KEY(run_id, layer_id)
);
`

// EnsureSchema creates the bookkeeping tables if they do not already exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, bookkeepingSchema)
	return err
}

// layerTableDDL returns the DDL of a layer table. Geometry and properties are
// stored as their GeoJSON encodings.
func layerTableDDL(table string) string {
	return `CREATE TABLE IF NOT EXISTS ` + quoteIdent(table) + ` (
    fid        TEXT PRIMARY KEY,
    geometry   TEXT,
    properties TEXT,
    updated_at TEXT NOT NULL
);`
}

// sanitizeIdentifier maps a layer id or configured name onto a table name.
func sanitizeIdentifier(name string) string {
	if name == "" {
		return ""
	}
	replacer := strings.NewReplacer(".", "_", "-", "_", ":", "_", " ", "_")
	return replacer.Replace(name)
}

func quoteIdent(name string) string {
	return fmt.Sprintf(`"%s"`, strings.ReplaceAll(name, `"`, `""`))
}
