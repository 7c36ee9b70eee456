package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-kit/log/level"

	"github.com/viant/wfsync/layer"
	"github.com/viant/wfsync/syncerr"
)

// Layers returns the layers configured at the destination, ordered by id.
func (s *SQLiteStore) Layers(ctx context.Context) ([]layer.Config, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT layer_id, name, pkey, cql, groups FROM wfsync_layer_config ORDER BY layer_id`)
	if err != nil {
		return nil, syncerr.Store("store.layers", err)
	}
	defer rows.Close()
	var out []layer.Config
	for rows.Next() {
		var (
			id, groups string
			cfg        layer.Config
		)
		if err := rows.Scan(&id, &cfg.Name, &cfg.PKey, &cfg.CQL, &groups); err != nil {
			return nil, syncerr.Store("store.layers", err)
		}
		cfg.ID = layer.ID(id)
		cfg.Groups = splitGroups(groups)
		out = append(out, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, syncerr.Store("store.layers", err)
	}
	return out, nil
}

// Provision seeds the layer configuration table and creates empty layer
// tables. Existing rows are updated in place.
func (s *SQLiteStore) Provision(ctx context.Context, cfgs []layer.Config) error {
	const op = "store.provision"
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return syncerr.Store(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, cfg := range cfgs {
		if !cfg.ID.Valid() {
			return syncerr.Configf(op, "layer", string(cfg.ID), "invalid layer id")
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO wfsync_layer_config(layer_id, name, pkey, cql, groups)
VALUES(?, ?, ?, ?, ?)
ON CONFLICT(layer_id) DO UPDATE SET name = excluded.name, pkey = excluded.pkey, cql = excluded.cql, groups = excluded.groups`,
			string(cfg.ID.Canonical()), cfg.Name, cfg.PKey, cfg.CQL, strings.Join(cfg.Groups, ","))
		if err != nil {
			return syncerr.Store(op, err)
		}
		if _, err := tx.ExecContext(ctx, layerTableDDL(tableFor(cfg))); err != nil {
			return syncerr.Store(op, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return syncerr.Store(op, err)
	}
	level.Info(s.logger).Log("op", "provision", "layers", len(cfgs))
	return nil
}

// Clean drops the tables and watermarks of ids. Layer configuration rows are
// kept so a later run can replicate the layers again from scratch.
func (s *SQLiteStore) Clean(ctx context.Context, ids []layer.ID) error {
	const op = "store.clean"
	for _, id := range ids {
		table, err := s.DestinationURI(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS `+quoteIdent(table)); err != nil {
			return syncerr.Store(op, err)
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM wfsync_watermark WHERE layer_id = wfs_layer(?)`, string(id)); err != nil {
			return syncerr.Store(op, err)
		}
		level.Info(s.logger).Log("op", "clean", "layer", id, "table", table)
	}
	return nil
}

func (s *SQLiteStore) layerConfig(ctx context.Context, id layer.ID) (layer.Config, bool, error) {
	var (
		cfg            layer.Config
		canonical, grp string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT layer_id, name, pkey, cql, groups FROM wfsync_layer_config WHERE wfs_layer(layer_id) = wfs_layer(?)`,
		string(id)).Scan(&canonical, &cfg.Name, &cfg.PKey, &cfg.CQL, &grp)
	if errors.Is(err, sql.ErrNoRows) {
		return layer.Config{}, false, nil
	}
	if err != nil {
		return layer.Config{}, false, syncerr.Store("store.layer_config", err)
	}
	cfg.ID = layer.ID(canonical)
	cfg.Groups = splitGroups(grp)
	return cfg, true, nil
}

func tableFor(cfg layer.Config) string {
	if cfg.Name != "" {
		return sanitizeIdentifier(cfg.Name)
	}
	return TablePrefix + sanitizeIdentifier(string(cfg.ID.Normalize()))
}

func splitGroups(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
