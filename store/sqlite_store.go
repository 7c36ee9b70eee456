package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/viant/wfsync/feature"
	"github.com/viant/wfsync/layer"
	"github.com/viant/wfsync/syncerr"
)

// TablePrefix prefixes derived layer table names.
const TablePrefix = "lds_"

// SQLiteStore is a destination backed by a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger log.Logger
	now    func() time.Time
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(s *SQLiteStore) { s.logger = l }
}

// WithNow is useful for tests; it stamps updated_at columns.
func WithNow(now func() time.Time) Option {
	return func(s *SQLiteStore) { s.now = now }
}

// NewSQLiteStore creates a SQLite-backed destination. It ensures the
// bookkeeping schema exists in the provided database.
func NewSQLiteStore(ctx context.Context, db *sql.DB, opts ...Option) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("store: db is nil")
	}
	if err := EnsureSchema(ctx, db); err != nil {
		return nil, syncerr.Store("store.ensure_schema", err)
	}
	s := &SQLiteStore{db: db, logger: log.NewNopLogger(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.With(s.logger, "component", "store")
	return s, nil
}

// DestinationURI returns the table a layer is written to: its configured
// name, or TablePrefix plus the normalised id.
func (s *SQLiteStore) DestinationURI(ctx context.Context, id layer.ID) (string, error) {
	cfg, ok, err := s.layerConfig(ctx, id)
	if err != nil {
		return "", err
	}
	if ok && cfg.Name != "" {
		return sanitizeIdentifier(cfg.Name), nil
	}
	return TablePrefix + sanitizeIdentifier(string(id.Normalize())), nil
}

// Write applies a GeoJSON payload to table and returns the number of
// features applied. Written rows are stamped with the payload fetch time.
func (s *SQLiteStore) Write(ctx context.Context, p *feature.Payload, table string) (int, error) {
	const op = "store.write"
	if p == nil {
		return 0, syncerr.Store(op, errors.New("nil payload"))
	}
	body := bytes.TrimSpace(p.Body)
	if len(body) == 0 || body[0] != '{' {
		return 0, syncerr.Store(op, fmt.Errorf("layer %s: sqlite destination requires JSON output format", p.Layer))
	}
	features, err := feature.DecodeCollection(body)
	if err != nil {
		return 0, syncerr.Store(op, err)
	}
	cfg, _, err := s.layerConfig(ctx, p.Layer)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, syncerr.Store(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, layerTableDDL(table)); err != nil {
		return 0, syncerr.Store(op, err)
	}
	if !p.Incremental {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+quoteIdent(table)); err != nil {
			return 0, syncerr.Store(op, err)
		}
	}

	upsert, err := tx.PrepareContext(ctx, `INSERT INTO `+quoteIdent(table)+`(fid, geometry, properties, updated_at)
VALUES(?, ?, ?, ?)
ON CONFLICT(fid) DO UPDATE SET geometry = excluded.geometry, properties = excluded.properties, updated_at = excluded.updated_at`)
	if err != nil {
		return 0, syncerr.Store(op, err)
	}
	defer upsert.Close()
	del, err := tx.PrepareContext(ctx, `DELETE FROM `+quoteIdent(table)+` WHERE fid = ?`)
	if err != nil {
		return 0, syncerr.Store(op, err)
	}
	defer del.Close()

	fetched := p.FetchedAt
	if fetched.IsZero() {
		fetched = s.now()
	}
	stamp := fetched.UTC().Format(time.RFC3339)
	applied := 0
	for i, f := range features {
		key := f.Key(cfg.PKey)
		if key == "" {
			return 0, syncerr.Store(op, fmt.Errorf("layer %s: features[%d] has no key", p.Layer, i))
		}
		if f.Change == feature.ChangeDelete {
			if _, err := del.ExecContext(ctx, key); err != nil {
				return 0, syncerr.Store(op, err)
			}
			applied++
			continue
		}
		props, err := f.PropertiesJSON()
		if err != nil {
			return 0, syncerr.Store(op, err)
		}
		var geom any
		if len(f.Geometry) > 0 && string(f.Geometry) != "null" {
			geom = string(f.Geometry)
		}
		if _, err := upsert.ExecContext(ctx, key, geom, string(props), stamp); err != nil {
			return 0, syncerr.Store(op, err)
		}
		applied++
	}

	if err := tx.Commit(); err != nil {
		return 0, syncerr.Store(op, err)
	}
	level.Info(s.logger).Log("op", "write", "layer", p.Layer, "table", table, "incremental", p.Incremental, "features", applied)
	return applied, nil
}

// Current returns the destination clock plus offset.
func (s *SQLiteStore) Current(ctx context.Context, offset time.Duration) (time.Time, error) {
	var now string
	if err := s.db.QueryRowContext(ctx, `SELECT strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`).Scan(&now); err != nil {
		return time.Time{}, syncerr.Store("store.current", err)
	}
	t, err := time.Parse(time.RFC3339, now)
	if err != nil {
		return time.Time{}, syncerr.Store("store.current", err)
	}
	return t.Add(offset), nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
