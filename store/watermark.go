package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/viant/wfsync/layer"
	"github.com/viant/wfsync/syncerr"
)

// Watermark is the stored sync state of one layer.
type Watermark struct {
	Layer        layer.ID
	LastModified time.Time
	// Day is the yyyy-mm-dd form of LastModified as computed by the database.
	Day       string
	UpdatedAt time.Time
}

// LastModified returns the watermark of id. ok is false when the layer has
// never been synced.
func (s *SQLiteStore) LastModified(ctx context.Context, id layer.ID) (time.Time, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT last_modified FROM wfsync_watermark WHERE layer_id = wfs_layer(?)`, string(id)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, syncerr.Store("store.last_modified", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, syncerr.Store("store.last_modified", err)
	}
	return ts, true, nil
}

// SetLastModified records ts as the watermark of id.
func (s *SQLiteStore) SetLastModified(ctx context.Context, id layer.ID, ts time.Time) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO wfsync_watermark(layer_id, last_modified, updated_at)
VALUES(wfs_layer(?), ?, ?)
ON CONFLICT(layer_id) DO UPDATE SET last_modified = excluded.last_modified, updated_at = excluded.updated_at`,
		string(id), ts.UTC().Format(time.RFC3339Nano), s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return syncerr.Store("store.set_last_modified", err)
	}
	return nil
}

// Watermarks lists every stored watermark ordered by layer.
func (s *SQLiteStore) Watermarks(ctx context.Context) ([]Watermark, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT layer_id, last_modified, wfs_date(last_modified), updated_at FROM wfsync_watermark ORDER BY layer_id`)
	if err != nil {
		return nil, syncerr.Store("store.watermarks", err)
	}
	defer rows.Close()
	var out []Watermark
	for rows.Next() {
		var (
			w                   Watermark
			id, last, updatedAt string
		)
		if err := rows.Scan(&id, &last, &w.Day, &updatedAt); err != nil {
			return nil, syncerr.Store("store.watermarks", err)
		}
		w.Layer = layer.ID(id)
		if w.LastModified, err = time.Parse(time.RFC3339Nano, last); err != nil {
			return nil, syncerr.Store("store.watermarks", err)
		}
		if w.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, syncerr.Store("store.watermarks", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, syncerr.Store("store.watermarks", err)
	}
	return out, nil
}
