package store

import (
	"context"
	"time"

	"github.com/viant/wfsync/layer"
	"github.com/viant/wfsync/syncerr"
)

// RunRecord is the outcome of one layer within a run.
type RunRecord struct {
	Layer      layer.ID
	Mode       string
	From       string
	To         string
	Features   int
	Bytes      int
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// RecordRun stores records under runID.
func (s *SQLiteStore) RecordRun(ctx context.Context, runID string, records []RunRecord) error {
	const op = "store.record_run"
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return syncerr.Store(op, err)
	}
	defer func() { _ = tx.Rollback() }()
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO wfsync_run(
    run_id, layer_id, mode, from_date, to_date, features, bytes, status, error, started_at, finished_at)
VALUES(?, wfs_layer(?), ?, wfs_date(?), wfs_date(?), ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return syncerr.Store(op, err)
	}
	defer stmt.Close()
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, runID, string(r.Layer), r.Mode, nullable(r.From), nullable(r.To),
			r.Features, r.Bytes, r.Status, nullable(r.Error),
			r.StartedAt.UTC().Format(time.RFC3339Nano), r.FinishedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return syncerr.Store(op, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return syncerr.Store(op, err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
