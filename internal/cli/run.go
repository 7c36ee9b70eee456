package cli

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/viant/wfsync/config"
	"github.com/viant/wfsync/engine"
	"github.com/viant/wfsync/internal/logging"
	"github.com/viant/wfsync/internal/metrics"
	"github.com/viant/wfsync/layer"
	"github.com/viant/wfsync/request"
	"github.com/viant/wfsync/source"
	"github.com/viant/wfsync/store"
	"github.com/viant/wfsync/syncerr"
	"github.com/viant/wfsync/transfer"
)

// env is what a command needs once configuration has been resolved.
type env struct {
	cfg    config.Config
	logger log.Logger
	store  *store.SQLiteStore
}

func (e *env) close() {
	if e.store != nil {
		_ = e.store.Close()
	}
}

// openEnv loads configuration, applies flag and argument overrides and opens
// the destination.
func openEnv(ctx context.Context, cmd *cobra.Command, o options, dest config.DestinationType) (*env, error) {
	logger := logging.Init(cmd.ErrOrStderr(), o.debug)
	cfg, err := config.Load(o.configPath, o.userConfig)
	if err != nil {
		return nil, err
	}
	if o.source != "" {
		cfg.Source.ConnString = o.source
	}
	if o.destination != "" {
		cfg.Destination.Path = o.destination
	}
	if dest != "" {
		cfg.Destination.Type = dest
	}
	if !cfg.Destination.Type.Builtin() {
		return nil, syncerr.Configf("cli.open", "destination.type", string(cfg.Destination.Type),
			"output type is not available in this build")
	}
	if cfg.Destination.Path == "" {
		return nil, syncerr.Configf("cli.open", "destination.path", "", "destination path is required")
	}

	db, err := engine.Open(cfg.Destination.Path)
	if err != nil {
		return nil, syncerr.Store("cli.open", err)
	}
	st, err := store.NewSQLiteStore(ctx, db, store.WithLogger(logger))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, store: st}, nil
}

func runSync(cmd *cobra.Command, o options, args []string) error {
	pos, err := parseArgs(args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := openEnv(ctx, cmd, o, pos.destination)
	if err != nil {
		return err
	}
	defer e.close()

	switch pos.action {
	case actionInit:
		return e.store.Provision(ctx, e.cfg.Layers)
	case actionClean:
		return clean(ctx, e, o.layer)
	}

	b, err := request.New(e.cfg.Source.Params(), e.logger)
	if err != nil {
		return err
	}
	scfg := source.DefaultConfig()
	if e.cfg.Source.Timeout > 0 {
		scfg.Timeout = e.cfg.Source.Timeout
	}
	client := source.NewClient(source.WithHTTPClient(source.NewHTTPClient(scfg)), source.WithLogger(e.logger))

	runID := uuid.NewString()
	logger := log.With(e.logger, "run", runID)
	p := transfer.New(client, e.store, b,
		transfer.WithLogger(logger),
		transfer.WithWorkers(o.workers),
		transfer.WithContinueOnError(o.continueOnError),
		transfer.WithDestinationCQL(e.cfg.Destination.CQL),
	)

	report, runErr := p.Run(ctx, transfer.Request{
		Layer: o.layer,
		Group: o.group,
		From:  o.from,
		To:    o.to,
		CQL:   o.cql,
	})
	if report == nil {
		return runErr
	}
	if err := e.store.RecordRun(ctx, runID, runRecords(report)); err != nil {
		level.Warn(logger).Log("op", "record_run", "error", err)
	}
	printSummary(cmd.OutOrStdout(), runID, report)
	if o.metricsFile != "" {
		m := metrics.New()
		m.Observe(report)
		if err := m.WriteFile(o.metricsFile); err != nil {
			level.Warn(logger).Log("op", "metrics", "file", o.metricsFile, "error", err)
		}
	}
	return runErr
}

// clean removes the named layer, or every configured layer when none is named.
func clean(ctx context.Context, e *env, layerArg string) error {
	var ids []layer.ID
	if layerArg != "" && layerArg != transfer.All {
		id := layer.ID(layerArg)
		if !id.Valid() {
			return syncerr.Configf("cli.clean", "layer", layerArg, "unrecognised layer")
		}
		ids = []layer.ID{id}
	} else {
		cfgs, err := e.store.Layers(ctx)
		if err != nil {
			return err
		}
		ids = layer.IDs(cfgs)
	}
	if len(ids) == 0 {
		level.Info(e.logger).Log("op", "clean", "msg", "nothing to clean")
		return nil
	}
	return e.store.Clean(ctx, ids)
}

func runRecords(report *transfer.Report) []store.RunRecord {
	out := make([]store.RunRecord, 0, len(report.Results))
	for _, r := range report.Results {
		rec := store.RunRecord{
			Layer:      r.Layer,
			Mode:       string(r.Mode),
			Features:   r.Features,
			Bytes:      r.Bytes,
			Status:     string(r.Status),
			StartedAt:  r.Started,
			FinishedAt: r.Finished,
		}
		if !r.Full && !r.From.IsZero() {
			rec.From = r.From.UTC().Format(request.DateLayout)
			rec.To = r.To.UTC().Format(request.DateLayout)
		}
		if r.Err != nil {
			rec.Error = r.Err.Error()
		}
		out = append(out, rec)
	}
	return out
}
