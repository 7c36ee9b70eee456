package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/viant/wfsync/feature"
	"github.com/viant/wfsync/filter"
	"github.com/viant/wfsync/layer"
	"github.com/viant/wfsync/request"
	"github.com/viant/wfsync/syncerr"
	"github.com/viant/wfsync/watermark"
)

// Source reads from the WFS server.
type Source interface {
	Read(ctx context.Context, uri string) (*feature.Payload, error)
	LayerNames(ctx context.Context, capabilitiesURI string) ([]layer.ID, error)
}

// Counter is implemented by sources able to answer resultType=hits queries.
type Counter interface {
	Count(ctx context.Context, hitsURI string) (int64, error)
}

// Destination stores layers and their watermarks.
type Destination interface {
	Write(ctx context.Context, p *feature.Payload, table string) (int, error)
	DestinationURI(ctx context.Context, id layer.ID) (string, error)
	Current(ctx context.Context, offset time.Duration) (time.Time, error)
	LastModified(ctx context.Context, id layer.ID) (time.Time, bool, error)
	SetLastModified(ctx context.Context, id layer.ID, ts time.Time) error
	Layers(ctx context.Context) ([]layer.Config, error)
}

// Request is one invocation of the processor.
type Request struct {
	// Layer is a layer id, ALL or empty for all layers.
	Layer string
	// Group is a comma separated list of layer groups.
	Group string
	// From and To are yyyy-mm-dd, ALL or empty.
	From, To string
	// CQL overrides every configured filter.
	CQL string
}

// Processor plans and runs transfers.
type Processor struct {
	src             Source
	dst             Destination
	builder         request.Builder
	marks           *watermark.Guard
	logger          log.Logger
	workers         int
	continueOnError bool
	destinationCQL  string
	now             func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// WithWorkers bounds how many layers transfer concurrently. Values below one
// are treated as one.
func WithWorkers(n int) Option {
	return func(p *Processor) { p.workers = n }
}

// WithContinueOnError keeps starting layers after one has failed.
func WithContinueOnError(v bool) Option {
	return func(p *Processor) { p.continueOnError = v }
}

// WithDestinationCQL sets the destination-level filter.
func WithDestinationCQL(cql string) Option {
	return func(p *Processor) { p.destinationCQL = cql }
}

// WithNow is useful for tests; it stamps report times.
func WithNow(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// New returns a Processor reading from src, writing to dst and building
// queries with b.
func New(src Source, dst Destination, b request.Builder, opts ...Option) *Processor {
	p := &Processor{
		src:     src,
		dst:     dst,
		builder: b,
		marks:   watermark.NewGuard(dst),
		logger:  log.NewNopLogger(),
		workers: 1,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.workers < 1 {
		p.workers = 1
	}
	p.logger = log.With(p.logger, "component", "transfer")
	return p
}

// Run plans req and executes the plan. The returned error joins every layer
// failure; the report is returned whenever planning succeeded.
func (p *Processor) Run(ctx context.Context, req Request) (*Report, error) {
	started := p.now()
	tasks, err := p.Plan(ctx, req)
	if err != nil {
		level.Error(p.logger).Log("op", "run", "event", "plan_failed", "error", err)
		return nil, err
	}
	results := p.execute(ctx, tasks)
	report := &Report{Results: results, Started: started, Finished: p.now()}

	var errs []error
	for _, r := range report.Failed() {
		errs = append(errs, fmt.Errorf("layer %s: %w", r.Layer, r.Err))
	}
	level.Info(p.logger).Log("op", "run", "event", "complete", "layers", len(results),
		"failed", len(errs), "duration", report.Finished.Sub(started))
	return report, errors.Join(errs...)
}

// Plan resolves req into one task per layer without reading any features.
func (p *Processor) Plan(ctx context.Context, req Request) ([]Task, error) {
	dr, err := ParseDateRange(req.From, req.To)
	if err != nil {
		return nil, err
	}
	sel, err := parseSelector(req.Layer, req.Group)
	if err != nil {
		return nil, err
	}
	cfgs, err := p.dst.Layers(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := p.resolveLayers(ctx, sel, cfgs)
	if err != nil {
		return nil, err
	}
	level.Info(p.logger).Log("op", "plan", "layers", len(ids), "from", dr.From, "to", dr.To)

	tasks := make([]Task, 0, len(ids))
	for _, id := range ids {
		t, err := p.planLayer(ctx, id, dr, req.CQL, cfgs)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (p *Processor) resolveLayers(ctx context.Context, sel selector, cfgs []layer.Config) ([]layer.ID, error) {
	switch sel.kind {
	case selectLayer:
		return []layer.ID{sel.layer}, nil
	case selectGroup:
		var ids []layer.ID
		for _, c := range cfgs {
			if c.InGroup(sel.groups) {
				ids = append(ids, c.ID)
			}
		}
		if len(ids) == 0 {
			return nil, syncerr.Configf("transfer.select", "group", fmt.Sprint(sel.groups), "no configured layer is in group")
		}
		layer.Sort(ids)
		return ids, nil
	default:
		advertised, err := p.src.LayerNames(ctx, p.builder.CapabilitiesURI())
		if err != nil {
			return nil, err
		}
		ids := layer.Intersect(advertised, layer.IDs(cfgs))
		level.Debug(p.logger).Log("op", "reconcile", "advertised", len(advertised), "configured", len(cfgs), "selected", len(ids))
		return ids, nil
	}
}

func (p *Processor) planLayer(ctx context.Context, id layer.ID, dr DateRange, cmdCQL string, cfgs []layer.Config) (Task, error) {
	cfg, _ := layer.Lookup(cfgs, id)
	cql, _ := filter.Resolve(cmdCQL, p.destinationCQL, cfg.CQL)
	t := Task{Layer: id, CQL: cql}

	switch {
	case dr.Full():
		t.Mode, t.Full = ModeFull, true
	case dr.Defined():
		t.Mode, t.From, t.To = ModeIncremental, dr.From.Date, dr.To.Date
	default:
		t.Mode = ModeAuto
		if err := p.resolveAuto(ctx, &t, dr); err != nil {
			return Task{}, err
		}
	}

	if !t.Full && !after(t.To, t.From) {
		t.Noop = true
		return t, nil
	}

	table, err := p.dst.DestinationURI(ctx, id)
	if err != nil {
		return Task{}, err
	}
	t.Table = table
	if t.Full {
		if t.URI, err = p.builder.SourceURI(id, cql); err != nil {
			return Task{}, err
		}
		t.CountURI = p.builder.SourceURIFeatureCount(id)
		return t, nil
	}
	if t.URI, err = p.builder.SourceURIIncremental(id, t.From, t.To, cql); err != nil {
		return Task{}, err
	}
	return t, nil
}

// resolveAuto fills in the absent bounds of an auto task from the watermark
// and the destination clock.
func (p *Processor) resolveAuto(ctx context.Context, t *Task, dr DateRange) error {
	if dr.From.Kind == BoundDate {
		t.From = dr.From.Date
	} else {
		mark, ok, err := p.dst.LastModified(ctx, t.Layer)
		if err != nil {
			return err
		}
		if !ok {
			level.Info(p.logger).Log("op", "plan", "layer", t.Layer, "msg", "no watermark, replicating in full")
			t.Full = true
			return nil
		}
		t.From = mark
	}
	if dr.To.Kind == BoundDate {
		t.To = dr.To.Date
		return nil
	}
	now, err := p.dst.Current(ctx, 0)
	if err != nil {
		return err
	}
	t.To = now
	return nil
}
