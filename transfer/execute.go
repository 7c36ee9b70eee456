package transfer

import (
	"context"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"
)

// execute runs tasks on the worker pool and returns their results in task
// order. Unless continueOnError is set, tasks not yet started when a layer
// fails are reported as not run.
func (p *Processor) execute(ctx context.Context, tasks []Task) []Result {
	results := make([]Result, len(tasks))
	var failed atomic.Bool

	g := new(errgroup.Group)
	g.SetLimit(p.workers)
	for i := range tasks {
		g.Go(func() error {
			if failed.Load() && !p.continueOnError {
				results[i] = Result{Task: tasks[i], Status: StatusNotRun}
				return nil
			}
			results[i] = p.runTask(ctx, tasks[i])
			if results[i].Status == StatusFailed {
				failed.Store(true)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (p *Processor) runTask(ctx context.Context, t Task) (res Result) {
	res = Result{Task: t, Started: p.now()}
	defer func() { res.Finished = p.now() }()

	logger := p.logger
	if t.Noop {
		level.Info(logger).Log("op", "transfer", "layer", t.Layer, "mode", t.Mode,
			"msg", "no update required", "from", day(t.From), "to", day(t.To))
		res.Status = StatusNoop
		return res
	}
	fail := func(err error) Result {
		level.Error(logger).Log("op", "transfer", "layer", t.Layer, "mode", t.Mode, "error", err)
		res.Status, res.Err = StatusFailed, err
		return res
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	mark := t.To
	if t.Full {
		// The watermark of a full replicate is the destination clock before
		// the read starts.
		now, err := p.dst.Current(ctx, 0)
		if err != nil {
			return fail(err)
		}
		mark = now
		p.probeCount(ctx, t)
	}

	payload, err := p.src.Read(ctx, t.URI)
	if err != nil {
		return fail(err)
	}
	n, err := p.dst.Write(ctx, payload, t.Table)
	if err != nil {
		return fail(err)
	}
	if err := p.marks.SetLastModified(ctx, t.Layer, mark); err != nil {
		return fail(err)
	}
	res.Status, res.Features, res.Bytes, res.Watermark = StatusOK, n, payload.Size(), mark
	level.Info(logger).Log("op", "transfer", "layer", t.Layer, "mode", t.Mode, "full", t.Full,
		"features", n, "size", humanize.Bytes(uint64(payload.Size())), "watermark", mark.UTC().Format("2006-01-02T15:04:05Z07:00"))
	return res
}

// probeCount logs the source feature count ahead of a full replicate. A
// failed probe is not fatal.
func (p *Processor) probeCount(ctx context.Context, t Task) {
	c, ok := p.src.(Counter)
	if !ok || t.CountURI == "" {
		return
	}
	n, err := c.Count(ctx, t.CountURI)
	if err != nil {
		level.Warn(p.logger).Log("op", "feature_count", "layer", t.Layer, "error", err)
		return
	}
	level.Info(p.logger).Log("op", "feature_count", "layer", t.Layer, "features", humanize.Comma(n))
}
