// Package analysis performs one analysis run over a trace/types pair.
//
// Both artifacts are validated first; a schema violation in either one fails
// the run. The derived views (relation graph, depth-limit collection,
// hotspot tree, span pairing) read disjoint inputs and are built
// concurrently, each pass owning its accumulators. The Result is immutable
// once Run returns.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tracelens/internal/diag"
	"tracelens/internal/hotspot"
	"tracelens/internal/limits"
	"tracelens/internal/observ"
	"tracelens/internal/present"
	"tracelens/internal/relgraph"
	"tracelens/internal/stats"
	"tracelens/internal/trace"
	"tracelens/internal/types"
)

// Options configures a run. The zero value is usable and classifies with
// the default policy.
type Options struct {
	Policy    *limits.Policy
	Hotspots  hotspot.Options
	DiagLimit int // findings kept; 0 keeps all

	Logger   *slog.Logger
	Progress ProgressSink
	Timer    *observ.Timer
}

func (o *Options) policy() limits.Policy {
	if o.Policy == nil {
		return limits.DefaultPolicy()
	}
	return *o.Policy
}

// Result holds the validated artifacts and every derived view of one run.
type Result struct {
	ID uuid.UUID

	Events  []trace.Event
	Catalog *types.Catalog

	Graph     *relgraph.Graph
	Limits    *limits.Collection
	Hotspots  *hotspot.Tree
	FileStats stats.Summary
	Spans     []trace.Span
	SpanStats trace.PairStats

	Diagnostics *diag.Bag
}

// Presenter returns a bounded presenter over the run's graph.
func (r *Result) Presenter(opts present.Options) (*present.Presenter, error) {
	return present.New(r.Graph, r.Catalog, opts)
}

// Run validates traceData and typesData and builds the derived views.
// Schema violations are returned as *schema.Error.
func Run(ctx context.Context, traceData, typesData []byte, opts Options) (*Result, error) {
	res := &Result{ID: uuid.New()}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	r := &runner{
		sink:  opts.Progress,
		timer: opts.Timer,
		log:   log.With("run", res.ID.String()),
	}
	for _, s := range Stages() {
		r.emit(Event{Stage: s, Status: StatusQueued})
	}
	r.log.Debug("analysis started", "trace_bytes", len(traceData), "types_bytes", len(typesData))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.stage(gctx, StageTrace, func() (string, error) {
			events, err := trace.Decode(traceData)
			if err != nil {
				return "", err
			}
			res.Events = events
			return fmt.Sprintf("%d events", len(events)), nil
		})
	})
	g.Go(func() error {
		return r.stage(gctx, StageTypes, func() (string, error) {
			catalog, err := types.Decode(typesData)
			if err != nil {
				return "", err
			}
			res.Catalog = catalog
			return fmt.Sprintf("%d types", catalog.Len()), nil
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	policy := opts.policy()
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.stage(gctx, StageGraph, func() (string, error) {
			res.Graph = relgraph.Build(res.Catalog.Types())
			return fmt.Sprintf("%d nodes", res.Graph.Len()), nil
		})
	})
	g.Go(func() error {
		return r.stage(gctx, StageLimits, func() (string, error) {
			res.Limits = limits.Classify(res.Events, policy)
			return fmt.Sprintf("%d hits", res.Limits.Len()), nil
		})
	})
	g.Go(func() error {
		return r.stage(gctx, StageHotspots, func() (string, error) {
			res.Hotspots = hotspot.Aggregate(res.Events, opts.Hotspots)
			res.FileStats = stats.Summarize(res.Hotspots.Durations())
			return fmt.Sprintf("%d files", len(res.Hotspots.Files())), nil
		})
	})
	g.Go(func() error {
		return r.stage(gctx, StageSpans, func() (string, error) {
			res.Spans, res.SpanStats = trace.Pair(res.Events)
			return fmt.Sprintf("%d spans", len(res.Spans)), nil
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	err := r.stage(ctx, StageFindings, func() (string, error) {
		res.Diagnostics = collectFindings(res, opts.DiagLimit)
		return fmt.Sprintf("%d findings", res.Diagnostics.Len()), nil
	})
	if err != nil {
		return nil, err
	}
	r.log.Debug("analysis finished",
		"events", len(res.Events),
		"types", res.Catalog.Len(),
		"limit_hits", res.Limits.Len(),
		"errors", res.Diagnostics.Count(diag.SevError),
	)
	return res, nil
}

type runner struct {
	sink  ProgressSink
	timer *observ.Timer
	log   *slog.Logger
}

func (r *runner) emit(evt Event) {
	if r.sink != nil {
		r.sink.OnEvent(evt)
	}
}

// stage runs fn as stage s, reporting progress and timing. fn returns a
// short note for the timings table.
func (r *runner) stage(ctx context.Context, s Stage, fn func() (string, error)) error {
	if err := ctx.Err(); err != nil {
		r.emit(Event{Stage: s, Status: StatusError, Err: err})
		return err
	}
	r.emit(Event{Stage: s, Status: StatusWorking})
	idx := r.timer.Begin(string(s))
	start := time.Now()

	note, err := fn()

	elapsed := time.Since(start)
	if err != nil {
		r.timer.End(idx, "failed")
		r.log.Debug("stage failed", "stage", s, "elapsed", elapsed, "err", err)
		r.emit(Event{Stage: s, Status: StatusError, Err: err, Elapsed: elapsed})
		return err
	}
	r.timer.End(idx, note)
	r.log.Debug("stage done", "stage", s, "elapsed", elapsed, "note", note)
	r.emit(Event{Stage: s, Status: StatusDone, Elapsed: elapsed})
	return nil
}
