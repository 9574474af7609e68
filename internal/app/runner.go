// Package app runs one digest cycle: gate, load, analyze, assemble, write, notify.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deusflow/trenddigest/internal/digest"
	"github.com/deusflow/trenddigest/internal/metrics"
	"github.com/deusflow/trenddigest/internal/news"
	"github.com/deusflow/trenddigest/internal/source"
)

// Skip reasons reported in Result and metrics.
const (
	SkipOutsideWindow = "outside_window"
	SkipDuplicate     = "duplicate"
	SkipNoItems       = "no_items"
)

// Runner wires the pipeline. Notifier is optional.
type Runner struct {
	Loader    source.Loader
	Assembler *digest.Assembler
	Writer    DigestWriter
	Notifier  Notifier
	Logger    *slog.Logger
	Now       func() time.Time
	// Dedupe skips a (date, type) pair already produced by this process.
	Dedupe bool

	mu   sync.Mutex
	done map[string]struct{}
}

// RunOptions adjusts a single run.
type RunOptions struct {
	// Type forces a digest type and bypasses the schedule gate.
	Type digest.Type
	// DryRun prints the digest to Output instead of writing and notifying.
	DryRun bool
	Output io.Writer
}

// Result describes what a run did.
type Result struct {
	RunID   string
	Type    digest.Type
	Skipped bool
	Reason  string
	Digest  *digest.Digest
}

// Run performs one cycle. Skips are not errors.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.NewString()}
	log := r.logger().With("run_id", res.RunID)
	metrics.Global.IncrementRunsStarted()

	now := r.now()
	typ := opts.Type
	if typ == "" {
		t, ok := digest.TypeAt(now)
		if !ok {
			log.Info("not a scheduled digest time, skipping", "beijing_time", now.In(digest.Beijing).Format("15:04"))
			return r.skip(res, SkipOutsideWindow), nil
		}
		typ = t
	}
	res.Type = typ

	key := now.In(digest.Beijing).Format(time.DateOnly) + "/" + string(typ)
	if r.Dedupe && !opts.DryRun && r.seen(key) {
		log.Info("digest already generated", "type", typ, "key", key)
		return r.skip(res, SkipDuplicate), nil
	}

	log.Info("generating digest", "type", typ)

	pool, err := r.Loader.Load(ctx)
	if err != nil {
		return r.fail(res, log, fmt.Errorf("load snapshots: %w", err))
	}

	an := news.Analyze(pool)
	cross := an.CrossPlatformCount()
	metrics.Global.AddClusters(len(an.Clusters), cross)
	if an.Capped {
		log.Warn("cluster cap reached", "max", news.MaxClusterItems, "items", an.TotalItems)
	}
	log.Info("stories clustered", "items", an.TotalItems, "clusters", len(an.Clusters), "cross_platform", cross)

	asm := *r.Assembler
	asm.Logger = log
	if asm.Now == nil {
		asm.Now = r.now
	}
	d, err := asm.Assemble(ctx, typ, an)
	if errors.Is(err, digest.ErrNoItems) {
		log.Warn("no data available for digest")
		return r.skip(res, SkipNoItems), nil
	}
	if err != nil {
		return r.fail(res, log, err)
	}
	res.Digest = d

	if opts.DryRun {
		out := opts.Output
		if out == nil {
			out = io.Discard
		}
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return r.fail(res, log, err)
		}
		r.finish(start, typ)
		return res, nil
	}

	if err := r.Writer.Write(ctx, d); err != nil {
		return r.fail(res, log, err)
	}
	if r.Dedupe {
		r.markDone(key)
	}

	if r.Notifier != nil {
		if err := r.Notifier.Notify(ctx, d); err != nil {
			log.Warn("notification failed", "error", err)
		}
	}

	r.finish(start, typ)
	log.Info("digest generated", "type", typ, "top_stories", len(d.TopStories), "duration", time.Since(start))
	return res, nil
}

func (r *Runner) skip(res *Result, reason string) *Result {
	res.Skipped = true
	res.Reason = reason
	metrics.Global.IncrementRunsSkipped(reason)
	return res
}

func (r *Runner) fail(res *Result, log *slog.Logger, err error) (*Result, error) {
	log.Error("digest run failed", "error", err)
	metrics.Global.SetError(err.Error())
	return res, err
}

func (r *Runner) finish(start time.Time, typ digest.Type) {
	metrics.Global.RecordProcessingTime(time.Since(start))
	metrics.Global.SetLastRun(string(typ))
}

func (r *Runner) seen(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.done[key]
	return ok
}

func (r *Runner) markDone(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == nil {
		r.done = make(map[string]struct{})
	}
	r.done[key] = struct{}{}
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
