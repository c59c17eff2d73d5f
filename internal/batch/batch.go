// Package batch discovers iFlow projects under a directory and ingests each into its own
// folder.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"iflowgraph/internal/identity"
	"iflowgraph/internal/ingest"
	"iflowgraph/internal/logging"
	"iflowgraph/internal/metrics"
	"iflowgraph/internal/store"
)

type Options struct {
	DryRun bool
	// Workers bounds concurrent documents. 1 processes strictly in discovery order.
	Workers     int
	ClearFirst  bool
	Heuristics  bool
	FolderIndex bool
}

// Failure is a document that could not be ingested.
type Failure struct {
	Folder string
	Err    error
}

func (f Failure) MarshalJSON() ([]byte, error) {
	var msg string
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return json.Marshal(struct {
		Folder string `json:"folder"`
		Error  string `json:"error"`
	}{Folder: f.Folder, Error: msg})
}

type Summary struct {
	RunID      string           `json:"run_id"`
	DryRun     bool             `json:"dry_run"`
	Discovered []Document       `json:"discovered"`
	Cleared    int64            `json:"cleared"`
	Processed  []string         `json:"processed_folders"`
	Failed     []Failure        `json:"failed_folders"`
	Results    []*ingest.Result `json:"results,omitempty"`
}

// FailedFolders returns the names of failed folders in discovery order.
func (s *Summary) FailedFolders() []string {
	names := make([]string, len(s.Failed))
	for i, f := range s.Failed {
		names[i] = f.Folder
	}
	return names
}

type Runner struct {
	pipeline *ingest.Pipeline
	store    store.Store
	metrics  *metrics.Batch
	logger   *slog.Logger
	locks    keyedMutex
}

// New builds a runner. m may be nil.
func New(pipeline *ingest.Pipeline, s store.Store, m *metrics.Batch, logger *slog.Logger) *Runner {
	return &Runner{pipeline: pipeline, store: s, metrics: m, logger: logging.OrDefault(logger)}
}

type outcome struct {
	result *ingest.Result
	err    error
}

// Run ingests docs. Every document ends in exactly one of Summary.Processed and
// Summary.Failed; a failed document never stops the others. The returned error is
// non-nil only for a failed clear or a cancelled context.
func (r *Runner) Run(ctx context.Context, docs []Document, options Options) (*Summary, error) {
	summary := &Summary{
		RunID:      uuid.New().String(),
		DryRun:     options.DryRun,
		Discovered: docs,
		Processed:  []string{},
		Failed:     []Failure{},
	}
	logger := r.logger.With("run_id", summary.RunID)

	if options.DryRun {
		for i, doc := range docs {
			logger.Info("discovered iflow", "index", i+1, "folder", doc.Folder, "path", doc.Path)
		}
		logger.Info("dry run complete", "discovered", len(docs))
		return summary, nil
	}

	if options.ClearFirst {
		deleted, err := r.store.DeleteAll(ctx)
		if err != nil {
			return summary, fmt.Errorf("clearing store: %w", err)
		}
		summary.Cleared = deleted
		logger.Info("cleared store", "deleted_nodes", deleted)
	}

	workers := options.Workers
	if workers < 1 {
		workers = 1
	}

	outcomes := make([]outcome, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, doc := range docs {
		g.Go(func() error {
			outcomes[i] = r.runOne(gctx, logger, doc, options)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}

	for i, doc := range docs {
		o := outcomes[i]
		if o.err != nil {
			summary.Failed = append(summary.Failed, Failure{Folder: identity.NormalizeDisplayName(doc.Folder), Err: o.err})
			continue
		}
		summary.Processed = append(summary.Processed, o.result.Folder)
		summary.Results = append(summary.Results, o.result)
	}

	if r.metrics != nil {
		r.metrics.MarkRunFinished(time.Now())
	}
	logger.Info("batch complete",
		"discovered", len(docs),
		"processed", len(summary.Processed),
		"failed", len(summary.Failed),
	)
	return summary, ctx.Err()
}

func (r *Runner) runOne(ctx context.Context, logger *slog.Logger, doc Document, options Options) outcome {
	if err := ctx.Err(); err != nil {
		return outcome{err: err}
	}

	// Folders whose ids collide are serialized so the store sees one create at a time.
	unlock := r.locks.lock(identity.FolderID(identity.NormalizeDisplayName(doc.Folder)))
	defer unlock()

	start := time.Now()
	result, err := r.pipeline.Run(ctx, doc.Path, ingest.Options{
		Folder:      doc.Folder,
		Heuristics:  options.Heuristics,
		FolderIndex: options.FolderIndex,
		Logger:      logger,
	})
	elapsed := time.Since(start)

	if err != nil {
		logger.Error("failed to ingest folder", "folder", doc.Folder, "path", doc.Path, "error", err)
		r.observe(metrics.OutcomeFailed, elapsed, nil)
		return outcome{err: err}
	}

	kind := metrics.OutcomeProcessed
	if result.Fallback {
		kind = metrics.OutcomeFallback
	}
	r.observe(kind, elapsed, result)
	return outcome{result: result}
}

func (r *Runner) observe(kind string, elapsed time.Duration, result *ingest.Result) {
	if r.metrics == nil {
		return
	}
	var nodes, rels int
	if result != nil && result.Written != nil {
		nodes, rels = result.Written.Nodes, result.Written.Relationships
	}
	r.metrics.ObserveDocument(kind, elapsed, nodes, rels)
}

// keyedMutex hands out one mutex per key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
