// Package ingest runs one iFlow document through extraction, planning and materialization.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"time"

	"iflowgraph/internal/iflow"
	"iflowgraph/internal/logging"
	"iflowgraph/internal/materialize"
	"iflowgraph/internal/store"
)

type Options struct {
	// Folder is the display name the document is filed under. It is normalized before use.
	Folder      string
	Heuristics  bool
	FolderIndex bool
	// Counts records store totals before and after the write.
	Counts bool
	// Logger overrides the pipeline logger for this document, typically to attach run
	// attributes.
	Logger *slog.Logger
}

type Result struct {
	Folder            string              `json:"folder_name"`
	FolderID          string              `json:"folder_id"`
	SourceFile        string              `json:"source_file"`
	SourceHash        string              `json:"source_hash,omitempty"`
	Fallback          bool                `json:"fallback"`
	FallbackReason    string              `json:"fallback_reason,omitempty"`
	ProtocolsRejected int                 `json:"protocols_rejected"`
	Written           *materialize.Result `json:"written,omitempty"`
	Before            *store.Counts       `json:"before,omitempty"`
	After             *store.Counts       `json:"after,omitempty"`
}

type Pipeline struct {
	extractor *iflow.Extractor
	store     store.Store
	logger    *slog.Logger
	now       func() time.Time
}

func New(extractor *iflow.Extractor, s store.Store, logger *slog.Logger) *Pipeline {
	return &Pipeline{extractor: extractor, store: s, logger: logging.OrDefault(logger), now: time.Now}
}

// Prepare extracts the document at path and plans its graph without touching the store.
func (p *Pipeline) Prepare(path string, options Options) (*iflow.Document, *materialize.Plan, error) {
	doc, err := p.extractor.ExtractFile(path)
	if err != nil {
		return nil, nil, err
	}

	plan := materialize.Build(options.Folder, doc, materialize.Options{
		Heuristics:  options.Heuristics,
		FolderIndex: options.FolderIndex,
		IngestedAt:  p.now(),
	})
	if !doc.Fallback {
		hash, err := computeHash(path)
		if err != nil {
			return nil, nil, fmt.Errorf("hashing %s: %w", path, err)
		}
		plan.Folder.Properties["source_hash"] = hash
	}
	return doc, plan, nil
}

// Run ingests the document at path. store.ErrFolderExists is returned when the folder is
// already present; nothing is written in that case.
func (p *Pipeline) Run(ctx context.Context, path string, options Options) (*Result, error) {
	logger := p.logger
	if options.Logger != nil {
		logger = options.Logger
	}

	result := &Result{SourceFile: path}
	if options.Counts {
		before, err := p.store.Counts(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting before ingest: %w", err)
		}
		result.Before = before
	}

	doc, plan, err := p.Prepare(path, options)
	if err != nil {
		return nil, err
	}
	result.Folder = plan.DisplayName
	result.FolderID = plan.FolderID
	result.Fallback = doc.Fallback
	result.FallbackReason = doc.FallbackReason
	result.ProtocolsRejected = doc.ProtocolsRejected
	result.SourceHash, _ = plan.Folder.Properties["source_hash"].(string)

	logger = logger.With("folder", plan.DisplayName, "folder_id", plan.FolderID)
	if doc.Fallback {
		logger.Warn("ingesting fallback dataset", "reason", doc.FallbackReason)
	}

	written, err := materialize.New(p.store, logger).Materialize(ctx, plan)
	result.Written = written
	if err != nil {
		return result, err
	}

	if options.Counts {
		after, err := p.store.Counts(ctx)
		if err != nil {
			return result, fmt.Errorf("counting after ingest: %w", err)
		}
		result.After = after
	}
	return result, nil
}

func computeHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
