package materialize

import (
	"context"
	"fmt"
	"log/slog"

	"iflowgraph/internal/logging"
	"iflowgraph/internal/store"
)

type Materializer struct {
	store  store.Store
	logger *slog.Logger
}

func New(s store.Store, logger *slog.Logger) *Materializer {
	return &Materializer{store: s, logger: logging.OrDefault(logger)}
}

// Result reports what a plan wrote.
type Result struct {
	DisplayName   string `json:"folder_name"`
	FolderID      string `json:"folder_id"`
	Nodes         int    `json:"nodes"`
	Relationships int    `json:"relationships"`
	Stats         Stats  `json:"stats"`
}

// Materialize writes plan through one store writer: the Folder first, then nodes, then
// edges in plan order. A folder id collision returns store.ErrFolderExists before anything
// else is written. Any later store error aborts the folder and leaves partial writes for
// a folder clear to remove.
func (m *Materializer) Materialize(ctx context.Context, plan *Plan) (*Result, error) {
	w, err := m.store.NewWriter(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening writer: %w", err)
	}
	defer w.Close(ctx)

	if err := w.CreateFolder(ctx, plan.Folder); err != nil {
		return nil, err
	}

	result := &Result{DisplayName: plan.DisplayName, FolderID: plan.FolderID, Nodes: 1, Stats: plan.Stats}
	for _, node := range plan.Nodes {
		if err := w.CreateNode(ctx, node); err != nil {
			return result, fmt.Errorf("writing %s node %s: %w", node.Label, node.ID, err)
		}
		result.Nodes++
	}
	for _, rel := range plan.Edges {
		if err := w.CreateRelationship(ctx, rel); err != nil {
			return result, fmt.Errorf("writing %s edge %s -> %s: %w", rel.Type, rel.SourceID, rel.TargetID, err)
		}
		result.Relationships++
	}

	m.logger.Info("materialized folder",
		"folder", plan.DisplayName,
		"folder_id", plan.FolderID,
		"nodes", result.Nodes,
		"relationships", result.Relationships,
		"heuristic_edges", plan.Stats.Heuristic,
		"dropped_edges", plan.Stats.Dropped,
	)
	return result, nil
}
