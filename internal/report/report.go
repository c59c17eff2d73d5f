// Package report summarizes and exports the stored graph.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"iflowgraph/internal/identity"
	"iflowgraph/internal/store"
)

type Statistics struct {
	TotalNodes          int64            `json:"total_nodes"`
	TotalRelationships  int64            `json:"total_relationships"`
	NodesByType         map[string]int64 `json:"nodes_by_type"`
	RelationshipsByType map[string]int64 `json:"relationships_by_type"`
	TotalFolders        int64            `json:"total_folders"`
	ProcessedCount      int              `json:"processed_count"`
	FailedCount         int              `json:"failed_count"`
}

// Collect reads grouped counts from s. processed and failed are the folder names of the
// current run, if any. An empty store yields zero counts.
func Collect(ctx context.Context, s store.Store, processed, failed []string) (*Statistics, error) {
	counts, err := s.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting statistics: %w", err)
	}

	stats := &Statistics{
		NodesByType:         counts.NodesByLabel,
		RelationshipsByType: counts.RelationshipsByType,
		TotalNodes:          counts.TotalNodes(),
		TotalRelationships:  counts.TotalRelationships(),
		TotalFolders:        counts.NodesByLabel[store.LabelFolder],
		ProcessedCount:      len(processed),
		FailedCount:         len(failed),
	}
	if stats.NodesByType == nil {
		stats.NodesByType = map[string]int64{}
	}
	if stats.RelationshipsByType == nil {
		stats.RelationshipsByType = map[string]int64{}
	}
	return stats, nil
}

type FolderSnapshot struct {
	FolderName string           `json:"folder_name"`
	FolderID   string           `json:"folder_id"`
	Nodes      []map[string]any `json:"nodes"`
}

type Export struct {
	Statistics       *Statistics      `json:"statistics"`
	ProcessedFolders []string         `json:"processed_folders"`
	FailedFolders    []string         `json:"failed_folders"`
	Folders          []FolderSnapshot `json:"folders"`
}

// BuildExport snapshots every node the Folder CONTAINS for each processed folder. When
// processed is nil every stored folder is exported.
func BuildExport(ctx context.Context, s store.Store, processed, failed []string) (*Export, error) {
	stats, err := Collect(ctx, s, processed, failed)
	if err != nil {
		return nil, err
	}

	export := &Export{
		Statistics:       stats,
		ProcessedFolders: nonNil(processed),
		FailedFolders:    nonNil(failed),
		Folders:          []FolderSnapshot{},
	}

	type target struct{ name, id string }
	var targets []target
	if processed == nil {
		folders, err := s.ListFolders(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing folders: %w", err)
		}
		for _, folder := range folders {
			targets = append(targets, target{name: folder.Name(), id: folder.ID})
		}
	} else {
		for _, name := range processed {
			display := identity.NormalizeDisplayName(name)
			targets = append(targets, target{name: display, id: identity.FolderID(display)})
		}
	}

	for _, t := range targets {
		snapshot, ok, err := FolderContents(ctx, s, t.id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		export.Folders = append(export.Folders, FolderSnapshot{FolderName: t.name, FolderID: t.id, Nodes: snapshot})
	}
	return export, nil
}

// FolderContents returns the nodes the folder CONTAINS as flat property maps. ok is false
// when the folder does not exist.
func FolderContents(ctx context.Context, s store.Store, folderID string) ([]map[string]any, bool, error) {
	graph, err := s.FolderGraph(ctx, folderID)
	if err != nil {
		return nil, false, fmt.Errorf("reading folder %s: %w", folderID, err)
	}
	if graph.Folder == nil {
		return nil, false, nil
	}

	byID := make(map[string]store.Node, len(graph.Nodes))
	for _, node := range graph.Nodes {
		byID[node.ID] = node
	}
	nodes := []map[string]any{}
	seen := make(map[string]bool)
	for _, rel := range graph.Relationships {
		if rel.Type != store.RelContains || rel.SourceID != folderID || seen[rel.TargetID] {
			continue
		}
		node, ok := byID[rel.TargetID]
		if !ok {
			continue
		}
		seen[rel.TargetID] = true
		nodes = append(nodes, NodeView(node))
	}
	return nodes, true, nil
}

// NodeView flattens a node into its stored property form.
func NodeView(node store.Node) map[string]any {
	view := make(map[string]any, len(node.Properties)+3)
	for k, v := range node.Properties {
		view[k] = v
	}
	view["id"] = node.ID
	view["folder_id"] = node.FolderID
	view["label"] = node.Label
	return view
}

// WriteJSON writes v indented to w.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteJSONFile writes v indented to path.
func WriteJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteJSON(f, v); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// IsolatedNode describes a node without relationships.
type IsolatedNode struct {
	Name     string `json:"name"`
	ID       string `json:"id"`
	FolderID string `json:"folder_id"`
}

// IsolatedNodes groups degree-0 nodes by label.
func IsolatedNodes(ctx context.Context, s store.Store) (map[string][]IsolatedNode, error) {
	nodes, err := s.IsolatedNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing isolated nodes: %w", err)
	}
	grouped := make(map[string][]IsolatedNode)
	for _, node := range nodes {
		grouped[node.Label] = append(grouped[node.Label], IsolatedNode{Name: node.Name(), ID: node.ID, FolderID: node.FolderID})
	}
	for _, group := range grouped {
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
	}
	return grouped, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
