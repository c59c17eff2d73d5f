// Package memory is an in-process graph store for tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"iflowgraph/internal/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	mu    sync.Mutex
	nodes map[string]store.Node
	order []string
	rels  []store.Relationship
}

func New() *Store {
	return &Store{nodes: make(map[string]store.Node)}
}

func (s *Store) Close(ctx context.Context) error { return nil }

func (s *Store) EnsureSchema(ctx context.Context) error { return nil }

func (s *Store) NewWriter(ctx context.Context) (store.Writer, error) {
	return &writer{s: s}, nil
}

type writer struct {
	s *Store
}

func (w *writer) CreateFolder(ctx context.Context, folder store.Node) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()

	if _, ok := w.s.nodes[folder.ID]; ok {
		return fmt.Errorf("creating folder %s: %w", folder.ID, store.ErrFolderExists)
	}
	w.s.put(folder)
	return nil
}

func (w *writer) CreateNode(ctx context.Context, node store.Node) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()

	if existing, ok := w.s.nodes[node.ID]; ok && existing.FolderID != node.FolderID {
		return fmt.Errorf("creating node %s in %s: held by %s: %w", node.ID, node.FolderID, existing.FolderID, store.ErrNodeConflict)
	}
	w.s.put(node)
	return nil
}

func (w *writer) CreateRelationship(ctx context.Context, rel store.Relationship) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()

	for _, id := range []string{rel.SourceID, rel.TargetID} {
		if _, ok := w.s.nodes[id]; !ok {
			return fmt.Errorf("creating %s relationship: %s: %w", rel.Type, id, store.ErrNodeNotFound)
		}
	}
	rel.Properties = maps.Clone(rel.Properties)
	w.s.rels = append(w.s.rels, rel)
	return nil
}

func (w *writer) Close(ctx context.Context) error { return nil }

// put inserts or replaces a node. Callers hold mu.
func (s *Store) put(node store.Node) {
	node.Properties = maps.Clone(node.Properties)
	if _, ok := s.nodes[node.ID]; !ok {
		s.order = append(s.order, node.ID)
	}
	s.nodes[node.ID] = node
}

func (s *Store) Counts(ctx context.Context) (*store.Counts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := &store.Counts{
		NodesByLabel:        make(map[string]int64),
		RelationshipsByType: make(map[string]int64),
	}
	for _, node := range s.nodes {
		counts.NodesByLabel[node.Label]++
	}
	for _, rel := range s.rels {
		counts.RelationshipsByType[rel.Type]++
	}
	return counts, nil
}

func (s *Store) ListFolders(ctx context.Context) ([]store.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var folders []store.Node
	for _, id := range s.order {
		if node := s.nodes[id]; node.Label == store.LabelFolder {
			folders = append(folders, node)
		}
	}
	sortByID(folders)
	return folders, nil
}

func (s *Store) FolderGraph(ctx context.Context, folderID string) (*store.Subgraph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	graph := &store.Subgraph{}
	for _, id := range s.order {
		node := s.nodes[id]
		if node.FolderID != folderID {
			continue
		}
		if node.Label == store.LabelFolder {
			folder := node
			graph.Folder = &folder
			continue
		}
		graph.Nodes = append(graph.Nodes, node)
	}
	for _, rel := range s.rels {
		if rel.FolderID == folderID {
			graph.Relationships = append(graph.Relationships, rel)
		}
	}
	return graph, nil
}

func (s *Store) IsolatedNodes(ctx context.Context) ([]store.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	degree := make(map[string]int)
	for _, rel := range s.rels {
		degree[rel.SourceID]++
		degree[rel.TargetID]++
	}
	var isolated []store.Node
	for _, id := range s.order {
		if degree[id] == 0 {
			isolated = append(isolated, s.nodes[id])
		}
	}
	return isolated, nil
}

func (s *Store) ListCrossFolderRelationships(ctx context.Context) ([]store.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []store.Relationship
	for _, rel := range s.rels {
		if s.nodes[rel.SourceID].FolderID != s.nodes[rel.TargetID].FolderID {
			out = append(out, rel)
		}
	}
	return out, nil
}

// ListDuplicateNodeIDs is always empty: nodes are keyed by id.
func (s *Store) ListDuplicateNodeIDs(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (s *Store) DeleteFolder(ctx context.Context, folderID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteWhere(func(node store.Node) bool { return node.FolderID == folderID }), nil
}

func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteWhere(func(store.Node) bool { return true }), nil
}

// deleteWhere detaches and removes matching nodes. Callers hold mu.
func (s *Store) deleteWhere(match func(store.Node) bool) int64 {
	var deleted int64
	order := s.order[:0]
	for _, id := range s.order {
		if match(s.nodes[id]) {
			delete(s.nodes, id)
			deleted++
			continue
		}
		order = append(order, id)
	}
	s.order = order

	rels := s.rels[:0]
	for _, rel := range s.rels {
		_, src := s.nodes[rel.SourceID]
		_, dst := s.nodes[rel.TargetID]
		if src && dst {
			rels = append(rels, rel)
		}
	}
	s.rels = rels
	return deleted
}

// Relationships returns a copy of every stored relationship in creation order.
func (s *Store) Relationships() []store.Relationship {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]store.Relationship(nil), s.rels...)
}

// Node returns the node with the given id.
func (s *Store) Node(id string) (store.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	return node, ok
}

func sortByID(nodes []store.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
}
