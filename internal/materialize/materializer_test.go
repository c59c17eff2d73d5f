package materialize

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iflowgraph/internal/iflow"
	"iflowgraph/internal/store"
	"iflowgraph/internal/store/memory"
)

func TestMaterialize(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	plan := Build("Orders", ordersDoc(t), Options{Heuristics: true})

	result, err := New(s, nil).Materialize(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, "Folder_Orders", result.FolderID)
	assert.Equal(t, len(plan.Nodes)+1, result.Nodes)
	assert.Equal(t, len(plan.Edges), result.Relationships)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, result.Nodes, counts.TotalNodes())
	assert.EqualValues(t, result.Relationships, counts.TotalRelationships())
	assert.EqualValues(t, 1, counts.NodesByLabel[store.LabelFolder])
	assert.EqualValues(t, 6, counts.RelationshipsByType[store.RelFlowsTo])

	isolated, err := s.IsolatedNodes(ctx)
	require.NoError(t, err)
	assert.Empty(t, isolated)
}

func TestMaterialize_DuplicateFolder(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	m := New(s, nil)

	_, err := m.Materialize(ctx, Build("Orders", iflow.Minimal(), Options{}))
	require.NoError(t, err)
	before, err := s.Counts(ctx)
	require.NoError(t, err)

	// "Orders" and "Orders_" normalize to the same folder.
	_, err = m.Materialize(ctx, Build("Orders_", ordersDoc(t), Options{}))
	require.ErrorIs(t, err, store.ErrFolderExists)

	after, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestMaterialize_FoldersStayIsolated(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	m := New(s, nil)

	for _, name := range []string{"Alpha", "Beta"} {
		_, err := m.Materialize(ctx, Build(name, iflow.Minimal(), Options{}))
		require.NoError(t, err)
	}

	cross, err := s.ListCrossFolderRelationships(ctx)
	require.NoError(t, err)
	assert.Empty(t, cross)

	dupes, err := s.ListDuplicateNodeIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, dupes)

	folders, err := s.ListFolders(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, "Folder_Alpha", folders[0].ID)

	graph, err := s.FolderGraph(ctx, "Folder_Beta")
	require.NoError(t, err)
	assert.Len(t, graph.Nodes, 5)
	for _, n := range graph.Nodes {
		assert.Equal(t, "Folder_Beta", n.FolderID)
	}
}

type failingStore struct {
	*memory.Store
	failOn string
}

type failingWriter struct {
	store.Writer
	failOn string
}

var errBackend = errors.New("backend down")

func (s *failingStore) NewWriter(ctx context.Context) (store.Writer, error) {
	if s.failOn == "open" {
		return nil, errBackend
	}
	w, err := s.Store.NewWriter(ctx)
	if err != nil {
		return nil, err
	}
	return &failingWriter{Writer: w, failOn: s.failOn}, nil
}

func (w *failingWriter) CreateRelationship(ctx context.Context, rel store.Relationship) error {
	if w.failOn == "relationship" {
		return errBackend
	}
	return w.Writer.CreateRelationship(ctx, rel)
}

func TestMaterialize_StoreErrors(t *testing.T) {
	ctx := context.Background()
	plan := Build("Broken", iflow.Minimal(), Options{})

	t.Run("writer unavailable", func(t *testing.T) {
		s := &failingStore{Store: memory.New(), failOn: "open"}
		_, err := New(s, nil).Materialize(ctx, plan)
		require.ErrorIs(t, err, errBackend)
	})

	t.Run("relationship write fails", func(t *testing.T) {
		s := &failingStore{Store: memory.New(), failOn: "relationship"}
		result, err := New(s, nil).Materialize(ctx, plan)
		require.ErrorIs(t, err, errBackend)
		require.NotNil(t, result)
		assert.Equal(t, 6, result.Nodes)
		assert.Zero(t, result.Relationships)
	})
}
