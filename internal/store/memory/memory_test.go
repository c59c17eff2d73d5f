package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iflowgraph/internal/store"
)

func seed(t *testing.T, s *Store, folderID string) {
	t.Helper()
	ctx := context.Background()
	w, err := s.NewWriter(ctx)
	require.NoError(t, err)
	defer w.Close(ctx)

	require.NoError(t, w.CreateFolder(ctx, store.Node{Label: store.LabelFolder, ID: folderID, FolderID: folderID, Properties: map[string]any{"name": folderID}}))
	require.NoError(t, w.CreateNode(ctx, store.Node{Label: store.LabelProcess, ID: folderID + "_Process_1", FolderID: folderID, Properties: map[string]any{"name": "Integration Process"}}))
	require.NoError(t, w.CreateNode(ctx, store.Node{Label: store.LabelParticipant, ID: folderID + "_Participant_1", FolderID: folderID}))
	require.NoError(t, w.CreateRelationship(ctx, store.Relationship{Type: store.RelContains, SourceID: folderID, TargetID: folderID + "_Process_1", FolderID: folderID}))
}

func TestStore_FolderUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()
	seed(t, s, "Folder_A")

	w, err := s.NewWriter(ctx)
	require.NoError(t, err)
	err = w.CreateFolder(ctx, store.Node{Label: store.LabelFolder, ID: "Folder_A", FolderID: "Folder_A"})
	require.ErrorIs(t, err, store.ErrFolderExists)
}

func TestStore_NodeStaysInItsFolder(t *testing.T) {
	ctx := context.Background()
	s := New()
	seed(t, s, "Folder_A")

	w, err := s.NewWriter(ctx)
	require.NoError(t, err)

	// Folder_A_B + Process_1 composes to the same id as Folder_A + B_Process_1.
	require.NoError(t, w.CreateNode(ctx, store.Node{Label: store.LabelProcess, ID: "Folder_A_B_Process_1", FolderID: "Folder_A"}))
	err = w.CreateNode(ctx, store.Node{Label: store.LabelProcess, ID: "Folder_A_B_Process_1", FolderID: "Folder_A_B"})
	require.ErrorIs(t, err, store.ErrNodeConflict)

	node, ok := s.Node("Folder_A_B_Process_1")
	require.True(t, ok)
	assert.Equal(t, "Folder_A", node.FolderID)

	err = w.CreateNode(ctx, store.Node{Label: store.LabelProcess, ID: "Folder_A_Process_1", FolderID: "Folder_A", Properties: map[string]any{"name": "Renamed"}})
	require.NoError(t, err, "rewriting a node of the same folder")
	node, _ = s.Node("Folder_A_Process_1")
	assert.Equal(t, "Renamed", node.Name())
}

func TestStore_RelationshipNeedsEndpoints(t *testing.T) {
	ctx := context.Background()
	s := New()
	w, err := s.NewWriter(ctx)
	require.NoError(t, err)
	err = w.CreateRelationship(ctx, store.Relationship{Type: store.RelFlowsTo, SourceID: "x", TargetID: "y"})
	require.ErrorIs(t, err, store.ErrNodeNotFound)
}

func TestStore_Queries(t *testing.T) {
	ctx := context.Background()
	s := New()
	seed(t, s, "Folder_A")
	seed(t, s, "Folder_B")

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts.NodesByLabel[store.LabelFolder])
	assert.Equal(t, int64(6), counts.TotalNodes())
	assert.Equal(t, int64(2), counts.TotalRelationships())

	folders, err := s.ListFolders(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, "Folder_A", folders[0].ID)

	graph, err := s.FolderGraph(ctx, "Folder_B")
	require.NoError(t, err)
	require.NotNil(t, graph.Folder)
	assert.Len(t, graph.Nodes, 2)
	assert.Len(t, graph.Relationships, 1)

	isolated, err := s.IsolatedNodes(ctx)
	require.NoError(t, err)
	assert.Len(t, isolated, 2)
	assert.Equal(t, store.LabelParticipant, isolated[0].Label)

	cross, err := s.ListCrossFolderRelationships(ctx)
	require.NoError(t, err)
	assert.Empty(t, cross)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := New()
	seed(t, s, "Folder_A")
	seed(t, s, "Folder_B")

	deleted, err := s.DeleteFolder(ctx, "Folder_A")
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.Len(t, s.Relationships(), 1)
	_, ok := s.Node("Folder_A_Process_1")
	assert.False(t, ok)

	// The folder id is free again.
	seed(t, s, "Folder_A")

	deleted, err = s.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), deleted)
	assert.Empty(t, s.Relationships())
}
