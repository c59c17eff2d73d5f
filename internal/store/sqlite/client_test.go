package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iflowgraph/internal/store"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()
	client, err := New(ctx, "sqlite://"+filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close(ctx) })
	require.NoError(t, client.EnsureSchema(ctx))
	require.NoError(t, client.EnsureSchema(ctx), "schema is idempotent")
	return client
}

func writeFolder(t *testing.T, client *Client, folderID string) {
	t.Helper()
	ctx := context.Background()
	w, err := client.NewWriter(ctx)
	require.NoError(t, err)
	defer w.Close(ctx)

	require.NoError(t, w.CreateFolder(ctx, store.Node{Label: store.LabelFolder, ID: folderID, FolderID: folderID, Properties: map[string]any{"name": "Orders", "fallback": false}}))
	process := store.Node{Label: store.LabelProcess, ID: folderID + "_Process_1", FolderID: folderID, Properties: map[string]any{"name": "Integration Process"}}
	require.NoError(t, w.CreateNode(ctx, process))
	require.NoError(t, w.CreateNode(ctx, store.Node{Label: store.LabelParticipant, ID: folderID + "_Participant_1", FolderID: folderID}))
	require.NoError(t, w.CreateRelationship(ctx, store.Relationship{
		Type: store.RelContains, SourceID: folderID, TargetID: process.ID, FolderID: folderID,
		Properties: map[string]any{"note": "x"},
	}))
}

func TestInMemoryDatabase(t *testing.T) {
	ctx := context.Background()
	client, err := New(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close(ctx) })
	require.NoError(t, client.EnsureSchema(ctx))

	writeFolder(t, client, "Folder_A")
	writeFolder(t, client, "Folder_B")

	counts, err := client.Counts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 6, counts.TotalNodes())
	assert.EqualValues(t, 2, counts.TotalRelationships())

	folders, err := client.ListFolders(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 2)

	sub, err := client.FolderGraph(ctx, "Folder_A")
	require.NoError(t, err)
	assert.Len(t, sub.Nodes, 2)
}

func TestWriter(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)
	writeFolder(t, client, "Folder_A")

	w, err := client.NewWriter(ctx)
	require.NoError(t, err)
	defer w.Close(ctx)

	t.Run("folder id is unique", func(t *testing.T) {
		err := w.CreateFolder(ctx, store.Node{Label: store.LabelFolder, ID: "Folder_A"})
		require.ErrorIs(t, err, store.ErrFolderExists)
	})

	t.Run("node never moves between folders", func(t *testing.T) {
		err := w.CreateNode(ctx, store.Node{Label: store.LabelProcess, ID: "Folder_A_Process_1", FolderID: "Folder_A_Process"})
		require.ErrorIs(t, err, store.ErrNodeConflict)

		graph, err := client.FolderGraph(ctx, "Folder_A")
		require.NoError(t, err)
		assert.Len(t, graph.Nodes, 2)
	})

	t.Run("node of the same folder is updated", func(t *testing.T) {
		err := w.CreateNode(ctx, store.Node{Label: store.LabelProcess, ID: "Folder_A_Process_1", FolderID: "Folder_A", Properties: map[string]any{"name": "Renamed"}})
		require.NoError(t, err)
	})

	t.Run("relationship endpoints must exist", func(t *testing.T) {
		err := w.CreateRelationship(ctx, store.Relationship{Type: store.RelFlowsTo, SourceID: "Folder_A_Process_1", TargetID: "missing", FolderID: "Folder_A"})
		require.ErrorIs(t, err, store.ErrNodeNotFound)
	})
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)
	writeFolder(t, client, "Folder_A")
	writeFolder(t, client, "Folder_B")

	counts, err := client.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts.NodesByLabel[store.LabelFolder])
	assert.Equal(t, int64(6), counts.TotalNodes())
	assert.Equal(t, int64(2), counts.RelationshipsByType[store.RelContains])

	folders, err := client.ListFolders(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, "Orders", folders[1].Name())
	assert.Equal(t, false, folders[1].Properties["fallback"])

	graph, err := client.FolderGraph(ctx, "Folder_B")
	require.NoError(t, err)
	require.NotNil(t, graph.Folder)
	assert.Len(t, graph.Nodes, 2)
	require.Len(t, graph.Relationships, 1)
	rel := graph.Relationships[0]
	assert.Equal(t, store.LabelFolder, rel.SourceLabel)
	assert.Equal(t, store.LabelProcess, rel.TargetLabel)
	assert.Equal(t, "x", rel.Properties["note"])

	isolated, err := client.IsolatedNodes(ctx)
	require.NoError(t, err)
	require.Len(t, isolated, 2)
	assert.Equal(t, "Folder_A_Participant_1", isolated[0].ID)

	cross, err := client.ListCrossFolderRelationships(ctx)
	require.NoError(t, err)
	assert.Empty(t, cross)

	dupes, err := client.ListDuplicateNodeIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, dupes)

	rows, err := client.RunSQL(ctx, "SELECT id FROM nodes WHERE label = ? ORDER BY id", store.LabelFolder)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Folder_A", rows[0]["id"])
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)
	writeFolder(t, client, "Folder_A")
	writeFolder(t, client, "Folder_B")

	deleted, err := client.DeleteFolder(ctx, "Folder_A")
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	counts, err := client.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.TotalRelationships())

	deleted, err = client.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}
