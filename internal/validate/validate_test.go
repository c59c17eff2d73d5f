package validate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iflowgraph/internal/iflow"
	"iflowgraph/internal/materialize"
	"iflowgraph/internal/store"
	"iflowgraph/internal/store/memory"
)

type mockStore struct {
	folders    []store.Node
	graphs     map[string]*store.Subgraph
	isolated   []store.Node
	cross      []store.Relationship
	duplicates []string
	failOn     string
}

func (m *mockStore) ListFolders(ctx context.Context) ([]store.Node, error) {
	if m.failOn == "folders" {
		return nil, errors.New("boom")
	}
	return m.folders, nil
}

func (m *mockStore) FolderGraph(ctx context.Context, folderID string) (*store.Subgraph, error) {
	if g, ok := m.graphs[folderID]; ok {
		return g, nil
	}
	return &store.Subgraph{}, nil
}

func (m *mockStore) IsolatedNodes(ctx context.Context) ([]store.Node, error) {
	return m.isolated, nil
}

func (m *mockStore) ListCrossFolderRelationships(ctx context.Context) ([]store.Relationship, error) {
	return m.cross, nil
}

func (m *mockStore) ListDuplicateNodeIDs(ctx context.Context) ([]string, error) {
	if m.failOn == "duplicates" {
		return nil, errors.New("boom")
	}
	return m.duplicates, nil
}

func codes(report *Report) []string {
	out := make([]string, len(report.Issues))
	for i, issue := range report.Issues {
		out[i] = issue.Code
	}
	return out
}

func TestRun_CleanStore(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	for _, name := range []string{"Alpha", "Beta"} {
		_, err := materialize.New(s, nil).Materialize(ctx, materialize.Build(name, iflow.Rich(), materialize.Options{Heuristics: true}))
		require.NoError(t, err)
	}

	report, err := Run(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, report.Issues)
	assert.False(t, report.HasErrors())
}

func TestRun_Issues(t *testing.T) {
	folder := store.Node{Label: store.LabelFolder, ID: "Folder_A", FolderID: "Folder_A"}
	m := &mockStore{
		folders: []store.Node{folder},
		graphs: map[string]*store.Subgraph{
			"Folder_A": {
				Folder: &folder,
				Nodes: []store.Node{
					{Label: store.LabelComponent, ID: "Folder_A_StartEvent_1", FolderID: "Folder_A"},
					{Label: store.LabelComponent, ID: "Elsewhere_1", FolderID: "Folder_A"},
				},
				Relationships: []store.Relationship{
					{Type: store.RelContains, SourceID: "Folder_A", TargetID: "Folder_A_StartEvent_1", FolderID: "Folder_A"},
					{Type: store.RelContains, SourceID: "Folder_A", TargetID: "Elsewhere_1", FolderID: "Folder_A"},
				},
			},
		},
		isolated:   []store.Node{{Label: store.LabelParticipant, ID: "Folder_B_Participant_1", FolderID: "Folder_B"}},
		cross:      []store.Relationship{{Type: store.RelFlowsTo, SourceID: "Folder_A_X", TargetID: "Folder_B_Y", FolderID: "Folder_A"}},
		duplicates: []string{"Folder_A_X"},
	}

	report, err := Run(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, []string{
		codeFolderMismatch,
		codeFolderNoProcesses,
		codeIsolatedNode,
		codeCrossFolder,
		codeDuplicateNodeID,
	}, codes(report))
	assert.True(t, report.HasErrors())
	assert.Equal(t, "Elsewhere_1", report.Issues[0].Node)
	assert.Equal(t, "Folder_B", report.Issues[2].FolderID)
}

func TestRun_UncontainedNode(t *testing.T) {
	folder := store.Node{Label: store.LabelFolder, ID: "Folder_A", FolderID: "Folder_A"}
	m := &mockStore{
		folders: []store.Node{folder},
		graphs: map[string]*store.Subgraph{
			"Folder_A": {
				Folder: &folder,
				Nodes:  []store.Node{{Label: store.LabelProcess, ID: "Folder_A_Process_1", FolderID: "Folder_A"}},
			},
		},
	}

	report, err := Run(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, []string{codeUncontainedNode}, codes(report))
	assert.False(t, report.HasErrors())
}

func TestRun_Errors(t *testing.T) {
	_, err := Run(context.Background(), nil)
	require.Error(t, err)

	_, err = Run(context.Background(), &mockStore{failOn: "folders"})
	require.ErrorContains(t, err, "list folders")

	_, err = Run(context.Background(), &mockStore{failOn: "duplicates"})
	require.ErrorContains(t, err, "list duplicate node ids")
}
