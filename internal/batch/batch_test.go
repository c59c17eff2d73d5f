package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iflowgraph/internal/config"
	"iflowgraph/internal/iflow"
	"iflowgraph/internal/ingest"
	"iflowgraph/internal/metrics"
	"iflowgraph/internal/store"
	"iflowgraph/internal/store/memory"
)

const flowDir = "src/main/resources/scenarioflows/integrationflow"

func readFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "iflow", "testdata", "orders.iflw"))
	require.NoError(t, err)
	return data
}

func writeProject(t *testing.T, base, project, file string, data []byte) {
	t.Helper()
	dir := filepath.Join(base, project, filepath.FromSlash(flowDir))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), data, 0o600))
}

func testTree(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	valid := readFixture(t)
	writeProject(t, base, "Alpha", "alpha.iflw", valid)
	writeProject(t, base, "Beta", "b.iflw", valid)
	writeProject(t, base, "Beta", "a.iflw", valid)
	writeProject(t, base, "Broken", "x.iflw", []byte("<bpmn2:definitions>"))
	writeProject(t, base, ".hidden", "h.iflw", valid)
	writeProject(t, base, "__pycache__", "p.iflw", valid)
	writeProject(t, base, "Extracted", "e.iflw", valid)
	writeProject(t, base, "Skipme", "s.iflw", valid)
	require.NoError(t, os.MkdirAll(filepath.Join(base, "Empty", "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "README.md"), []byte("notes"), 0o600))
	return base
}

func newRunner(s store.Store, m *metrics.Batch) *Runner {
	pipeline := ingest.New(iflow.NewExtractor(nil, config.FallbackRich, nil), s, nil)
	return New(pipeline, s, m, nil)
}

func TestDiscover(t *testing.T) {
	base := testTree(t)

	docs, err := Discover(base, config.DefaultFlowPattern, []string{"Skipme"})
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "Alpha", docs[0].Folder)
	assert.Equal(t, "Beta", docs[1].Folder)
	assert.Equal(t, filepath.Join(base, "Beta", filepath.FromSlash(flowDir), "a.iflw"), docs[1].Path)
	assert.Equal(t, "Broken", docs[2].Folder)
	assert.Equal(t, filepath.Join(base, "Broken"), docs[2].Dir)
}

func TestDiscover_Errors(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"), config.DefaultFlowPattern, nil)
	require.Error(t, err)

	_, err = Discover(t.TempDir(), "[", nil)
	require.ErrorContains(t, err, "invalid flow pattern")
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	base := testTree(t)
	docs, err := Discover(base, config.DefaultFlowPattern, []string{"Skipme"})
	require.NoError(t, err)

	s := memory.New()
	m := metrics.NewBatch()
	summary, err := newRunner(s, m).Run(ctx, docs, Options{Workers: 2, ClearFirst: true, Heuristics: true})
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, []string{"Alpha", "Beta"}, summary.Processed)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "Broken", summary.Failed[0].Folder)
	assert.ErrorIs(t, summary.Failed[0].Err, iflow.ErrSourceMalformed)
	assert.Equal(t, []string{"Broken"}, summary.FailedFolders())
	assert.Len(t, summary.Results, 2)

	folders, err := s.ListFolders(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 2)

	cross, err := s.ListCrossFolderRelationships(ctx)
	require.NoError(t, err)
	assert.Empty(t, cross)

	metricsPath := filepath.Join(t.TempDir(), "batch.prom")
	require.NoError(t, m.WriteTextfile(metricsPath))
	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `iflowgraph_documents_total{outcome="processed"} 2`)
	assert.Contains(t, string(data), `iflowgraph_documents_total{outcome="failed"} 1`)
}

func TestRun_SequentialMatchesConcurrent(t *testing.T) {
	ctx := context.Background()
	base := testTree(t)
	docs, err := Discover(base, config.DefaultFlowPattern, []string{"Skipme"})
	require.NoError(t, err)

	counts := make([]*store.Counts, 0, 2)
	for _, workers := range []int{1, 4} {
		s := memory.New()
		_, err := newRunner(s, nil).Run(ctx, docs, Options{Workers: workers})
		require.NoError(t, err)
		c, err := s.Counts(ctx)
		require.NoError(t, err)
		counts = append(counts, c)
	}
	assert.Equal(t, counts[0], counts[1])
}

func TestRun_CollidingFolders(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	valid := readFixture(t)
	writeProject(t, base, "Order Sync", "a.iflw", valid)
	writeProject(t, base, "Order_Sync", "a.iflw", valid)

	docs, err := Discover(base, config.DefaultFlowPattern, nil)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	summary, err := newRunner(memory.New(), nil).Run(ctx, docs, Options{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Order Sync"}, summary.Processed)
	require.Len(t, summary.Failed, 1)
	assert.ErrorIs(t, summary.Failed[0].Err, store.ErrFolderExists)
}

func TestRun_ClearFirst(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	pipeline := ingest.New(iflow.NewExtractor(nil, config.FallbackMinimal, nil), s, nil)
	_, err := pipeline.Run(ctx, filepath.Join(t.TempDir(), "missing.iflw"), ingest.Options{Folder: "Stale"})
	require.NoError(t, err)

	summary, err := New(pipeline, s, nil, nil).Run(ctx, nil, Options{ClearFirst: true})
	require.NoError(t, err)
	assert.EqualValues(t, 6, summary.Cleared)

	_, ok := s.Node("Folder_Stale")
	assert.False(t, ok)
}

func TestRun_KeepExisting(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	pipeline := ingest.New(iflow.NewExtractor(nil, config.FallbackMinimal, nil), s, nil)
	_, err := pipeline.Run(ctx, filepath.Join(t.TempDir(), "missing.iflw"), ingest.Options{Folder: "Stale"})
	require.NoError(t, err)

	summary, err := New(pipeline, s, nil, nil).Run(ctx, nil, Options{})
	require.NoError(t, err)
	assert.Zero(t, summary.Cleared)
	_, ok := s.Node("Folder_Stale")
	assert.True(t, ok)
}

func TestRun_DryRun(t *testing.T) {
	ctx := context.Background()
	docs, err := Discover(testTree(t), config.DefaultFlowPattern, nil)
	require.NoError(t, err)

	s := memory.New()
	summary, err := newRunner(s, nil).Run(ctx, docs, Options{DryRun: true, ClearFirst: true})
	require.NoError(t, err)
	assert.True(t, summary.DryRun)
	assert.Len(t, summary.Discovered, 4)
	assert.Empty(t, summary.Processed)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts.TotalNodes())
}

func TestRun_Cancelled(t *testing.T) {
	base := testTree(t)
	docs, err := Discover(base, config.DefaultFlowPattern, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := newRunner(memory.New(), nil).Run(ctx, docs, Options{Workers: 2})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, summary.Processed)
	assert.Len(t, summary.Failed, len(docs))
	for _, f := range summary.Failed {
		assert.True(t, errors.Is(f.Err, context.Canceled))
	}
}

func TestKeyedMutex(t *testing.T) {
	var k keyedMutex
	unlock := k.lock("a")
	other := k.lock("b")
	other()
	unlock()
	k.lock("a")()
}
