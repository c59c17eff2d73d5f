package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch_WriteTextfile(t *testing.T) {
	b := NewBatch()
	b.ObserveDocument(OutcomeProcessed, 20*time.Millisecond, 10, 30)
	b.ObserveDocument(OutcomeFallback, 5*time.Millisecond, 6, 11)
	b.ObserveDocument(OutcomeFailed, time.Millisecond, 0, 0)
	b.MarkRunFinished(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "iflowgraph.prom")
	require.NoError(t, b.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `iflowgraph_documents_total{outcome="processed"} 2`)
	assert.Contains(t, text, `iflowgraph_documents_total{outcome="fallback"} 1`)
	assert.Contains(t, text, `iflowgraph_documents_total{outcome="failed"} 1`)
	assert.Contains(t, text, "iflowgraph_nodes_written_total 16")
	assert.Contains(t, text, "iflowgraph_relationships_written_total 41")
	assert.Contains(t, text, "iflowgraph_document_duration_seconds_count 3")
	assert.Contains(t, text, "iflowgraph_last_run_timestamp_seconds 1.7e+09")
}

func TestBatch_WriteTextfileError(t *testing.T) {
	err := NewBatch().WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	require.Error(t, err)
}
