package iflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinimal(t *testing.T) {
	doc := Minimal()
	assert.True(t, doc.Fallback)
	require.Len(t, doc.Components, 2)
	assert.True(t, doc.Components[0].IsStartEvent())
	assert.True(t, doc.Components[1].IsEndEvent())
	require.Len(t, doc.SequenceFlows, 1)
	assert.Equal(t, "StartEvent_1", doc.SequenceFlows[0].SourceRef)
	assert.Equal(t, "HTTP", doc.Protocols[0].Metadata.ComponentType)
}

func TestRich(t *testing.T) {
	doc := Rich()
	assert.True(t, doc.Fallback)
	assert.Len(t, doc.Processes, 5)
	assert.Len(t, doc.Participants, 3)
	assert.Len(t, doc.Components, 37)
	assert.Len(t, doc.SubProcesses, 4)
	assert.Len(t, doc.SequenceFlows, 29)
	assert.Len(t, doc.MessageFlows, 2)
	assert.Empty(t, doc.Protocols)

	owned := make(map[string]int)
	for _, c := range doc.Components {
		owned[c.ProcessRef]++
	}
	assert.Equal(t, map[string]int{
		"Process_1":        10,
		"Process_81563893": 6,
		"Process_162":      10,
		"Process_81563943": 2,
		"Process_81564010": 9,
	}, owned)

	known := make(map[string]bool)
	for _, c := range doc.Components {
		known[c.ID] = true
	}
	for _, f := range doc.SequenceFlows {
		assert.True(t, known[f.SourceRef], "flow %s source %s", f.ID, f.SourceRef)
		assert.True(t, known[f.TargetRef], "flow %s target %s", f.ID, f.TargetRef)
	}
}

func TestRich_ReturnsFreshCopies(t *testing.T) {
	a := Rich()
	a.Processes[0].Name = "changed"
	assert.Equal(t, "Integration Process", Rich().Processes[0].Name)
}
