package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iflowgraph/internal/config"
)

func TestClassify_DefaultRules(t *testing.T) {
	classifier := Default()

	tests := []struct {
		name     string
		meta     Metadata
		accepted bool
		rule     string
	}{
		{
			name:     "activity exclusion beats keyword",
			meta:     Metadata{ActivityType: "RequestReply", ComponentType: "HTTP"},
			accepted: false,
			rule:     "excluded-activity",
		},
		{
			name:     "transport protocol keyword accepted",
			meta:     Metadata{TransportProtocol: "HTTP1"},
			accepted: true,
			rule:     "protocol-keyword",
		},
		{
			name:     "script component rejected",
			meta:     Metadata{ComponentType: "Groovy", AdapterName: "sap script"},
			accepted: false,
			rule:     "excluded-component",
		},
		{
			name:     "keyword in adapter name",
			meta:     Metadata{ComponentType: "Custom", AdapterName: "SuccessFactors OData V2"},
			accepted: true,
			rule:     "protocol-keyword",
		},
		{
			name:     "non keyword transport still accepted",
			meta:     Metadata{ComponentType: "Custom", TransportProtocol: "TCP"},
			accepted: true,
			rule:     "declared-protocol",
		},
		{
			name:     "message protocol only",
			meta:     Metadata{MessageProtocol: "XI 3.0"},
			accepted: true,
			rule:     "declared-protocol",
		},
		{
			name:     "nothing protocol like",
			meta:     Metadata{ComponentType: "Custom", AdapterName: "Local Helper"},
			accepted: false,
			rule:     DefaultRuleName,
		},
		{
			name:     "empty bundle",
			meta:     Metadata{},
			accepted: false,
			rule:     DefaultRuleName,
		},
		{
			name:     "activity match is case insensitive",
			meta:     Metadata{ActivityType: "  EndEvent ", TransportProtocol: "HTTP"},
			accepted: false,
			rule:     "excluded-activity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := classifier.Classify(tt.meta)
			assert.Equal(t, tt.accepted, decision.Accepted)
			assert.Equal(t, tt.rule, decision.Rule)
		})
	}
}

func TestClassify_AdapterKeywordRule(t *testing.T) {
	rules := config.ClassifierRules{
		Version: 1,
		Rules: []config.ClassifierRule{
			{Name: "adapter-keyword", Fields: []string{"adapter_name"}, Match: config.MatchContains, Values: []string{"IDOC"}, Verdict: config.VerdictAccept},
		},
		Default: config.VerdictReject,
	}
	classifier, err := NewClassifier(rules)
	require.NoError(t, err)

	assert.True(t, classifier.Classify(Metadata{AdapterName: "Outbound idoc sender"}).Accepted)
	assert.False(t, classifier.Classify(Metadata{AdapterName: "Outbound sender"}).Accepted)
}

func TestClassify_DefaultAccept(t *testing.T) {
	rules := config.ClassifierRules{
		Version: 1,
		Rules: []config.ClassifierRule{
			{Name: "scripts", Fields: []string{"component_type"}, Match: config.MatchEquals, Values: []string{"script"}, Verdict: config.VerdictReject},
		},
		Default: config.VerdictAccept,
	}
	classifier, err := NewClassifier(rules)
	require.NoError(t, err)

	decision := classifier.Classify(Metadata{ComponentType: "Anything"})
	assert.True(t, decision.Accepted)
	assert.Equal(t, DefaultRuleName, decision.Rule)
}

func TestNewClassifier_InvalidRules(t *testing.T) {
	_, err := NewClassifier(config.ClassifierRules{Version: 1})
	require.Error(t, err)
}
