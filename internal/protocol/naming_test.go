package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveName(t *testing.T) {
	tests := []struct {
		name  string
		hints NameHints
		want  string
	}{
		{"explicit name wins", NameHints{Name: " Send Order ", System: "ERP", ID: "ServiceTask_1"}, "Send Order"},
		{"system before adapter", NameHints{System: "ERP", Adapter: "IDoc", ID: "MessageFlow_1"}, "ERP"},
		{"adapter before id", NameHints{Adapter: "IDoc", ID: "MessageFlow_1"}, "IDoc"},
		{"id when nothing else", NameHints{ID: "StartEvent_1", Kind: "StartEvent"}, "StartEvent_1"},
		{"kind when no id", NameHints{Kind: "StartEvent"}, "StartEvent"},
		{"blank id falls to kind with suffix", NameHints{ID: " ", Kind: "Process"}, "Process_ "},
		{"unknown", NameHints{}, "Unknown_Node"},
		{"whitespace only ignored", NameHints{Name: "   ", System: "\t"}, "Unknown_Node"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveName(tt.hints))
		})
	}
}
