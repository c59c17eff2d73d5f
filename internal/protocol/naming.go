package protocol

import "strings"

const unknownName = "Unknown_Node"

// NameHints are the candidate sources for a node's display name.
type NameHints struct {
	Name    string
	System  string
	Adapter string
	ID      string
	Kind    string
}

// ResolveName picks the first non-empty trimmed value of name, system, adapter and id, then
// falls back to the kind (suffixed with the id when one exists) and finally Unknown_Node.
func ResolveName(h NameHints) string {
	for _, candidate := range []string{h.Name, h.System, h.Adapter, h.ID} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	if kind := strings.TrimSpace(h.Kind); kind != "" {
		if h.ID != "" {
			return kind + "_" + h.ID
		}
		return kind
	}
	return unknownName
}
