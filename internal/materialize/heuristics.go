package materialize

import (
	"strings"

	"iflowgraph/internal/store"
)

// matchNames is the best-effort stage. It links components and participants to protocols
// by substring matching on names, ids and declared systems. Empty strings never match and
// a pair already linked by the same relationship type is left alone.
func (p *planner) matchNames() {
	stat := &p.plan.Stats.Heuristic

	for _, c := range p.components {
		for _, pr := range p.protocols {
			if p.linked(store.RelUsesProtocol, c, pr) {
				continue
			}
			if containsEither(c.id, pr.name, c.name) {
				p.edge(stat, store.RelUsesProtocol, c, pr, nil)
			}
		}
	}

	for _, participant := range p.participants {
		for _, pr := range p.protocols {
			system := p.system[pr.raw]
			if p.linked(store.RelImplements, participant, pr) {
				continue
			}
			if containsEither(participant.name, system, participant.name) {
				p.edge(stat, store.RelImplements, participant, pr, nil)
			}
		}
	}
}

// containsEither reports whether haystack contains needle, or needle contains name.
func containsEither(haystack, needle, name string) bool {
	if needle == "" {
		return false
	}
	if haystack != "" && strings.Contains(haystack, needle) {
		return true
	}
	return name != "" && strings.Contains(needle, name)
}
