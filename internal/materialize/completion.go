package materialize

import "iflowgraph/internal/store"

// complete adds the structural edges that keep processes, participants, subprocesses and
// events reachable from one another. Every edge here follows from ids and ownership alone.
func (p *planner) complete() {
	stat := &p.plan.Stats.Completion

	for _, process := range p.processes {
		for _, participant := range p.participants {
			p.edge(stat, store.RelInteractsWith, process, participant, nil)
		}
	}

	for _, sub := range p.subprocesses {
		for _, process := range p.ownersOrAll(sub.raw) {
			p.edge(stat, store.RelInvokes, process, sub, nil)
		}
	}

	// RECEIVES_FROM mirrors every planned component-to-participant CONNECTS_TO edge.
	var mirrored []store.Relationship
	for _, e := range p.plan.Edges {
		if e.Type == store.RelConnectsTo && e.SourceLabel == store.LabelComponent && e.TargetLabel == store.LabelParticipant {
			mirrored = append(mirrored, e)
		}
	}
	for _, e := range mirrored {
		participant := ref{id: e.TargetID, label: e.TargetLabel}
		component := ref{id: e.SourceID, label: e.SourceLabel}
		p.edge(stat, store.RelReceivesFrom, participant, component, nil)
	}

	for _, el := range p.doc.Components {
		c, ok := p.byRaw[el.ID]
		if !ok || c.label != store.LabelComponent {
			continue
		}
		if el.IsStartEvent() {
			for _, process := range p.ownersOrAll(el.ID) {
				p.edge(stat, store.RelInitiates, process, c, nil)
			}
		}
		if el.IsEndEvent() {
			for _, process := range p.ownersOrAll(el.ID) {
				p.edge(stat, store.RelCompletes, c, process, nil)
			}
		}
	}
}

// ownersOrAll returns the owning process when it is known, otherwise every process.
func (p *planner) ownersOrAll(raw string) []ref {
	if owner, ok := p.ownerOf(raw); ok {
		return []ref{owner}
	}
	return p.processes
}
