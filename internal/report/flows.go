package report

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"iflowgraph/internal/store"
)

// Named flow queries.
const (
	FlowFull         = "full"
	FlowMain         = "main"
	FlowSubprocesses = "subprocesses"
	FlowExternal     = "external"
)

// MainProcessName identifies the primary integration process of a folder.
const MainProcessName = "Integration Process"

var ErrUnknownFlowQuery = errors.New("unknown flow query")

// FlowQueries lists the supported query names.
var FlowQueries = []string{FlowFull, FlowMain, FlowSubprocesses, FlowExternal}

// fullFlowTypes are the relationship types that make up the end-to-end flow picture.
var fullFlowTypes = map[string]bool{
	store.RelFlowsTo:       true,
	store.RelConnectsTo:    true,
	store.RelContains:      true,
	store.RelInteractsWith: true,
	store.RelInvokes:       true,
	store.RelReceivesFrom:  true,
	store.RelInitiates:     true,
	store.RelCompletes:     true,
}

// FlowRow is one result row. Process is set for the main and subprocesses queries;
// Relationship and Target are nil when a component has no outgoing flow.
type FlowRow struct {
	Process      map[string]any `json:"process,omitempty"`
	Source       map[string]any `json:"source"`
	Relationship map[string]any `json:"relationship,omitempty"`
	Target       map[string]any `json:"target,omitempty"`
}

// Flow runs the named flow query against one folder.
func Flow(ctx context.Context, s store.Store, folderID, query string) ([]FlowRow, error) {
	graph, err := s.FolderGraph(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("reading folder %s: %w", folderID, err)
	}
	g := newFolderView(graph)

	switch query {
	case FlowFull:
		return g.full(), nil
	case FlowMain:
		return g.processFlows(func(name string) bool { return name == MainProcessName }), nil
	case FlowSubprocesses:
		return g.processFlows(func(name string) bool { return name != MainProcessName }), nil
	case FlowExternal:
		return g.external(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFlowQuery, query)
	}
}

type folderView struct {
	nodes map[string]store.Node
	rels  []store.Relationship
}

func newFolderView(graph *store.Subgraph) *folderView {
	v := &folderView{nodes: make(map[string]store.Node, len(graph.Nodes)+1), rels: graph.Relationships}
	if graph.Folder != nil {
		v.nodes[graph.Folder.ID] = *graph.Folder
	}
	for _, node := range graph.Nodes {
		v.nodes[node.ID] = node
	}
	return v
}

func (v *folderView) full() []FlowRow {
	type pair struct {
		row                    FlowRow
		sourceName, targetName string
	}
	var pairs []pair
	for _, rel := range v.rels {
		if !fullFlowTypes[rel.Type] {
			continue
		}
		source, okS := v.nodes[rel.SourceID]
		target, okT := v.nodes[rel.TargetID]
		if !okS || !okT {
			continue
		}
		pairs = append(pairs, pair{
			row:        FlowRow{Source: NodeView(source), Relationship: relView(rel), Target: NodeView(target)},
			sourceName: source.Name(),
			targetName: target.Name(),
		})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].sourceName != pairs[j].sourceName {
			return pairs[i].sourceName < pairs[j].sourceName
		}
		return pairs[i].targetName < pairs[j].targetName
	})

	rows := make([]FlowRow, len(pairs))
	for i, p := range pairs {
		rows[i] = p.row
	}
	return rows
}

// processFlows lists components contained by the selected processes with their outgoing
// FLOWS_TO edges, ordered by process name then component name.
func (v *folderView) processFlows(selectProcess func(name string) bool) []FlowRow {
	type entry struct {
		process, component store.Node
	}
	var entries []entry
	for _, rel := range v.rels {
		if rel.Type != store.RelContains {
			continue
		}
		process, ok := v.nodes[rel.SourceID]
		if !ok || process.Label != store.LabelProcess || !selectProcess(process.Name()) {
			continue
		}
		component, ok := v.nodes[rel.TargetID]
		if !ok || component.Label != store.LabelComponent {
			continue
		}
		entries = append(entries, entry{process: process, component: component})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if pi, pj := entries[i].process.Name(), entries[j].process.Name(); pi != pj {
			return pi < pj
		}
		return entries[i].component.Name() < entries[j].component.Name()
	})

	var rows []FlowRow
	for _, e := range entries {
		matched := false
		for _, rel := range v.rels {
			if rel.Type != store.RelFlowsTo || rel.SourceID != e.component.ID {
				continue
			}
			target, ok := v.nodes[rel.TargetID]
			if !ok || target.Label != store.LabelComponent {
				continue
			}
			matched = true
			rows = append(rows, FlowRow{
				Process:      NodeView(e.process),
				Source:       NodeView(e.component),
				Relationship: relView(rel),
				Target:       NodeView(target),
			})
		}
		if !matched {
			rows = append(rows, FlowRow{Process: NodeView(e.process), Source: NodeView(e.component)})
		}
	}
	return rows
}

func (v *folderView) external() []FlowRow {
	var rows []FlowRow
	var names []string
	for _, rel := range v.rels {
		if rel.Type != store.RelConnectsTo {
			continue
		}
		component, okC := v.nodes[rel.SourceID]
		participant, okP := v.nodes[rel.TargetID]
		if !okC || !okP || component.Label != store.LabelComponent || participant.Label != store.LabelParticipant {
			continue
		}
		rows = append(rows, FlowRow{Source: NodeView(component), Relationship: relView(rel), Target: NodeView(participant)})
		names = append(names, participant.Name())
	}
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return names[idx[i]] < names[idx[j]] })

	sorted := make([]FlowRow, len(rows))
	for i, k := range idx {
		sorted[i] = rows[k]
	}
	return sorted
}

func relView(rel store.Relationship) map[string]any {
	view := make(map[string]any, len(rel.Properties)+1)
	for k, v := range rel.Properties {
		view[k] = v
	}
	view["type"] = rel.Type
	return view
}
