// Package materialize turns an extracted document into a folder-scoped graph plan and
// writes it to a store.
package materialize

import (
	"time"

	"iflowgraph/internal/identity"
	"iflowgraph/internal/iflow"
	"iflowgraph/internal/store"
)

const folderDescription = "SAP Integration Flow Knowledge Graph - Semantic Layer"

type Options struct {
	// Heuristics enables the name-matching link stage.
	Heuristics bool
	// FolderIndex adds a CONTAINS_ALL edge from the Folder to every node.
	FolderIndex bool
	IngestedAt  time.Time
}

// Stats counts planned edges per stage. Dropped counts edges whose endpoints did not
// resolve inside the folder.
type Stats struct {
	Flows       int `json:"flows"`
	Protocols   int `json:"protocols"`
	Containment int `json:"containment"`
	Index       int `json:"index"`
	Completion  int `json:"completion"`
	Heuristic   int `json:"heuristic"`
	Dropped     int `json:"dropped"`
}

// Plan is everything written for one folder, in write order.
type Plan struct {
	DisplayName string
	FolderID    string
	Folder      store.Node
	Nodes       []store.Node
	Edges       []store.Relationship
	Stats       Stats
}

type ref struct {
	raw   string
	id    string
	label string
	name  string
}

type edgeKey struct {
	relType, source, target, flowID string
}

type planner struct {
	plan  *Plan
	byRaw map[string]ref
	seen  map[edgeKey]struct{}

	processes    []ref
	participants []ref
	components   []ref
	subprocesses []ref
	protocols    []ref

	// owner maps a component or subprocess raw id to its owning process raw id.
	owner map[string]string
	// system holds each protocol's declared system by raw id.
	system map[string]string
	doc    *iflow.Document
}

// Build plans the graph for doc under the given folder display name. It has no side
// effects; the same inputs always produce the same plan.
func Build(folderName string, doc *iflow.Document, opts Options) *Plan {
	display := identity.NormalizeDisplayName(folderName)
	folderID := identity.FolderID(display)

	p := &planner{
		plan:   &Plan{DisplayName: display, FolderID: folderID},
		byRaw:  make(map[string]ref),
		seen:   make(map[edgeKey]struct{}),
		owner:  make(map[string]string),
		system: make(map[string]string),
		doc:    doc,
	}

	folderProps := map[string]any{
		"name":        display,
		"type":        store.LabelFolder,
		"description": folderDescription,
		"source_file": doc.SourcePath,
		"fallback":    doc.Fallback,
	}
	if !opts.IngestedAt.IsZero() {
		folderProps["ingested_at"] = opts.IngestedAt.UTC().Format(time.RFC3339)
	}
	p.plan.Folder = store.Node{Label: store.LabelFolder, ID: folderID, FolderID: folderID, Properties: folderProps}

	p.addNodes()
	p.addFlows()
	p.addProtocolLinks()
	p.addContainment()
	if opts.FolderIndex {
		p.addFolderIndex()
	}
	p.complete()
	if opts.Heuristics {
		p.matchNames()
	}
	return p.plan
}

func (p *planner) addNodes() {
	for _, el := range p.doc.Processes {
		p.processes = p.addElement(store.LabelProcess, el, nil, p.processes)
	}
	for _, el := range p.doc.Participants {
		p.participants = p.addElement(store.LabelParticipant, el, nil, p.participants)
	}
	for _, el := range p.doc.Components {
		extra := map[string]any{"element": el.Tag}
		if el.ProcessRef != "" {
			p.owner[el.ID] = el.ProcessRef
		}
		p.components = p.addElement(store.LabelComponent, el, extra, p.components)
	}
	for _, el := range p.doc.SubProcesses {
		if el.ProcessRef != "" {
			p.owner[el.ID] = el.ProcessRef
		}
		p.subprocesses = p.addElement(store.LabelSubProcess, el, nil, p.subprocesses)
	}
	for _, pr := range p.doc.Protocols {
		props := pr.Metadata.Properties()
		p.system[pr.ID] = pr.Metadata.System
		el := iflow.Element{ID: pr.ID, Name: pr.Name, Kind: store.LabelProtocol}
		p.protocols = p.addElement(store.LabelProtocol, el, props, p.protocols)
	}

	// Owner ids are recorded as composite process ids once every process is known.
	for i, node := range p.plan.Nodes {
		raw, _ := node.Properties["raw_id"].(string)
		if owner, ok := p.ownerOf(raw); ok {
			p.plan.Nodes[i].Properties["process_id"] = owner.id
		}
	}
}

// addElement plans one node. A raw id seen earlier in the document keeps its first node.
func (p *planner) addElement(label string, el iflow.Element, extra map[string]any, refs []ref) []ref {
	if el.ID == "" {
		return refs
	}
	if _, dup := p.byRaw[el.ID]; dup {
		return refs
	}

	id := identity.NodeID(p.plan.FolderID, el.ID)
	props := map[string]any{
		"raw_id": el.ID,
		"name":   el.Name,
		"type":   el.Kind,
	}
	for k, v := range extra {
		props[k] = v
	}

	r := ref{raw: el.ID, id: id, label: label, name: el.Name}
	p.byRaw[el.ID] = r
	p.plan.Nodes = append(p.plan.Nodes, store.Node{Label: label, ID: id, FolderID: p.plan.FolderID, Properties: props})
	return append(refs, r)
}

// ownerOf resolves the owning process of a component or subprocess.
func (p *planner) ownerOf(raw string) (ref, bool) {
	processRaw, ok := p.owner[raw]
	if !ok {
		return ref{}, false
	}
	owner, ok := p.byRaw[processRaw]
	if !ok || owner.label != store.LabelProcess {
		return ref{}, false
	}
	return owner, true
}

func (p *planner) folderRef() ref {
	return ref{id: p.plan.FolderID, label: store.LabelFolder}
}

// link plans an edge between raw document ids, dropping it when either end is unknown.
func (p *planner) link(counter *int, relType, sourceRaw, targetRaw string, props map[string]any) {
	source, ok := p.byRaw[sourceRaw]
	if !ok {
		p.plan.Stats.Dropped++
		return
	}
	target, ok := p.byRaw[targetRaw]
	if !ok {
		p.plan.Stats.Dropped++
		return
	}
	p.edge(counter, relType, source, target, props)
}

// edge plans an edge between resolved nodes. A repeated (type, source, target, flow) is
// planned once.
func (p *planner) edge(counter *int, relType string, source, target ref, props map[string]any) bool {
	flowID, _ := props["flow_id"].(string)
	key := edgeKey{relType: relType, source: source.id, target: target.id, flowID: flowID}
	if _, dup := p.seen[key]; dup {
		return false
	}
	p.seen[key] = struct{}{}

	p.plan.Edges = append(p.plan.Edges, store.Relationship{
		Type:        relType,
		SourceID:    source.id,
		SourceLabel: source.label,
		TargetID:    target.id,
		TargetLabel: target.label,
		FolderID:    p.plan.FolderID,
		Properties:  props,
	})
	*counter++
	return true
}

func (p *planner) linked(relType string, source, target ref) bool {
	_, ok := p.seen[edgeKey{relType: relType, source: source.id, target: target.id}]
	return ok
}

func (p *planner) addFlows() {
	for _, f := range p.doc.SequenceFlows {
		p.link(&p.plan.Stats.Flows, store.RelFlowsTo, f.SourceRef, f.TargetRef, flowProps(f))
	}
	for _, f := range p.doc.MessageFlows {
		p.link(&p.plan.Stats.Flows, store.RelConnectsTo, f.SourceRef, f.TargetRef, flowProps(f))
	}
}

func flowProps(f iflow.Flow) map[string]any {
	return map[string]any{"name": f.Name, "flow_id": f.ID}
}

func (p *planner) addProtocolLinks() {
	stat := &p.plan.Stats.Protocols
	for _, pr := range p.doc.Protocols {
		if pr.SourceRef != "" {
			p.link(stat, store.RelUsesProtocol, pr.SourceRef, pr.ID, nil)
		}
		if pr.TargetRef != "" {
			p.link(stat, store.RelConnectsTo, pr.ID, pr.TargetRef, nil)
		}
		if pr.ParticipantRef != "" {
			p.link(stat, store.RelImplements, pr.ID, pr.ParticipantRef, nil)
		}
		if pr.ComponentRef != "" {
			p.link(stat, store.RelUsesProtocol, pr.ComponentRef, pr.ID, nil)
		}
		if pr.Metadata.ComponentType != "" && pr.Metadata.Direction != "" {
			protocolRef, ok := p.byRaw[pr.ID]
			if !ok {
				continue
			}
			for _, process := range p.processes {
				p.edge(stat, store.RelUsesProtocol, process, protocolRef, nil)
			}
		}
	}
}

func (p *planner) addContainment() {
	stat := &p.plan.Stats.Containment
	folder := p.folderRef()
	for _, group := range [][]ref{p.processes, p.participants, p.subprocesses, p.protocols, p.components} {
		for _, r := range group {
			p.edge(stat, store.RelContains, folder, r, nil)
		}
	}

	for _, c := range p.components {
		if owner, ok := p.ownerOf(c.raw); ok {
			p.edge(stat, store.RelContains, owner, c, nil)
			continue
		}
		for _, process := range p.processes {
			p.edge(stat, store.RelContains, process, c, nil)
		}
	}
}

func (p *planner) addFolderIndex() {
	folder := p.folderRef()
	for _, node := range p.plan.Nodes {
		r := p.byRaw[node.Properties["raw_id"].(string)]
		p.edge(&p.plan.Stats.Index, store.RelContainsAll, folder, r, nil)
	}
}
