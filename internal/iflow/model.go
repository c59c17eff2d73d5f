package iflow

import "iflowgraph/internal/protocol"

// Node kinds written as the `type` property and used as graph labels for the structural
// entities.
const (
	KindFolder      = "Folder"
	KindProcess     = "Process"
	KindParticipant = "Participant"
	KindComponent   = "Component"
	KindSubProcess  = "SubProcess"
	KindProtocol    = "Protocol"
)

// Component element kinds derived from the BPMN tag.
const (
	KindStartEvent       = "StartEvent"
	KindEndEvent         = "EndEvent"
	KindServiceTask      = "ServiceTask"
	KindCallActivity     = "CallActivity"
	KindParallelGateway  = "ParallelGateway"
	KindExclusiveGateway = "ExclusiveGateway"
)

// Element is a process, participant, component or subprocess read from a document.
type Element struct {
	ID   string
	Name string
	// Kind is the resolved type: the entity kind, or for components the activity type when
	// one is declared and the tag kind otherwise.
	Kind string
	// Tag is the tag-derived component kind. Empty for non-components.
	Tag string
	// ProcessRef is the id of the nearest enclosing process, when known.
	ProcessRef string
}

// IsStartEvent reports whether a component starts its process.
func (e Element) IsStartEvent() bool {
	return e.Kind == KindStartEvent || e.Tag == KindStartEvent
}

// IsEndEvent reports whether a component completes its process.
func (e Element) IsEndEvent() bool {
	return e.Kind == KindEndEvent || e.Tag == KindEndEvent
}

type Flow struct {
	ID        string
	Name      string
	SourceRef string
	TargetRef string
}

// Protocol is an accepted adapter description synthesized from extension metadata.
type Protocol struct {
	ID       string
	Name     string
	Metadata protocol.Metadata
	// SourceRef and TargetRef come from a message flow.
	SourceRef string
	TargetRef string
	// ParticipantRef is set when the metadata sits on a participant.
	ParticipantRef string
	// ComponentRef is set when the metadata sits on a service task.
	ComponentRef string
}

type Document struct {
	SourcePath    string
	Processes     []Element
	Participants  []Element
	Components    []Element
	SubProcesses  []Element
	SequenceFlows []Flow
	MessageFlows  []Flow
	Protocols     []Protocol

	// ProtocolsRejected counts candidate bundles the classifier turned down.
	ProtocolsRejected int

	// Fallback is set when the document could not be read and a synthetic dataset was
	// substituted. FallbackReason holds the read error.
	Fallback       bool
	FallbackReason string
}

// ElementCount is the number of entity records, protocols included.
func (d *Document) ElementCount() int {
	return len(d.Processes) + len(d.Participants) + len(d.Components) + len(d.SubProcesses) + len(d.Protocols)
}
