package iflow

import "iflowgraph/internal/protocol"

// Minimal is the smallest dataset that still yields a connected folder: one process, one
// external system, a start and end event joined by a flow, and a generic HTTP protocol.
func Minimal() *Document {
	return &Document{
		Processes:    []Element{{ID: "Process_1", Name: "Integration Process", Kind: KindProcess}},
		Participants: []Element{{ID: "Participant_1", Name: "External System", Kind: KindParticipant}},
		Components: []Element{
			{ID: "StartEvent_1", Name: "Start", Kind: KindStartEvent, Tag: KindStartEvent, ProcessRef: "Process_1"},
			{ID: "EndEvent_1", Name: "End", Kind: KindEndEvent, Tag: KindEndEvent, ProcessRef: "Process_1"},
		},
		SequenceFlows: []Flow{{ID: "SequenceFlow_1", SourceRef: "StartEvent_1", TargetRef: "EndEvent_1"}},
		Protocols: []Protocol{{
			ID:       "Protocol_1",
			Name:     "Generic Protocol",
			Metadata: protocol.Metadata{ComponentType: "HTTP"},
		}},
		Fallback: true,
	}
}

type componentSeed struct {
	id, name, kind string
}

type flowSeed struct {
	id, name, source, target string
}

// Rich reproduces the SuccessFactors commission landscape: five processes, three external
// systems, four exception subprocesses and the sequence and message flows between them.
func Rich() *Document {
	doc := &Document{
		Processes: []Element{
			{ID: "Process_1", Name: "Integration Process", Kind: KindProcess},
			{ID: "Process_81563893", Name: "XML to JSON Conversion", Kind: KindProcess},
			{ID: "Process_162", Name: "Commission Titles by Batch", Kind: KindProcess},
			{ID: "Process_81563943", Name: "Commission Titles", Kind: KindProcess},
			{ID: "Process_81564010", Name: "Exception Handler", Kind: KindProcess},
		},
		Participants: []Element{
			{ID: "Participant_12", Name: "SuccessFactors", Kind: KindParticipant},
			{ID: "Participant_223", Name: "Commission", Kind: KindParticipant},
			{ID: "Participant_81564139", Name: "SFTP", Kind: KindParticipant},
		},
		SubProcesses: []Element{
			{ID: "SubProcess_81564032", Name: "Exception Subprocess 4", Kind: KindSubProcess},
			{ID: "SubProcess_81564024", Name: "Exception Subprocess 3", Kind: KindSubProcess},
			{ID: "SubProcess_81564006", Name: "Exception Subprocess 1", Kind: KindSubProcess},
			{ID: "SubProcess_81564017", Name: "Exception Subprocess 2", Kind: KindSubProcess},
		},
		MessageFlows: []Flow{
			{ID: "MessageFlow_17", Name: "SuccessFactors", SourceRef: "ServiceTask_16", TargetRef: "Participant_12"},
			{ID: "MessageFlow_155", Name: "HTTP", SourceRef: "ServiceTask_150", TargetRef: "Participant_223"},
		},
		Fallback: true,
	}

	groups := []struct {
		process    string
		components []componentSeed
	}{
		{"Process_1", []componentSeed{
			{"StartEvent_64", "Start", KindStartEvent},
			{"CallActivity_15", "Custom Data Transformation", KindCallActivity},
			{"CallActivity_20", "ExecutionTime", KindCallActivity},
			{"CallActivity_24", "Derive Custom Query", KindCallActivity},
			{"ServiceTask_16", "SuccessFactors Request", KindServiceTask},
			{"ExclusiveGateway_38", "Gateway", KindExclusiveGateway},
			{"CallActivity_81564205", "Event Version Check", KindCallActivity},
			{"ParallelGateway_81564058", "Parallel Gateway", KindParallelGateway},
			{"CallActivity_58", "Write Variables", KindCallActivity},
			{"EndEvent_44", "End", KindEndEvent},
		}},
		{"Process_81563893", []componentSeed{
			{"StartEvent_81563894", "XML Start", KindStartEvent},
			{"CallActivity_81564220", "Remove Empty Nodes", KindCallActivity},
			{"CallActivity_81563860", "XML to JSON Converter", KindCallActivity},
			{"CallActivity_81563891", "Remove Root Node", KindCallActivity},
			{"CallActivity_81564112", "Setup Charset", KindCallActivity},
			{"EndEvent_81563895", "XML End", KindEndEvent},
		}},
		{"Process_162", []componentSeed{
			{"StartEvent_163", "Batch Start", KindStartEvent},
			{"CallActivity_45793", "Gather Payload", KindCallActivity},
			{"ParallelGateway_81564236", "Fork", KindParallelGateway},
			{"ServiceTask_150", "Request Reply", KindServiceTask},
			{"CallActivity_5918", "JSON to XML Converter", KindCallActivity},
			{"CallActivity_198", "Increment Loop", KindCallActivity},
			{"CallActivity_81564239", "Remove XML Declaration", KindCallActivity},
			{"ParallelGateway_81564242", "Join", KindParallelGateway},
			{"CallActivity_81564246", "Combine Payload", KindCallActivity},
			{"EndEvent_187", "Batch End", KindEndEvent},
		}},
		{"Process_81563943", []componentSeed{
			{"StartEvent_81563944", "Commission Start", KindStartEvent},
			{"EndEvent_81564141", "Commission End", KindEndEvent},
		}},
		{"Process_81564010", []componentSeed{
			{"StartEvent_81564007", "Exception Start 1", KindStartEvent},
			{"CallActivity_81564014", "Exception Process 1", KindCallActivity},
			{"EndEvent_81564008", "Exception End 1", KindEndEvent},
			{"StartEvent_81564025", "Exception Start 2", KindStartEvent},
			{"CallActivity_81564028", "Exception Process 2", KindCallActivity},
			{"EndEvent_81564026", "Exception End 2", KindEndEvent},
			{"StartEvent_81564033", "Exception Start 3", KindStartEvent},
			{"CallActivity_81564036", "Exception Process 3", KindCallActivity},
			{"EndEvent_81564034", "Exception End 3", KindEndEvent},
		}},
	}
	for _, g := range groups {
		for _, c := range g.components {
			doc.Components = append(doc.Components, Element{
				ID:         c.id,
				Name:       c.name,
				Kind:       c.kind,
				Tag:        c.kind,
				ProcessRef: g.process,
			})
		}
	}

	flows := []flowSeed{
		{"SequenceFlow_220", "", "StartEvent_64", "CallActivity_15"},
		{"SequenceFlow_81563941", "", "CallActivity_15", "CallActivity_20"},
		{"SequenceFlow_25", "", "CallActivity_20", "CallActivity_24"},
		{"SequenceFlow_81563997", "", "CallActivity_24", "ServiceTask_16"},
		{"SequenceFlow_109", "", "ServiceTask_16", "ExclusiveGateway_38"},
		{"SequenceFlow_207", "Route 1", "ExclusiveGateway_38", "CallActivity_81564205"},
		{"SequenceFlow_81564207", "", "CallActivity_81564205", "ParallelGateway_81564058"},
		{"SequenceFlow_81563963", "", "CallActivity_58", "EndEvent_44"},

		{"SequenceFlow_81563897", "", "StartEvent_81563894", "CallActivity_81564220"},
		{"SequenceFlow_81564255", "", "CallActivity_81564220", "CallActivity_81563860"},
		{"SequenceFlow_81563892", "", "CallActivity_81563860", "CallActivity_81563891"},
		{"SequenceFlow_81563899", "", "CallActivity_81563891", "CallActivity_81564112"},
		{"SequenceFlow_81564257", "", "CallActivity_81564112", "EndEvent_81563895"},

		{"SequenceFlow_5916", "", "StartEvent_163", "CallActivity_45793"},
		{"SequenceFlow_45794", "", "CallActivity_45793", "ParallelGateway_81564236"},
		{"SequenceFlow_81564237", "Branch 1", "ParallelGateway_81564236", "ServiceTask_150"},
		{"SequenceFlow_5919", "", "ServiceTask_150", "CallActivity_5918"},
		{"SequenceFlow_45810", "", "CallActivity_5918", "CallActivity_198"},
		{"SequenceFlow_45813", "", "CallActivity_198", "CallActivity_81564239"},
		{"SequenceFlow_81564240", "", "CallActivity_81564239", "ParallelGateway_81564242"},
		{"SequenceFlow_81564243", "", "ParallelGateway_81564242", "CallActivity_81564246"},
		{"SequenceFlow_81564247", "", "CallActivity_81564246", "EndEvent_187"},

		{"SequenceFlow_81563944", "", "StartEvent_81563944", "EndEvent_81564141"},

		{"SequenceFlow_81564009", "", "StartEvent_81564007", "CallActivity_81564014"},
		{"SequenceFlow_81564015", "", "CallActivity_81564014", "EndEvent_81564008"},
		{"SequenceFlow_81564027", "", "StartEvent_81564025", "CallActivity_81564028"},
		{"SequenceFlow_81564029", "", "CallActivity_81564028", "EndEvent_81564026"},
		{"SequenceFlow_81564035", "", "StartEvent_81564033", "CallActivity_81564036"},
		{"SequenceFlow_81564037", "", "CallActivity_81564036", "EndEvent_81564034"},
	}
	for _, f := range flows {
		doc.SequenceFlows = append(doc.SequenceFlows, Flow{ID: f.id, Name: f.name, SourceRef: f.source, TargetRef: f.target})
	}
	return doc
}
