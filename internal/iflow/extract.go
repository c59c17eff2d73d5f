// Package iflow reads SAP integration flow documents into typed entity records.
package iflow

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"iflowgraph/internal/config"
	"iflowgraph/internal/logging"
	"iflowgraph/internal/protocol"
)

var (
	ErrSourceUnavailable = errors.New("source document unavailable")
	ErrSourceMalformed   = errors.New("source document malformed")
)

// componentTags are extracted in this order, all elements of one tag before the next.
var componentTags = []struct {
	tag  string
	kind string
}{
	{"startEvent", KindStartEvent},
	{"endEvent", KindEndEvent},
	{"serviceTask", KindServiceTask},
	{"callActivity", KindCallActivity},
	{"parallelGateway", KindParallelGateway},
	{"exclusiveGateway", KindExclusiveGateway},
}

type Extractor struct {
	classifier *protocol.Classifier
	fallback   string
	logger     *slog.Logger
}

// NewExtractor builds an extractor. fallback selects the dataset substituted for unreadable
// sources (config.FallbackRich or config.FallbackMinimal).
func NewExtractor(classifier *protocol.Classifier, fallback string, logger *slog.Logger) *Extractor {
	if classifier == nil {
		classifier = protocol.Default()
	}
	return &Extractor{classifier: classifier, fallback: fallback, logger: logging.OrDefault(logger)}
}

// ExtractFile reads the document at path. A missing or unreadable file yields the fallback
// dataset with Document.Fallback set; malformed XML is returned as ErrSourceMalformed.
func (e *Extractor) ExtractFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		reason := fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		e.logger.Warn("source unavailable, using fallback dataset", "path", path, "fallback", e.fallback, "error", err)
		doc := e.fallbackDocument()
		doc.SourcePath = path
		doc.FallbackReason = reason.Error()
		return doc, nil
	}
	defer f.Close()

	doc, err := e.Extract(f)
	if errors.Is(err, ErrSourceUnavailable) {
		e.logger.Warn("source unreadable, using fallback dataset", "path", path, "fallback", e.fallback, "error", err)
		fb := e.fallbackDocument()
		fb.SourcePath = path
		fb.FallbackReason = err.Error()
		return fb, nil
	}
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", path, err)
	}
	doc.SourcePath = path
	return doc, nil
}

func (e *Extractor) fallbackDocument() *Document {
	if e.fallback == config.FallbackMinimal {
		return Minimal()
	}
	return Rich()
}

// Extract parses a document from r.
func (e *Extractor) Extract(r io.Reader) (*Document, error) {
	root, err := parseTree(r)
	if err != nil {
		var readErr *readError
		if errors.As(err, &readErr) {
			return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, readErr.err)
		}
		return nil, fmt.Errorf("%w: %v", ErrSourceMalformed, err)
	}

	doc := &Document{}
	e.extractProcesses(root, doc)
	e.extractParticipants(root, doc)
	e.extractComponents(root, doc)
	e.extractSubProcesses(root, doc)
	doc.SequenceFlows = extractFlows(root, "sequenceFlow")
	doc.MessageFlows = extractFlows(root, "messageFlow")
	e.extractProtocols(root, doc)

	e.logger.Debug("extracted document",
		"processes", len(doc.Processes),
		"participants", len(doc.Participants),
		"components", len(doc.Components),
		"subprocesses", len(doc.SubProcesses),
		"sequence_flows", len(doc.SequenceFlows),
		"message_flows", len(doc.MessageFlows),
		"protocols", len(doc.Protocols),
		"protocols_rejected", doc.ProtocolsRejected,
	)
	return doc, nil
}

func (e *Extractor) extractProcesses(root *element, doc *Document) {
	for _, el := range root.findAll(NamespaceBPMN, "process") {
		id := el.attr("id")
		doc.Processes = append(doc.Processes, Element{
			ID:   id,
			Name: protocol.ResolveName(protocol.NameHints{Name: el.attr("name"), ID: id, Kind: KindProcess}),
			Kind: KindProcess,
		})
	}
}

func (e *Extractor) extractParticipants(root *element, doc *Document) {
	for _, el := range root.findAll(NamespaceBPMN, "participant") {
		// A participant with processRef is the pool of an integration process, not an
		// external system.
		if el.attr("processRef") != "" {
			continue
		}
		id := el.attr("id")
		doc.Participants = append(doc.Participants, Element{
			ID:   id,
			Name: protocol.ResolveName(protocol.NameHints{Name: el.attr("name"), ID: id, Kind: KindParticipant}),
			Kind: KindParticipant,
		})
	}
}

func (e *Extractor) extractComponents(root *element, doc *Document) {
	owners := ownerIndex(root)
	for _, ct := range componentTags {
		for _, el := range root.findAll(NamespaceBPMN, ct.tag) {
			id := el.attr("id")
			kind := ct.kind
			if activity := extensionProperties(el)["activityType"]; activity != "" {
				kind = activity
			}
			doc.Components = append(doc.Components, Element{
				ID:         id,
				Name:       protocol.ResolveName(protocol.NameHints{Name: el.attr("name"), ID: id, Kind: kind}),
				Kind:       kind,
				Tag:        ct.kind,
				ProcessRef: owners[el],
			})
		}
	}
}

func (e *Extractor) extractSubProcesses(root *element, doc *Document) {
	owners := ownerIndex(root)
	for _, el := range root.findAll(NamespaceBPMN, "subProcess") {
		id := el.attr("id")
		doc.SubProcesses = append(doc.SubProcesses, Element{
			ID:         id,
			Name:       protocol.ResolveName(protocol.NameHints{Name: el.attr("name"), ID: id, Kind: KindSubProcess}),
			Kind:       KindSubProcess,
			ProcessRef: owners[el],
		})
	}
}

func extractFlows(root *element, tag string) []Flow {
	var flows []Flow
	for _, el := range root.findAll(NamespaceBPMN, tag) {
		flows = append(flows, Flow{
			ID:        el.attr("id"),
			Name:      el.attr("name"),
			SourceRef: el.attr("sourceRef"),
			TargetRef: el.attr("targetRef"),
		})
	}
	return flows
}

func (e *Extractor) extractProtocols(root *element, doc *Document) {
	for _, el := range root.findAll(NamespaceBPMN, "messageFlow") {
		if p, ok := e.candidate(el, doc); ok {
			p.SourceRef = el.attr("sourceRef")
			p.TargetRef = el.attr("targetRef")
			doc.Protocols = append(doc.Protocols, p)
		}
	}
	for _, el := range root.findAll(NamespaceBPMN, "participant") {
		if p, ok := e.candidate(el, doc); ok {
			p.ParticipantRef = el.attr("id")
			doc.Protocols = append(doc.Protocols, p)
		}
	}
	for _, el := range root.findAll(NamespaceBPMN, "serviceTask") {
		if p, ok := e.candidate(el, doc); ok {
			p.ComponentRef = el.attr("id")
			doc.Protocols = append(doc.Protocols, p)
		}
	}
}

// candidate builds a protocol from an element's extension bundle and runs it past the
// classifier.
func (e *Extractor) candidate(el *element, doc *Document) (Protocol, bool) {
	props := extensionProperties(el)
	if props == nil {
		return Protocol{}, false
	}
	meta, isCandidate := protocol.FromProperties(props)
	if !isCandidate {
		return Protocol{}, false
	}

	id := el.attr("id")
	decision := e.classifier.Classify(meta)
	if !decision.Accepted {
		doc.ProtocolsRejected++
		e.logger.Debug("protocol candidate rejected", "element", id, "rule", decision.Rule)
		return Protocol{}, false
	}

	return Protocol{
		ID: "Protocol_" + id,
		Name: protocol.ResolveName(protocol.NameHints{
			Name:    el.attr("name"),
			System:  meta.System,
			Adapter: meta.AdapterName,
			ID:      id,
			Kind:    KindProtocol,
		}),
		Metadata: meta,
	}, true
}

// extensionProperties collects ifl:property key/value pairs from the first
// bpmn2:extensionElements below el. It returns nil when el has no extension block.
func extensionProperties(el *element) map[string]string {
	ext := el.find(NamespaceBPMN, "extensionElements")
	if ext == nil {
		return nil
	}
	props := make(map[string]string)
	for _, prop := range ext.findAll(NamespaceIFL, "property") {
		key := prop.childByLocal("key")
		value := prop.childByLocal("value")
		if key == nil || value == nil {
			continue
		}
		if k := key.content(); k != "" {
			props[k] = value.content()
		}
	}
	return props
}

// ownerIndex maps every element to the id of its nearest enclosing process.
func ownerIndex(root *element) map[*element]string {
	owners := make(map[*element]string)
	root.walk(func(el *element, ancestors []*element) {
		for i := len(ancestors) - 1; i >= 0; i-- {
			if ancestors[i].is(NamespaceBPMN, "process") {
				owners[el] = ancestors[i].attr("id")
				return
			}
		}
	})
	return owners
}
