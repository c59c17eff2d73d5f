package store

// Node labels.
const (
	LabelFolder      = "Folder"
	LabelProcess     = "Process"
	LabelParticipant = "Participant"
	LabelComponent   = "Component"
	LabelSubProcess  = "SubProcess"
	LabelProtocol    = "Protocol"
)

// Relationship types.
const (
	RelContains      = "CONTAINS"
	RelContainsAll   = "CONTAINS_ALL"
	RelFlowsTo       = "FLOWS_TO"
	RelConnectsTo    = "CONNECTS_TO"
	RelUsesProtocol  = "USES_PROTOCOL"
	RelImplements    = "IMPLEMENTS"
	RelInteractsWith = "INTERACTS_WITH"
	RelInvokes       = "INVOKES"
	RelReceivesFrom  = "RECEIVES_FROM"
	RelInitiates     = "INITIATES"
	RelCompletes     = "COMPLETES"
)

// Node is a labeled graph node. ID and FolderID are stored as the id and folder_id
// properties; Properties holds everything else.
type Node struct {
	Label      string
	ID         string
	FolderID   string
	Properties map[string]any
}

// Name returns the name property, or the id when the node has none.
func (n Node) Name() string {
	if name, ok := n.Properties["name"].(string); ok && name != "" {
		return name
	}
	return n.ID
}

// Type returns the type property.
func (n Node) Type() string {
	t, _ := n.Properties["type"].(string)
	return t
}

type Relationship struct {
	Type        string
	SourceID    string
	SourceLabel string
	TargetID    string
	TargetLabel string
	FolderID    string
	Properties  map[string]any
}

// Counts groups current node and relationship totals.
type Counts struct {
	NodesByLabel        map[string]int64 `json:"nodes_by_type"`
	RelationshipsByType map[string]int64 `json:"relationships_by_type"`
}

// TotalNodes sums NodesByLabel.
func (c *Counts) TotalNodes() int64 {
	var total int64
	for _, n := range c.NodesByLabel {
		total += n
	}
	return total
}

// TotalRelationships sums RelationshipsByType.
func (c *Counts) TotalRelationships() int64 {
	var total int64
	for _, n := range c.RelationshipsByType {
		total += n
	}
	return total
}

// Subgraph is every node and relationship carrying one folder_id.
type Subgraph struct {
	Folder        *Node
	Nodes         []Node
	Relationships []Relationship
}
