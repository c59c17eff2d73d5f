package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"iflowgraph/internal/store"
)

func (c *Client) Counts(ctx context.Context) (*store.Counts, error) {
	counts := &store.Counts{
		NodesByLabel:        make(map[string]int64),
		RelationshipsByType: make(map[string]int64),
	}

	err := c.read(ctx, "MATCH (n) RETURN labels(n)[0] AS label, count(n) AS count", nil, func(record *neo4j.Record) error {
		label, _ := record.Get("label")
		count, _ := record.Get("count")
		counts.NodesByLabel[toString(label)] += toInt64(count)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("counting nodes: %w", err)
	}

	err = c.read(ctx, "MATCH ()-[r]->() RETURN type(r) AS type, count(r) AS count", nil, func(record *neo4j.Record) error {
		relType, _ := record.Get("type")
		count, _ := record.Get("count")
		counts.RelationshipsByType[toString(relType)] += toInt64(count)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("counting relationships: %w", err)
	}

	return counts, nil
}

func (c *Client) ListFolders(ctx context.Context) ([]store.Node, error) {
	var folders []store.Node
	err := c.read(ctx, "MATCH (f:Folder) RETURN f ORDER BY f.id", nil, func(record *neo4j.Record) error {
		value, _ := record.Get("f")
		if node, ok := value.(neo4j.Node); ok {
			folders = append(folders, nodeFromNeo4j(node))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}
	return folders, nil
}

func (c *Client) FolderGraph(ctx context.Context, folderID string) (*store.Subgraph, error) {
	graph := &store.Subgraph{}
	params := map[string]any{"folder_id": folderID}

	err := c.read(ctx, "MATCH (n {folder_id: $folder_id}) RETURN n", params, func(record *neo4j.Record) error {
		value, _ := record.Get("n")
		node, ok := value.(neo4j.Node)
		if !ok {
			return nil
		}
		converted := nodeFromNeo4j(node)
		if converted.Label == store.LabelFolder {
			graph.Folder = &converted
			return nil
		}
		graph.Nodes = append(graph.Nodes, converted)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading folder nodes: %w", err)
	}

	query := `
MATCH (a)-[r {folder_id: $folder_id}]->(b)
RETURN type(r) AS type, a.id AS source, labels(a)[0] AS source_label,
       b.id AS target, labels(b)[0] AS target_label, properties(r) AS props
`
	graph.Relationships, err = c.relationships(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("reading folder relationships: %w", err)
	}

	sort.SliceStable(graph.Nodes, func(i, j int) bool { return graph.Nodes[i].ID < graph.Nodes[j].ID })
	return graph, nil
}

func (c *Client) IsolatedNodes(ctx context.Context) ([]store.Node, error) {
	var nodes []store.Node
	err := c.read(ctx, "MATCH (n) WHERE NOT (n)--() RETURN n ORDER BY n.id", nil, func(record *neo4j.Record) error {
		value, _ := record.Get("n")
		if node, ok := value.(neo4j.Node); ok {
			nodes = append(nodes, nodeFromNeo4j(node))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing isolated nodes: %w", err)
	}
	return nodes, nil
}

func (c *Client) ListCrossFolderRelationships(ctx context.Context) ([]store.Relationship, error) {
	query := `
MATCH (a)-[r]->(b)
WHERE a.folder_id <> b.folder_id
RETURN type(r) AS type, a.id AS source, labels(a)[0] AS source_label,
       b.id AS target, labels(b)[0] AS target_label, properties(r) AS props
`
	rels, err := c.relationships(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("listing cross-folder relationships: %w", err)
	}
	return rels, nil
}

func (c *Client) ListDuplicateNodeIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := c.read(ctx, "MATCH (n) WITH n.id AS id, count(*) AS c WHERE c > 1 RETURN id ORDER BY id", nil, func(record *neo4j.Record) error {
		value, _ := record.Get("id")
		ids = append(ids, toString(value))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing duplicate node ids: %w", err)
	}
	return ids, nil
}

func (c *Client) relationships(ctx context.Context, query string, params map[string]any) ([]store.Relationship, error) {
	var rels []store.Relationship
	err := c.read(ctx, query, params, func(record *neo4j.Record) error {
		get := func(key string) any {
			value, _ := record.Get(key)
			return value
		}
		props, _ := get("props").(map[string]any)
		folderID := toString(props["folder_id"])
		delete(props, "folder_id")
		rels = append(rels, store.Relationship{
			Type:        toString(get("type")),
			SourceID:    toString(get("source")),
			SourceLabel: toString(get("source_label")),
			TargetID:    toString(get("target")),
			TargetLabel: toString(get("target_label")),
			FolderID:    folderID,
			Properties:  props,
		})
		return nil
	})
	return rels, err
}

func nodeFromNeo4j(node neo4j.Node) store.Node {
	props := make(map[string]any, len(node.Props))
	for key, value := range node.Props {
		props[key] = value
	}
	out := store.Node{
		ID:       toString(props["id"]),
		FolderID: toString(props["folder_id"]),
	}
	delete(props, "id")
	delete(props, "folder_id")
	out.Properties = props
	if len(node.Labels) > 0 {
		out.Label = node.Labels[0]
	}
	return out
}

func toString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

func toInt64(value any) int64 {
	if n, ok := value.(int64); ok {
		return n
	}
	return 0
}
