package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"iflowgraph/internal/store"
)

const relationshipColumns = `
	SELECT r.rel_type, r.src_id, s.label, r.dst_id, d.label, r.folder_id, r.properties
	FROM relationships r
	JOIN nodes s ON s.id = r.src_id
	JOIN nodes d ON d.id = r.dst_id
	`

func (c *Client) Counts(ctx context.Context) (*store.Counts, error) {
	counts := &store.Counts{}

	var err error
	counts.NodesByLabel, err = c.groupCount(ctx, "SELECT label, COUNT(*) FROM nodes GROUP BY label")
	if err != nil {
		return nil, fmt.Errorf("counting nodes: %w", err)
	}
	counts.RelationshipsByType, err = c.groupCount(ctx, "SELECT rel_type, COUNT(*) FROM relationships GROUP BY rel_type")
	if err != nil {
		return nil, fmt.Errorf("counting relationships: %w", err)
	}
	return counts, nil
}

func (c *Client) groupCount(ctx context.Context, query string) (map[string]int64, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		out[key] = count
	}
	return out, rows.Err()
}

func (c *Client) ListFolders(ctx context.Context) ([]store.Node, error) {
	nodes, err := c.queryNodes(ctx, "SELECT id, label, folder_id, properties FROM nodes WHERE label = ? ORDER BY id", store.LabelFolder)
	if err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}
	return nodes, nil
}

func (c *Client) FolderGraph(ctx context.Context, folderID string) (*store.Subgraph, error) {
	nodes, err := c.queryNodes(ctx, "SELECT id, label, folder_id, properties FROM nodes WHERE folder_id = ? ORDER BY id", folderID)
	if err != nil {
		return nil, fmt.Errorf("reading folder nodes: %w", err)
	}

	graph := &store.Subgraph{}
	for _, node := range nodes {
		if node.Label == store.LabelFolder {
			folder := node
			graph.Folder = &folder
			continue
		}
		graph.Nodes = append(graph.Nodes, node)
	}

	graph.Relationships, err = c.queryRelationships(ctx, relationshipColumns+"WHERE r.folder_id = ? ORDER BY r.id", folderID)
	if err != nil {
		return nil, fmt.Errorf("reading folder relationships: %w", err)
	}
	return graph, nil
}

func (c *Client) IsolatedNodes(ctx context.Context) ([]store.Node, error) {
	nodes, err := c.queryNodes(ctx, `
	SELECT n.id, n.label, n.folder_id, n.properties FROM nodes n
	WHERE NOT EXISTS (SELECT 1 FROM relationships WHERE src_id = n.id OR dst_id = n.id)
	ORDER BY n.id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing isolated nodes: %w", err)
	}
	return nodes, nil
}

func (c *Client) ListCrossFolderRelationships(ctx context.Context) ([]store.Relationship, error) {
	rels, err := c.queryRelationships(ctx, relationshipColumns+"WHERE s.folder_id <> d.folder_id ORDER BY r.id")
	if err != nil {
		return nil, fmt.Errorf("listing cross-folder relationships: %w", err)
	}
	return rels, nil
}

func (c *Client) ListDuplicateNodeIDs(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT id FROM nodes GROUP BY id HAVING COUNT(*) > 1 ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing duplicate node ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning node id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (c *Client) queryNodes(ctx context.Context, query string, args ...any) ([]store.Node, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []store.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nodes: %w", err)
	}
	return nodes, nil
}

func scanNode(rows *sql.Rows) (store.Node, error) {
	var node store.Node
	var propsBytes []byte
	if err := rows.Scan(&node.ID, &node.Label, &node.FolderID, &propsBytes); err != nil {
		return store.Node{}, fmt.Errorf("scanning node: %w", err)
	}
	if err := json.Unmarshal(propsBytes, &node.Properties); err != nil {
		return store.Node{}, fmt.Errorf("unmarshaling properties: %w", err)
	}
	return node, nil
}

func (c *Client) queryRelationships(ctx context.Context, query string, args ...any) ([]store.Relationship, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rels []store.Relationship
	for rows.Next() {
		var rel store.Relationship
		var propsBytes []byte
		if err := rows.Scan(&rel.Type, &rel.SourceID, &rel.SourceLabel, &rel.TargetID, &rel.TargetLabel, &rel.FolderID, &propsBytes); err != nil {
			return nil, fmt.Errorf("scanning relationship: %w", err)
		}
		if err := json.Unmarshal(propsBytes, &rel.Properties); err != nil {
			return nil, fmt.Errorf("unmarshaling properties: %w", err)
		}
		rels = append(rels, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating relationships: %w", err)
	}
	return rels, nil
}
