package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

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
	rows, err := c.pool.Query(ctx, query)
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
	nodes, err := c.queryNodes(ctx, "SELECT id, label, folder_id, properties FROM nodes WHERE label = $1 ORDER BY id", store.LabelFolder)
	if err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}
	return nodes, nil
}

func (c *Client) FolderGraph(ctx context.Context, folderID string) (*store.Subgraph, error) {
	nodes, err := c.queryNodes(ctx, "SELECT id, label, folder_id, properties FROM nodes WHERE folder_id = $1 ORDER BY id", folderID)
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

	graph.Relationships, err = c.queryRelationships(ctx, relationshipColumns+"WHERE r.folder_id = $1 ORDER BY r.id", folderID)
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
	rows, err := c.pool.Query(ctx, "SELECT id FROM nodes GROUP BY id HAVING COUNT(*) > 1 ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing duplicate node ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collecting node ids: %w", err)
	}
	return ids, nil
}

func (c *Client) queryNodes(ctx context.Context, query string, args ...any) ([]store.Node, error) {
	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.Node, error) {
		var node store.Node
		err := row.Scan(&node.ID, &node.Label, &node.FolderID, &node.Properties)
		return node, err
	})
}

func (c *Client) queryRelationships(ctx context.Context, query string, args ...any) ([]store.Relationship, error) {
	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.Relationship, error) {
		var rel store.Relationship
		err := row.Scan(&rel.Type, &rel.SourceID, &rel.SourceLabel, &rel.TargetID, &rel.TargetLabel, &rel.FolderID, &rel.Properties)
		return rel, err
	})
}
