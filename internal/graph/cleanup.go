package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// DeleteFolder detaches and removes every node carrying folderID, the Folder node included.
func (c *Client) DeleteFolder(ctx context.Context, folderID string) (int64, error) {
	deleted, err := c.deleteWhere(ctx, "MATCH (n {folder_id: $folder_id}) DETACH DELETE n RETURN count(n) AS deleted",
		map[string]any{"folder_id": folderID})
	if err != nil {
		return 0, fmt.Errorf("deleting folder %s: %w", folderID, err)
	}
	return deleted, nil
}

func (c *Client) DeleteAll(ctx context.Context) (int64, error) {
	deleted, err := c.deleteWhere(ctx, "MATCH (n) DETACH DELETE n RETURN count(n) AS deleted", nil)
	if err != nil {
		return 0, fmt.Errorf("deleting all nodes: %w", err)
	}
	return deleted, nil
}

func (c *Client) deleteWhere(ctx context.Context, query string, params map[string]any) (int64, error) {
	session := c.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			value, _ := res.Record().Get("deleted")
			if count, ok := value.(int64); ok {
				return count, nil
			}
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return int64(0), nil
	})
	if err != nil {
		return 0, err
	}

	return result.(int64), nil
}
