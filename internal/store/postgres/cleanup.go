package postgres

import (
	"context"
	"fmt"
)

// DeleteFolder removes every node carrying folderID; relationships cascade.
func (c *Client) DeleteFolder(ctx context.Context, folderID string) (int64, error) {
	tag, err := c.pool.Exec(ctx, "DELETE FROM nodes WHERE folder_id = $1", folderID)
	if err != nil {
		return 0, fmt.Errorf("deleting folder %s: %w", folderID, err)
	}
	return tag.RowsAffected(), nil
}

func (c *Client) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := c.pool.Exec(ctx, "DELETE FROM nodes")
	if err != nil {
		return 0, fmt.Errorf("deleting all nodes: %w", err)
	}
	return tag.RowsAffected(), nil
}
