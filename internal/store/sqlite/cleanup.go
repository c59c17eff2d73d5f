package sqlite

import (
	"context"
	"fmt"
)

// DeleteFolder removes every node carrying folderID. Relationships go with them through
// ON DELETE CASCADE.
func (c *Client) DeleteFolder(ctx context.Context, folderID string) (int64, error) {
	result, err := c.db.ExecContext(ctx, "DELETE FROM nodes WHERE folder_id = ?", folderID)
	if err != nil {
		return 0, fmt.Errorf("deleting folder %s: %w", folderID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return affected, nil
}

func (c *Client) DeleteAll(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx, "DELETE FROM nodes")
	if err != nil {
		return 0, fmt.Errorf("deleting all nodes: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return affected, nil
}
