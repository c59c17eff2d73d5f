package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS nodes (
    id         TEXT PRIMARY KEY,
    label      TEXT NOT NULL,
    folder_id  TEXT NOT NULL,
    properties JSONB NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS relationships (
    id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    rel_type   TEXT NOT NULL,
    src_id     TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
    dst_id     TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
    folder_id  TEXT NOT NULL,
    properties JSONB NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_nodes_folder ON nodes (folder_id);
CREATE INDEX IF NOT EXISTS idx_nodes_label ON nodes (label);
CREATE INDEX IF NOT EXISTS idx_relationships_src ON relationships (src_id);
CREATE INDEX IF NOT EXISTS idx_relationships_dst ON relationships (dst_id);
CREATE INDEX IF NOT EXISTS idx_relationships_type ON relationships (rel_type);
CREATE INDEX IF NOT EXISTS idx_relationships_folder ON relationships (folder_id);
`
	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
