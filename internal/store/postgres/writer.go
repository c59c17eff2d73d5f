package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"iflowgraph/internal/store"
)

// Writer holds one acquired pool connection for the lifetime of a document.
type Writer struct {
	conn *pgxpool.Conn
}

func (c *Client) NewWriter(ctx context.Context) (store.Writer, error) {
	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring postgres connection: %w", err)
	}
	return &Writer{conn: conn}, nil
}

func (w *Writer) Close(ctx context.Context) error {
	w.conn.Release()
	return nil
}

func (w *Writer) CreateFolder(ctx context.Context, folder store.Node) error {
	props, err := marshalProps(folder.Properties)
	if err != nil {
		return err
	}

	tag, err := w.conn.Exec(ctx, `
INSERT INTO nodes (id, label, folder_id, properties)
VALUES ($1, $2, $1, $3::jsonb)
ON CONFLICT (id) DO NOTHING
`, folder.ID, store.LabelFolder, props)
	if err != nil {
		return fmt.Errorf("creating folder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("creating folder %s: %w", folder.ID, store.ErrFolderExists)
	}
	return nil
}

func (w *Writer) CreateNode(ctx context.Context, node store.Node) error {
	props, err := marshalProps(node.Properties)
	if err != nil {
		return err
	}

	tag, err := w.conn.Exec(ctx, `
INSERT INTO nodes (id, label, folder_id, properties)
VALUES ($1, $2, $3, $4::jsonb)
ON CONFLICT (id) DO UPDATE SET
    label = EXCLUDED.label,
    properties = EXCLUDED.properties
WHERE nodes.folder_id = EXCLUDED.folder_id
`, node.ID, node.Label, node.FolderID, props)
	if err != nil {
		return fmt.Errorf("creating node: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("creating node %s in %s: %w", node.ID, node.FolderID, store.ErrNodeConflict)
	}
	return nil
}

func (w *Writer) CreateRelationship(ctx context.Context, rel store.Relationship) error {
	props, err := marshalProps(rel.Properties)
	if err != nil {
		return err
	}

	tag, err := w.conn.Exec(ctx, `
INSERT INTO relationships (rel_type, src_id, dst_id, folder_id, properties)
SELECT $1, $2, $3, $4, $5::jsonb
WHERE EXISTS (SELECT 1 FROM nodes WHERE id = $2)
  AND EXISTS (SELECT 1 FROM nodes WHERE id = $3)
`, rel.Type, rel.SourceID, rel.TargetID, rel.FolderID, props)
	if err != nil {
		return fmt.Errorf("creating %s relationship: %w", rel.Type, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("creating %s relationship %s -> %s: %w", rel.Type, rel.SourceID, rel.TargetID, store.ErrNodeNotFound)
	}
	return nil
}

func marshalProps(props map[string]any) (string, error) {
	if props == nil {
		props = map[string]any{}
	}
	data, err := json.Marshal(props)
	if err != nil {
		return "", fmt.Errorf("marshaling properties: %w", err)
	}
	return string(data), nil
}
