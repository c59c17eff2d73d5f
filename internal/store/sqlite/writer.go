package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"iflowgraph/internal/store"
)

// Writer holds one pooled connection for the lifetime of a document.
type Writer struct {
	conn *sql.Conn
}

func (c *Client) NewWriter(ctx context.Context) (store.Writer, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring sqlite connection: %w", err)
	}
	return &Writer{conn: conn}, nil
}

func (w *Writer) Close(ctx context.Context) error {
	return w.conn.Close()
}

func (w *Writer) CreateFolder(ctx context.Context, folder store.Node) error {
	props, err := marshalProps(folder.Properties)
	if err != nil {
		return err
	}

	result, err := w.conn.ExecContext(ctx, `
	INSERT INTO nodes (id, label, folder_id, properties)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (id) DO NOTHING
	`, folder.ID, store.LabelFolder, folder.ID, props)
	if err != nil {
		return fmt.Errorf("creating folder: %w", err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	} else if affected == 0 {
		return fmt.Errorf("creating folder %s: %w", folder.ID, store.ErrFolderExists)
	}
	return nil
}

func (w *Writer) CreateNode(ctx context.Context, node store.Node) error {
	props, err := marshalProps(node.Properties)
	if err != nil {
		return err
	}

	result, err := w.conn.ExecContext(ctx, `
	INSERT INTO nodes (id, label, folder_id, properties)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		label = excluded.label,
		properties = excluded.properties
	WHERE nodes.folder_id = excluded.folder_id
	`, node.ID, node.Label, node.FolderID, props)
	if err != nil {
		return fmt.Errorf("creating node: %w", err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	} else if affected == 0 {
		return fmt.Errorf("creating node %s in %s: %w", node.ID, node.FolderID, store.ErrNodeConflict)
	}
	return nil
}

func (w *Writer) CreateRelationship(ctx context.Context, rel store.Relationship) error {
	props, err := marshalProps(rel.Properties)
	if err != nil {
		return err
	}

	result, err := w.conn.ExecContext(ctx, `
	INSERT INTO relationships (rel_type, src_id, dst_id, folder_id, properties)
	SELECT ?, ?, ?, ?, ?
	WHERE EXISTS (SELECT 1 FROM nodes WHERE id = ?)
	  AND EXISTS (SELECT 1 FROM nodes WHERE id = ?)
	`, rel.Type, rel.SourceID, rel.TargetID, rel.FolderID, props, rel.SourceID, rel.TargetID)
	if err != nil {
		return fmt.Errorf("creating %s relationship: %w", rel.Type, err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	} else if affected == 0 {
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
