package graph

import (
	"context"
	"fmt"
	"maps"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"iflowgraph/internal/store"
)

// Writer writes one document's elements through a single session.
type Writer struct {
	session neo4j.SessionWithContext
}

func (c *Client) NewWriter(ctx context.Context) (store.Writer, error) {
	return &Writer{session: c.session(ctx)}, nil
}

func (w *Writer) Close(ctx context.Context) error {
	return w.session.Close(ctx)
}

func (w *Writer) CreateFolder(ctx context.Context, folder store.Node) error {
	query := `
CREATE (f:Folder {id: $id})
SET f += $props, f.folder_id = $id
`
	params := map[string]any{"id": folder.ID, "props": nodeProps(folder)}

	if err := w.write(ctx, query, params); err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("creating folder %s: %w", folder.ID, store.ErrFolderExists)
		}
		return fmt.Errorf("creating folder: %w", err)
	}
	return nil
}

func (w *Writer) CreateNode(ctx context.Context, node store.Node) error {
	if !identPattern.MatchString(node.Label) {
		return fmt.Errorf("invalid label: %s", node.Label)
	}

	query := fmt.Sprintf(`
MERGE (n:%s {id: $id})
ON CREATE SET n.folder_id = $folder_id
WITH n WHERE n.folder_id = $folder_id
SET n += $props
RETURN count(n) AS written
`, node.Label)
	params := map[string]any{"id": node.ID, "folder_id": node.FolderID, "props": nodeProps(node)}

	written, err := w.writeCount(ctx, query, params, "written")
	if err != nil {
		return fmt.Errorf("creating node: %w", err)
	}
	if written == 0 {
		return fmt.Errorf("creating node %s in %s: %w", node.ID, node.FolderID, store.ErrNodeConflict)
	}
	return nil
}

func (w *Writer) CreateRelationship(ctx context.Context, rel store.Relationship) error {
	for _, ident := range []string{rel.Type, rel.SourceLabel, rel.TargetLabel} {
		if !identPattern.MatchString(ident) {
			return fmt.Errorf("invalid relationship identifier: %q", ident)
		}
	}

	query := fmt.Sprintf(`
MATCH (a:%s {id: $source}), (b:%s {id: $target})
CREATE (a)-[r:%s]->(b)
SET r += $props, r.folder_id = $folder_id
RETURN count(r) AS created
`, rel.SourceLabel, rel.TargetLabel, rel.Type)
	params := map[string]any{
		"source":    rel.SourceID,
		"target":    rel.TargetID,
		"folder_id": rel.FolderID,
		"props":     relProps(rel),
	}

	created, err := w.writeCount(ctx, query, params, "created")
	if err != nil {
		return fmt.Errorf("creating %s relationship: %w", rel.Type, err)
	}
	if created == 0 {
		return fmt.Errorf("creating %s relationship %s -> %s: %w", rel.Type, rel.SourceID, rel.TargetID, store.ErrNodeNotFound)
	}
	return nil
}

// writeCount runs query in a write transaction and returns the integer column of its
// single record.
func (w *Writer) writeCount(ctx context.Context, query string, params map[string]any, column string) (int64, error) {
	value, err := w.session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		value, _ := record.Get(column)
		return value, nil
	})
	if err != nil {
		return 0, err
	}
	n, _ := value.(int64)
	return n, nil
}

func (w *Writer) write(ctx context.Context, query string, params map[string]any) error {
	_, err := w.session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, query, params)
		return nil, err
	})
	return err
}

func nodeProps(node store.Node) map[string]any {
	props := maps.Clone(node.Properties)
	if props == nil {
		props = map[string]any{}
	}
	delete(props, "id")
	delete(props, "folder_id")
	return props
}

func relProps(rel store.Relationship) map[string]any {
	props := maps.Clone(rel.Properties)
	if props == nil {
		props = map[string]any{}
	}
	delete(props, "folder_id")
	return props
}
