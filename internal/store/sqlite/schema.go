package sqlite

import (
	"context"
	"fmt"
	"strings"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS nodes (
		id         TEXT PRIMARY KEY,
		label      TEXT NOT NULL,
		folder_id  TEXT NOT NULL,
		properties TEXT NOT NULL DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS relationships (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		rel_type   TEXT NOT NULL,
		src_id     TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
		dst_id     TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
		folder_id  TEXT NOT NULL,
		properties TEXT NOT NULL DEFAULT '{}'
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_folder ON nodes (folder_id);
	CREATE INDEX IF NOT EXISTS idx_nodes_label ON nodes (label);
	CREATE INDEX IF NOT EXISTS idx_relationships_src ON relationships (src_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_dst ON relationships (dst_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_type ON relationships (rel_type);
	CREATE INDEX IF NOT EXISTS idx_relationships_folder ON relationships (folder_id);
	`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(ddl) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		statements = append(statements, current.String())
	}

	return statements
}
