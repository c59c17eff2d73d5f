// Package graph is the Neo4j-backed graph store.
package graph

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"iflowgraph/internal/store"
)

var _ store.Store = (*Client)(nil)

// identPattern guards labels and relationship types interpolated into Cypher.
var identPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

const constraintViolation = "Neo.ClientError.Schema.ConstraintValidationFailed"

type Client struct {
	driver   neo4j.DriverWithContext
	database string
}

func NewClient(ctx context.Context, uri, username, password, database string, maxPoolSize int) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""), func(c *neo4j.Config) {
		if maxPoolSize > 0 {
			c.MaxConnectionPoolSize = maxPoolSize
		}
	})
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verifying neo4j connectivity: %w", err)
	}

	return &Client{driver: driver, database: database}, nil
}

func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.driver == nil {
		return nil
	}
	return c.driver.Close(ctx)
}

func (c *Client) session(ctx context.Context) neo4j.SessionWithContext {
	return c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
}

// EnsureSchema creates the folder uniqueness constraint and per-label id indexes.
func (c *Client) EnsureSchema(ctx context.Context) error {
	session := c.session(ctx)
	defer session.Close(ctx)

	statements := []string{
		`CREATE CONSTRAINT folder_id_unique IF NOT EXISTS FOR (f:Folder) REQUIRE f.id IS UNIQUE`,
		`CREATE INDEX process_id IF NOT EXISTS FOR (n:Process) ON (n.id)`,
		`CREATE INDEX participant_id IF NOT EXISTS FOR (n:Participant) ON (n.id)`,
		`CREATE INDEX component_id IF NOT EXISTS FOR (n:Component) ON (n.id)`,
		`CREATE INDEX subprocess_id IF NOT EXISTS FOR (n:SubProcess) ON (n.id)`,
		`CREATE INDEX protocol_id IF NOT EXISTS FOR (n:Protocol) ON (n.id)`,
		`CREATE INDEX component_folder IF NOT EXISTS FOR (n:Component) ON (n.folder_id)`,
	}

	for _, stmt := range statements {
		if _, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			_, err := tx.Run(ctx, stmt, nil)
			return nil, err
		}); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}

	return nil
}

// read runs query in a read transaction and hands each record to fn.
func (c *Client) read(ctx context.Context, query string, params map[string]any, fn func(*neo4j.Record) error) error {
	session := c.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			if err := fn(res.Record()); err != nil {
				return nil, err
			}
		}
		return nil, res.Err()
	})
	return err
}

func isConstraintViolation(err error) bool {
	var neoErr *neo4j.Neo4jError
	return errors.As(err, &neoErr) && neoErr.Code == constraintViolation
}
