// Package store defines the persistence contract shared by the graph backends.
package store

import (
	"context"
	"errors"
)

var (
	// ErrFolderExists is returned by Writer.CreateFolder when a Folder node with the same id
	// is already present.
	ErrFolderExists = errors.New("folder already exists")
	// ErrNodeNotFound is returned when a relationship endpoint does not resolve.
	ErrNodeNotFound = errors.New("node not found")
	// ErrNodeConflict is returned by Writer.CreateNode when the id is already held by a node
	// of another folder.
	ErrNodeConflict = errors.New("node id belongs to another folder")
)

type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	// NewWriter opens one write session. A document is written through a single writer.
	NewWriter(ctx context.Context) (Writer, error)

	Counts(ctx context.Context) (*Counts, error)
	ListFolders(ctx context.Context) ([]Node, error)
	FolderGraph(ctx context.Context, folderID string) (*Subgraph, error)
	IsolatedNodes(ctx context.Context) ([]Node, error)

	ListCrossFolderRelationships(ctx context.Context) ([]Relationship, error)
	ListDuplicateNodeIDs(ctx context.Context) ([]string, error)

	DeleteFolder(ctx context.Context, folderID string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// Writer creates graph elements. Nodes must exist before relationships that reference them.
type Writer interface {
	// CreateFolder creates the Folder node atomically, failing with ErrFolderExists when
	// the id is taken.
	CreateFolder(ctx context.Context, folder Node) error
	// CreateNode creates or updates a node of node.FolderID. It never moves a node between
	// folders; such a write fails with ErrNodeConflict.
	CreateNode(ctx context.Context, node Node) error
	CreateRelationship(ctx context.Context, rel Relationship) error
	Close(ctx context.Context) error
}
