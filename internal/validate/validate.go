// Package validate checks the stored graph for the invariants ingestion is meant to keep.
package validate

import (
	"context"
	"fmt"

	"iflowgraph/internal/identity"
	"iflowgraph/internal/store"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeIsolatedNode      = "isolated_node"
	codeCrossFolder       = "cross_folder_relationship"
	codeDuplicateNodeID   = "duplicate_node_id"
	codeUncontainedNode   = "uncontained_node"
	codeFolderMismatch    = "folder_id_mismatch"
	codeFolderNoProcesses = "folder_without_process"
)

type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	FolderID string   `json:"folder_id,omitempty"`
	Node     string   `json:"node,omitempty"`
}

type Report struct {
	Issues []Issue `json:"issues"`
}

// HasErrors reports whether any issue has error severity.
func (r *Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// GraphValidator is the read side of store.Store that validation needs.
type GraphValidator interface {
	ListFolders(ctx context.Context) ([]store.Node, error)
	FolderGraph(ctx context.Context, folderID string) (*store.Subgraph, error)
	IsolatedNodes(ctx context.Context) ([]store.Node, error)
	ListCrossFolderRelationships(ctx context.Context) ([]store.Relationship, error)
	ListDuplicateNodeIDs(ctx context.Context) ([]string, error)
}

func Run(ctx context.Context, graph GraphValidator) (*Report, error) {
	if graph == nil {
		return nil, fmt.Errorf("graph client is required")
	}

	issues := make([]Issue, 0)

	folders, err := graph.ListFolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	for _, folder := range folders {
		sub, err := graph.FolderGraph(ctx, folder.ID)
		if err != nil {
			return nil, fmt.Errorf("read folder %s: %w", folder.ID, err)
		}
		issues = append(issues, validateFolder(folder, sub)...)
	}

	isolated, err := graph.IsolatedNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list isolated nodes: %w", err)
	}
	for _, node := range isolated {
		issues = append(issues, issueFromNode(node, SeverityWarn, codeIsolatedNode, fmt.Sprintf("isolated %s node", node.Label)))
	}

	cross, err := graph.ListCrossFolderRelationships(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cross-folder relationships: %w", err)
	}
	for _, rel := range cross {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeCrossFolder,
			Message:  fmt.Sprintf("%s edge %s -> %s crosses folders", rel.Type, rel.SourceID, rel.TargetID),
			FolderID: rel.FolderID,
			Node:     rel.SourceID,
		})
	}

	duplicates, err := graph.ListDuplicateNodeIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list duplicate node ids: %w", err)
	}
	for _, id := range duplicates {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeDuplicateNodeID,
			Message:  "node id used more than once",
			Node:     id,
		})
	}

	return &Report{Issues: issues}, nil
}

// validateFolder checks that every node of a folder is scoped to it and contained by it.
func validateFolder(folder store.Node, sub *store.Subgraph) []Issue {
	var issues []Issue

	contained := make(map[string]bool)
	for _, rel := range sub.Relationships {
		if rel.Type == store.RelContains && rel.SourceID == folder.ID {
			contained[rel.TargetID] = true
		}
	}

	processes := 0
	for _, node := range sub.Nodes {
		if node.Label == store.LabelProcess {
			processes++
		}
		if raw, ok := identity.RawID(folder.ID, node.ID); !ok || raw == "" {
			issues = append(issues, issueFromNode(node, SeverityError, codeFolderMismatch, "node id is not scoped to its folder"))
		}
		if !contained[node.ID] {
			issues = append(issues, issueFromNode(node, SeverityWarn, codeUncontainedNode, "node is not contained by its folder"))
		}
	}
	if processes == 0 {
		issues = append(issues, issueFromNode(folder, SeverityWarn, codeFolderNoProcesses, "folder has no process"))
	}
	return issues
}

func issueFromNode(node store.Node, severity Severity, code, message string) Issue {
	return Issue{
		Severity: severity,
		Code:     code,
		Message:  message,
		FolderID: node.FolderID,
		Node:     node.ID,
	}
}
