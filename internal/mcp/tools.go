package mcp

import (
	"context"
	"fmt"
	"sort"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"iflowgraph/internal/config"
	"iflowgraph/internal/identity"
	"iflowgraph/internal/report"
	"iflowgraph/internal/store"
)

type GetStatisticsInput struct{}

type ListFoldersInput struct{}

type GetFolderInput struct {
	Folder string `json:"folder" jsonschema:"folder display name or Folder_ id"`
}

type QueryFlowInput struct {
	Folder string `json:"folder" jsonschema:"folder display name or Folder_ id"`
	Query  string `json:"query" jsonschema:"one of full, main, subprocesses, external"`
}

type ListIsolatedNodesInput struct{}

type GetClassifierRulesInput struct{}

type FolderOutput struct {
	Name       string `json:"name"`
	ID         string `json:"id"`
	SourceFile string `json:"source_file,omitempty"`
	Fallback   bool   `json:"fallback"`
	IngestedAt string `json:"ingested_at,omitempty"`
}

type ListFoldersOutput struct {
	Folders []FolderOutput `json:"folders"`
}

type GetFolderOutput struct {
	Folder FolderOutput     `json:"folder"`
	Nodes  []map[string]any `json:"nodes"`
}

type QueryFlowOutput struct {
	Query string           `json:"query"`
	Rows  []report.FlowRow `json:"rows"`
}

type IsolatedNodeGroupOutput struct {
	Label string                `json:"label"`
	Nodes []report.IsolatedNode `json:"nodes"`
}

type ListIsolatedNodesOutput struct {
	Groups []IsolatedNodeGroupOutput `json:"groups"`
}

type ClassifierRulesOutput struct {
	Version int                    `json:"version"`
	Rules   []ClassifierRuleOutput `json:"rules"`
	Default string                 `json:"default"`
}

type ClassifierRuleOutput struct {
	Name    string   `json:"name"`
	Fields  []string `json:"fields"`
	Match   string   `json:"match"`
	Values  []string `json:"values,omitempty"`
	Verdict string   `json:"verdict"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_statistics",
		Description: "Count nodes by label and relationships by type across all folders",
	}, s.handleGetStatistics)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_folders",
		Description: "List ingested iFlow folders",
	}, s.handleListFolders)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_folder",
		Description: "Return every node a folder contains",
	}, s.handleGetFolder)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "query_flow",
		Description: "Run a named flow query (full, main, subprocesses, external) against one folder",
	}, s.handleQueryFlow)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_isolated_nodes",
		Description: "List nodes without relationships, grouped by label",
	}, s.handleListIsolatedNodes)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_classifier_rules",
		Description: "Return the protocol classifier rule table in effect",
	}, s.handleGetClassifierRules)
}

func (s *Server) handleGetStatistics(ctx context.Context, req *sdk.CallToolRequest, input GetStatisticsInput) (*sdk.CallToolResult, report.Statistics, error) {
	stats, err := report.Collect(ctx, s.db, nil, nil)
	if err != nil {
		return nil, report.Statistics{}, err
	}
	return nil, *stats, nil
}

func (s *Server) handleListFolders(ctx context.Context, req *sdk.CallToolRequest, input ListFoldersInput) (*sdk.CallToolResult, ListFoldersOutput, error) {
	folders, err := s.db.ListFolders(ctx)
	if err != nil {
		return nil, ListFoldersOutput{}, err
	}

	output := make([]FolderOutput, 0, len(folders))
	for _, folder := range folders {
		output = append(output, folderOutputFromNode(folder))
	}
	return nil, ListFoldersOutput{Folders: output}, nil
}

func (s *Server) handleGetFolder(ctx context.Context, req *sdk.CallToolRequest, input GetFolderInput) (*sdk.CallToolResult, GetFolderOutput, error) {
	if input.Folder == "" {
		return nil, GetFolderOutput{}, fmt.Errorf("folder is required")
	}
	folderID := identity.ResolveFolderID(input.Folder)

	graph, err := s.db.FolderGraph(ctx, folderID)
	if err != nil {
		return nil, GetFolderOutput{}, err
	}
	if graph.Folder == nil {
		return nil, GetFolderOutput{}, fmt.Errorf("folder not found")
	}
	nodes, _, err := report.FolderContents(ctx, s.db, folderID)
	if err != nil {
		return nil, GetFolderOutput{}, err
	}
	return nil, GetFolderOutput{Folder: folderOutputFromNode(*graph.Folder), Nodes: nodes}, nil
}

func (s *Server) handleQueryFlow(ctx context.Context, req *sdk.CallToolRequest, input QueryFlowInput) (*sdk.CallToolResult, QueryFlowOutput, error) {
	if input.Folder == "" {
		return nil, QueryFlowOutput{}, fmt.Errorf("folder is required")
	}
	query := input.Query
	if query == "" {
		query = report.FlowFull
	}
	rows, err := report.Flow(ctx, s.db, identity.ResolveFolderID(input.Folder), query)
	if err != nil {
		return nil, QueryFlowOutput{}, err
	}
	if rows == nil {
		rows = []report.FlowRow{}
	}
	return nil, QueryFlowOutput{Query: query, Rows: rows}, nil
}

func (s *Server) handleListIsolatedNodes(ctx context.Context, req *sdk.CallToolRequest, input ListIsolatedNodesInput) (*sdk.CallToolResult, ListIsolatedNodesOutput, error) {
	grouped, err := report.IsolatedNodes(ctx, s.db)
	if err != nil {
		return nil, ListIsolatedNodesOutput{}, err
	}

	labels := make([]string, 0, len(grouped))
	for label := range grouped {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	output := ListIsolatedNodesOutput{Groups: make([]IsolatedNodeGroupOutput, 0, len(labels))}
	for _, label := range labels {
		output.Groups = append(output.Groups, IsolatedNodeGroupOutput{Label: label, Nodes: grouped[label]})
	}
	return nil, output, nil
}

func (s *Server) handleGetClassifierRules(ctx context.Context, req *sdk.CallToolRequest, input GetClassifierRulesInput) (*sdk.CallToolResult, ClassifierRulesOutput, error) {
	return nil, classifierRulesOutputFromConfig(s.rules), nil
}

func folderOutputFromNode(node store.Node) FolderOutput {
	out := FolderOutput{Name: node.Name(), ID: node.ID}
	out.SourceFile, _ = node.Properties["source_file"].(string)
	out.Fallback, _ = node.Properties["fallback"].(bool)
	out.IngestedAt, _ = node.Properties["ingested_at"].(string)
	return out
}

func classifierRulesOutputFromConfig(rules config.ClassifierRules) ClassifierRulesOutput {
	out := ClassifierRulesOutput{
		Version: rules.Version,
		Rules:   make([]ClassifierRuleOutput, 0, len(rules.Rules)),
		Default: rules.Default,
	}
	for _, rule := range rules.Rules {
		out.Rules = append(out.Rules, ClassifierRuleOutput{
			Name:    rule.Name,
			Fields:  append([]string{}, rule.Fields...),
			Match:   rule.Match,
			Values:  rule.Values,
			Verdict: rule.Verdict,
		})
	}
	return out
}
