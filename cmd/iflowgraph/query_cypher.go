package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"iflowgraph/internal/config"
	"iflowgraph/internal/graph"
)

func queryCypherCmd() *cobra.Command {
	var paramPairs []string
	cmd := &cobra.Command{
		Use:   "cypher <query>",
		Short: "Execute a raw Cypher query (neo4j backend)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(paramPairs)
			if err != nil {
				return err
			}
			return runCypher(strings.Join(args, " "), params)
		},
	}
	cmd.Flags().StringArrayVar(&paramPairs, "param", nil, "Query parameter as key=value (repeatable)")
	return cmd
}

func runCypher(query string, params map[string]any) error {
	ctx := context.Background()

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Store.Backend != config.BackendNeo4j {
		return fmt.Errorf("query cypher requires the neo4j backend, configured backend is %s", cfg.Store.Backend)
	}

	client, err := graph.NewClient(ctx, cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, cfg.Neo4j.Database, cfg.Neo4j.MaxPoolSize)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	rows, err := client.RunCypher(ctx, query, params)
	if err != nil {
		return err
	}
	return printJSON(rows)
}
