package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"iflowgraph/internal/identity"
	"iflowgraph/internal/report"
)

func queryFlowCmd() *cobra.Command {
	var folder string
	cmd := &cobra.Command{
		Use:       "flow <" + strings.Join(report.FlowQueries, "|") + ">",
		Short:     "Run a named flow query against one folder",
		Args:      cobra.ExactArgs(1),
		ValidArgs: report.FlowQueries,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(folder) == "" {
				return fmt.Errorf("--folder is required")
			}
			return runFlow(args[0], folder)
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "Folder display name")
	return cmd
}

func runFlow(query, folder string) error {
	ctx := context.Background()

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	rows, err := report.Flow(ctx, db, identity.ResolveFolderID(folder), query)
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []report.FlowRow{}
	}
	return printJSON(rows)
}
