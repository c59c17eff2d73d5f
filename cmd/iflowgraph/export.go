package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"iflowgraph/internal/report"
)

func exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export statistics and per-folder node snapshots as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(output)
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "Output file (stdout when empty)")
	return cmd
}

func runExport(output string) error {
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

	export, err := report.BuildExport(ctx, db, nil, nil)
	if err != nil {
		return err
	}
	if output == "" {
		return report.WriteJSON(os.Stdout, export)
	}
	if err := report.WriteJSONFile(output, export); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Exported %d folders to %s\n", len(export.Folders), output)
	return nil
}
