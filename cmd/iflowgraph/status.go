package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"iflowgraph/internal/report"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show graph statistics and isolated nodes",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	stats, err := report.Collect(ctx, db, nil, nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Folders:       %d\n", stats.TotalFolders)
	fmt.Fprintf(os.Stdout, "Nodes:         %d\n", stats.TotalNodes)
	printGrouped(stats.NodesByType)
	fmt.Fprintf(os.Stdout, "Relationships: %d\n", stats.TotalRelationships)
	printGrouped(stats.RelationshipsByType)

	isolated, err := report.IsolatedNodes(ctx, db)
	if err != nil {
		return err
	}
	if len(isolated) == 0 {
		fmt.Fprintln(os.Stdout, "No isolated nodes.")
		return nil
	}
	labels := make([]string, 0, len(isolated))
	for label := range isolated {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	fmt.Fprintln(os.Stdout, "Isolated nodes:")
	for _, label := range labels {
		fmt.Fprintf(os.Stdout, "  %s (%d)\n", label, len(isolated[label]))
		for _, node := range isolated[label] {
			fmt.Fprintf(os.Stdout, "    - %s [%s]\n", node.Name, node.ID)
		}
	}
	return nil
}

func printGrouped(counts map[string]int64) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(os.Stdout, "  %-16s %d\n", k, counts[k])
	}
}
