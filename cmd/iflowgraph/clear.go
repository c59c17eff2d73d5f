package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"iflowgraph/internal/identity"
)

func clearCmd() *cobra.Command {
	var folder string
	var all bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete one folder's graph or the whole store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			folder = strings.TrimSpace(folder)
			if (folder == "") == !all {
				return fmt.Errorf("exactly one of --folder or --all is required")
			}
			return runClear(folder, all)
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "Folder display name or id")
	cmd.Flags().BoolVar(&all, "all", false, "Delete every node and relationship")
	return cmd
}

func runClear(folder string, all bool) error {
	ctx := context.Background()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	if all {
		deleted, err := db.DeleteAll(ctx)
		if err != nil {
			return err
		}
		logger.Info("cleared store", "deleted_nodes", deleted)
		fmt.Fprintf(os.Stdout, "Deleted %d nodes.\n", deleted)
		return nil
	}

	folderID := identity.ResolveFolderID(folder)
	deleted, err := db.DeleteFolder(ctx, folderID)
	if err != nil {
		return err
	}
	logger.Info("cleared folder", "folder_id", folderID, "deleted_nodes", deleted)
	fmt.Fprintf(os.Stdout, "Deleted %d nodes from %s.\n", deleted, folderID)
	return nil
}
