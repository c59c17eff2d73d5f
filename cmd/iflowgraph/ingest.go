package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"iflowgraph/internal/iflow"
	"iflowgraph/internal/ingest"
	"iflowgraph/internal/store"
)

func ingestCmd() *cobra.Command {
	var file, folder string
	var noHeuristics, folderIndex bool
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest one iFlow document into its own folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(file) == "" {
				return fmt.Errorf("--file is required")
			}
			if folder == "" {
				folder = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
			}
			return runIngest(cmd.Context(), file, folder, noHeuristics, folderIndex)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to the .iflw document")
	cmd.Flags().StringVar(&folder, "folder", "", "Folder display name (defaults to the file name)")
	cmd.Flags().BoolVar(&noHeuristics, "no-heuristics", false, "Skip name-matching protocol links")
	cmd.Flags().BoolVar(&folderIndex, "folder-index", false, "Add CONTAINS_ALL edges from the folder to every node")
	return cmd
}

func runIngest(ctx context.Context, file, folder string, noHeuristics, folderIndex bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	_, classifier, err := loadClassifier(cfg)
	if err != nil {
		return err
	}

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	pipeline := ingest.New(iflow.NewExtractor(classifier, cfg.Ingest.Fallback, logger), db, logger)
	result, err := pipeline.Run(ctx, file, ingest.Options{
		Folder:      folder,
		Heuristics:  cfg.Ingest.HeuristicsEnabled() && !noHeuristics,
		FolderIndex: cfg.Ingest.FolderIndex || folderIndex,
		Counts:      true,
	})
	if errors.Is(err, store.ErrFolderExists) {
		return fmt.Errorf("folder %q already exists: run `iflowgraph clear --folder %q` or choose another name", result.Folder, result.Folder)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Ingestion complete.")
	fmt.Fprintf(os.Stdout, "  Folder:         %s (%s)\n", result.Folder, result.FolderID)
	if result.Fallback {
		fmt.Fprintf(os.Stdout, "  Fallback:       %s\n", result.FallbackReason)
	}
	fmt.Fprintf(os.Stdout, "  Nodes written:  %d\n", result.Written.Nodes)
	fmt.Fprintf(os.Stdout, "  Edges written:  %d\n", result.Written.Relationships)
	fmt.Fprintf(os.Stdout, "  Heuristic:      %d\n", result.Written.Stats.Heuristic)
	fmt.Fprintf(os.Stdout, "  Dropped:        %d\n", result.Written.Stats.Dropped)
	fmt.Fprintf(os.Stdout, "  Store nodes:    %d -> %d\n", result.Before.TotalNodes(), result.After.TotalNodes())
	fmt.Fprintf(os.Stdout, "  Store edges:    %d -> %d\n", result.Before.TotalRelationships(), result.After.TotalRelationships())
	return nil
}
