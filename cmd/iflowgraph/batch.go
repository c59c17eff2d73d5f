package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"iflowgraph/internal/batch"
	"iflowgraph/internal/iflow"
	"iflowgraph/internal/ingest"
	"iflowgraph/internal/metrics"
	"iflowgraph/internal/report"
)

type batchFlags struct {
	base         string
	dryRun       bool
	workers      int
	export       string
	metricsFile  string
	keepExisting bool
	noHeuristics bool
}

func batchCmd() *cobra.Command {
	var flags batchFlags
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Discover and ingest every iFlow project under a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), flags)
		},
	}
	cmd.Flags().StringVar(&flags.base, "base", "", "Directory holding iFlow projects (defaults to source.base_dir)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "List discovered documents without writing")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Concurrent documents (defaults to batch.workers)")
	cmd.Flags().StringVar(&flags.export, "export", "", "Write the JSON export to this file")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "Write run metrics in Prometheus textfile format")
	cmd.Flags().BoolVar(&flags.keepExisting, "keep-existing", false, "Do not clear the store before ingesting")
	cmd.Flags().BoolVar(&flags.noHeuristics, "no-heuristics", false, "Skip name-matching protocol links")
	return cmd
}

func runBatch(ctx context.Context, flags batchFlags) error {
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

	base := flags.base
	if base == "" {
		base = cfg.Source.BaseDir
	}
	docs, err := batch.Discover(base, cfg.Source.Pattern, cfg.Source.Exclude)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintf(os.Stdout, "No iFlow documents found under %s.\n", base)
		return nil
	}

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	workers := flags.workers
	if workers == 0 {
		workers = cfg.Batch.Workers
	}
	m := metrics.NewBatch()
	pipeline := ingest.New(iflow.NewExtractor(classifier, cfg.Ingest.Fallback, logger), db, logger)
	summary, runErr := batch.New(pipeline, db, m, logger).Run(ctx, docs, batch.Options{
		DryRun:      flags.dryRun,
		Workers:     workers,
		ClearFirst:  cfg.Batch.ClearFirstEnabled() && !flags.keepExisting,
		Heuristics:  cfg.Ingest.HeuristicsEnabled() && !flags.noHeuristics,
		FolderIndex: cfg.Ingest.FolderIndex,
	})
	if summary == nil {
		return runErr
	}

	if flags.dryRun {
		fmt.Fprintf(os.Stdout, "Discovered %d iFlow documents:\n", len(summary.Discovered))
		for i, doc := range summary.Discovered {
			fmt.Fprintf(os.Stdout, "  %d. %s (%s)\n", i+1, doc.Folder, doc.Path)
		}
		return runErr
	}

	stats, err := report.Collect(ctx, db, summary.Processed, summary.FailedFolders())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Run %s\n", summary.RunID)
	fmt.Fprintf(os.Stdout, "  Processed: %d\n", stats.ProcessedCount)
	fmt.Fprintf(os.Stdout, "  Failed:    %d\n", stats.FailedCount)
	for _, f := range summary.Failed {
		fmt.Fprintf(os.Stdout, "    - %s: %v\n", f.Folder, f.Err)
	}
	fmt.Fprintf(os.Stdout, "  Folders:   %d\n", stats.TotalFolders)
	fmt.Fprintf(os.Stdout, "  Nodes:     %d\n", stats.TotalNodes)
	fmt.Fprintf(os.Stdout, "  Edges:     %d\n", stats.TotalRelationships)

	exportPath := flags.export
	if exportPath == "" {
		exportPath = cfg.Batch.Export
	}
	if exportPath != "" {
		export, err := report.BuildExport(ctx, db, summary.Processed, summary.FailedFolders())
		if err != nil {
			return err
		}
		if err := report.WriteJSONFile(exportPath, export); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "  Export:    %s\n", exportPath)
	}

	if flags.metricsFile != "" {
		if err := m.WriteTextfile(flags.metricsFile); err != nil {
			return err
		}
	}

	if runErr != nil {
		return runErr
	}
	if len(summary.Failed) > 0 {
		return fmt.Errorf("%d of %d documents failed", len(summary.Failed), len(docs))
	}
	return nil
}
