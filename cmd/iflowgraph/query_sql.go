package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type sqlRunner interface {
	RunSQL(ctx context.Context, query string, args ...any) ([]map[string]any, error)
}

func querySQLCmd() *cobra.Command {
	var queryArgs []string
	cmd := &cobra.Command{
		Use:   "sql <query>",
		Short: "Execute a raw SQL query (sqlite and postgres backends)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(strings.Join(args, " "), queryArgs)
		},
	}
	cmd.Flags().StringArrayVar(&queryArgs, "arg", nil, "Positional query argument (repeatable)")
	return cmd
}

func runSQL(query string, queryArgs []string) error {
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

	runner, ok := db.(sqlRunner)
	if !ok {
		return fmt.Errorf("query sql requires the sqlite or postgres backend, configured backend is %s", cfg.Store.Backend)
	}

	args := make([]any, len(queryArgs))
	for i, a := range queryArgs {
		args[i] = a
	}
	rows, err := runner.RunSQL(ctx, query, args...)
	if err != nil {
		return err
	}
	return printJSON(rows)
}
