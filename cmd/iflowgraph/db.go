package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"iflowgraph/internal/config"
	"iflowgraph/internal/graph"
	"iflowgraph/internal/logging"
	"iflowgraph/internal/protocol"
	"iflowgraph/internal/store"
	"iflowgraph/internal/store/memory"
	"iflowgraph/internal/store/postgres"
	"iflowgraph/internal/store/sqlite"
)

func loadConfig() (*config.ProjectConfig, *slog.Logger, error) {
	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// openStore connects to the configured backend and makes sure its schema exists.
func openStore(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	var s store.Store
	switch cfg.Store.Backend {
	case config.BackendNeo4j:
		client, err := graph.NewClient(ctx, cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, cfg.Neo4j.Database, cfg.Neo4j.MaxPoolSize)
		if err != nil {
			return nil, err
		}
		s = client
	case config.BackendSQLite:
		client, err := sqlite.New(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		s = client
	case config.BackendPostgres:
		client, err := postgres.New(ctx, cfg.Store.DSN, cfg.Store.MaxConns)
		if err != nil {
			return nil, err
		}
		s = client
	case config.BackendMemory:
		s = memory.New()
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}

	if err := s.EnsureSchema(ctx); err != nil {
		s.Close(ctx)
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// loadClassifier returns the configured rule table, or the built-in one.
func loadClassifier(cfg *config.ProjectConfig) (config.ClassifierRules, *protocol.Classifier, error) {
	rules := config.DefaultClassifierRules()
	if cfg.ClassifierRules != "" {
		loaded, err := config.LoadClassifierRules(cfg.ClassifierRules)
		if err != nil {
			return config.ClassifierRules{}, nil, err
		}
		rules = *loaded
	}
	classifier, err := protocol.NewClassifier(rules)
	if err != nil {
		return config.ClassifierRules{}, nil, err
	}
	return rules, classifier, nil
}
