package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	BackendNeo4j    = "neo4j"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

const (
	FallbackRich    = "rich"
	FallbackMinimal = "minimal"
)

// DefaultFlowPattern locates the flow file inside an exported iFlow project directory.
const DefaultFlowPattern = "src/main/resources/scenarioflows/integrationflow/*.iflw"

type ProjectConfig struct {
	Project         string       `yaml:"project"`
	Version         int          `yaml:"version"`
	Neo4j           Neo4jConfig  `yaml:"neo4j"`
	Store           StoreConfig  `yaml:"store"`
	Source          SourceConfig `yaml:"source"`
	Ingest          IngestConfig `yaml:"ingest"`
	Batch           BatchConfig  `yaml:"batch"`
	Log             LogConfig    `yaml:"log"`
	ClassifierRules string       `yaml:"classifier_rules"`
}

type Neo4jConfig struct {
	URI         string `yaml:"uri"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	Database    string `yaml:"database"`
	MaxPoolSize int    `yaml:"max_pool_size"`
}

type StoreConfig struct {
	Backend string `yaml:"backend"`
	DSN     string `yaml:"dsn"`
	// MaxConns caps the postgres pool. Zero keeps the driver default.
	MaxConns int `yaml:"max_conns"`
}

type SourceConfig struct {
	BaseDir string   `yaml:"base_dir"`
	Pattern string   `yaml:"pattern"`
	Exclude []string `yaml:"exclude"`
}

type IngestConfig struct {
	Fallback    string `yaml:"fallback"`
	Heuristics  *bool  `yaml:"heuristics"`
	FolderIndex bool   `yaml:"folder_index"`
}

// HeuristicsEnabled reports whether the name-matching link stage runs. It is on unless
// explicitly disabled.
func (c IngestConfig) HeuristicsEnabled() bool {
	return c.Heuristics == nil || *c.Heuristics
}

type BatchConfig struct {
	Workers    int    `yaml:"workers"`
	ClearFirst *bool  `yaml:"clear_first"`
	Export     string `yaml:"export"`
}

// ClearFirstEnabled reports whether a batch run wipes the store before ingesting.
func (c BatchConfig) ClearFirstEnabled() bool {
	return c.ClearFirst == nil || *c.ClearFirst
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnv(&cfg, os.Getenv)

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *ProjectConfig) {
	if strings.TrimSpace(cfg.Store.Backend) == "" {
		cfg.Store.Backend = BackendNeo4j
	}
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	if cfg.Neo4j.Database == "" {
		cfg.Neo4j.Database = "neo4j"
	}
	if cfg.Source.BaseDir == "" {
		cfg.Source.BaseDir = "."
	}
	if cfg.Source.Pattern == "" {
		cfg.Source.Pattern = DefaultFlowPattern
	}
	if cfg.Ingest.Fallback == "" {
		cfg.Ingest.Fallback = FallbackRich
	}
	if cfg.Batch.Workers == 0 {
		cfg.Batch.Workers = 1
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// applyEnv lets deployment credentials override the file, matching the variable names the
// ingestion scripts have always read.
func applyEnv(cfg *ProjectConfig, getenv func(string) string) {
	if v := getenv("NEO4J_URI"); v != "" {
		cfg.Neo4j.URI = v
	}
	if v := getenv("NEO4J_USERNAME"); v != "" {
		cfg.Neo4j.Username = v
	} else if v := getenv("NEO4J_USER"); v != "" {
		cfg.Neo4j.Username = v
	}
	if v := getenv("NEO4J_PASSWORD"); v != "" {
		cfg.Neo4j.Password = v
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}

	switch cfg.Store.Backend {
	case BackendNeo4j:
		if strings.TrimSpace(cfg.Neo4j.URI) == "" {
			return fmt.Errorf("neo4j uri is required")
		}
	case BackendSQLite, BackendPostgres:
		if strings.TrimSpace(cfg.Store.DSN) == "" {
			return fmt.Errorf("store dsn is required for %s backend", cfg.Store.Backend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}

	switch cfg.Ingest.Fallback {
	case FallbackRich, FallbackMinimal:
	default:
		return fmt.Errorf("unknown fallback dataset: %s", cfg.Ingest.Fallback)
	}

	if cfg.Batch.Workers < 0 {
		return fmt.Errorf("batch workers must not be negative")
	}
	if cfg.Store.MaxConns < 0 {
		return fmt.Errorf("store max_conns must not be negative")
	}
	if cfg.Store.MaxConns > math.MaxInt32 {
		return fmt.Errorf("store max_conns must not exceed %d", math.MaxInt32)
	}
	if cfg.Neo4j.MaxPoolSize < 0 {
		return fmt.Errorf("neo4j max_pool_size must not be negative")
	}

	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %s", cfg.Log.Format)
	}

	return nil
}
