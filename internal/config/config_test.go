package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearNeo4jEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"NEO4J_URI", "NEO4J_USERNAME", "NEO4J_USER", "NEO4J_PASSWORD"} {
		t.Setenv(key, "")
	}
}

func TestLoadProjectConfig(t *testing.T) {
	clearNeo4jEnv(t)

	t.Run("valid config loads", func(t *testing.T) {
		cfg, err := LoadProjectConfig(filepath.Join("testdata", "valid_config.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "sap-landscape", cfg.Project)
		assert.Equal(t, BackendNeo4j, cfg.Store.Backend)
		assert.Equal(t, 20, cfg.Neo4j.MaxPoolSize)
		assert.Equal(t, "./iflows", cfg.Source.BaseDir)
		assert.Equal(t, DefaultFlowPattern, cfg.Source.Pattern)
		assert.Equal(t, FallbackMinimal, cfg.Ingest.Fallback)
		assert.False(t, cfg.Ingest.HeuristicsEnabled())
		assert.True(t, cfg.Batch.ClearFirstEnabled())
		assert.Equal(t, 4, cfg.Batch.Workers)
		assert.Equal(t, "json", cfg.Log.Format)
	})

	t.Run("defaults applied", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nneo4j:\n  uri: bolt://localhost:7687\n")
		cfg, err := LoadProjectConfig(path)
		require.NoError(t, err)
		assert.Equal(t, BackendNeo4j, cfg.Store.Backend)
		assert.Equal(t, "neo4j", cfg.Neo4j.Database)
		assert.Equal(t, ".", cfg.Source.BaseDir)
		assert.Equal(t, FallbackRich, cfg.Ingest.Fallback)
		assert.True(t, cfg.Ingest.HeuristicsEnabled())
		assert.Equal(t, 1, cfg.Batch.Workers)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "text", cfg.Log.Format)
	})

	t.Run("missing project name", func(t *testing.T) {
		path := writeTempConfig(t, "version: 1\nneo4j:\n  uri: bolt://localhost:7687\n")
		_, err := LoadProjectConfig(path)
		require.Error(t, err)
	})

	t.Run("unsupported version", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 2\nneo4j:\n  uri: bolt://localhost:7687\n")
		_, err := LoadProjectConfig(path)
		require.Error(t, err)
	})

	t.Run("missing neo4j uri", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nneo4j:\n  uri: \n")
		_, err := LoadProjectConfig(path)
		require.Error(t, err)
	})

	t.Run("sqlite backend requires dsn", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nstore:\n  backend: sqlite\n")
		_, err := LoadProjectConfig(path)
		require.Error(t, err)
	})

	t.Run("sqlite backend with dsn", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nstore:\n  backend: SQLite\n  dsn: sqlite://./graph.db\n")
		cfg, err := LoadProjectConfig(path)
		require.NoError(t, err)
		assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	})

	t.Run("memory backend needs nothing else", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nstore:\n  backend: memory\n")
		_, err := LoadProjectConfig(path)
		require.NoError(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nstore:\n  backend: redis\n")
		_, err := LoadProjectConfig(path)
		require.Error(t, err)
	})

	t.Run("unknown fallback", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nstore:\n  backend: memory\ningest:\n  fallback: huge\n")
		_, err := LoadProjectConfig(path)
		require.Error(t, err)
	})

	t.Run("negative workers", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nstore:\n  backend: memory\nbatch:\n  workers: -2\n")
		_, err := LoadProjectConfig(path)
		require.Error(t, err)
	})

	t.Run("max_conns bounds", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nstore:\n  backend: postgres\n  dsn: postgres://localhost/graph\n  max_conns: 16\n")
		cfg, err := LoadProjectConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 16, cfg.Store.MaxConns)

		path = writeTempConfig(t, "project: test\nversion: 1\nstore:\n  backend: postgres\n  dsn: postgres://localhost/graph\n  max_conns: 2147483648\n")
		_, err = LoadProjectConfig(path)
		require.ErrorContains(t, err, "max_conns must not exceed")

		path = writeTempConfig(t, "project: test\nversion: 1\nstore:\n  backend: postgres\n  dsn: postgres://localhost/graph\n  max_conns: -1\n")
		_, err = LoadProjectConfig(path)
		require.ErrorContains(t, err, "must not be negative")
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := LoadProjectConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeTempConfig(t, "project: [\n")
		_, err := LoadProjectConfig(path)
		require.Error(t, err)
	})
}

func TestLoadProjectConfig_EnvOverrides(t *testing.T) {
	clearNeo4jEnv(t)
	t.Setenv("NEO4J_URI", "neo4j://graph.internal:7687")
	t.Setenv("NEO4J_USER", "ingest")
	t.Setenv("NEO4J_PASSWORD", "s3cret")

	path := writeTempConfig(t, "project: test\nversion: 1\nneo4j:\n  uri: bolt://localhost:7687\n  username: neo4j\n")
	cfg, err := LoadProjectConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "neo4j://graph.internal:7687", cfg.Neo4j.URI)
	assert.Equal(t, "ingest", cfg.Neo4j.Username)
	assert.Equal(t, "s3cret", cfg.Neo4j.Password)
}

func TestApplyEnv_UsernamePrecedence(t *testing.T) {
	env := map[string]string{"NEO4J_USERNAME": "primary", "NEO4J_USER": "legacy"}
	cfg := &ProjectConfig{}
	applyEnv(cfg, func(key string) string { return env[key] })
	assert.Equal(t, "primary", cfg.Neo4j.Username)
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}
