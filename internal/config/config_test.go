package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"taskList/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, "localhost:8080", cfg.GetServerAddr())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
repository:
  type: sqlite
  sqlite:
    path: /tmp/tasks.db
view:
  locale: es
  timezone: UTC
  filter: alta
  sort: priorityDesc
worker:
  interval: 30s
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, config.RepositorySQLite, cfg.Repository.Type)
	assert.Equal(t, "/tmp/tasks.db", cfg.Repository.SQLite.Path)
	assert.Equal(t, "es", cfg.View.Locale)
	assert.Equal(t, 30*time.Second, cfg.Worker.Interval)
	assert.True(t, cfg.Worker.Enabled)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

// TestLoad_Env тестирует переопределение через TASKLIST_*
func TestLoad_Env(t *testing.T) {
	path := writeConfig(t, "repository:\n  type: jsonfile\n")

	t.Setenv("TASKLIST_SERVER_PORT", "7070")
	t.Setenv("TASKLIST_REPOSITORY_TYPE", "redis")
	t.Setenv("TASKLIST_REPOSITORY_REDIS_ADDR", "redis:6379")
	t.Setenv("TASKLIST_REPOSITORY_REDIS_DB", "3")
	t.Setenv("TASKLIST_WORKER_ENABLED", "false")
	t.Setenv("TASKLIST_WORKER_INTERVAL", "15s")
	t.Setenv("TASKLIST_SERVER_CORS_ORIGINS", "http://a.test http://b.test")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, config.RepositoryRedis, cfg.Repository.Type)
	assert.Equal(t, "redis:6379", cfg.Repository.Redis.Addr)
	assert.Equal(t, 3, cfg.Repository.Redis.DB)
	assert.False(t, cfg.Worker.Enabled)
	assert.Equal(t, 15*time.Second, cfg.Worker.Interval)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	// не заданные переменные ничего не меняют
	assert.Equal(t, "tasklist:", cfg.Repository.Redis.Prefix)
}

func TestLoad_EnvTimeoutsPoolAndView(t *testing.T) {
	path := writeConfig(t, "")

	t.Setenv("TASKLIST_SERVER_READ_TIMEOUT", "3s")
	t.Setenv("TASKLIST_SERVER_WRITE_TIMEOUT", "4s")
	t.Setenv("TASKLIST_SERVER_SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("TASKLIST_REPOSITORY_POSTGRES_MAX_CONNECTIONS", "25")
	t.Setenv("TASKLIST_REPOSITORY_POSTGRES_MIN_CONNECTIONS", "5")
	t.Setenv("TASKLIST_REPOSITORY_POSTGRES_IDLE_TIMEOUT", "90s")
	t.Setenv("TASKLIST_VIEW_FILTER", "high")
	t.Setenv("TASKLIST_VIEW_SORT", "priorityDesc")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 4*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, int32(25), cfg.Repository.Postgres.MaxConnections)
	assert.Equal(t, int32(5), cfg.Repository.Postgres.MinConnections)
	assert.Equal(t, 90*time.Second, cfg.Repository.Postgres.IdleTimeout)
	assert.Equal(t, "high", cfg.View.Filter)
	assert.Equal(t, "priorityDesc", cfg.View.Sort)

	// значение из окружения проходит ту же проверку, что и из файла
	t.Setenv("TASKLIST_VIEW_SORT", "random")
	_, err = config.Load(path)
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown repository", "repository:\n  type: mongo\n"},
		{"postgres without url", "repository:\n  type: postgres\n"},
		{"unknown filter", "view:\n  filter: urgent\n"},
		{"unknown sort", "view:\n  sort: titleAsc\n"},
		{"unknown timezone", "view:\n  timezone: Mars/Olympus\n"},
		{"unknown field", "server:\n  prot: \"80\"\n"},
		{"broken yaml", "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_RepoConfigFile(t *testing.T) {
	cfg, err := config.Load(filepath.Join("..", "..", "config.yml"))
	require.NoError(t, err)
	assert.Equal(t, config.RepositoryJSONFile, cfg.Repository.Type)
}
