package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "chatConversations", cfg.Storage.Key)
	assert.Equal(t, time.Second, cfg.Assistant.ReplyDelay)
	assert.Equal(t, "echo", cfg.Assistant.Provider)
	assert.True(t, cfg.Assistant.AutoCreateOnEmpty)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxSize)
	assert.Equal(t, []string{".docx"}, cfg.Upload.AllowedExtensions)
	assert.Equal(t, "multipart", cfg.LLM.Backend.Format)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9090
storage:
  driver: sqlite
  sqlite:
    path: /tmp/chat.db
assistant:
  reply_delay: 250ms
  language: fr
llm:
  backend:
    url: http://localhost:8000/chat
    format: json
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("ASSISTANT_PROVIDER", "backend")
	t.Setenv("REDIS_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "/tmp/chat.db", cfg.Storage.SQLite.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Assistant.ReplyDelay)
	assert.Equal(t, "fr", cfg.Assistant.Language)
	assert.Equal(t, "backend", cfg.Assistant.Provider)
	assert.Equal(t, "http://localhost:8000/chat", cfg.LLM.Backend.URL)
	assert.Equal(t, "json", cfg.LLM.Backend.Format)
	assert.Equal(t, "secret", cfg.Storage.Redis.Password)
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("STORAGE_DRIVER", "floppy")

	_, err := Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	pg := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 5432, Database: "d", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", pg.DSN())

	my := MySQLConfig{User: "u", Password: "p", Host: "h", Port: 3306, Database: "d"}
	assert.Equal(t, "u:p@tcp(h:3306)/d?parseTime=true", my.DSN())

	assert.Equal(t, "h:6379", RedisConfig{Host: "h", Port: 6379}.Addr())
}
