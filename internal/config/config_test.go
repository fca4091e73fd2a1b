package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: "9090"
logging:
  level: debug
  format: console
content:
  topics_path: data/topics.csv
  questions_path: data/questions.csv
  ttl: 5m
chat:
  rooms: [general, music]
redis:
  addr: localhost:6379
  ttl: 1m
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, LoggingConfig{Level: "debug", Format: "console"}, cfg.Logging)
	assert.Equal(t, "data/questions.csv", cfg.Content.QuestionsPath)
	assert.Equal(t, []string{"general", "music"}, cfg.Chat.Rooms)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	var cfg Config
	cfg.Logging.Level = "trace"
	cfg.Content.TTL = "soon"
	cfg.Chat.Rooms = []string{"general", " "}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"logging.level", "content.topics_path", "content.questions_path", "content.ttl", "chat.rooms[1]"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidatePostgresReplacesCSVPaths(t *testing.T) {
	var cfg Config
	cfg.Postgres.URL = "postgres://localhost/gameroom"
	assert.NoError(t, cfg.Validate())
}

func TestTTLDuration(t *testing.T) {
	assert.Equal(t, 2*time.Minute, TTLDuration("2m", time.Minute))
	assert.Equal(t, time.Minute, TTLDuration("", time.Minute))
	assert.Equal(t, time.Minute, TTLDuration("bogus", time.Minute))
}
