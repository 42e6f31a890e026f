package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_SetsExpectedValues(t *testing.T) {
	t.Parallel()

	cfg := Defaults()

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8402, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "json", cfg.Server.LogFormat)
	assert.Equal(t, "http://127.0.0.1:8065", cfg.Chat.GatewayURL)
	assert.Equal(t, 10*time.Second, cfg.Chat.SendTimeout)
	assert.Equal(t, 10*time.Second, cfg.Liveness.Interval)
	assert.Equal(t, 3*time.Second, cfg.Liveness.Timeout)
	assert.Equal(t, 5*time.Second, cfg.URLCheck.Timeout)
}

func TestLoadFromFile_ParsesYAML(t *testing.T) {
	t.Parallel()

	content := `
server:
  host: "0.0.0.0"
  port: 9000
  public_url: "https://relay.example.com"
  log_level: "debug"
  log_format: "console"

database:
  path: "/tmp/gitops-test.db"

chat:
  gateway_url: "http://chat.internal:8065"
  token: "abc123"
  admins:
    - "admin@chat"
  send_timeout: 3s

liveness:
  interval: 30s
  timeout: 2s
`

	tmpFile := filepath.Join(t.TempDir(), "gitops.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadFromFile(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "https://relay.example.com", cfg.Server.PublicURL)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "console", cfg.Server.LogFormat)
	assert.Equal(t, "/tmp/gitops-test.db", cfg.Database.Path)
	assert.Equal(t, "http://chat.internal:8065", cfg.Chat.GatewayURL)
	assert.Equal(t, "abc123", cfg.Chat.Token)
	assert.Equal(t, []string{"admin@chat"}, cfg.Chat.Admins)
	assert.Equal(t, 3*time.Second, cfg.Chat.SendTimeout)
	assert.Equal(t, 30*time.Second, cfg.Liveness.Interval)
	assert.Equal(t, 2*time.Second, cfg.Liveness.Timeout)
}

func TestLoadFromFile_WhenPortOutOfRange_Fails(t *testing.T) {
	t.Parallel()

	content := `
server:
  port: 99999
`
	tmpFile := filepath.Join(t.TempDir(), "gitops.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	_, err := LoadFromFile(tmpFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadFromFile_WhenGatewayURLNotAURL_Fails(t *testing.T) {
	t.Parallel()

	content := `
chat:
  gateway_url: "not a url"
`
	tmpFile := filepath.Join(t.TempDir(), "gitops.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	_, err := LoadFromFile(tmpFile)
	require.Error(t, err)
}

func TestLoadFromFile_EnvOverridesChatToken(t *testing.T) {
	content := `
chat:
  token: "from-file"
`
	tmpFile := filepath.Join(t.TempDir(), "gitops.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	t.Setenv("GITOPS_CHAT_TOKEN", "from-env")

	cfg, err := LoadFromFile(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Chat.Token)
}

func TestLoadFromFile_ExpandsEnvInYAML(t *testing.T) {
	content := `
database:
  path: "${GITOPS_TEST_DB}"
`
	tmpFile := filepath.Join(t.TempDir(), "gitops.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	t.Setenv("GITOPS_TEST_DB", "/tmp/from-env.db")

	cfg, err := LoadFromFile(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-env.db", cfg.Database.Path)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "data"), ExpandHome("~/data"))
	assert.Equal(t, "/absolute/path", ExpandHome("/absolute/path"))
}
