package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncerrors "git.home.luguber.info/inful/habitsync/internal/errors"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvTodoistToken, "")
	t.Setenv(EnvHabitifyKey, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.todoist.com", cfg.Todoist.BaseURL)
	assert.Equal(t, "https://api.habitify.me", cfg.Habitify.BaseURL)
	assert.Equal(t, ".sync_state.json", cfg.Sync.StateFile)
	assert.Equal(t, 60*time.Minute, cfg.Sync.BootstrapWindow.Std())
	assert.Equal(t, 15*time.Minute, cfg.Daemon.Interval.Std())
	assert.Equal(t, ":8090", cfg.Daemon.Listen)
}

func TestLoadReadsYAMLAndExpandsEnv(t *testing.T) {
	t.Setenv("TEST_HABITSYNC_TOKEN", "tok-from-env")
	t.Setenv(EnvHabitifyKey, "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
todoist:
  api_token: ${TEST_HABITSYNC_TOKEN}
habitify:
  api_key: literal-key
sync:
  state_file: /var/lib/habitsync/state.json
  bootstrap_window: 2h
daemon:
  interval: 5m
  listen: "127.0.0.1:9999"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tok-from-env", cfg.Todoist.APIToken)
	assert.Equal(t, "literal-key", cfg.Habitify.APIKey)
	assert.Equal(t, "/var/lib/habitsync/state.json", cfg.Sync.StateFile)
	assert.Equal(t, 2*time.Hour, cfg.Sync.BootstrapWindow.Std())
	assert.Equal(t, 5*time.Minute, cfg.Daemon.Interval.Std())
	assert.Equal(t, "127.0.0.1:9999", cfg.Daemon.Listen)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("todoist: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, syncerrors.HasCategory(err, syncerrors.CategoryConfig))
}

func TestEnvironmentCredentialFallback(t *testing.T) {
	t.Setenv(EnvTodoistToken, "env-token")
	t.Setenv(EnvHabitifyKey, "env-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Todoist.APIToken)
	assert.Equal(t, "env-key", cfg.Habitify.APIKey)
	assert.NoError(t, cfg.Validate())
}

func TestDotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	dir := t.TempDir()
	envContent := EnvTodoistToken + "=file-token\n" + EnvHabitifyKey + "=file-key\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(envContent), 0o644))
	t.Chdir(dir)

	// Registered via t.Setenv so the pre-test value is restored, then unset
	// so the .env file is the only source for the habitify key.
	t.Setenv(EnvTodoistToken, "proc-token")
	t.Setenv(EnvHabitifyKey, "")
	require.NoError(t, os.Unsetenv(EnvHabitifyKey))

	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)

	// The process environment wins; .env only fills unset variables.
	assert.Equal(t, "proc-token", cfg.Todoist.APIToken)
	assert.Equal(t, "file-key", cfg.Habitify.APIKey)
}

func TestValidateMissingCredentials(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, syncerrors.IsFatal(err))
	assert.Contains(t, err.Error(), EnvTodoistToken)

	cfg.Todoist.APIToken = "tok"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvHabitifyKey)

	cfg.Habitify.APIKey = "key"
	assert.NoError(t, cfg.Validate())
}

func TestInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, Init(path, false))

	// Second init without force must fail and leave the file intact.
	before, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Error(t, Init(path, false))
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	require.NoError(t, Init(path, true))
}

func TestInitOutputParses(t *testing.T) {
	t.Setenv(EnvTodoistToken, "tok")
	t.Setenv(EnvHabitifyKey, "key")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 15*time.Minute, cfg.Daemon.Interval.Std())
}
