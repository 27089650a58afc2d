package config

import (
	"fmt"
	"os"

	syncerrors "git.home.luguber.info/inful/habitsync/internal/errors"
)

const starterConfig = `# habitsync configuration
#
# Credentials are read from the environment (or a .env file next to the
# binary); ${VAR} references in this file are expanded at load time.

todoist:
  api_token: ${TODOIST_API_TOKEN}
  # base_url: https://api.todoist.com

habitify:
  api_key: ${HABITIFY_API_KEY}
  # base_url: https://api.habitify.me

sync:
  state_file: .sync_state.json
  bootstrap_window: 60m

daemon:
  interval: 15m
  listen: ":8090"
`

// Init writes a commented starter configuration file. An existing file is
// only overwritten when force is set.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return syncerrors.ConfigError(
			fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath))
	}
	if err := os.WriteFile(configPath, []byte(starterConfig), 0o644); err != nil {
		return syncerrors.ConfigError("failed to write configuration file").
			WithCause(err).
			WithContext("path", configPath)
	}
	return nil
}
