package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// EnvFileVar names the environment variable that can point at an explicit
// .env file, checked before the default locations.
const EnvFileVar = "TUNAI_ENV_FILE"

// LoadEnv loads the first .env file found among the candidate locations:
// $TUNAI_ENV_FILE, ./.env, ~/.tunai-collect/.env, /etc/tunai-collect/.env.
// Variables already present in the process environment win over file values.
// Returns the path that was loaded, or "" if none was found (not an error:
// the system environment alone is a valid configuration source).
func LoadEnv(log *logrus.Logger) string {
	var locations []string
	if explicit := os.Getenv(EnvFileVar); explicit != "" {
		locations = append(locations, explicit)
	}
	locations = append(locations, ".env")
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".tunai-collect", ".env"))
	}
	locations = append(locations, "/etc/tunai-collect/.env")

	for _, loc := range locations {
		if _, statErr := os.Stat(loc); statErr != nil {
			continue
		}
		if err := godotenv.Load(loc); err != nil {
			log.Warnf("Found env file %s but failed to load it: %v", loc, err)
			continue
		}
		log.Debugf("Loaded environment from %s", loc)
		return loc
	}
	return ""
}

// Env returns an environment variable or the given default.
func Env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// RequireEnv returns an environment variable or an error if it is unset.
// Used by collectors that need API credentials before starting.
func RequireEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("required environment variable %s is not set; set it in your environment or .env file", key)
	}
	return v, nil
}

// ApplyEnvOverrides lets a couple of deployment-level settings be overridden
// without editing the YAML file.
func (c *AppConfig) ApplyEnvOverrides() {
	if dir := os.Getenv("TUNAI_OUTPUT_DIR"); dir != "" {
		c.OutputBaseDir = dir
	}
	if ua := os.Getenv("TUNAI_USER_AGENT"); ua != "" {
		c.DefaultUserAgent = ua
	}
	if state := os.Getenv("TUNAI_STATE_DIR"); state != "" {
		c.StateDir = state
	}
}
