package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestLoadEnv_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "custom.env")
	require.NoError(t, os.WriteFile(envPath, []byte("TUNAI_TEST_KEY=from_file\n"), 0644))

	t.Setenv(EnvFileVar, envPath)
	t.Setenv("TUNAI_TEST_KEY", "") // ensure unset semantics below
	os.Unsetenv("TUNAI_TEST_KEY")

	loaded := LoadEnv(discardLogger())
	assert.Equal(t, envPath, loaded)
	assert.Equal(t, "from_file", os.Getenv("TUNAI_TEST_KEY"))
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TUNAI_PRESENT", "value")
	assert.Equal(t, "value", Env("TUNAI_PRESENT", "fallback"))
	assert.Equal(t, "fallback", Env("TUNAI_ABSENT_KEY", "fallback"))

	got, err := RequireEnv("TUNAI_PRESENT")
	require.NoError(t, err)
	assert.Equal(t, "value", got)

	_, err = RequireEnv("TUNAI_ABSENT_KEY")
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := AppConfig{OutputBaseDir: "data/raw", DefaultUserAgent: "ua"}

	t.Setenv("TUNAI_OUTPUT_DIR", "/srv/corpus")
	t.Setenv("TUNAI_USER_AGENT", "override-ua")
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "/srv/corpus", cfg.OutputBaseDir)
	assert.Equal(t, "override-ua", cfg.DefaultUserAgent)
}
