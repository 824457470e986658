package main

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsShrizon/Arxiv-research-assistant/internal/secrets"
	"github.com/itsShrizon/Arxiv-research-assistant/pkg/types"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	setDefaults(viper.GetViper())
	viper.SetEnvPrefix("ARXIV_ASSISTANT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	loadedSecrets = nil
	t.Cleanup(viper.Reset)
}

func TestLoadConfigDefaults(t *testing.T) {
	resetViper(t)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "./data/papers", cfg.Storage.Path)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, types.BackendMarkitdown, cfg.Conversion.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Download.StepTimeout)
	assert.Empty(t, cfg.Server.APIToken)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("ARXIV_ASSISTANT_SERVER_PORT", "9000")
	t.Setenv("ARXIV_ASSISTANT_STORAGE_PATH", "/srv/papers")
	t.Setenv("ARXIV_ASSISTANT_DOWNLOAD_STEP_TIMEOUT", "90s")
	resetViper(t)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/srv/papers", cfg.Storage.Path)
	assert.Equal(t, 90*time.Second, cfg.Download.StepTimeout)
}

func TestLoadConfigSecrets(t *testing.T) {
	resetViper(t)
	loadedSecrets = secrets.Secrets{
		secrets.KeyAPIToken:     "s3cret",
		secrets.KeyContactEmail: "me@example.org",
	}

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Server.APIToken)
	assert.Contains(t, cfg.HTTP.UserAgent, "mailto:me@example.org")
}

func TestSetupLogging(t *testing.T) {
	assert.NoError(t, setupLogging("debug"))
	assert.NoError(t, setupLogging("WARN"))
	assert.Error(t, setupLogging("loud"))
}
