package main

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/itsShrizon/Arxiv-research-assistant/internal/secrets"
	"github.com/itsShrizon/Arxiv-research-assistant/pkg/types"
)

const (
	defaultStoragePath = "./data/papers"
	defaultHost        = "0.0.0.0"
	defaultPort        = 8000
	defaultTimeout     = 60 * time.Second
	defaultStepTimeout = 5 * time.Minute
	defaultMaxRetries  = 5
	defaultConcurrency = 2
)

// setDefaults registers every config key so that environment variables
// reach viper.Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("http.timeout", defaultTimeout)
	v.SetDefault("http.user_agent", "arxiv-assistant/"+version)
	v.SetDefault("http.max_retries", defaultMaxRetries)

	v.SetDefault("storage.path", defaultStoragePath)
	v.SetDefault("storage.catalog_file", "catalog.db")

	v.SetDefault("conversion.backend", string(types.BackendMarkitdown))
	v.SetDefault("conversion.max_pages", 0)

	v.SetDefault("download.step_timeout", defaultStepTimeout)
	v.SetDefault("download.concurrency", defaultConcurrency)

	v.SetDefault("server.host", defaultHost)
	v.SetDefault("server.port", defaultPort)
	v.SetDefault("server.request_logging", true)
	v.SetDefault("server.api_token", "")
}

// bindFlag ties a flag to a viper key. A changed flag overrides the config
// file and environment.
func bindFlag(key string, f *pflag.Flag) {
	if err := viper.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", f.Name, err))
	}
}

// loadConfig decodes the merged configuration and fills values that come
// from secrets.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.Server.APIToken == "" {
		cfg.Server.APIToken = loadedSecrets.Get(secrets.KeyAPIToken)
	}
	if email := loadedSecrets.Get(secrets.KeyContactEmail); email != "" {
		cfg.HTTP.UserAgent = fmt.Sprintf("%s (mailto:%s)", cfg.HTTP.UserAgent, email)
	}
	if cfg.Download.Concurrency <= 0 {
		cfg.Download.Concurrency = 1
	}
	return cfg, nil
}
