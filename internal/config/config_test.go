package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxFileSize)
	assert.Equal(t, []string{".csv", ".txt"}, cfg.Upload.AllowedExtensions)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, "json", cfg.Logging.Format)
	require.NoError(t, cfg.validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "port too low",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "negative read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = -time.Second },
			wantErr: "read timeout must be positive",
		},
		{
			name:    "no origins",
			mutate:  func(c *Config) { c.Security.AllowedOrigins = nil },
			wantErr: "at least one allowed origin",
		},
		{
			name:    "zero max file size",
			mutate:  func(c *Config) { c.Upload.MaxFileSize = 0 },
			wantErr: "max file size must be positive",
		},
		{
			name:    "extension without dot",
			mutate:  func(c *Config) { c.Upload.AllowedExtensions = []string{"csv"} },
			wantErr: "must start with a dot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_Normalization(t *testing.T) {
	cfg := Default()
	cfg.Upload.AllowedExtensions = []string{" .CSV ", ".Txt"}
	cfg.Logging.Format = "xml"

	require.NoError(t, cfg.validate())
	assert.Equal(t, []string{".csv", ".txt"}, cfg.Upload.AllowedExtensions)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestMergeConfigs_EnvWins(t *testing.T) {
	fileCfg := Config{}
	fileCfg.Server.Port = 9000
	fileCfg.Upload.MaxFileSize = 1 << 20

	envCfg := Config{}
	envCfg.Server.Port = 8081

	merged := mergeConfigs(fileCfg, envCfg)

	assert.Equal(t, 8081, merged.Server.Port)
	assert.Equal(t, int64(1<<20), merged.Upload.MaxFileSize)
}
