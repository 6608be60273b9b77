package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "https://api.staking.mocaverse.xyz", cfg.API.BaseURL)
	assert.Equal(t, "/api/mocadrop/projects/", cfg.API.ProjectsPath)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 3, cfg.API.RetryCount)
	assert.Equal(t, "https://rpc.ankr.com/eth", cfg.ENS.RPCURL)
	assert.Equal(t, 4*time.Second, cfg.ENS.Timeout)
	assert.Equal(t, uint(3), cfg.ENS.MaxTries)
	assert.False(t, cfg.Price.Enabled)
	assert.Equal(t, "USDT", cfg.Price.QuoteAsset)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  addr: "127.0.0.1:9000"
api:
  base_url: "http://localhost:4000"
  timeout: 2s
price:
  enabled: true
  quote_asset: FDUSD
log:
  level: debug
  development: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "http://localhost:4000", cfg.API.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.API.Timeout)
	assert.Equal(t, "/api/staking/user", cfg.API.WalletPath)
	assert.True(t, cfg.Price.Enabled)
	assert.Equal(t, "FDUSD", cfg.Price.QuoteAsset)
	assert.True(t, cfg.Log.Development)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DROPCALC_API_BASE_URL", "http://127.0.0.1:5000")
	t.Setenv("DROPCALC_ENS_MAX_TRIES", "5")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:5000", cfg.API.BaseURL)
	assert.Equal(t, uint(5), cfg.ENS.MaxTries)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad base url", func(c *Config) { c.API.BaseURL = "not a url" }},
		{"bad rpc url", func(c *Config) { c.ENS.RPCURL = "" }},
		{"bad registry", func(c *Config) { c.ENS.Registry = "0x1234" }},
		{"relative path", func(c *Config) { c.API.WalletPath = "api/user" }},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }},
		{"negative retries", func(c *Config) { c.API.RetryCount = -1 }},
		{"zero tries", func(c *Config) { c.ENS.MaxTries = 0 }},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)
			assert.Error(t, Validate(&cfg))
		})
	}

	assert.NoError(t, Validate(base))
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "DROPCALC_TEST_DOTENV=from-file\n")
	t.Setenv("DROPCALC_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("DROPCALC_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv("DROPCALC_TEST_DOTENV"))
}
