package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockside/receiving/internal/common"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.Backend.URL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 3, cfg.Backend.Retry.MaxAttempts)
	assert.Equal(t, DefaultCacheVersion, cfg.Cache.Version)
	assert.NotEmpty(t, cfg.Cache.Assets)
	assert.False(t, strings.HasPrefix(cfg.Cache.Path, "~"), "paths are expanded")
	assert.Equal(t, []string{"eng"}, cfg.OCR.Languages)
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("backend.url", "https://jobs.example.com")
	v.Set("backend.timeout", "5s")
	v.Set("cache.version", "po-receiving-v35")
	v.Set("logging.format", "json")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "https://jobs.example.com", cfg.Backend.URL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "po-receiving-v35", cfg.Policy().Version)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		mutate  func(*Config)
		wantErr error
		name    string
	}{
		{name: "default", mutate: func(*Config) {}},
		{name: "missing url", mutate: func(c *Config) { c.Backend.URL = "" }, wantErr: common.ErrMissingConfig},
		{name: "relative url", mutate: func(c *Config) { c.Backend.URL = "jobs/api" }, wantErr: common.ErrInvalidConfig},
		{name: "zero timeout", mutate: func(c *Config) { c.Backend.Timeout = 0 }, wantErr: common.ErrInvalidConfig},
		{name: "no attempts", mutate: func(c *Config) { c.Backend.Retry.MaxAttempts = 0 }, wantErr: common.ErrInvalidConfig},
		{name: "missing cache version", mutate: func(c *Config) { c.Cache.Version = "" }, wantErr: common.ErrMissingConfig},
		{
			name:   "cache disabled needs no path",
			mutate: func(c *Config) { c.Cache.Enabled = false; c.Cache.Path = "" },
		},
		{name: "tls without cert dir", mutate: func(c *Config) { c.Web.TLS = true; c.Web.CertDir = "" }, wantErr: common.ErrMissingConfig},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: common.ErrInvalidConfig},
		{name: "bad format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRetryOptions(t *testing.T) {
	cfg := Default()
	opts := cfg.RetryOptions()
	assert.Equal(t, 3, opts.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, opts.InitialDelay)
	assert.Equal(t, 2.0, opts.Multiplier)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefault(path, false))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: "+DefaultCacheVersion)

	assert.Error(t, WriteDefault(path, false), "existing file is kept")
	assert.NoError(t, WriteDefault(path, true))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, Default().Backend.URL, cfg.Backend.URL)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("RECEIVING_TEST_DIR", "/srv/data")

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "~", want: home},
		{in: "~/cache.db", want: filepath.Join(home, "cache.db")},
		{in: "$RECEIVING_TEST_DIR/cache.db", want: "/srv/data/cache.db"},
		{in: "/abs/path", want: "/abs/path"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}
