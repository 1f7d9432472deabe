package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dockside/receiving/internal/common"
	"github.com/dockside/receiving/internal/offline"
	"github.com/dockside/receiving/internal/service"
)

// DefaultCacheVersion names the offline cache generation shipped with this
// build. Bumping it invalidates every cached asset.
const DefaultCacheVersion = "po-receiving-v34"

// Config is the complete application configuration.
type Config struct {
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	OCR     OCRConfig     `mapstructure:"ocr" yaml:"ocr"`
	Web     WebConfig     `mapstructure:"web" yaml:"web"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// BackendConfig locates the job-management API.
type BackendConfig struct {
	URL     string        `mapstructure:"url" yaml:"url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Retry   RetryConfig   `mapstructure:"retry" yaml:"retry"`
}

// RetryConfig controls retries of idempotent requests.
type RetryConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	InitialDelay time.Duration `mapstructure:"initial_delay" yaml:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay" yaml:"max_delay"`
	Multiplier   float64       `mapstructure:"multiplier" yaml:"multiplier"`
}

// CacheConfig is the offline cache.
type CacheConfig struct {
	Path    string   `mapstructure:"path" yaml:"path"`
	Version string   `mapstructure:"version" yaml:"version"`
	Assets  []string `mapstructure:"assets" yaml:"assets"`
	Enabled bool     `mapstructure:"enabled" yaml:"enabled"`
}

// OCRConfig configures docket recognition.
type OCRConfig struct {
	Languages []string `mapstructure:"languages" yaml:"languages"`
	Enabled   bool     `mapstructure:"enabled" yaml:"enabled"`
}

// WebConfig configures the browser shell server.
type WebConfig struct {
	Listen      string   `mapstructure:"listen" yaml:"listen"`
	Dir         string   `mapstructure:"dir" yaml:"dir"`
	CertDir     string   `mapstructure:"cert_dir" yaml:"cert_dir"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	TLSHosts    []string `mapstructure:"tls_hosts" yaml:"tls_hosts"`
	TLS         bool     `mapstructure:"tls" yaml:"tls"`
}

// LoggingConfig selects log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Backend: BackendConfig{
			URL:     "http://localhost:3000",
			Timeout: 30 * time.Second,
			Retry: RetryConfig{
				MaxAttempts:  3,
				InitialDelay: 500 * time.Millisecond,
				MaxDelay:     5 * time.Second,
				Multiplier:   2,
			},
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    "~/.local/share/receiving/cache.db",
			Version: DefaultCacheVersion,
			Assets:  append([]string(nil), offline.DefaultAssets...),
		},
		OCR: OCRConfig{
			Enabled:   true,
			Languages: []string{"eng"},
		},
		Web: WebConfig{
			Listen:  ":8080",
			Dir:     "./public",
			CertDir: "~/.local/share/receiving/certs",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   "~/.local/share/receiving/receiving.log",
		},
	}
}

// SetDefaults registers every default with v so environment variables can
// override keys that no config file mentions.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("backend.url", d.Backend.URL)
	v.SetDefault("backend.timeout", d.Backend.Timeout)
	v.SetDefault("backend.retry.max_attempts", d.Backend.Retry.MaxAttempts)
	v.SetDefault("backend.retry.initial_delay", d.Backend.Retry.InitialDelay)
	v.SetDefault("backend.retry.max_delay", d.Backend.Retry.MaxDelay)
	v.SetDefault("backend.retry.multiplier", d.Backend.Retry.Multiplier)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("cache.version", d.Cache.Version)
	v.SetDefault("cache.assets", d.Cache.Assets)
	v.SetDefault("ocr.enabled", d.OCR.Enabled)
	v.SetDefault("ocr.languages", d.OCR.Languages)
	v.SetDefault("web.listen", d.Web.Listen)
	v.SetDefault("web.dir", d.Web.Dir)
	v.SetDefault("web.cors_origins", d.Web.CORSOrigins)
	v.SetDefault("web.tls", d.Web.TLS)
	v.SetDefault("web.tls_hosts", d.Web.TLSHosts)
	v.SetDefault("web.cert_dir", d.Web.CertDir)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file", d.Logging.File)
}

// Load decodes v into a Config, expands paths and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	cfg.Cache.Path = ExpandPath(cfg.Cache.Path)
	cfg.Logging.File = ExpandPath(cfg.Logging.File)
	cfg.Web.Dir = ExpandPath(cfg.Web.Dir)
	cfg.Web.CertDir = ExpandPath(cfg.Web.CertDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the application cannot use.
func (c *Config) Validate() error {
	var errs []error

	if c.Backend.URL == "" {
		errs = append(errs, fmt.Errorf("%w: backend.url", common.ErrMissingConfig))
	} else if u, err := url.Parse(c.Backend.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("%w: backend.url %q must be an absolute URL", common.ErrInvalidConfig, c.Backend.URL))
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: backend.timeout must be positive", common.ErrInvalidConfig))
	}
	if c.Backend.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("%w: backend.retry.max_attempts must be at least 1", common.ErrInvalidConfig))
	}
	if c.Backend.Retry.Multiplier < 1 {
		errs = append(errs, fmt.Errorf("%w: backend.retry.multiplier must be at least 1", common.ErrInvalidConfig))
	}
	if c.Cache.Enabled {
		if c.Cache.Path == "" {
			errs = append(errs, fmt.Errorf("%w: cache.path", common.ErrMissingConfig))
		}
		if c.Cache.Version == "" {
			errs = append(errs, fmt.Errorf("%w: cache.version", common.ErrMissingConfig))
		}
	}
	if c.Web.TLS && c.Web.CertDir == "" {
		errs = append(errs, fmt.Errorf("%w: web.cert_dir", common.ErrMissingConfig))
	}
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: logging.format %q", common.ErrInvalidConfig, c.Logging.Format))
	}

	return errors.Join(errs...)
}

// RetryOptions converts the retry settings for the backend client.
func (c *Config) RetryOptions() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  c.Backend.Retry.MaxAttempts,
		InitialDelay: c.Backend.Retry.InitialDelay,
		MaxDelay:     c.Backend.Retry.MaxDelay,
		Multiplier:   c.Backend.Retry.Multiplier,
	}
}

// Policy builds the offline cache policy.
func (c *Config) Policy() *offline.Policy {
	return offline.NewPolicy(c.Cache.Version, c.Cache.Assets)
}

// DefaultPath is where the config file lives unless --config says otherwise.
func DefaultPath() string {
	return ExpandPath("~/.config/receiving/config.yaml")
}

// WriteDefault writes the default configuration to path. It refuses to
// overwrite an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
