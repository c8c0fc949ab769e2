// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Server() ServerConfig
	BigID() BigIDConfig
	Backup() BackupConfig

	// Server Setters
	SetServerApp(string)
	SetServerPort(int)
}

// Config holds the entire application configuration.
// Fields are exported for viper; prefer the Interface getters everywhere else.
type Config struct {
	LoggerCfg LoggerConfig `mapstructure:"logger" yaml:"logger"`
	ServerCfg ServerConfig `mapstructure:"server" yaml:"server"`
	BigIDCfg  BigIDConfig  `mapstructure:"bigid" yaml:"bigid"`
	BackupCfg BackupConfig `mapstructure:"backup" yaml:"backup"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig { return c.LoggerCfg }
func (c *Config) Server() ServerConfig { return c.ServerCfg }
func (c *Config) BigID() BigIDConfig   { return c.BigIDCfg }
func (c *Config) Backup() BackupConfig { return c.BackupCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetServerApp(app string) { c.ServerCfg.App = app }
func (c *Config) SetServerPort(port int)  { c.ServerCfg.Port = port }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// ServerConfig holds the settings of the app's HTTP endpoint that BigID calls.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
	// App selects which action table and manifest is served ("dspm" or "simple").
	App               string        `mapstructure:"app" yaml:"app"`
	ResourcesDir      string        `mapstructure:"resources_dir" yaml:"resources_dir"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BigIDConfig tunes the calls made against the BigID host API.
type BigIDConfig struct {
	RequestTimeout  time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	RateLimit       float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateBurst       int           `mapstructure:"rate_burst" yaml:"rate_burst"`
	IgnoreTLSErrors bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	// CatalogPageLimit caps how many affected objects are requested per case.
	CatalogPageLimit int `mapstructure:"catalog_page_limit" yaml:"catalog_page_limit"`
}

// BackupConfig tunes the calls made against the external backup API.
type BackupConfig struct {
	RequestTimeout  time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	IgnoreTLSErrors bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
}

// Supported app variants.
const (
	AppDSPM   = "dspm"
	AppSimple = "simple"
)

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "quickstart")
	v.SetDefault("logger.log_file", "quickstart.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Server --
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8085)
	v.SetDefault("server.app", AppDSPM)
	v.SetDefault("server.resources_dir", "resources")
	v.SetDefault("server.read_header_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// -- BigID --
	v.SetDefault("bigid.request_timeout", "30s")
	v.SetDefault("bigid.rate_limit", 0.0)
	v.SetDefault("bigid.rate_burst", 1)
	v.SetDefault("bigid.ignore_tls_errors", false)
	v.SetDefault("bigid.catalog_page_limit", 32)

	// -- Backup --
	v.SetDefault("backup.request_timeout", "60s")
	v.SetDefault("backup.ignore_tls_errors", false)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// BigID deploys apps with the listen port in PORT.
	v.BindEnv("server.port", "PORT")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.ServerCfg.Validate(); err != nil {
		return fmt.Errorf("server configuration invalid: %w", err)
	}
	if err := c.BigIDCfg.Validate(); err != nil {
		return fmt.Errorf("bigid configuration invalid: %w", err)
	}
	if c.BackupCfg.RequestTimeout <= 0 {
		return fmt.Errorf("backup.request_timeout must be a positive duration")
	}
	return nil
}

// Validate checks the ServerConfig settings.
func (s *ServerConfig) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if s.App != AppDSPM && s.App != AppSimple {
		return fmt.Errorf("app must be %q or %q, got %q", AppDSPM, AppSimple, s.App)
	}
	return nil
}

// Validate checks the BigIDConfig settings.
func (b *BigIDConfig) Validate() error {
	if b.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be a positive duration")
	}
	if b.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	if b.RateLimit > 0 && b.RateBurst <= 0 {
		return fmt.Errorf("rate_burst must be positive when rate_limit is set")
	}
	if b.CatalogPageLimit <= 0 {
		return fmt.Errorf("catalog_page_limit must be a positive integer")
	}
	return nil
}
