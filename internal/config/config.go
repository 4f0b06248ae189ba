package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// appName names the config, cache and state subdirectories
const appName = "anidb"

// Config is the complete application configuration
type Config struct {
	Client   ClientConfig   `mapstructure:"client" yaml:"client"`
	API      APIConfig      `mapstructure:"api" yaml:"api"`
	Cache    CacheConfig    `mapstructure:"cache" yaml:"cache"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Advanced AdvancedConfig `mapstructure:"advanced" yaml:"advanced"`
}

// ClientConfig is the client identity AniDB requires on every API request
type ClientConfig struct {
	Name            string `mapstructure:"name" yaml:"name"`
	Version         int    `mapstructure:"version" yaml:"version"`
	ProtocolVersion int    `mapstructure:"protocol_version" yaml:"protocol_version"`
}

// APIConfig holds the remote endpoints
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url"`
	TitlesURL string        `mapstructure:"titles_url" yaml:"titles_url"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// CacheConfig controls the titles cache cascade.
// Tiers are probed in the listed order: snapshot, database, document.
type CacheConfig struct {
	Dir   string   `mapstructure:"dir" yaml:"dir"`
	Tiers []string `mapstructure:"tiers" yaml:"tiers"`
}

// DatabaseConfig configures the optional SQLite cache tier
type DatabaseConfig struct {
	Path           string `mapstructure:"path" yaml:"path"`
	MaxConnections int    `mapstructure:"max_connections" yaml:"max_connections"`
	WALMode        bool   `mapstructure:"wal_mode" yaml:"wal_mode"`
}

// LoggingConfig configures the slog logger
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
	Color      bool   `mapstructure:"color" yaml:"color"`
}

// AdvancedConfig holds debugging switches
type AdvancedConfig struct {
	Debug bool `mapstructure:"debug" yaml:"debug"`
}

// Tier names accepted in cache.tiers
const (
	TierSnapshot = "snapshot"
	TierDatabase = "database"
	TierDocument = "document"
)

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			Name:            "anidbgo",
			Version:         1,
			ProtocolVersion: 1,
		},
		API: APIConfig{
			BaseURL:   "http://api.anidb.net:9001/httpapi",
			TitlesURL: "http://anidb.net/api/anime-titles.xml.gz",
			Timeout:   30 * time.Second,
			UserAgent: "anidb-go/1.0",
		},
		Cache: CacheConfig{
			Dir:   filepath.Join(GetCacheDir(), appName),
			Tiers: []string{TierSnapshot, TierDocument},
		},
		Database: DatabaseConfig{
			Path:           filepath.Join(GetCacheDir(), appName, "anidb.db"),
			MaxConnections: 2,
			WALMode:        true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			File:       "",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
			Color:      true,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("client.name", d.Client.Name)
	v.SetDefault("client.version", d.Client.Version)
	v.SetDefault("client.protocol_version", d.Client.ProtocolVersion)
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.titles_url", d.API.TitlesURL)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("api.user_agent", d.API.UserAgent)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.tiers", d.Cache.Tiers)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("database.max_connections", d.Database.MaxConnections)
	v.SetDefault("database.wal_mode", d.Database.WALMode)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.max_size", d.Logging.MaxSize)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age", d.Logging.MaxAge)
	v.SetDefault("logging.compress", d.Logging.Compress)
	v.SetDefault("logging.color", d.Logging.Color)
	v.SetDefault("advanced.debug", false)
}

// Load reads configuration from cfgFile, or config.yaml in the config
// directory when cfgFile is empty. A missing default file is not an error.
// Environment variables prefixed with ANIDB_ override file values.
func Load(cfgFile string) (*Config, *viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ANIDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(GetConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return &cfg, v, nil
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	if c.Client.Name == "" {
		return errors.New("client.name must be set")
	}
	if c.Client.Version <= 0 {
		return fmt.Errorf("client.version must be positive, got %d", c.Client.Version)
	}
	if c.Cache.Dir == "" {
		return errors.New("cache.dir must be set")
	}
	seen := make(map[string]bool, len(c.Cache.Tiers))
	for _, tier := range c.Cache.Tiers {
		switch tier {
		case TierSnapshot, TierDatabase, TierDocument:
		default:
			return fmt.Errorf("unknown cache tier %q", tier)
		}
		if seen[tier] {
			return fmt.Errorf("cache tier %q listed twice", tier)
		}
		seen[tier] = true
	}
	return nil
}

// SaveDefaultConfig writes the default configuration as YAML to path
func SaveDefaultConfig(path string) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(DefaultConfig()); err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// InitializeDirs creates the config and cache directories
func InitializeDirs() error {
	for _, dir := range []string{
		GetConfigDir(),
		filepath.Join(GetCacheDir(), appName),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// GetConfigDir returns $XDG_CONFIG_HOME/anidb
func GetConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	return filepath.Join(homeDir(), ".config", appName)
}

// GetCacheDir returns $XDG_CACHE_HOME
func GetCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
