// Package config loads the settings of the server, client and FUSE
// binaries from a YAML or TOML file and LIBNFS_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. LIBNFS_LOGGING_LEVEL.
const EnvPrefix = "LIBNFS"

// Config is the complete configuration.
//
// Sources, highest precedence first:
//  1. Environment variables (LIBNFS_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Server configures the export server.
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// HandleStore selects where the server keeps its inode table.
	HandleStore HandleStoreConfig `mapstructure:"handle_store" yaml:"handle_store"`

	// Client configures connections made by the client tools.
	Client ClientConfig `mapstructure:"client" yaml:"client"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is one of DEBUG, INFO, WARN, ERROR (any case)
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format is text or json
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`

	// Output is stdout, stderr or a file path
	Output string `mapstructure:"output" yaml:"output" validate:"required"`
}

// ServerConfig contains the export server settings.
type ServerConfig struct {
	Listen string `mapstructure:"listen" yaml:"listen" validate:"required"`

	// Root is the local directory being exported.
	Root string `mapstructure:"root" yaml:"root" validate:"required"`

	// Export is the name clients mount.
	Export string `mapstructure:"export" yaml:"export" validate:"required,startswith=/"`

	MaxConcurrent  int           `mapstructure:"max_concurrent" yaml:"max_concurrent" validate:"gt=0"`
	MaxConnections int           `mapstructure:"max_connections" yaml:"max_connections" validate:"gte=0"`
	MaxReadSize    int           `mapstructure:"max_read_size" yaml:"max_read_size" validate:"gt=0"`
	MaxWriteSize   int           `mapstructure:"max_write_size" yaml:"max_write_size" validate:"gt=0"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout" validate:"gte=0"`

	RootSquash bool   `mapstructure:"root_squash" yaml:"root_squash"`
	AnonUID    uint32 `mapstructure:"anon_uid" yaml:"anon_uid"`
	AnonGID    uint32 `mapstructure:"anon_gid" yaml:"anon_gid"`
	ReadOnly   bool   `mapstructure:"read_only" yaml:"read_only"`
}

// HandleStoreConfig selects the handle store.
//
// Only the section matching Type is used.
type HandleStoreConfig struct {
	// Type is memory or badger
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=memory badger"`

	// Badger holds BadgerDB options (path, in_memory, sync_writes).
	Badger map[string]any `mapstructure:"badger" yaml:"badger"`
}

// ClientConfig contains the client connection settings.
type ClientConfig struct {
	// URL is the default export, nfs://server[:port]/path.
	URL string `mapstructure:"url" yaml:"url" validate:"omitempty,startswith=nfs://"`

	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
	MaxRetries    int           `mapstructure:"max_retries" yaml:"max_retries" validate:"gte=0"`
	RetryDelay    time.Duration `mapstructure:"retry_delay" yaml:"retry_delay" validate:"gte=0"`
	BackoffFactor float64       `mapstructure:"backoff_factor" yaml:"backoff_factor" validate:"gte=1"`
	CacheSize     int           `mapstructure:"cache_size" yaml:"cache_size" validate:"gt=0"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl" validate:"gte=0"`
	ChunkSize     int           `mapstructure:"chunk_size" yaml:"chunk_size" validate:"gt=0"`
}

// Load loads configuration from file, environment, and defaults.
//
// An empty configPath searches the default location; a missing file there
// is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	// LIBNFS_SERVER_LISTEN overrides server.listen
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerKeys(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// registerKeys declares every key so environment variables apply even
// when the file does not mention them.
func registerKeys(v *viper.Viper) {
	d := GetDefaultConfig()
	for key, val := range map[string]any{
		"logging.level":          d.Logging.Level,
		"logging.format":         d.Logging.Format,
		"logging.output":         d.Logging.Output,
		"server.listen":          d.Server.Listen,
		"server.root":            d.Server.Root,
		"server.export":          d.Server.Export,
		"server.max_concurrent":  d.Server.MaxConcurrent,
		"server.max_connections": d.Server.MaxConnections,
		"server.max_read_size":   d.Server.MaxReadSize,
		"server.max_write_size":  d.Server.MaxWriteSize,
		"server.request_timeout": d.Server.RequestTimeout,
		"server.root_squash":     d.Server.RootSquash,
		"server.anon_uid":        d.Server.AnonUID,
		"server.anon_gid":        d.Server.AnonGID,
		"server.read_only":       d.Server.ReadOnly,
		"handle_store.type":      d.HandleStore.Type,
		"client.url":             d.Client.URL,
		"client.timeout":         d.Client.Timeout,
		"client.max_retries":     d.Client.MaxRetries,
		"client.retry_delay":     d.Client.RetryDelay,
		"client.backoff_factor":  d.Client.BackoffFactor,
		"client.cache_size":      d.Client.CacheSize,
		"client.cache_ttl":       d.Client.CacheTTL,
		"client.chunk_size":      d.Client.ChunkSize,
	} {
		v.SetDefault(key, val)
	}
}

func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns $XDG_CONFIG_HOME/libnfs, ~/.config/libnfs, or "."
// when no home directory is known.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "libnfs")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "libnfs")
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
