package config

import (
	"strings"
	"time"
)

// ApplyDefaults fills zero fields with defaults. Explicit values are kept.
func ApplyDefaults(cfg *Config) {
	d := GetDefaultConfig()

	applyLoggingDefaults(&cfg.Logging, d.Logging)
	applyServerDefaults(&cfg.Server, d.Server)

	if cfg.HandleStore.Type == "" {
		cfg.HandleStore.Type = d.HandleStore.Type
	}
	if cfg.HandleStore.Badger == nil {
		cfg.HandleStore.Badger = make(map[string]any)
	}
	if _, ok := cfg.HandleStore.Badger["path"]; !ok {
		cfg.HandleStore.Badger["path"] = d.HandleStore.Badger["path"]
	}

	applyClientDefaults(&cfg.Client, d.Client)
}

func applyLoggingDefaults(cfg *LoggingConfig, d LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = d.Level
	}
	cfg.Level = strings.ToUpper(cfg.Level)
	if cfg.Format == "" {
		cfg.Format = d.Format
	}
	if cfg.Output == "" {
		cfg.Output = d.Output
	}
}

func applyServerDefaults(cfg *ServerConfig, d ServerConfig) {
	if cfg.Listen == "" {
		cfg.Listen = d.Listen
	}
	if cfg.Root == "" {
		cfg.Root = d.Root
	}
	if cfg.Export == "" {
		cfg.Export = d.Export
	}
	if cfg.MaxConcurrent == 0 {
		cfg.MaxConcurrent = d.MaxConcurrent
	}
	if cfg.MaxReadSize == 0 {
		cfg.MaxReadSize = d.MaxReadSize
	}
	if cfg.MaxWriteSize == 0 {
		cfg.MaxWriteSize = d.MaxWriteSize
	}
	if cfg.AnonUID == 0 {
		cfg.AnonUID = d.AnonUID
	}
	if cfg.AnonGID == 0 {
		cfg.AnonGID = d.AnonGID
	}
}

func applyClientDefaults(cfg *ClientConfig, d ClientConfig) {
	if cfg.Timeout == 0 {
		cfg.Timeout = d.Timeout
	}
	if cfg.BackoffFactor == 0 {
		cfg.BackoffFactor = d.BackoffFactor
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = d.CacheSize
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = d.ChunkSize
	}
}

// GetDefaultConfig returns the configuration used when nothing is set.
func GetDefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
			Output: "stderr",
		},
		Server: ServerConfig{
			Listen:         ":2049",
			Root:           "./exports",
			Export:         "/export",
			MaxConcurrent:  100,
			MaxReadSize:    1024 * 1024,
			MaxWriteSize:   1024 * 1024,
			RequestTimeout: 30 * time.Second,
			RootSquash:     true,
			AnonUID:        65534, // nobody
			AnonGID:        65534, // nogroup
		},
		HandleStore: HandleStoreConfig{
			Type: "memory",
			Badger: map[string]any{
				"path": "./handles",
			},
		},
		Client: ClientConfig{
			URL:           "nfs://localhost/export",
			Timeout:       30 * time.Second,
			MaxRetries:    3,
			RetryDelay:    500 * time.Millisecond,
			BackoffFactor: 2.0,
			CacheSize:     1000,
			CacheTTL:      5 * time.Minute,
			ChunkSize:     1024 * 1024,
		},
	}
}
