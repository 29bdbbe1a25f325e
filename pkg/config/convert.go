package config

import (
	"fmt"
	"time"

	"github.com/example/libnfs/internal/logger"
	"github.com/example/libnfs/pkg/client"
	"github.com/example/libnfs/pkg/fs/handlestore"
	"github.com/example/libnfs/pkg/server"
)

// ApplyLogging configures the process logger.
func (c LoggingConfig) ApplyLogging() error {
	w, err := logger.OpenOutput(c.Output)
	if err != nil {
		return fmt.Errorf("logging.output: %w", err)
	}
	logger.SetOutput(w)
	logger.SetLevel(c.Level)
	logger.SetFormat(c.Format)
	return nil
}

// ToServer converts the section into a server configuration.
func (c ServerConfig) ToServer() *server.Config {
	return &server.Config{
		ListenAddress:    c.Listen,
		ExportPath:       c.Export,
		MaxConcurrent:    c.MaxConcurrent,
		MaxConnections:   c.MaxConnections,
		MaxReadSize:      c.MaxReadSize,
		MaxWriteSize:     c.MaxWriteSize,
		RequestTimeout:   int(c.RequestTimeout / time.Second),
		EnableRootSquash: c.RootSquash,
		AnonUID:          c.AnonUID,
		AnonGID:          c.AnonGID,
		ReadOnly:         c.ReadOnly,
	}
}

// Open creates the configured handle store.
func (c HandleStoreConfig) Open() (handlestore.Store, error) {
	return handlestore.New(c.Type, c.Badger)
}

// ToClient converts the section into a client configuration. Server
// address and export come from the URL being opened, not from here.
func (c ClientConfig) ToClient() *client.Config {
	cfg := client.DefaultConfig()
	cfg.Timeout = c.Timeout
	cfg.MaxRetries = c.MaxRetries
	cfg.RetryDelay = c.RetryDelay
	cfg.BackoffFactor = c.BackoffFactor
	cfg.MaxCacheSize = c.CacheSize
	cfg.CacheTTL = c.CacheTTL
	cfg.ChunkSize = c.ChunkSize
	return cfg
}
