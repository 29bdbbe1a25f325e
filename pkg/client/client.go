// Package client implements the NFS protocol client: a gRPC RPC layer
// (Client) and a libnfs-style Context on top of it that speaks in paths,
// open descriptors and 0/-errno statuses.
package client

import (
	"fmt"
	"os"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/example/libnfs/internal/logger"
	"github.com/example/libnfs/pkg/api"
)

// DefaultPort is the port used when an address does not name one.
const DefaultPort = 2049

// Config contains the NFS client configuration options
type Config struct {
	// ServerAddress is the address of the NFS server (e.g., "localhost:2049")
	ServerAddress string

	// ExportPath is mounted by GetRootFileHandle when nothing is mounted yet.
	ExportPath string

	// Timeout is the default timeout for RPC operations
	Timeout time.Duration

	// MaxRetries is the maximum number of retries for operations
	MaxRetries int

	// RetryDelay is the initial delay between retries (will be multiplied by backoff factor)
	RetryDelay time.Duration

	// BackoffFactor is the multiplier for retry delay after each attempt
	BackoffFactor float64

	// MaxCacheSize is the maximum number of entries in the file handle cache
	MaxCacheSize int

	// CacheTTL is the time-to-live for cache entries
	CacheTTL time.Duration

	// ChunkSize caps the payload of a single READ or WRITE.
	ChunkSize int

	// UID and GID are sent as the caller's credentials.
	UID uint32
	GID uint32

	// DialOptions are appended to the defaults; tests use them to dial an
	// in-memory listener.
	DialOptions []grpc.DialOption
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		ServerAddress: fmt.Sprintf("localhost:%d", DefaultPort),
		ExportPath:    "/export",
		Timeout:       30 * time.Second,
		MaxRetries:    3,
		RetryDelay:    500 * time.Millisecond,
		BackoffFactor: 2.0,
		MaxCacheSize:  1000,
		CacheTTL:      5 * time.Minute,
		ChunkSize:     1024 * 1024,
		UID:           uint32(os.Getuid()),
		GID:           uint32(os.Getgid()),
	}
}

// Client represents an NFS client and implements the NFSClient interface
type Client struct {
	// gRPC connection to the server
	conn *grpc.ClientConn

	// NFS service client
	nfsClient api.NFSServiceClient

	// Client configuration
	config *Config

	// Directory handle cache, keyed by path below the mount root
	handleCache *HandleCache

	stats statsCollector

	mu         sync.RWMutex
	rootHandle []byte
	exportPath string
}

// NewClient creates a new NFS client. The connection is established lazily
// by the first RPC.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.ServerAddress == "" {
		return nil, fmt.Errorf("server address is required")
	}

	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, config.DialOptions...)

	conn, err := grpc.NewClient(config.ServerAddress, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	logger.Debug("NFS client created for %s", config.ServerAddress)

	return &Client{
		conn:        conn,
		nfsClient:   api.NewNFSServiceClient(conn),
		config:      config,
		handleCache: NewHandleCache(config.MaxCacheSize, config.CacheTTL),
	}, nil
}

// credentials returns the caller identity sent with every request.
func (c *Client) credentials() *api.Credentials {
	return &api.Credentials{
		Uid:    c.config.UID,
		Gid:    c.config.GID,
		Groups: []uint32{c.config.GID},
	}
}

// Close closes the client connection
func (c *Client) Close() error {
	c.handleCache.Clear()
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
