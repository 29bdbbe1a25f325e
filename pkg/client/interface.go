package client

import (
	"context"
	"time"

	"github.com/example/libnfs/pkg/api"
)

// NFSClient defines the interface for NFS client operations
type NFSClient interface {
	// Null checks that the server answers.
	Null(ctx context.Context) error

	// Mount asks the server for the handle of an exported directory and
	// makes it the root for path operations.
	Mount(ctx context.Context, exportPath string) ([]byte, *api.FileAttributes, error)

	// GetAttr retrieves attributes for a file or directory
	GetAttr(ctx context.Context, fileHandle []byte) (*api.FileAttributes, error)

	// SetAttr changes the attributes that are set in attrs.
	SetAttr(ctx context.Context, fileHandle []byte, attrs *api.SetAttributes) (*api.FileAttributes, error)

	// Lookup looks up a file name in a directory
	// Returns the file handle, attributes, and any error
	Lookup(ctx context.Context, dirHandle []byte, name string) ([]byte, *api.FileAttributes, error)

	// Readlink returns the target of a symbolic link.
	Readlink(ctx context.Context, fileHandle []byte) (string, error)

	// Read reads data from a file at the specified offset
	// Returns the data read, a boolean indicating if EOF was reached, and any error
	Read(ctx context.Context, fileHandle []byte, offset int64, count int) ([]byte, bool, error)

	// Write writes data to a file at the specified offset
	// stability levels: 0=UNSTABLE, 1=DATA_SYNC, 2=FILE_SYNC
	// Returns the number of bytes written and any error
	Write(ctx context.Context, fileHandle []byte, offset int64, data []byte, stability int) (int, error)

	// Commit flushes unstable writes to stable storage.
	Commit(ctx context.Context, fileHandle []byte) error

	// ReadDir reads the contents of a directory
	// Returns directory entries and any error
	ReadDir(ctx context.Context, dirHandle []byte) ([]*api.DirEntry, error)

	// Create creates a new file in the specified directory
	// Returns the file handle, attributes, and any error
	Create(ctx context.Context, dirHandle []byte, name string, attrs *api.SetAttributes, mode api.CreateMode) ([]byte, *api.FileAttributes, error)

	// Mkdir creates a new directory
	// Returns the directory handle, attributes, and any error
	Mkdir(ctx context.Context, dirHandle []byte, name string, attrs *api.SetAttributes) ([]byte, *api.FileAttributes, error)

	// Remove removes a file from the specified directory
	Remove(ctx context.Context, dirHandle []byte, name string) error

	// Rmdir removes a directory
	Rmdir(ctx context.Context, dirHandle []byte, name string) error

	// Rename renames a file or directory
	Rename(ctx context.Context, fromDirHandle []byte, fromName string, toDirHandle []byte, toName string) error

	// Close closes the client connection and releases all resources
	Close() error

	// GetRootFileHandle returns the mounted root handle, mounting the
	// configured export first if needed.
	GetRootFileHandle(ctx context.Context) ([]byte, error)

	// LookupPath resolves a file path to a file handle, starting from the root
	LookupPath(ctx context.Context, path string) ([]byte, error)
}

// CacheableClient extends NFSClient with cache management capabilities
type CacheableClient interface {
	NFSClient

	// ClearCache clears all cached handles
	ClearCache() error

	// SetCacheTTL sets the time-to-live for cache entries
	SetCacheTTL(duration time.Duration)
}

// StatisticsClient extends NFSClient with statistics reporting
type StatisticsClient interface {
	NFSClient

	// GetStatistics returns client operation statistics
	GetStatistics() ClientStats
}

// ClientStats contains statistics about client operations
type ClientStats struct {
	Operations      uint64        // Total number of operations performed
	Errors          uint64        // Number of operations that resulted in errors
	BytesRead       uint64        // Total bytes read
	BytesWritten    uint64        // Total bytes written
	AvgResponseTime time.Duration // Average operation response time
}

var (
	_ CacheableClient  = (*Client)(nil)
	_ StatisticsClient = (*Client)(nil)
)
