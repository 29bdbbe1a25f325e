// Package testutil runs an in-process export server over an in-memory
// listener for package tests.
package testutil

import (
	"context"
	"net"
	"path"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"github.com/example/libnfs/pkg/client"
	"github.com/example/libnfs/pkg/fs/local"
	"github.com/example/libnfs/pkg/server"
)

// ExportPath is the name the test server exports its directory under.
const ExportPath = "/export"

// Server is a running export server backed by a temporary directory.
type Server struct {
	// Dir is the exported local directory.
	Dir string

	// FS is the backend serving Dir.
	FS *local.LocalFileSystem

	nfs *server.NFSServer
	lis *bufconn.Listener
}

// NewServer starts a server exporting a fresh t.TempDir() with root
// squashing off. It stops when the test ends.
func NewServer(t testing.TB, tweak ...func(*server.Config)) *Server {
	t.Helper()

	dir := t.TempDir()
	lfs, err := local.NewLocalFileSystem(dir)
	if err != nil {
		t.Fatalf("Failed to create filesystem: %v", err)
	}

	cfg := server.DefaultConfig()
	cfg.ExportPath = ExportPath
	cfg.EnableRootSquash = false
	for _, f := range tweak {
		f(cfg)
	}
	nfs, err := server.NewNFSServer(cfg, lfs)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	lis := bufconn.Listen(1 << 20)
	go func() {
		if err := nfs.Serve(lis); err != nil {
			t.Errorf("Serve: %v", err)
		}
	}()
	t.Cleanup(nfs.Stop)

	return &Server{Dir: dir, FS: lfs, nfs: nfs, lis: lis}
}

// ClientConfig returns a client configuration that dials this server
// whatever address it is given.
func (s *Server) ClientConfig() *client.Config {
	cfg := client.DefaultConfig()
	cfg.ServerAddress = "127.0.0.1:2049"
	cfg.ExportPath = ExportPath
	cfg.Timeout = 5 * time.Second
	cfg.MaxRetries = 0
	cfg.RetryDelay = 10 * time.Millisecond
	cfg.DialOptions = []grpc.DialOption{
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return s.lis.DialContext(ctx)
		}),
	}
	return cfg
}

// URL returns the nfs:// address of p below the export.
func (s *Server) URL(p string) string {
	return "nfs://127.0.0.1" + path.Join(ExportPath, p)
}
