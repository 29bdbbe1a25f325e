package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/example/libnfs/pkg/api"
	"github.com/example/libnfs/pkg/fs/local"
)

// rootCreds are used with root squashing disabled, so every permission
// check passes.
var rootCreds = &api.Credentials{Uid: 0, Gid: 0, Groups: []uint32{0}}

// setupServer exports a fresh temporary directory with root squashing off.
func setupServer(t *testing.T, tweak ...func(*Config)) (*NFSServer, *local.LocalFileSystem, string) {
	t.Helper()
	tempDir := t.TempDir()

	lfs, err := local.NewLocalFileSystem(tempDir)
	if err != nil {
		t.Fatalf("Failed to create filesystem: %v", err)
	}

	config := DefaultConfig()
	config.EnableRootSquash = false
	for _, f := range tweak {
		f(config)
	}
	server, err := NewNFSServer(config, lfs)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	return server, lfs, tempDir
}

func mustHandle(t *testing.T, lfs *local.LocalFileSystem, p string) []byte {
	t.Helper()
	h, err := lfs.PathToFileHandle(p)
	if err != nil {
		t.Fatalf("PathToFileHandle(%s): %v", p, err)
	}
	return h
}

func writeFile(t *testing.T, dir, name, content string, perm os.FileMode) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), perm); err != nil {
		t.Fatalf("Failed to create %s: %v", name, err)
	}
	if err := os.Chmod(p, perm); err != nil {
		t.Fatalf("Failed to chmod %s: %v", name, err)
	}
	return p
}

func u32(v uint32) *uint32 { return &v }
func u64(v uint64) *uint64 { return &v }
