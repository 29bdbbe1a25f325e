package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/example/libnfs/internal/logger"
	"github.com/example/libnfs/pkg/config"
	"github.com/example/libnfs/pkg/fs"
	"github.com/example/libnfs/pkg/fs/local"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Configuration file; its handle store is used")
	rootPath := flag.String("root", "", "Root directory to export (default: server.root)")
	path := flag.String("path", "/", "Path relative to root")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	if *rootPath == "" {
		*rootPath = cfg.Server.Root
	}

	store, err := cfg.HandleStore.Open()
	if err != nil {
		logger.Error("Failed to open handle store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	fileSystem, err := local.NewLocalFileSystemWithStore(*rootPath, store)
	if err != nil {
		logger.Error("Failed to initialize filesystem: %v", err)
		os.Exit(1)
	}

	handle, err := fileSystem.PathToFileHandle(*path)
	if err != nil {
		logger.Error("Failed to get file handle: %v", err)
		os.Exit(1)
	}

	// Check the handle resolves back to the path
	resolvedPath, err := fileSystem.FileHandleToPath(handle)
	if err != nil {
		logger.Error("Failed to validate handle: %v", err)
		os.Exit(1)
	}
	decoded, err := fs.DeserializeFileHandle(handle)
	if err != nil {
		logger.Error("Failed to decode handle: %v", err)
		os.Exit(1)
	}

	info, err := fileSystem.GetAttr(context.Background(), resolvedPath)
	if err != nil {
		logger.Error("Failed to get file info: %v", err)
		os.Exit(1)
	}

	fmt.Printf("File handle for '%s': %s\n", *path, hex.EncodeToString(handle))
	fmt.Printf("fsid: %d  inode: %d  generation: %d\n",
		decoded.FileSystemID, decoded.Inode, decoded.Generation)
	fmt.Printf("File type: %s\n", info.Type)
	fmt.Printf("Size: %d bytes\n", info.Size)
	fmt.Printf("Mode: %o\n", info.Mode)
	fmt.Printf("Owner: %d:%d\n", info.Uid, info.Gid)
	fmt.Printf("Modified: %s\n", info.ModifyTime)
}
