package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/libnfs/internal/logger"
	"github.com/example/libnfs/pkg/config"
	"github.com/example/libnfs/pkg/fuse"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "", "Configuration file")
	mountPoint := flag.String("mount", "", "Mount point for NFS filesystem")
	url := flag.String("url", "", "Export to mount, nfs://server[:port]/path (default: client.url)")
	readOnly := flag.Bool("readonly", false, "Mount filesystem as read-only")
	cacheTimeout := flag.Duration("cache-timeout", time.Minute, "How long the kernel may cache attributes")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Check if mount point is provided
	if *mountPoint == "" {
		fmt.Fprintln(os.Stderr, "Error: Mount point is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	if *debug {
		cfg.Logging.Level = "DEBUG"
	}
	if err := cfg.Logging.ApplyLogging(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	if *url == "" {
		*url = cfg.Client.URL
	}

	// Ensure mount point exists
	if _, err := os.Stat(*mountPoint); os.IsNotExist(err) {
		logger.Info("Creating mount point: %s", *mountPoint)
		if err := os.MkdirAll(*mountPoint, 0755); err != nil {
			logger.Error("Failed to create mount point: %v", err)
			os.Exit(1)
		}
	}

	options := fuse.MountOptions{
		MountPoint:   *mountPoint,
		URL:          *url,
		ReadOnly:     *readOnly,
		CacheTimeout: *cacheTimeout,
		Debug:        *debug,
		ClientConfig: cfg.Client.ToClient(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fuse.Mount(ctx, options); err != nil {
		logger.Error("Error mounting filesystem: %v", err)
		os.Exit(1)
	}
}
