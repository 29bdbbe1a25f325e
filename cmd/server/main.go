package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/libnfs/internal/logger"
	"github.com/example/libnfs/pkg/config"
	"github.com/example/libnfs/pkg/fs/local"
	"github.com/example/libnfs/pkg/server"
)

func main() {
	// Parse command line flags; set flags override the configuration file
	configPath := flag.String("config", "", "Configuration file (default: $XDG_CONFIG_HOME/libnfs/config.yaml)")
	initConfig := flag.Bool("init", false, "Write a default configuration file and exit")
	force := flag.Bool("force", false, "With -init, overwrite an existing file")
	listenAddr := flag.String("listen", "", "Network address to listen on")
	rootPath := flag.String("root", "", "Root directory to export")
	exportPath := flag.String("export", "", "Name clients mount the export under")
	readOnly := flag.Bool("read-only", false, "Reject every modifying request")
	logLevel := flag.String("log-level", "", "DEBUG, INFO, WARN or ERROR")

	flag.Parse()

	if *initConfig {
		path, err := config.Init(*configPath, *force)
		if err != nil {
			logger.Error("Failed to write configuration: %v", err)
			os.Exit(1)
		}
		logger.Info("Configuration written to %s", path)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.Server.Listen = *listenAddr
		case "root":
			cfg.Server.Root = *rootPath
		case "export":
			cfg.Server.Export = *exportPath
		case "read-only":
			cfg.Server.ReadOnly = *readOnly
		case "log-level":
			cfg.Logging.Level = *logLevel
		}
	})
	if err := config.Validate(cfg); err != nil {
		logger.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}
	if err := cfg.Logging.ApplyLogging(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	// Ensure export directory exists
	if err := os.MkdirAll(cfg.Server.Root, 0755); err != nil {
		logger.Error("Failed to create export directory: %v", err)
		os.Exit(1)
	}

	store, err := cfg.HandleStore.Open()
	if err != nil {
		logger.Error("Failed to open handle store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	fileSystem, err := local.NewLocalFileSystemWithStore(cfg.Server.Root, store)
	if err != nil {
		logger.Error("Failed to initialize filesystem: %v", err)
		os.Exit(1)
	}

	nfsServer, err := server.NewNFSServer(cfg.Server.ToServer(), fileSystem)
	if err != nil {
		logger.Error("Failed to create NFS server: %v", err)
		os.Exit(1)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- nfsServer.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error: %v", err)
			store.Close()
			os.Exit(1)
		}
	case sig := <-sigChan:
		logger.Info("Received signal %v, shutting down...", sig)
		nfsServer.Stop()
	}
}
