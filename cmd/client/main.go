package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/example/libnfs/internal/logger"
	"github.com/example/libnfs/pkg/client"
	"github.com/example/libnfs/pkg/config"
	"github.com/example/libnfs/pkg/libnfs"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Configuration file")
	url := flag.String("url", "", "Export to mount, nfs://server[:port]/path (default: client.url)")
	operation := flag.String("op", "ls", "Operation: stat, ls, cat, put, mkdir, makedirs, rm, rmdir, mv")
	path := flag.String("path", "/", "Path below the export")
	dst := flag.String("dst", "", "Destination path for mv")
	src := flag.String("src", "", "Local file to upload with put (default: stdin)")
	showStats := flag.Bool("stats", false, "Print client statistics when done")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	if err := cfg.Logging.ApplyLogging(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	if *url == "" {
		*url = cfg.Client.URL
	}

	// keep the context to read its statistics
	var conn *client.Context
	connector := libnfs.WithConnector(func(c *client.Config) libnfs.Conn {
		conn = client.NewContext(c)
		return conn
	})

	err = libnfs.With(*url, func(n *libnfs.NFS) error {
		err := run(n, *operation, *path, *dst, *src)
		if *showStats && conn != nil && conn.Client() != nil {
			printStats(conn.Client().GetStatistics())
		}
		return err
	}, libnfs.WithClientConfig(cfg.Client.ToClient()), connector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", *operation, err)
		os.Exit(1)
	}
}

func run(n *libnfs.NFS, op, path, dst, src string) error {
	switch op {
	case "stat":
		st, err := n.Stat(path)
		if err != nil {
			return err
		}
		fmt.Printf("Mode: %s (%o)\n", st.FileMode(), st.Mode)
		fmt.Printf("Size: %d bytes\n", st.Size)
		fmt.Printf("Inode: %d  Links: %d\n", st.Ino, st.Nlink)
		fmt.Printf("Owner: %d:%d\n", st.UID, st.GID)
		fmt.Printf("Modified: %s\n", st.ModTime())
		return nil

	case "ls":
		names, err := n.Listdir(path)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil

	case "cat":
		f, err := n.Open(path, "rb", nil)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(os.Stdout, f)
		return err

	case "put":
		in := os.Stdin
		if src != "" {
			var err error
			if in, err = os.Open(src); err != nil {
				return err
			}
			defer in.Close()
		}
		f, err := n.Open(path, "wb", nil)
		if err != nil {
			return err
		}
		if _, err := io.Copy(f, in); err != nil {
			f.Close()
			return err
		}
		return f.Close()

	case "mkdir":
		return status(n.Mkdir(path))
	case "makedirs":
		return status(n.Makedirs(path))
	case "rm":
		return status(n.Unlink(path))
	case "rmdir":
		return status(n.Rmdir(path))
	case "mv":
		if dst == "" {
			return errors.New("mv needs -dst")
		}
		return status(n.Rename(path, dst))

	default:
		return fmt.Errorf("unsupported operation: %s", op)
	}
}

// status turns a non-zero remote status into an error.
func status(st int, err error) error {
	if err != nil {
		return err
	}
	if st != 0 {
		return errors.New(client.Strerror(st))
	}
	return nil
}

func printStats(s client.ClientStats) {
	fmt.Fprintf(os.Stderr, "operations: %d  errors: %d\n", s.Operations, s.Errors)
	fmt.Fprintf(os.Stderr, "read: %d bytes  written: %d bytes\n", s.BytesRead, s.BytesWritten)
	fmt.Fprintf(os.Stderr, "average response: %s\n", s.AvgResponseTime)
}
