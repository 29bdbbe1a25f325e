package fuse

import (
	"context"
	"fmt"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/example/libnfs/internal/logger"
	"github.com/example/libnfs/pkg/client"
	"github.com/example/libnfs/pkg/libnfs"
)

// MountOptions contains options for mounting the filesystem
type MountOptions struct {
	MountPoint string

	// URL is the export to mount, nfs://server[:port]/path.
	URL string

	ReadOnly     bool
	CacheTimeout time.Duration
	Debug        bool

	// ClientConfig tunes the connection; nil uses client.DefaultConfig.
	ClientConfig *client.Config
}

// Mount mounts the export at options.MountPoint and serves it until ctx is
// done or the filesystem is unmounted from outside.
func Mount(ctx context.Context, options MountOptions) error {
	var libOpts []libnfs.Option
	if options.ClientConfig != nil {
		libOpts = append(libOpts, libnfs.WithClientConfig(options.ClientConfig))
	}

	logger.Info("Connecting to %s", options.URL)
	nfs, err := libnfs.New(options.URL, libOpts...)
	if err != nil {
		return fmt.Errorf("failed to mount export: %w", err)
	}
	defer nfs.Close()

	mountOpts := []fuse.MountOption{
		fuse.FSName("nfs-fuse"),
		fuse.Subtype("nfs"),
	}
	if options.ReadOnly {
		mountOpts = append(mountOpts, fuse.ReadOnly())
	}
	if options.Debug {
		fuse.Debug = func(msg interface{}) {
			logger.Debug("FUSE: %v", msg)
		}
	}

	logger.Info("Mounting FUSE filesystem at %s", options.MountPoint)
	c, err := fuse.Mount(options.MountPoint, mountOpts...)
	if err != nil {
		return fmt.Errorf("failed to mount: %w", err)
	}
	defer c.Close()

	served := make(chan error, 1)
	go func() {
		served <- fs.Serve(c, NewNFSFS(nfs, options.CacheTimeout))
	}()

	select {
	case err = <-served:
		// unmounted from outside
	case <-ctx.Done():
		logger.Info("Unmounting filesystem...")
		if uerr := Unmount(options.MountPoint); uerr != nil {
			logger.Warn("failed to unmount cleanly: %v", uerr)
		}
		err = <-served
	}
	if err != nil {
		return fmt.Errorf("serving filesystem: %w", err)
	}
	logger.Info("Filesystem at %s unmounted", options.MountPoint)
	return nil
}

// Unmount unmounts the filesystem
func Unmount(mountPoint string) error {
	return fuse.Unmount(mountPoint)
}
