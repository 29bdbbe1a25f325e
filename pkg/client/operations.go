package client

import (
	"context"
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/example/libnfs/internal/logger"
	"github.com/example/libnfs/pkg/api"
)

// Null pings the server.
func (c *Client) Null(ctx context.Context) error {
	return c.callWithRetry(ctx, "Null", func(ctx context.Context) error {
		_, err := c.nfsClient.Null(ctx, &emptypb.Empty{})
		return err
	})
}

// Mount fetches the handle of exportPath and uses it as the root for
// LookupPath. Mounting again replaces the root and empties the cache.
func (c *Client) Mount(ctx context.Context, exportPath string) ([]byte, *api.FileAttributes, error) {
	var resp *api.MountResponse
	err := c.callWithRetry(ctx, "Mount", func(ctx context.Context) error {
		var err error
		resp, err = c.nfsClient.Mount(ctx, &api.MountRequest{Path: exportPath, Credentials: c.credentials()})
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("mount %s: %w", exportPath, err)
	}
	if err := c.checkStatus("Mount", resp.Status); err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	c.rootHandle = resp.FileHandle
	c.exportPath = exportPath
	c.mu.Unlock()
	c.handleCache.Clear()
	logger.Debug("Mounted %s from %s", exportPath, c.config.ServerAddress)

	return resp.FileHandle, resp.Attributes, nil
}

// GetRootFileHandle returns the mounted root handle, mounting the configured
// export first if needed.
func (c *Client) GetRootFileHandle(ctx context.Context) ([]byte, error) {
	c.mu.RLock()
	root := c.rootHandle
	c.mu.RUnlock()
	if root != nil {
		return root, nil
	}
	if c.config.ExportPath == "" {
		return nil, ErrNotMounted
	}
	root, _, err := c.Mount(ctx, c.config.ExportPath)
	return root, err
}

// GetAttr retrieves attributes for a file or directory
func (c *Client) GetAttr(ctx context.Context, fileHandle []byte) (*api.FileAttributes, error) {
	var resp *api.GetAttrResponse
	err := c.callWithRetry(ctx, "GetAttr", func(ctx context.Context) error {
		var err error
		resp, err = c.nfsClient.GetAttr(ctx, &api.GetAttrRequest{FileHandle: fileHandle, Credentials: c.credentials()})
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := c.checkStatus("GetAttr", resp.Status); err != nil {
		return nil, err
	}
	return resp.Attributes, nil
}

// SetAttr changes the attributes that are set in attrs.
func (c *Client) SetAttr(ctx context.Context, fileHandle []byte, attrs *api.SetAttributes) (*api.FileAttributes, error) {
	var resp *api.SetAttrResponse
	err := c.callWithRetry(ctx, "SetAttr", func(ctx context.Context) error {
		var err error
		resp, err = c.nfsClient.SetAttr(ctx, &api.SetAttrRequest{
			FileHandle:  fileHandle,
			Attributes:  attrs,
			Credentials: c.credentials(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := c.checkStatus("SetAttr", resp.Status); err != nil {
		return nil, err
	}
	return resp.Attributes, nil
}

// Lookup looks up a file name in a directory
func (c *Client) Lookup(ctx context.Context, dirHandle []byte, name string) ([]byte, *api.FileAttributes, error) {
	var resp *api.LookupResponse
	err := c.callWithRetry(ctx, "Lookup", func(ctx context.Context) error {
		var err error
		resp, err = c.nfsClient.Lookup(ctx, &api.LookupRequest{
			DirectoryHandle: dirHandle,
			Name:            name,
			Credentials:     c.credentials(),
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	if err := c.checkStatus("Lookup", resp.Status); err != nil {
		return nil, nil, err
	}
	return resp.FileHandle, resp.Attributes, nil
}

// Readlink returns the target of a symbolic link.
func (c *Client) Readlink(ctx context.Context, fileHandle []byte) (string, error) {
	var resp *api.ReadlinkResponse
	err := c.callWithRetry(ctx, "Readlink", func(ctx context.Context) error {
		var err error
		resp, err = c.nfsClient.Readlink(ctx, &api.ReadlinkRequest{FileHandle: fileHandle, Credentials: c.credentials()})
		return err
	})
	if err != nil {
		return "", err
	}
	if err := c.checkStatus("Readlink", resp.Status); err != nil {
		return "", err
	}
	return resp.Target, nil
}

// Read reads data from a file
func (c *Client) Read(ctx context.Context, fileHandle []byte, offset int64, count int) ([]byte, bool, error) {
	if offset < 0 || count < 0 {
		return nil, false, NewNFSError("Read", api.Status_ERR_INVAL, "negative offset or count", nil)
	}
	if uint64(count) > math.MaxUint32 {
		count = math.MaxUint32
	}

	var resp *api.ReadResponse
	err := c.callWithRetry(ctx, "Read", func(ctx context.Context) error {
		var err error
		resp, err = c.nfsClient.Read(ctx, &api.ReadRequest{
			FileHandle:  fileHandle,
			Offset:      uint64(offset),
			Count:       uint32(count),
			Credentials: c.credentials(),
		})
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if err := c.checkStatus("Read", resp.Status); err != nil {
		return nil, false, err
	}
	c.stats.addRead(len(resp.Data))
	return resp.Data, resp.Eof, nil
}

// Write writes data to a file
func (c *Client) Write(ctx context.Context, fileHandle []byte, offset int64, data []byte, stability int) (int, error) {
	if offset < 0 {
		return 0, NewNFSError("Write", api.Status_ERR_INVAL, "negative offset", nil)
	}

	var resp *api.WriteResponse
	err := c.callWithRetry(ctx, "Write", func(ctx context.Context) error {
		var err error
		resp, err = c.nfsClient.Write(ctx, &api.WriteRequest{
			FileHandle:  fileHandle,
			Offset:      uint64(offset),
			Data:        data,
			Stability:   api.StableHow(stability),
			Credentials: c.credentials(),
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	if err := c.checkStatus("Write", resp.Status); err != nil {
		return 0, err
	}
	c.stats.addWritten(int(resp.Count))
	return int(resp.Count), nil
}

// Commit flushes unstable writes to stable storage.
func (c *Client) Commit(ctx context.Context, fileHandle []byte) error {
	var resp *api.CommitResponse
	err := c.callWithRetry(ctx, "Commit", func(ctx context.Context) error {
		var err error
		resp, err = c.nfsClient.Commit(ctx, &api.CommitRequest{FileHandle: fileHandle, Credentials: c.credentials()})
		return err
	})
	if err != nil {
		return err
	}
	return c.checkStatus("Commit", resp.Status)
}

// ReadDir reads the contents of a directory, following cookies until the
// server reports the end of the listing.
func (c *Client) ReadDir(ctx context.Context, dirHandle []byte) ([]*api.DirEntry, error) {
	var (
		entries  []*api.DirEntry
		cookie   uint64
		verifier uint64
	)
	for {
		var resp *api.ReadDirResponse
		err := c.callWithRetry(ctx, "ReadDir", func(ctx context.Context) error {
			var err error
			resp, err = c.nfsClient.ReadDir(ctx, &api.ReadDirRequest{
				DirectoryHandle: dirHandle,
				Cookie:          cookie,
				CookieVerifier:  verifier,
				Credentials:     c.credentials(),
			})
			return err
		})
		if err != nil {
			return nil, err
		}
		if err := c.checkStatus("ReadDir", resp.Status); err != nil {
			return nil, err
		}

		entries = append(entries, resp.Entries...)
		if resp.Eof {
			return entries, nil
		}
		if len(resp.Entries) == 0 {
			return nil, NewNFSError("ReadDir", api.Status_ERR_IO, "server returned an empty page before EOF", nil)
		}
		cookie = resp.Entries[len(resp.Entries)-1].Cookie
		verifier = resp.CookieVerifier
	}
}

// Create creates a new file in the specified directory
func (c *Client) Create(ctx context.Context, dirHandle []byte, name string, attrs *api.SetAttributes, mode api.CreateMode) ([]byte, *api.FileAttributes, error) {
	var resp *api.CreateResponse
	err := c.callWithRetry(ctx, "Create", func(ctx context.Context) error {
		var err error
		resp, err = c.nfsClient.Create(ctx, &api.CreateRequest{
			DirectoryHandle: dirHandle,
			Name:            name,
			Attributes:      attrs,
			Mode:            mode,
			Credentials:     c.credentials(),
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	if err := c.checkStatus("Create", resp.Status); err != nil {
		return nil, nil, err
	}
	return resp.FileHandle, resp.Attributes, nil
}

// Mkdir creates a new directory
func (c *Client) Mkdir(ctx context.Context, dirHandle []byte, name string, attrs *api.SetAttributes) ([]byte, *api.FileAttributes, error) {
	var resp *api.MkdirResponse
	err := c.callWithRetry(ctx, "Mkdir", func(ctx context.Context) error {
		var err error
		resp, err = c.nfsClient.Mkdir(ctx, &api.MkdirRequest{
			DirectoryHandle: dirHandle,
			Name:            name,
			Attributes:      attrs,
			Credentials:     c.credentials(),
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	if err := c.checkStatus("Mkdir", resp.Status); err != nil {
		return nil, nil, err
	}
	return resp.FileHandle, resp.Attributes, nil
}

// Remove removes a file from the specified directory
func (c *Client) Remove(ctx context.Context, dirHandle []byte, name string) error {
	var resp *api.RemoveResponse
	err := c.callWithRetry(ctx, "Remove", func(ctx context.Context) error {
		var err error
		resp, err = c.nfsClient.Remove(ctx, &api.RemoveRequest{
			DirectoryHandle: dirHandle,
			Name:            name,
			Credentials:     c.credentials(),
		})
		return err
	})
	if err != nil {
		return err
	}
	return c.checkStatus("Remove", resp.Status)
}

// Rmdir removes a directory
func (c *Client) Rmdir(ctx context.Context, dirHandle []byte, name string) error {
	var resp *api.RmdirResponse
	err := c.callWithRetry(ctx, "Rmdir", func(ctx context.Context) error {
		var err error
		resp, err = c.nfsClient.Rmdir(ctx, &api.RmdirRequest{
			DirectoryHandle: dirHandle,
			Name:            name,
			Credentials:     c.credentials(),
		})
		return err
	})
	if err != nil {
		return err
	}
	return c.checkStatus("Rmdir", resp.Status)
}

// Rename renames a file or directory
func (c *Client) Rename(ctx context.Context, fromDirHandle []byte, fromName string, toDirHandle []byte, toName string) error {
	var resp *api.RenameResponse
	err := c.callWithRetry(ctx, "Rename", func(ctx context.Context) error {
		var err error
		resp, err = c.nfsClient.Rename(ctx, &api.RenameRequest{
			FromDirHandle: fromDirHandle,
			FromName:      fromName,
			ToDirHandle:   toDirHandle,
			ToName:        toName,
			Credentials:   c.credentials(),
		})
		return err
	})
	if err != nil {
		return err
	}
	return c.checkStatus("Rename", resp.Status)
}
