// Package libnfs gives POSIX-style file access to a remote export: an NFS
// value owns one mounted connection and hands out FileHandles that read,
// write and seek like local files.
package libnfs

import (
	"strings"
	"sync"

	"golang.org/x/sys/unix"
	"golang.org/x/text/encoding"

	"github.com/example/libnfs/internal/logger"
	"github.com/example/libnfs/pkg/client"
)

// NFS is a mounted export. Calls are serialized on the connection, so an
// NFS may be shared between goroutines.
type NFS struct {
	mu   sync.Mutex
	conn Conn
	url  *client.URL
	opts options
}

// New connects to the export named by address (nfs://server[:port]/path)
// and mounts it. On failure nothing is left open.
func New(address string, opts ...Option) (*NFS, error) {
	o := buildOptions(opts)

	conn := o.connector(o.clientConfig)
	u, err := client.ParseURLDir(address)
	if err != nil {
		conn.Destroy()
		return nil, &Error{Kind: ErrConnection, Op: "mount", Path: address, Err: err}
	}
	if id, ok := conn.(identity); ok {
		if u.UID != nil {
			id.SetUID(*u.UID)
		}
		if u.GID != nil {
			id.SetGID(*u.GID)
		}
	}

	if st := conn.Mount(u.Server, u.Path); st != 0 {
		msg := conn.GetError()
		conn.Destroy()
		return nil, statusError(ErrConnection, "mount", address, st, msg)
	}
	logger.Debug("libnfs: mounted %s", u)

	return &NFS{conn: conn, url: u, opts: o}, nil
}

// With mounts address, runs fn and closes the mount however fn returns.
func With(address string, fn func(*NFS) error, opts ...Option) error {
	n, err := New(address, opts...)
	if err != nil {
		return err
	}
	defer n.Close()
	return fn(n)
}

// Close unmounts and releases the connection. Calling it again does
// nothing.
func (n *NFS) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.url != nil {
		logger.Debug("libnfs: unmounting %s", n.url)
		n.url = nil
	}
	if n.conn != nil {
		n.conn.Destroy()
		n.conn = nil
	}
	return nil
}

// do runs fn with the connection held.
func (n *NFS) do(op, path string, fn func(Conn) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn == nil {
		return &Error{Kind: ErrValue, Op: op, Path: path, Msg: msgClosedContext}
	}
	return fn(n.conn)
}

// URL returns the mounted address, or nil once closed.
func (n *NFS) URL() *client.URL {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.url == nil {
		return nil
	}
	u := *n.url
	return &u
}

// LastError returns the connection's description of its last failure.
func (n *NFS) LastError() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn == nil {
		return ""
	}
	return n.conn.GetError()
}

// Open opens path on this export. A path starting with nfs:// is opened
// on a private mount of its parent directory instead, owned by the handle.
// A nil codec selects the default codec for text modes.
func (n *NFS) Open(path, mode string, codec encoding.Encoding) (*FileHandle, error) {
	if client.IsURL(path) {
		return openURL(path, mode, codec, n.opts)
	}
	return openOn(n, false, path, path, mode, codec)
}

// Stat returns the metadata of path, following a final symbolic link.
func (n *NFS) Stat(path string) (StatResult, error) {
	return n.stat("stat", path, Conn.Stat64)
}

// Lstat returns the metadata of path itself.
func (n *NFS) Lstat(path string) (StatResult, error) {
	return n.stat("lstat", path, Conn.Lstat64)
}

func (n *NFS) stat(op, path string, call func(Conn, string, *client.Stat64) int) (StatResult, error) {
	var res StatResult
	err := n.do(op, path, func(c Conn) error {
		var st client.Stat64
		ret := call(c, path, &st)
		if ret == -int(unix.ENOENT) {
			return notFound(op, path)
		}
		if ret != 0 {
			return statusError(ErrIO, op, path, ret, c.GetError())
		}
		res = statFromNative(&st)
		return nil
	})
	return res, err
}

// mutate runs a call that reports failure through its status. ENOENT is an
// error; every other status is returned for the caller to check.
func (n *NFS) mutate(op, path string, call func(Conn) int) (int, error) {
	var ret int
	err := n.do(op, path, func(c Conn) error {
		ret = call(c)
		if ret == -int(unix.ENOENT) {
			return notFound(op, path)
		}
		return nil
	})
	return ret, err
}

// Unlink removes a file and returns the remote status.
func (n *NFS) Unlink(path string) (int, error) {
	return n.mutate("unlink", path, func(c Conn) int { return c.Unlink(path) })
}

// Mkdir creates a directory and returns the remote status.
func (n *NFS) Mkdir(path string) (int, error) {
	return n.mutate("mkdir", path, func(c Conn) int { return c.Mkdir(path) })
}

// Rmdir removes a directory and returns the remote status.
func (n *NFS) Rmdir(path string) (int, error) {
	return n.mutate("rmdir", path, func(c Conn) int { return c.Rmdir(path) })
}

// Rename moves src to dst and returns the remote status.
func (n *NFS) Rename(src, dst string) (int, error) {
	return n.mutate("rename", src, func(c Conn) int { return c.Rename(src, dst) })
}

// Listdir returns the names in path, without "." and "..", in the order
// the server sends them.
func (n *NFS) Listdir(path string) ([]string, error) {
	var names []string
	err := n.do("listdir", path, func(c Conn) error {
		dir, ret := c.Opendir(path)
		if ret == -int(unix.ENOENT) {
			return notFound("listdir", path)
		}
		if ret != 0 {
			return statusError(ErrIO, "listdir", path, ret, c.GetError())
		}
		defer c.Closedir(dir)

		names = []string{}
		for e := c.Readdir(dir); e != nil; e = c.Readdir(dir) {
			if e.Name == "." || e.Name == ".." {
				continue
			}
			names = append(names, e.Name)
		}
		return nil
	})
	return names, err
}

// Makedirs calls Mkdir on every prefix of path from the root down:
// "/a", "/a/b", "/a/b/c". Existing directories are not skipped; their
// status is ignored and the walk goes on. The status of the last Mkdir is
// returned. A missing parent stops the walk, leaving what was created.
func (n *NFS) Makedirs(path string) (int, error) {
	var (
		prefix string
		ret    int
	)
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		prefix += "/" + seg
		st, err := n.Mkdir(prefix)
		if err != nil {
			return st, err
		}
		ret = st
	}
	return ret, nil
}
