package client

import (
	"context"
	"fmt"
	"io"
	"path"

	"golang.org/x/sys/unix"

	"github.com/example/libnfs/internal/logger"
	"github.com/example/libnfs/pkg/api"
)

// Context is a libnfs-style session: one mount, path based calls, open file
// descriptors tracked on the client. Every method returns 0 or a positive
// count on success and a negated errno on failure; GetError describes the
// most recent failure.
//
// A Context is not safe for concurrent use.
type Context struct {
	config *Config
	client *Client
	server string
	export string
	err    string
}

// Fh is an open file. The offset lives on the client, as the protocol has
// no notion of an open file.
type Fh struct {
	handle []byte
	path   string
	flags  int
	offset int64
	closed bool
}

// Path returns the path the descriptor was opened with.
func (fh *Fh) Path() string { return fh.path }

// Dir is an open directory listing.
type Dir struct {
	entries []*Dirent
	pos     int
}

// Dirent is one directory entry.
type Dirent struct {
	Name   string
	Inode  uint64
	Cookie uint64
}

// NewContext returns an unmounted context. A nil config uses DefaultConfig.
func NewContext(config *Config) *Context {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config
	return &Context{config: &cfg}
}

// SetUID sets the user id sent with requests made after the call.
func (c *Context) SetUID(uid uint32) { c.config.UID = uid }

// SetGID sets the group id sent with requests made after the call.
func (c *Context) SetGID(gid uint32) { c.config.GID = gid }

// Client exposes the RPC client of a mounted context, or nil.
func (c *Context) Client() *Client { return c.client }

// GetError returns the description of the last failure.
func (c *Context) GetError() string { return c.err }

// fail records err and returns its status.
func (c *Context) fail(op, p string, err error) int {
	st := Errno(err)
	c.err = fmt.Sprintf("%s %s failed: %v (%d)", op, p, err, st)
	logger.Debug("%s", c.err)
	return st
}

func (c *Context) ctx() context.Context { return context.Background() }

func (c *Context) mounted(op, p string) int {
	if c.client == nil {
		return c.fail(op, p, ErrNotMounted)
	}
	return 0
}

// Mount connects to server and mounts export. A context mounts at most once.
func (c *Context) Mount(server, export string) int {
	if c.client != nil {
		return c.fail("mount", export, unix.EBUSY)
	}

	cfg := *c.config
	cfg.ServerAddress = server
	cfg.ExportPath = export
	client, err := NewClient(&cfg)
	if err != nil {
		return c.fail("mount", export, err)
	}
	if _, _, err := client.Mount(c.ctx(), export); err != nil {
		client.Close()
		return c.fail("mount", server+":"+export, err)
	}

	c.client = client
	c.server, c.export = server, export
	return 0
}

// Destroy unmounts and closes the connection. It is safe to call more than
// once.
func (c *Context) Destroy() {
	if c.client != nil {
		if err := c.client.Close(); err != nil {
			logger.Debug("closing connection to %s: %v", c.server, err)
		}
		c.client = nil
	}
}

// parent resolves the directory holding p and returns its handle and the
// final name.
func (c *Context) parent(p string) ([]byte, string, error) {
	p = path.Clean("/" + p)
	if p == "/" {
		return nil, "", unix.EINVAL
	}
	dir, name := path.Split(p)
	h, attrs, err := c.client.Walk(c.ctx(), dir, true)
	if err != nil {
		return nil, "", err
	}
	if attrs.Type != api.FileType_DIRECTORY {
		return nil, "", unix.ENOTDIR
	}
	return h, name, nil
}

func writable(flags int) bool {
	acc := flags & unix.O_ACCMODE
	return acc == unix.O_WRONLY || acc == unix.O_RDWR
}

// Open opens an existing file. O_TRUNC empties a file opened for writing;
// O_CREAT is not acted on here, see Create.
func (c *Context) Open(p string, flags int) (*Fh, int) {
	if st := c.mounted("open", p); st != 0 {
		return nil, st
	}
	handle, attrs, err := c.client.Walk(c.ctx(), p, true)
	if err != nil {
		return nil, c.fail("open", p, err)
	}
	if attrs.Type == api.FileType_DIRECTORY && writable(flags) {
		return nil, c.fail("open", p, unix.EISDIR)
	}
	if flags&unix.O_TRUNC != 0 && writable(flags) && attrs.Size != 0 {
		zero := uint64(0)
		if _, err := c.client.SetAttr(c.ctx(), handle, &api.SetAttributes{Size: &zero}); err != nil {
			return nil, c.fail("open", p, err)
		}
	}
	return &Fh{handle: handle, path: path.Clean("/" + p), flags: flags}, 0
}

// Create creates p with the permission bits in mode and opens it. With
// O_EXCL an existing file is an error; otherwise it is opened, and
// truncated if O_TRUNC is set.
func (c *Context) Create(p string, flags int, mode uint32) (*Fh, int) {
	if st := c.mounted("create", p); st != 0 {
		return nil, st
	}
	dir, name, err := c.parent(p)
	if err != nil {
		return nil, c.fail("create", p, err)
	}

	perm := mode & 07777
	attrs := &api.SetAttributes{Mode: &perm}
	how := api.CreateMode_UNCHECKED
	if flags&unix.O_EXCL != 0 {
		how = api.CreateMode_GUARDED
	} else if flags&unix.O_TRUNC != 0 {
		zero := uint64(0)
		attrs.Size = &zero
	}

	handle, _, err := c.client.Create(c.ctx(), dir, name, attrs, how)
	if err != nil {
		return nil, c.fail("create", p, err)
	}
	return &Fh{handle: handle, path: path.Clean("/" + p), flags: flags}, 0
}

func (c *Context) checkFh(op string, fh *Fh) int {
	if st := c.mounted(op, ""); st != 0 {
		return st
	}
	if fh == nil || fh.closed {
		return c.fail(op, "", unix.EBADF)
	}
	return 0
}

// Close releases fh. Closing a released descriptor reports EBADF.
func (c *Context) Close(fh *Fh) int {
	if fh == nil || fh.closed {
		return c.fail("close", "", unix.EBADF)
	}
	fh.closed = true
	return 0
}

// Read reads up to len(buf) bytes at the current offset and advances it.
// It returns the byte count; 0 means end of file.
func (c *Context) Read(fh *Fh, buf []byte) int {
	if st := c.checkFh("read", fh); st != 0 {
		return st
	}
	if fh.flags&unix.O_ACCMODE == unix.O_WRONLY {
		return c.fail("read", fh.path, unix.EBADF)
	}

	total := 0
	for total < len(buf) {
		want := len(buf) - total
		if c.config.ChunkSize > 0 && want > c.config.ChunkSize {
			want = c.config.ChunkSize
		}
		data, eof, err := c.client.Read(c.ctx(), fh.handle, fh.offset, want)
		if err != nil {
			if total > 0 {
				break
			}
			return c.fail("read", fh.path, err)
		}
		n := copy(buf[total:], data)
		total += n
		fh.offset += int64(n)
		if eof || n == 0 {
			break
		}
	}
	return total
}

// Write writes buf at the current offset, or at the end of the file for
// O_APPEND descriptors, and advances the offset.
func (c *Context) Write(fh *Fh, buf []byte) int {
	if st := c.checkFh("write", fh); st != 0 {
		return st
	}
	if !writable(fh.flags) {
		return c.fail("write", fh.path, unix.EBADF)
	}
	if fh.flags&unix.O_APPEND != 0 {
		attrs, err := c.client.GetAttr(c.ctx(), fh.handle)
		if err != nil {
			return c.fail("write", fh.path, err)
		}
		fh.offset = int64(attrs.Size)
	}

	total := 0
	for total < len(buf) {
		end := len(buf)
		if c.config.ChunkSize > 0 && end-total > c.config.ChunkSize {
			end = total + c.config.ChunkSize
		}
		n, err := c.client.Write(c.ctx(), fh.handle, fh.offset, buf[total:end], int(api.StableHow_UNSTABLE))
		if err != nil {
			if total > 0 {
				break
			}
			return c.fail("write", fh.path, err)
		}
		if n == 0 {
			if total > 0 {
				break
			}
			return c.fail("write", fh.path, io.ErrShortWrite)
		}
		total += n
		fh.offset += int64(n)
	}
	return total
}

// Lseek moves the offset of fh and returns the new position.
func (c *Context) Lseek(fh *Fh, offset int64, whence int) (int64, int) {
	if st := c.checkFh("lseek", fh); st != 0 {
		return 0, st
	}

	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = fh.offset
	case io.SeekEnd:
		attrs, err := c.client.GetAttr(c.ctx(), fh.handle)
		if err != nil {
			return 0, c.fail("lseek", fh.path, err)
		}
		base = int64(attrs.Size)
	default:
		return 0, c.fail("lseek", fh.path, unix.EINVAL)
	}
	if base+offset < 0 {
		return 0, c.fail("lseek", fh.path, unix.EINVAL)
	}
	fh.offset = base + offset
	return fh.offset, 0
}

// Ftruncate sets the size of the open file.
func (c *Context) Ftruncate(fh *Fh, length int64) int {
	if st := c.checkFh("ftruncate", fh); st != 0 {
		return st
	}
	if length < 0 {
		return c.fail("ftruncate", fh.path, unix.EINVAL)
	}
	size := uint64(length)
	if _, err := c.client.SetAttr(c.ctx(), fh.handle, &api.SetAttributes{Size: &size}); err != nil {
		return c.fail("ftruncate", fh.path, err)
	}
	return 0
}

// Fsync commits unstable writes of fh.
func (c *Context) Fsync(fh *Fh) int {
	if st := c.checkFh("fsync", fh); st != 0 {
		return st
	}
	if err := c.client.Commit(c.ctx(), fh.handle); err != nil {
		return c.fail("fsync", fh.path, err)
	}
	return 0
}

// Stat64 fills st for p, following a final symbolic link.
func (c *Context) Stat64(p string, st *Stat64) int {
	return c.stat("stat", p, true, st)
}

// Lstat64 fills st for p without following a final symbolic link.
func (c *Context) Lstat64(p string, st *Stat64) int {
	return c.stat("lstat", p, false, st)
}

func (c *Context) stat(op, p string, follow bool, st *Stat64) int {
	if s := c.mounted(op, p); s != 0 {
		return s
	}
	_, attrs, err := c.client.Walk(c.ctx(), p, follow)
	if err != nil {
		return c.fail(op, p, err)
	}
	st.fill(attrs)
	return 0
}

// Fstat64 fills st for the open file.
func (c *Context) Fstat64(fh *Fh, st *Stat64) int {
	if s := c.checkFh("fstat", fh); s != 0 {
		return s
	}
	attrs, err := c.client.GetAttr(c.ctx(), fh.handle)
	if err != nil {
		return c.fail("fstat", fh.path, err)
	}
	st.fill(attrs)
	return 0
}

// Unlink removes a non-directory.
func (c *Context) Unlink(p string) int {
	return c.dirOp("unlink", p, func(dir []byte, name string) error {
		return c.client.Remove(c.ctx(), dir, name)
	})
}

// Mkdir creates a directory with mode 0755.
func (c *Context) Mkdir(p string) int {
	return c.Mkdir2(p, 0755)
}

// Mkdir2 creates a directory with the given permission bits.
func (c *Context) Mkdir2(p string, mode uint32) int {
	perm := mode & 07777
	return c.dirOp("mkdir", p, func(dir []byte, name string) error {
		_, _, err := c.client.Mkdir(c.ctx(), dir, name, &api.SetAttributes{Mode: &perm})
		return err
	})
}

// Rmdir removes an empty directory.
func (c *Context) Rmdir(p string) int {
	return c.dirOp("rmdir", p, func(dir []byte, name string) error {
		return c.client.Rmdir(c.ctx(), dir, name)
	})
}

func (c *Context) dirOp(op, p string, fn func(dir []byte, name string) error) int {
	if st := c.mounted(op, p); st != 0 {
		return st
	}
	dir, name, err := c.parent(p)
	if err != nil {
		return c.fail(op, p, err)
	}
	if err := fn(dir, name); err != nil {
		return c.fail(op, p, err)
	}
	c.client.Forget(p)
	return 0
}

// Rename moves src to dst.
func (c *Context) Rename(src, dst string) int {
	if st := c.mounted("rename", src); st != 0 {
		return st
	}
	fromDir, fromName, err := c.parent(src)
	if err != nil {
		return c.fail("rename", src, err)
	}
	toDir, toName, err := c.parent(dst)
	if err != nil {
		return c.fail("rename", dst, err)
	}
	if err := c.client.Rename(c.ctx(), fromDir, fromName, toDir, toName); err != nil {
		return c.fail("rename", src, err)
	}
	c.client.Forget(src)
	c.client.Forget(dst)
	return 0
}

// Opendir reads the whole listing of p, including "." and "..".
func (c *Context) Opendir(p string) (*Dir, int) {
	if st := c.mounted("opendir", p); st != 0 {
		return nil, st
	}
	handle, attrs, err := c.client.Walk(c.ctx(), p, true)
	if err != nil {
		return nil, c.fail("opendir", p, err)
	}
	if attrs.Type != api.FileType_DIRECTORY {
		return nil, c.fail("opendir", p, unix.ENOTDIR)
	}
	entries, err := c.client.ReadDir(c.ctx(), handle)
	if err != nil {
		return nil, c.fail("opendir", p, err)
	}

	dir := &Dir{entries: make([]*Dirent, 0, len(entries))}
	for _, e := range entries {
		dir.entries = append(dir.entries, &Dirent{Name: e.Name, Inode: e.FileId, Cookie: e.Cookie})
	}
	return dir, 0
}

// Readdir returns the next entry of dir, or nil at the end.
func (c *Context) Readdir(dir *Dir) *Dirent {
	if dir == nil || dir.pos >= len(dir.entries) {
		return nil
	}
	e := dir.entries[dir.pos]
	dir.pos++
	return e
}

// Closedir releases dir.
func (c *Context) Closedir(dir *Dir) {
	if dir != nil {
		dir.entries, dir.pos = nil, 0
	}
}

// IsNotExist reports whether status is -ENOENT.
func IsNotExist(status int) bool {
	return status == -int(unix.ENOENT)
}

// StatusError turns a negative status into an error wrapping its errno.
func StatusError(status int) error {
	if status >= 0 {
		return nil
	}
	return unix.Errno(-status)
}
