package libnfs

import (
	"fmt"
	"hash/fnv"
	"io"
	"path"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/example/libnfs/pkg/client"
)

// fakeConn is an in-memory Conn that records every call.
type fakeConn struct {
	calls     []string
	fail      map[string]int
	files     map[string][]byte
	modes     map[string]uint32
	dirs      map[string]bool
	open      map[*client.Fh]*fakeOpen
	listings  map[*client.Dir][]string
	destroyed int
	lastErr   string
}

type fakeOpen struct {
	path  string
	pos   int64
	flags int
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		fail:     map[string]int{},
		files:    map[string][]byte{},
		modes:    map[string]uint32{},
		dirs:     map[string]bool{"/": true},
		open:     map[*client.Fh]*fakeOpen{},
		listings: map[*client.Dir][]string{},
	}
}

// newFakeNFS mounts a fake export.
func newFakeNFS(t *testing.T) (*NFS, *fakeConn) {
	t.Helper()
	fake := newFakeConn()
	n, err := New("nfs://server/export", WithConnector(func(*client.Config) Conn { return fake }))
	require.NoError(t, err)
	t.Cleanup(func() { n.Close() })
	fake.calls = nil
	return n, fake
}

func clean(p string) string { return path.Clean("/" + p) }

// record logs the call and returns a forced status, if any.
func (f *fakeConn) record(call string) (int, bool) {
	f.calls = append(f.calls, call)
	st, ok := f.fail[call]
	if ok {
		f.lastErr = fmt.Sprintf("%s failed: %s", call, unix.Errno(-st).Error())
	}
	return st, ok
}

func (f *fakeConn) errno(call string, e unix.Errno) int {
	f.lastErr = fmt.Sprintf("%s failed: %s", call, e.Error())
	return -int(e)
}

func (f *fakeConn) Mount(server, export string) int {
	call := "mount " + server + " " + export
	if st, ok := f.record(call); ok {
		return st
	}
	return 0
}

func (f *fakeConn) Destroy()         { f.destroyed++ }
func (f *fakeConn) GetError() string { return f.lastErr }

func (f *fakeConn) Open(p string, flags int) (*client.Fh, int) {
	p = clean(p)
	call := "open " + p
	if st, ok := f.record(call); ok {
		return nil, st
	}
	if _, ok := f.files[p]; !ok {
		return nil, f.errno(call, unix.ENOENT)
	}
	if flags&unix.O_TRUNC != 0 {
		f.files[p] = nil
	}
	fh := &client.Fh{}
	f.open[fh] = &fakeOpen{path: p, flags: flags}
	return fh, 0
}

func (f *fakeConn) Create(p string, flags int, mode uint32) (*client.Fh, int) {
	p = clean(p)
	call := fmt.Sprintf("create %s %o", p, mode)
	if st, ok := f.record(call); ok {
		return nil, st
	}
	if !f.dirs[path.Dir(p)] {
		return nil, f.errno(call, unix.ENOENT)
	}
	f.files[p] = nil
	f.modes[p] = mode
	fh := &client.Fh{}
	f.open[fh] = &fakeOpen{path: p, flags: flags}
	return fh, 0
}

func (f *fakeConn) Close(fh *client.Fh) int {
	call := "close"
	if st, ok := f.record(call); ok {
		return st
	}
	if _, ok := f.open[fh]; !ok {
		return f.errno(call, unix.EBADF)
	}
	delete(f.open, fh)
	return 0
}

func (f *fakeConn) Read(fh *client.Fh, buf []byte) int {
	call := fmt.Sprintf("read %d", len(buf))
	if st, ok := f.record(call); ok {
		return st
	}
	o, ok := f.open[fh]
	if !ok {
		return f.errno(call, unix.EBADF)
	}
	data := f.files[o.path]
	if o.pos >= int64(len(data)) {
		return 0
	}
	n := copy(buf, data[o.pos:])
	o.pos += int64(n)
	return n
}

func (f *fakeConn) Write(fh *client.Fh, buf []byte) int {
	call := fmt.Sprintf("write %q", buf)
	if st, ok := f.record(call); ok {
		return st
	}
	o, ok := f.open[fh]
	if !ok || o.flags&unix.O_ACCMODE == unix.O_RDONLY {
		return f.errno(call, unix.EBADF)
	}
	data := f.files[o.path]
	if o.flags&unix.O_APPEND != 0 {
		o.pos = int64(len(data))
	}
	if end := o.pos + int64(len(buf)); end > int64(len(data)) {
		data = append(data, make([]byte, end-int64(len(data)))...)
	}
	copy(data[o.pos:], buf)
	f.files[o.path] = data
	o.pos += int64(len(buf))
	return len(buf)
}

func (f *fakeConn) Lseek(fh *client.Fh, offset int64, whence int) (int64, int) {
	call := fmt.Sprintf("lseek %d %d", offset, whence)
	if st, ok := f.record(call); ok {
		return 0, st
	}
	o, ok := f.open[fh]
	if !ok {
		return 0, f.errno(call, unix.EBADF)
	}
	var base int64
	switch whence {
	case io.SeekCurrent:
		base = o.pos
	case io.SeekEnd:
		base = int64(len(f.files[o.path]))
	}
	if base+offset < 0 {
		return 0, f.errno(call, unix.EINVAL)
	}
	o.pos = base + offset
	return o.pos, 0
}

func (f *fakeConn) Ftruncate(fh *client.Fh, length int64) int {
	call := fmt.Sprintf("ftruncate %d", length)
	if st, ok := f.record(call); ok {
		return st
	}
	o := f.open[fh]
	data := f.files[o.path]
	if int64(len(data)) > length {
		data = data[:length]
	} else {
		data = append(data, make([]byte, length-int64(len(data)))...)
	}
	f.files[o.path] = data
	return 0
}

func (f *fakeConn) Fsync(fh *client.Fh) int {
	if st, ok := f.record("fsync"); ok {
		return st
	}
	return 0
}

func inode(p string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(p))
	return h.Sum64()
}

func (f *fakeConn) fill(p string, st *client.Stat64) bool {
	if f.dirs[p] {
		*st = client.Stat64{Mode: unix.S_IFDIR | 0755, Ino: inode(p), Nlink: 2}
		return true
	}
	data, ok := f.files[p]
	if !ok {
		return false
	}
	mode := f.modes[p]
	if mode == 0 {
		mode = 0644
	}
	*st = client.Stat64{
		Mode:      uint64(unix.S_IFREG | mode),
		Ino:       inode(p),
		Nlink:     1,
		Size:      uint64(len(data)),
		Mtime:     1700000000,
		MtimeNsec: 5,
	}
	return true
}

func (f *fakeConn) Stat64(p string, st *client.Stat64) int {
	p = clean(p)
	call := "stat " + p
	if s, ok := f.record(call); ok {
		return s
	}
	if !f.fill(p, st) {
		return f.errno(call, unix.ENOENT)
	}
	return 0
}

func (f *fakeConn) Lstat64(p string, st *client.Stat64) int {
	p = clean(p)
	call := "lstat " + p
	if s, ok := f.record(call); ok {
		return s
	}
	if !f.fill(p, st) {
		return f.errno(call, unix.ENOENT)
	}
	return 0
}

func (f *fakeConn) Fstat64(fh *client.Fh, st *client.Stat64) int {
	if s, ok := f.record("fstat"); ok {
		return s
	}
	o, ok := f.open[fh]
	if !ok {
		return f.errno("fstat", unix.EBADF)
	}
	f.fill(o.path, st)
	return 0
}

func (f *fakeConn) Unlink(p string) int {
	p = clean(p)
	call := "unlink " + p
	if st, ok := f.record(call); ok {
		return st
	}
	if f.dirs[p] {
		return f.errno(call, unix.EISDIR)
	}
	if _, ok := f.files[p]; !ok {
		return f.errno(call, unix.ENOENT)
	}
	delete(f.files, p)
	return 0
}

func (f *fakeConn) Mkdir(p string) int {
	p = clean(p)
	call := "mkdir " + p
	if st, ok := f.record(call); ok {
		return st
	}
	if !f.dirs[path.Dir(p)] {
		return f.errno(call, unix.ENOENT)
	}
	if _, ok := f.files[p]; ok || f.dirs[p] {
		return f.errno(call, unix.EEXIST)
	}
	f.dirs[p] = true
	return 0
}

func (f *fakeConn) children(p string) []string {
	var names []string
	prefix := strings.TrimSuffix(p, "/") + "/"
	add := func(q string) {
		if q != p && path.Dir(q) == p && strings.HasPrefix(q, prefix) {
			names = append(names, path.Base(q))
		}
	}
	for q := range f.dirs {
		add(q)
	}
	for q := range f.files {
		add(q)
	}
	sort.Strings(names)
	return names
}

func (f *fakeConn) Rmdir(p string) int {
	p = clean(p)
	call := "rmdir " + p
	if st, ok := f.record(call); ok {
		return st
	}
	if !f.dirs[p] {
		return f.errno(call, unix.ENOENT)
	}
	if len(f.children(p)) > 0 {
		return f.errno(call, unix.ENOTEMPTY)
	}
	delete(f.dirs, p)
	return 0
}

func (f *fakeConn) Rename(src, dst string) int {
	src, dst = clean(src), clean(dst)
	call := "rename " + src + " " + dst
	if st, ok := f.record(call); ok {
		return st
	}
	data, ok := f.files[src]
	if !ok {
		return f.errno(call, unix.ENOENT)
	}
	delete(f.files, src)
	f.files[dst] = data
	return 0
}

func (f *fakeConn) Opendir(p string) (*client.Dir, int) {
	p = clean(p)
	call := "opendir " + p
	if st, ok := f.record(call); ok {
		return nil, st
	}
	if !f.dirs[p] {
		return nil, f.errno(call, unix.ENOENT)
	}
	d := &client.Dir{}
	// server order: not sorted, dot entries in the middle
	names := f.children(p)
	order := make([]string, 0, len(names)+2)
	for i := len(names) - 1; i >= 0; i-- {
		order = append(order, names[i])
		if i == len(names)/2 {
			order = append(order, ".", "..")
		}
	}
	if len(names) == 0 {
		order = append(order, ".", "..")
	}
	f.listings[d] = order
	return d, 0
}

func (f *fakeConn) Readdir(d *client.Dir) *client.Dirent {
	rest := f.listings[d]
	if len(rest) == 0 {
		return nil
	}
	f.listings[d] = rest[1:]
	return &client.Dirent{Name: rest[0]}
}

func (f *fakeConn) Closedir(d *client.Dir) {
	f.calls = append(f.calls, "closedir")
	delete(f.listings, d)
}
