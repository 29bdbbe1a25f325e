// Package fuse mounts a remote export as a local directory tree.
package fuse

import (
	"errors"
	"syscall"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/example/libnfs/pkg/libnfs"
)

// NFSFS implements the FUSE filesystem interface over one mounted export
type NFSFS struct {
	nfs *libnfs.NFS

	// attrValid is how long the kernel may cache attributes.
	attrValid time.Duration
}

// NewNFSFS creates a filesystem serving n. n stays owned by the caller.
func NewNFSFS(n *libnfs.NFS, attrValid time.Duration) *NFSFS {
	return &NFSFS{nfs: n, attrValid: attrValid}
}

// Root returns the root directory of the filesystem
func (f *NFSFS) Root() (fs.Node, error) {
	return &Dir{fs: f, path: "/"}, nil
}

// node builds the node for p from its metadata.
func (f *NFSFS) node(p string, st libnfs.StatResult) fs.Node {
	if st.IsDir() {
		return &Dir{fs: f, path: p}
	}
	return &File{fs: f, path: p}
}

func (f *NFSFS) fillAttr(st libnfs.StatResult, a *fuse.Attr) {
	a.Valid = f.attrValid
	a.Inode = st.Ino
	a.Size = uint64(st.Size)
	a.Blocks = uint64(st.Blocks)
	a.Atime = st.AccessTime()
	a.Mtime = st.ModTime()
	a.Ctime = st.ChangeTime()
	a.Mode = st.FileMode()
	a.Nlink = uint32(st.Nlink)
	a.Uid = st.UID
	a.Gid = st.GID
	a.Rdev = uint32(st.Rdev)
	a.BlockSize = uint32(st.Blksize)
}

// attr stats p into a.
func (f *NFSFS) attr(p string, a *fuse.Attr) error {
	st, err := f.nfs.Stat(p)
	if err != nil {
		return toErrno(err)
	}
	f.fillAttr(st, a)
	return nil
}

// toErrno converts a libnfs error into the errno FUSE replies with.
func toErrno(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, libnfs.ErrNotFound) {
		return fuse.ENOENT
	}
	var e *libnfs.Error
	if errors.As(err, &e) && e.Errno() < 0 {
		return fuse.Errno(syscall.Errno(-e.Errno()))
	}
	return fuse.EIO
}

// statusErrno converts a negative status into an errno.
func statusErrno(st int) error {
	if st == 0 {
		return nil
	}
	return fuse.Errno(syscall.Errno(-st))
}

var _ fs.FS = (*NFSFS)(nil)
