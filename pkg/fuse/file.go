package fuse

import (
	"context"
	"io"
	"sync"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/example/libnfs/pkg/libnfs"
)

// File represents a file in the filesystem
type File struct {
	fs   *NFSFS
	path string
}

// Attr sets the attributes of the file
func (f *File) Attr(ctx context.Context, attr *fuse.Attr) error {
	return f.fs.attr(f.path, attr)
}

// openMode picks the libnfs mode string for FUSE open flags. Plain write
// opens use r+ so that the file is not truncated.
func openMode(flags fuse.OpenFlags) string {
	switch {
	case flags.IsReadOnly():
		return "rb"
	case flags&fuse.OpenAppend != 0 && flags.IsReadWrite():
		return "a+b"
	case flags&fuse.OpenAppend != 0:
		return "ab"
	case flags&fuse.OpenTruncate != 0 && flags.IsReadWrite():
		return "w+b"
	case flags&fuse.OpenTruncate != 0:
		return "wb"
	default:
		return "r+b"
	}
}

// Open opens the file for reading and writing through a Handle
func (f *File) Open(ctx context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fs.Handle, error) {
	h, err := f.fs.nfs.Open(f.path, openMode(req.Flags), nil)
	if err != nil {
		return nil, toErrno(err)
	}
	return &Handle{file: h}, nil
}

// Setattr supports changing the size only.
func (f *File) Setattr(ctx context.Context, req *fuse.SetattrRequest, resp *fuse.SetattrResponse) error {
	if req.Valid.Size() {
		h, err := f.fs.nfs.Open(f.path, "r+b", nil)
		if err != nil {
			return toErrno(err)
		}
		err = h.Truncate(int64(req.Size))
		if cerr := h.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return toErrno(err)
		}
	}
	return f.fs.attr(f.path, &resp.Attr)
}

// Handle is an open file. The kernel sends positioned requests, so each
// one seeks first; mu keeps the seek and the transfer together.
type Handle struct {
	mu   sync.Mutex
	file *libnfs.FileHandle
}

// Read reads req.Size bytes at req.Offset
func (h *Handle) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.file.Seek(req.Offset, io.SeekStart); err != nil {
		return toErrno(err)
	}
	data, err := h.file.ReadN(req.Size)
	if err != nil {
		return toErrno(err)
	}
	resp.Data = data
	return nil
}

// Write writes req.Data at req.Offset
func (h *Handle) Write(ctx context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.file.Seek(req.Offset, io.SeekStart); err != nil {
		return toErrno(err)
	}
	n, err := h.file.Write(req.Data)
	resp.Size = n
	return toErrno(err)
}

// Flush commits written data
func (h *Handle) Flush(ctx context.Context, req *fuse.FlushRequest) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return toErrno(h.file.Flush())
}

// Release closes the file
func (h *Handle) Release(ctx context.Context, req *fuse.ReleaseRequest) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return toErrno(h.file.Close())
}

var (
	_ fs.Node           = (*File)(nil)
	_ fs.NodeOpener     = (*File)(nil)
	_ fs.NodeSetattrer  = (*File)(nil)
	_ fs.HandleReader   = (*Handle)(nil)
	_ fs.HandleWriter   = (*Handle)(nil)
	_ fs.HandleFlusher  = (*Handle)(nil)
	_ fs.HandleReleaser = (*Handle)(nil)
)
