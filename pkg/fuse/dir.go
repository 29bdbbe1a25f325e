package fuse

import (
	"context"
	"os"
	"path"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/example/libnfs/internal/logger"
)

// Dir represents a directory in the filesystem
type Dir struct {
	fs   *NFSFS
	path string
}

// Attr sets the attributes of the directory
func (d *Dir) Attr(ctx context.Context, attr *fuse.Attr) error {
	return d.fs.attr(d.path, attr)
}

func (d *Dir) child(name string) string {
	return path.Join(d.path, name)
}

// Lookup looks up a specific entry in the directory
func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	p := d.child(name)
	st, err := d.fs.nfs.Stat(p)
	if err != nil {
		return nil, toErrno(err)
	}
	return d.fs.node(p, st), nil
}

// ReadDirAll returns all entries in the directory
func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	names, err := d.fs.nfs.Listdir(d.path)
	if err != nil {
		return nil, toErrno(err)
	}

	entries := make([]fuse.Dirent, 0, len(names))
	for _, name := range names {
		ent := fuse.Dirent{Name: name, Type: fuse.DT_Unknown}
		// entries may vanish between the listing and the stat
		if st, err := d.fs.nfs.Lstat(d.child(name)); err == nil {
			ent.Inode = st.Ino
			ent.Type = direntType(st.FileMode())
		}
		entries = append(entries, ent)
	}
	return entries, nil
}

func direntType(m os.FileMode) fuse.DirentType {
	switch {
	case m.IsDir():
		return fuse.DT_Dir
	case m&os.ModeSymlink != 0:
		return fuse.DT_Link
	case m&os.ModeNamedPipe != 0:
		return fuse.DT_FIFO
	case m&os.ModeSocket != 0:
		return fuse.DT_Socket
	case m&os.ModeCharDevice != 0:
		return fuse.DT_Char
	case m&os.ModeDevice != 0:
		return fuse.DT_Block
	default:
		return fuse.DT_File
	}
}

// Mkdir creates a subdirectory
func (d *Dir) Mkdir(ctx context.Context, req *fuse.MkdirRequest) (fs.Node, error) {
	p := d.child(req.Name)
	st, err := d.fs.nfs.Mkdir(p)
	if err != nil {
		return nil, toErrno(err)
	}
	if err := statusErrno(st); err != nil {
		return nil, err
	}
	return &Dir{fs: d.fs, path: p}, nil
}

// Create creates and opens a regular file. New files get mode 0664.
func (d *Dir) Create(ctx context.Context, req *fuse.CreateRequest, resp *fuse.CreateResponse) (fs.Node, fs.Handle, error) {
	p := d.child(req.Name)
	if req.Flags&fuse.OpenExclusive != 0 {
		if _, err := d.fs.nfs.Stat(p); err == nil {
			return nil, nil, fuse.EEXIST
		}
	}

	mode := "wb"
	if req.Flags.IsReadWrite() {
		mode = "w+b"
	}
	h, err := d.fs.nfs.Open(p, mode, nil)
	if err != nil {
		return nil, nil, toErrno(err)
	}
	logger.Debug("fuse: created %s", p)

	f := &File{fs: d.fs, path: p}
	if st, err := h.Fstat(); err == nil {
		d.fs.fillAttr(st, &resp.Attr)
	}
	return f, &Handle{file: h}, nil
}

// Remove removes a file or an empty directory
func (d *Dir) Remove(ctx context.Context, req *fuse.RemoveRequest) error {
	p := d.child(req.Name)
	var (
		st  int
		err error
	)
	if req.Dir {
		st, err = d.fs.nfs.Rmdir(p)
	} else {
		st, err = d.fs.nfs.Unlink(p)
	}
	if err != nil {
		return toErrno(err)
	}
	return statusErrno(st)
}

// Rename moves an entry to newDir
func (d *Dir) Rename(ctx context.Context, req *fuse.RenameRequest, newDir fs.Node) error {
	target, ok := newDir.(*Dir)
	if !ok {
		return fuse.EIO
	}
	st, err := d.fs.nfs.Rename(d.child(req.OldName), target.child(req.NewName))
	if err != nil {
		return toErrno(err)
	}
	return statusErrno(st)
}

var (
	_ fs.Node               = (*Dir)(nil)
	_ fs.NodeStringLookuper = (*Dir)(nil)
	_ fs.HandleReadDirAller = (*Dir)(nil)
	_ fs.NodeMkdirer        = (*Dir)(nil)
	_ fs.NodeCreater        = (*Dir)(nil)
	_ fs.NodeRemover        = (*Dir)(nil)
	_ fs.NodeRenamer        = (*Dir)(nil)
)
