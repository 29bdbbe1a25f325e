package fs

import (
	"context"
)

// FileSystem is the backend an export server serves. Paths are absolute
// within the export ("/" is the export root) and never follow a final
// symlink.
type FileSystem interface {
	// GetAttr returns the attributes of path without following a final
	// symlink.
	GetAttr(ctx context.Context, path string) (FileInfo, error)

	// SetAttr applies the non-nil fields of attr and returns the new
	// attributes.
	SetAttr(ctx context.Context, path string, attr FileAttr) (FileInfo, error)

	// Lookup resolves name inside dir and returns the child path.
	Lookup(ctx context.Context, dir string, name string) (string, FileInfo, error)

	// Access returns ErrPermission unless creds hold every bit of mode
	// (AccessRead, AccessWrite, AccessExecute) on path.
	Access(ctx context.Context, path string, mode FileMode, creds Credentials) error

	// Read returns up to length bytes at offset and whether the end of the
	// file was reached.
	Read(ctx context.Context, path string, offset int64, length int) ([]byte, bool, error)

	// Write stores data at offset. With sync set the data reaches stable
	// storage before Write returns.
	Write(ctx context.Context, path string, offset int64, data []byte, sync bool) (int, error)

	// Create makes a regular file. With excl set an existing name fails with
	// ErrExist; otherwise the existing file is returned untouched.
	Create(ctx context.Context, dir string, name string, attr FileAttr, excl bool) (string, FileInfo, error)

	Remove(ctx context.Context, path string) error

	Mkdir(ctx context.Context, dir string, name string, attr FileAttr) (string, FileInfo, error)

	Rmdir(ctx context.Context, path string) error

	// ReadDir lists dir starting after cookie (0 starts from the
	// beginning, "." and ".." included). It returns at most count entries
	// and whether the listing is complete.
	ReadDir(ctx context.Context, dir string, cookie uint64, count int) ([]DirEntry, bool, error)

	Rename(ctx context.Context, oldPath string, newPath string) error

	Readlink(ctx context.Context, path string) (string, error)

	// Commit flushes previously written data of path to stable storage.
	Commit(ctx context.Context, path string) error

	// FileHandleToPath resolves a handle issued by PathToFileHandle.
	FileHandleToPath(fh []byte) (string, error)

	// PathToFileHandle returns a handle that stays valid across renames of
	// the file it names.
	PathToFileHandle(path string) ([]byte, error)
}

// Credentials identify the caller of a backend operation.
type Credentials struct {
	UID    uint32
	GID    uint32
	Groups []uint32
}

// IsRoot reports whether the caller is uid 0.
func (c Credentials) IsRoot() bool {
	return c.UID == 0
}

// InGroup reports whether gid is the caller's primary or a supplementary group.
func (c Credentials) InGroup(gid uint32) bool {
	if c.GID == gid {
		return true
	}
	for _, g := range c.Groups {
		if g == gid {
			return true
		}
	}
	return false
}
