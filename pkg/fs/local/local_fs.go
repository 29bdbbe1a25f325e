// pkg/fs/local/local_fs.go
package local

import (
	"context"
	"errors"
	"hash/fnv"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/example/libnfs/pkg/fs"
	"github.com/example/libnfs/pkg/fs/handlestore"
)

const maxNameLen = 255

// LocalFileSystem implements fs.FileSystem on top of a directory of the
// local operating system. Export paths are confined to that directory.
type LocalFileSystem struct {
	// rootPath is the absolute OS path of the export root.
	rootPath string

	fsID uint32

	handles handlestore.Store

	// mu serializes inode table updates.
	mu sync.Mutex
}

// NewLocalFileSystem exports rootPath with a process-lifetime handle table.
func NewLocalFileSystem(rootPath string) (*LocalFileSystem, error) {
	return NewLocalFileSystemWithStore(rootPath, handlestore.NewMemoryStore())
}

// NewLocalFileSystemWithStore exports rootPath and resolves handles through
// store, which the caller keeps ownership of.
func NewLocalFileSystemWithStore(rootPath string, store handlestore.Store) (*LocalFileSystem, error) {
	fi, err := os.Stat(rootPath)
	if err != nil {
		return nil, fs.NewError("init", rootPath, mapOSError(err))
	}
	if !fi.IsDir() {
		return nil, fs.NewError("init", rootPath, fs.ErrNotDir)
	}

	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fs.NewError("init", rootPath, err)
	}

	h := fnv.New32a()
	h.Write([]byte(absPath))

	return &LocalFileSystem{
		rootPath: absPath,
		fsID:     h.Sum32(),
		handles:  store,
	}, nil
}

// Root returns the OS directory backing the export.
func (l *LocalFileSystem) Root() string {
	return l.rootPath
}

// FSID returns the identifier embedded in every handle of this export.
func (l *LocalFileSystem) FSID() uint32 {
	return l.fsID
}

// cleanPath normalizes an export path; ".." never climbs above "/".
func cleanPath(p string) string {
	return path.Clean("/" + p)
}

// resolvePath maps an export path to the OS path under rootPath.
func (l *LocalFileSystem) resolvePath(p string) string {
	return filepath.Join(l.rootPath, filepath.FromSlash(cleanPath(p)))
}

func validateName(name string) error {
	switch {
	case name == "" || name == "." || name == "..":
		return fs.ErrInvalidName
	case len(name) > maxNameLen:
		return fs.ErrNameTooLong
	}
	for i := 0; i < len(name); i++ {
		if name[i] == '/' || name[i] == 0 {
			return fs.ErrInvalidName
		}
	}
	return nil
}

func (l *LocalFileSystem) lstat(p string) (*unix.Stat_t, error) {
	var st unix.Stat_t
	if err := unix.Lstat(l.resolvePath(p), &st); err != nil {
		return nil, mapOSError(err)
	}
	return &st, nil
}

func fileTypeOf(mode uint32) fs.FileType {
	switch mode & unix.S_IFMT {
	case unix.S_IFDIR:
		return fs.FileTypeDirectory
	case unix.S_IFLNK:
		return fs.FileTypeSymlink
	case unix.S_IFBLK:
		return fs.FileTypeBlock
	case unix.S_IFCHR:
		return fs.FileTypeChar
	case unix.S_IFIFO:
		return fs.FileTypeFIFO
	case unix.S_IFSOCK:
		return fs.FileTypeSocket
	default:
		return fs.FileTypeRegular
	}
}

func convertStat(st *unix.Stat_t) fs.FileInfo {
	atime, mtime, ctime := statTimes(st)
	mode := uint32(st.Mode)
	return fs.FileInfo{
		Type:       fileTypeOf(mode),
		Mode:       fs.FileMode(mode) & fs.ModeAllBits,
		Size:       st.Size,
		Uid:        st.Uid,
		Gid:        st.Gid,
		Nlink:      uint32(st.Nlink),
		FileId:     st.Ino,
		Rdev:       uint64(st.Rdev),
		BlockSize:  uint32(st.Blksize),
		Blocks:     uint64(st.Blocks),
		AccessTime: atime,
		ModifyTime: mtime,
		ChangeTime: ctime,
	}
}

// mapOSError reduces an OS error to one of the fs sentinels.
func mapOSError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ENOENT):
		return fs.ErrNotExist
	case errors.Is(err, unix.EEXIST):
		return fs.ErrExist
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return fs.ErrPermission
	case errors.Is(err, unix.ENOTDIR):
		return fs.ErrNotDir
	case errors.Is(err, unix.EISDIR):
		return fs.ErrIsDir
	case errors.Is(err, unix.ENOTEMPTY):
		return fs.ErrNotEmpty
	case errors.Is(err, unix.ENOSPC), errors.Is(err, unix.EDQUOT):
		return fs.ErrNoSpace
	case errors.Is(err, unix.EROFS):
		return fs.ErrReadOnly
	case errors.Is(err, unix.ENAMETOOLONG):
		return fs.ErrNameTooLong
	case errors.Is(err, unix.EXDEV):
		return fs.ErrCrossDevice
	case errors.Is(err, unix.EINVAL), errors.Is(err, unix.ELOOP):
		return fs.ErrInvalidName
	default:
		return fs.ErrIO
	}
}

// GetAttr returns the attributes of p without following a final symlink.
func (l *LocalFileSystem) GetAttr(ctx context.Context, p string) (fs.FileInfo, error) {
	st, err := l.lstat(p)
	if err != nil {
		return fs.FileInfo{}, fs.NewError("GetAttr", p, err)
	}
	return convertStat(st), nil
}

// FileHandleToPath converts a file handle to an export path.
func (l *LocalFileSystem) FileHandleToPath(fh []byte) (string, error) {
	handle, err := fs.DeserializeFileHandle(fh)
	if err != nil {
		return "", fs.NewError("FileHandleToPath", "", fs.ErrInvalidHandle)
	}
	if handle.FileSystemID != l.fsID {
		return "", fs.NewError("FileHandleToPath", "", fs.ErrInvalidHandle)
	}

	entry, err := l.handles.Get(handle.Inode)
	if err != nil {
		if errors.Is(err, handlestore.ErrNotFound) {
			return "", fs.NewError("FileHandleToPath", "", fs.ErrStale)
		}
		return "", fs.NewError("FileHandleToPath", "", err)
	}
	if entry.Path == "" || entry.Generation != handle.Generation {
		return "", fs.NewError("FileHandleToPath", entry.Path, fs.ErrStale)
	}

	// The path may have been reused by another file since.
	st, err := l.lstat(entry.Path)
	if err != nil || st.Ino != handle.Inode {
		return "", fs.NewError("FileHandleToPath", entry.Path, fs.ErrStale)
	}
	return entry.Path, nil
}

// PathToFileHandle converts an export path to a file handle and records
// the inode in the handle table.
func (l *LocalFileSystem) PathToFileHandle(p string) ([]byte, error) {
	p = cleanPath(p)
	st, err := l.lstat(p)
	if err != nil {
		return nil, fs.NewError("PathToFileHandle", p, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, err := l.handles.Get(st.Ino)
	switch {
	case errors.Is(err, handlestore.ErrNotFound):
		entry = handlestore.Entry{Generation: 1}
	case err != nil:
		return nil, fs.NewError("PathToFileHandle", p, err)
	}
	if entry.Path != p {
		entry.Path = p
		if err := l.handles.Put(st.Ino, entry); err != nil {
			return nil, fs.NewError("PathToFileHandle", p, err)
		}
	}

	handle := &fs.FileHandle{
		FileSystemID: l.fsID,
		Inode:        st.Ino,
		Generation:   entry.Generation,
	}
	return handle.Serialize(), nil
}

// retire invalidates every handle issued for inode.
func (l *LocalFileSystem) retire(inode uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, err := l.handles.Get(inode)
	if err != nil {
		return
	}
	l.handles.Put(inode, handlestore.Entry{Generation: entry.Generation + 1})
}

// moved repoints inode to its new path, if it has been handed out.
func (l *LocalFileSystem) moved(inode uint64, newPath string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, err := l.handles.Get(inode)
	if err != nil {
		return
	}
	entry.Path = newPath
	l.handles.Put(inode, entry)
}

// SetAttr modifies attributes for the file at the specified path.
func (l *LocalFileSystem) SetAttr(ctx context.Context, p string, attr fs.FileAttr) (fs.FileInfo, error) {
	full := l.resolvePath(p)
	st, err := l.lstat(p)
	if err != nil {
		return fs.FileInfo{}, fs.NewError("SetAttr", p, err)
	}
	info := convertStat(st)

	if attr.Mode != nil && info.Type != fs.FileTypeSymlink {
		if err := os.Chmod(full, os.FileMode(*attr.Mode&fs.ModeMask)|toOSSpecial(*attr.Mode)); err != nil {
			return fs.FileInfo{}, fs.NewError("SetAttr", p, mapOSError(err))
		}
	}

	if attr.Uid != nil || attr.Gid != nil {
		uid, gid := -1, -1
		if attr.Uid != nil {
			uid = int(*attr.Uid)
		}
		if attr.Gid != nil {
			gid = int(*attr.Gid)
		}
		if err := os.Lchown(full, uid, gid); err != nil {
			return fs.FileInfo{}, fs.NewError("SetAttr", p, mapOSError(err))
		}
	}

	if attr.Size != nil {
		if info.Type == fs.FileTypeDirectory {
			return fs.FileInfo{}, fs.NewError("SetAttr", p, fs.ErrIsDir)
		}
		if info.Type != fs.FileTypeRegular {
			return fs.FileInfo{}, fs.NewError("SetAttr", p, fs.ErrInvalidName)
		}
		if err := os.Truncate(full, *attr.Size); err != nil {
			return fs.FileInfo{}, fs.NewError("SetAttr", p, mapOSError(err))
		}
	}

	if attr.AccessTime != nil || attr.ModifyTime != nil {
		atime, mtime := info.AccessTime, info.ModifyTime
		if attr.AccessTime != nil {
			atime = *attr.AccessTime
		}
		if attr.ModifyTime != nil {
			mtime = *attr.ModifyTime
		}
		if err := os.Chtimes(full, atime, mtime); err != nil {
			return fs.FileInfo{}, fs.NewError("SetAttr", p, mapOSError(err))
		}
	}

	return l.GetAttr(ctx, p)
}

func toOSSpecial(m fs.FileMode) os.FileMode {
	var mode os.FileMode
	if m&fs.ModeSetUID != 0 {
		mode |= os.ModeSetuid
	}
	if m&fs.ModeSetGID != 0 {
		mode |= os.ModeSetgid
	}
	if m&fs.ModeSticky != 0 {
		mode |= os.ModeSticky
	}
	return mode
}

// Lookup finds a file by name within a directory.
func (l *LocalFileSystem) Lookup(ctx context.Context, dir string, name string) (string, fs.FileInfo, error) {
	dir = cleanPath(dir)
	dirSt, err := l.lstat(dir)
	if err != nil {
		return "", fs.FileInfo{}, fs.NewError("Lookup", dir, err)
	}
	if fileTypeOf(uint32(dirSt.Mode)) != fs.FileTypeDirectory {
		return "", fs.FileInfo{}, fs.NewError("Lookup", dir, fs.ErrNotDir)
	}

	var target string
	switch name {
	case ".":
		target = dir
	case "..":
		target = path.Dir(dir)
	default:
		if err := validateName(name); err != nil {
			return "", fs.FileInfo{}, fs.NewError("Lookup", dir, err)
		}
		target = path.Join(dir, name)
	}

	st, err := l.lstat(target)
	if err != nil {
		return "", fs.FileInfo{}, fs.NewError("Lookup", target, err)
	}
	return target, convertStat(st), nil
}

// Access checks the owner, group and other permission bits of p against
// creds. Root passes every check.
func (l *LocalFileSystem) Access(ctx context.Context, p string, mode fs.FileMode, creds fs.Credentials) error {
	st, err := l.lstat(p)
	if err != nil {
		return fs.NewError("Access", p, err)
	}
	if creds.IsRoot() {
		return nil
	}

	perm := fs.FileMode(st.Mode) & fs.ModeMask
	var granted fs.FileMode
	switch {
	case creds.UID == st.Uid:
		granted = (perm >> 6) & 07
	case creds.InGroup(st.Gid):
		granted = (perm >> 3) & 07
	default:
		granted = perm & 07
	}
	if granted&mode != mode&07 {
		return fs.NewError("Access", p, fs.ErrPermission)
	}
	return nil
}

// Read reads data from a file at the specified offset.
func (l *LocalFileSystem) Read(ctx context.Context, p string, offset int64, length int) ([]byte, bool, error) {
	if offset < 0 || length < 0 {
		return nil, false, fs.NewError("Read", p, fs.ErrInvalidName)
	}
	st, err := l.lstat(p)
	if err != nil {
		return nil, false, fs.NewError("Read", p, err)
	}
	switch fileTypeOf(uint32(st.Mode)) {
	case fs.FileTypeRegular:
	case fs.FileTypeDirectory:
		return nil, false, fs.NewError("Read", p, fs.ErrIsDir)
	default:
		return nil, false, fs.NewError("Read", p, fs.ErrInvalidName)
	}

	if offset >= st.Size {
		return []byte{}, true, nil
	}

	file, err := os.OpenFile(l.resolvePath(p), os.O_RDONLY|unix.O_NOFOLLOW, 0)
	if err != nil {
		return nil, false, fs.NewError("Read", p, mapOSError(err))
	}
	defer file.Close()

	if remaining := st.Size - offset; int64(length) > remaining {
		length = int(remaining)
	}
	buf := make([]byte, length)
	n, err := file.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, false, fs.NewError("Read", p, mapOSError(err))
	}
	buf = buf[:n]

	return buf, offset+int64(n) >= st.Size, nil
}

// Write writes data to a file at the specified offset.
func (l *LocalFileSystem) Write(ctx context.Context, p string, offset int64, data []byte, sync bool) (int, error) {
	if offset < 0 {
		return 0, fs.NewError("Write", p, fs.ErrInvalidName)
	}
	st, err := l.lstat(p)
	if err != nil {
		return 0, fs.NewError("Write", p, err)
	}
	switch fileTypeOf(uint32(st.Mode)) {
	case fs.FileTypeRegular:
	case fs.FileTypeDirectory:
		return 0, fs.NewError("Write", p, fs.ErrIsDir)
	default:
		return 0, fs.NewError("Write", p, fs.ErrInvalidName)
	}

	file, err := os.OpenFile(l.resolvePath(p), os.O_WRONLY|unix.O_NOFOLLOW, 0)
	if err != nil {
		return 0, fs.NewError("Write", p, mapOSError(err))
	}
	defer file.Close()

	n, err := file.WriteAt(data, offset)
	if err != nil {
		return n, fs.NewError("Write", p, mapOSError(err))
	}
	if sync {
		if err := file.Sync(); err != nil {
			return n, fs.NewError("Write", p, mapOSError(err))
		}
	}
	return n, nil
}

// Commit flushes a file's data to stable storage.
func (l *LocalFileSystem) Commit(ctx context.Context, p string) error {
	file, err := os.OpenFile(l.resolvePath(p), os.O_RDONLY|unix.O_NOFOLLOW, 0)
	if err != nil {
		return fs.NewError("Commit", p, mapOSError(err))
	}
	defer file.Close()
	if err := file.Sync(); err != nil {
		return fs.NewError("Commit", p, mapOSError(err))
	}
	return nil
}

func permOf(attr fs.FileAttr, def fs.FileMode) os.FileMode {
	m := def
	if attr.Mode != nil {
		m = *attr.Mode
	}
	return os.FileMode(m&fs.ModeMask) | toOSSpecial(m)
}

// applyOwner sets uid/gid requested at creation time.
func applyOwner(full string, attr fs.FileAttr) error {
	if attr.Uid == nil && attr.Gid == nil {
		return nil
	}
	uid, gid := -1, -1
	if attr.Uid != nil {
		uid = int(*attr.Uid)
	}
	if attr.Gid != nil {
		gid = int(*attr.Gid)
	}
	return os.Lchown(full, uid, gid)
}

// Create creates a regular file. Permission bits are applied exactly, the
// process umask does not apply.
func (l *LocalFileSystem) Create(ctx context.Context, dir string, name string, attr fs.FileAttr, excl bool) (string, fs.FileInfo, error) {
	dir = cleanPath(dir)
	if err := validateName(name); err != nil {
		return "", fs.FileInfo{}, fs.NewError("Create", dir, err)
	}
	target := path.Join(dir, name)
	full := l.resolvePath(target)

	perm := permOf(attr, 0644)
	file, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		mapped := mapOSError(err)
		if mapped != fs.ErrExist || excl {
			return "", fs.FileInfo{}, fs.NewError("Create", target, mapped)
		}
		st, err := l.lstat(target)
		if err != nil {
			return "", fs.FileInfo{}, fs.NewError("Create", target, err)
		}
		if fileTypeOf(uint32(st.Mode)) != fs.FileTypeRegular {
			return "", fs.FileInfo{}, fs.NewError("Create", target, fs.ErrExist)
		}
		if attr.Size != nil {
			return l.createdAttrs(ctx, target, fs.FileAttr{Size: attr.Size})
		}
		return target, convertStat(st), nil
	}
	defer file.Close()

	if err := file.Chmod(perm); err != nil {
		return "", fs.FileInfo{}, fs.NewError("Create", target, mapOSError(err))
	}
	if err := applyOwner(full, attr); err != nil {
		return "", fs.FileInfo{}, fs.NewError("Create", target, mapOSError(err))
	}
	return l.createdAttrs(ctx, target, fs.FileAttr{Size: attr.Size, AccessTime: attr.AccessTime, ModifyTime: attr.ModifyTime})
}

func (l *LocalFileSystem) createdAttrs(ctx context.Context, target string, rest fs.FileAttr) (string, fs.FileInfo, error) {
	info, err := l.SetAttr(ctx, target, rest)
	if err != nil {
		return "", fs.FileInfo{}, err
	}
	return target, info, nil
}

// Remove removes a non-directory.
func (l *LocalFileSystem) Remove(ctx context.Context, p string) error {
	p = cleanPath(p)
	st, err := l.lstat(p)
	if err != nil {
		return fs.NewError("Remove", p, err)
	}
	if fileTypeOf(uint32(st.Mode)) == fs.FileTypeDirectory {
		return fs.NewError("Remove", p, fs.ErrIsDir)
	}
	if err := unix.Unlink(l.resolvePath(p)); err != nil {
		return fs.NewError("Remove", p, mapOSError(err))
	}
	if st.Nlink <= 1 {
		l.retire(st.Ino)
	}
	return nil
}

// Mkdir creates a new directory with exactly the requested permission bits.
func (l *LocalFileSystem) Mkdir(ctx context.Context, dir string, name string, attr fs.FileAttr) (string, fs.FileInfo, error) {
	dir = cleanPath(dir)
	if err := validateName(name); err != nil {
		return "", fs.FileInfo{}, fs.NewError("Mkdir", dir, err)
	}
	target := path.Join(dir, name)
	full := l.resolvePath(target)

	perm := permOf(attr, 0755)
	if err := os.Mkdir(full, perm); err != nil {
		return "", fs.FileInfo{}, fs.NewError("Mkdir", target, mapOSError(err))
	}
	if err := os.Chmod(full, perm); err != nil {
		return "", fs.FileInfo{}, fs.NewError("Mkdir", target, mapOSError(err))
	}
	if err := applyOwner(full, attr); err != nil {
		return "", fs.FileInfo{}, fs.NewError("Mkdir", target, mapOSError(err))
	}

	info, err := l.GetAttr(ctx, target)
	if err != nil {
		return "", fs.FileInfo{}, err
	}
	return target, info, nil
}

// Rmdir removes an empty directory. The export root cannot be removed.
func (l *LocalFileSystem) Rmdir(ctx context.Context, p string) error {
	p = cleanPath(p)
	if p == "/" {
		return fs.NewError("Rmdir", p, fs.ErrPermission)
	}
	st, err := l.lstat(p)
	if err != nil {
		return fs.NewError("Rmdir", p, err)
	}
	if fileTypeOf(uint32(st.Mode)) != fs.FileTypeDirectory {
		return fs.NewError("Rmdir", p, fs.ErrNotDir)
	}
	if err := unix.Rmdir(l.resolvePath(p)); err != nil {
		if errors.Is(err, unix.EEXIST) {
			return fs.NewError("Rmdir", p, fs.ErrNotEmpty)
		}
		return fs.NewError("Rmdir", p, mapOSError(err))
	}
	l.retire(st.Ino)
	return nil
}

// ReadDir lists a directory: ".", "..", then entries sorted by name.
// Entry i carries cookie i+1.
func (l *LocalFileSystem) ReadDir(ctx context.Context, dir string, cookie uint64, count int) ([]fs.DirEntry, bool, error) {
	dir = cleanPath(dir)
	dirSt, err := l.lstat(dir)
	if err != nil {
		return nil, false, fs.NewError("ReadDir", dir, err)
	}
	if fileTypeOf(uint32(dirSt.Mode)) != fs.FileTypeDirectory {
		return nil, false, fs.NewError("ReadDir", dir, fs.ErrNotDir)
	}

	osEntries, err := os.ReadDir(l.resolvePath(dir))
	if err != nil {
		return nil, false, fs.NewError("ReadDir", dir, mapOSError(err))
	}

	parentIno := dirSt.Ino
	if dir != "/" {
		if st, err := l.lstat(path.Dir(dir)); err == nil {
			parentIno = st.Ino
		}
	}

	all := make([]fs.DirEntry, 0, len(osEntries)+2)
	all = append(all,
		fs.DirEntry{Name: ".", FileId: dirSt.Ino},
		fs.DirEntry{Name: "..", FileId: parentIno},
	)
	for _, e := range osEntries {
		st, err := l.lstat(path.Join(dir, e.Name()))
		if err != nil {
			// removed while listing
			continue
		}
		all = append(all, fs.DirEntry{Name: e.Name(), FileId: st.Ino})
	}
	for i := range all {
		all[i].Cookie = uint64(i + 1)
	}

	if cookie > uint64(len(all)) {
		return nil, false, fs.NewError("ReadDir", dir, fs.ErrBadCookie)
	}
	rest := all[cookie:]
	if count > 0 && len(rest) > count {
		return rest[:count], false, nil
	}
	return rest, true, nil
}

// Rename renames a file or directory, replacing a compatible target.
func (l *LocalFileSystem) Rename(ctx context.Context, oldPath string, newPath string) error {
	oldPath, newPath = cleanPath(oldPath), cleanPath(newPath)
	if oldPath == "/" || newPath == "/" {
		return fs.NewError("Rename", oldPath, fs.ErrInvalidName)
	}
	if err := validateName(path.Base(newPath)); err != nil {
		return fs.NewError("Rename", newPath, err)
	}

	src, err := l.lstat(oldPath)
	if err != nil {
		return fs.NewError("Rename", oldPath, err)
	}
	dst, dstErr := l.lstat(newPath)

	if err := os.Rename(l.resolvePath(oldPath), l.resolvePath(newPath)); err != nil {
		return fs.NewError("Rename", oldPath, mapOSError(err))
	}

	if dstErr == nil && dst.Ino != src.Ino {
		l.retire(dst.Ino)
	}
	l.moved(src.Ino, newPath)
	return nil
}

// Readlink reads the target of a symbolic link.
func (l *LocalFileSystem) Readlink(ctx context.Context, p string) (string, error) {
	target, err := os.Readlink(l.resolvePath(p))
	if err != nil {
		return "", fs.NewError("Readlink", p, mapOSError(err))
	}
	return target, nil
}
