package client

import (
	"golang.org/x/sys/unix"

	"github.com/example/libnfs/pkg/api"
)

// Stat64 is the metadata returned by Stat64, Lstat64 and Fstat64. Mode
// carries the S_IF* type bits as well as the permission bits.
type Stat64 struct {
	Dev       uint64
	Ino       uint64
	Mode      uint64
	Nlink     uint64
	UID       uint64
	GID       uint64
	Rdev      uint64
	Size      uint64
	Blksize   uint64
	Blocks    uint64
	Atime     uint64
	Mtime     uint64
	Ctime     uint64
	AtimeNsec uint64
	MtimeNsec uint64
	CtimeNsec uint64
}

var typeBits = map[api.FileType]uint32{
	api.FileType_REGULAR:   unix.S_IFREG,
	api.FileType_DIRECTORY: unix.S_IFDIR,
	api.FileType_BLOCK:     unix.S_IFBLK,
	api.FileType_CHAR:      unix.S_IFCHR,
	api.FileType_SYMLINK:   unix.S_IFLNK,
	api.FileType_SOCKET:    unix.S_IFSOCK,
	api.FileType_FIFO:      unix.S_IFIFO,
}

func splitTime(t *api.FileTime) (sec, nsec uint64) {
	if t == nil || t.Seconds < 0 {
		return 0, 0
	}
	return uint64(t.Seconds), uint64(t.Nano)
}

// fill copies wire attributes into st.
func (st *Stat64) fill(a *api.FileAttributes) {
	*st = Stat64{
		Dev:     a.Fsid,
		Ino:     a.Fileid,
		Mode:    uint64(typeBits[a.Type] | a.Mode&07777),
		Nlink:   uint64(a.Nlink),
		UID:     uint64(a.Uid),
		GID:     uint64(a.Gid),
		Rdev:    uint64(unix.Mkdev(a.RdevMajor, a.RdevMinor)),
		Size:    a.Size,
		Blksize: uint64(a.Blksize),
		Blocks:  a.Blocks,
	}
	if st.Blocks == 0 && a.Used > 0 {
		st.Blocks = (a.Used + 511) / 512
	}
	st.Atime, st.AtimeNsec = splitTime(a.Atime)
	st.Mtime, st.MtimeNsec = splitTime(a.Mtime)
	st.Ctime, st.CtimeNsec = splitTime(a.Ctime)
}
