package libnfs

import (
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/example/libnfs/pkg/client"
)

// StatResult is the POSIX stat record of a remote file. Times are split
// into whole seconds and a nanosecond remainder.
type StatResult struct {
	Mode      uint32
	Ino       uint64
	Dev       uint64
	Nlink     uint64
	UID       uint32
	GID       uint32
	Size      int64
	Atime     int64
	Mtime     int64
	Ctime     int64
	AtimeNsec int64
	MtimeNsec int64
	CtimeNsec int64
	Blocks    int64
	Blksize   int64
	Rdev      uint64
}

func statFromNative(st *client.Stat64) StatResult {
	return StatResult{
		Mode:      uint32(st.Mode),
		Ino:       st.Ino,
		Dev:       st.Dev,
		Nlink:     st.Nlink,
		UID:       uint32(st.UID),
		GID:       uint32(st.GID),
		Size:      int64(st.Size),
		Atime:     int64(st.Atime),
		Mtime:     int64(st.Mtime),
		Ctime:     int64(st.Ctime),
		AtimeNsec: int64(st.AtimeNsec),
		MtimeNsec: int64(st.MtimeNsec),
		CtimeNsec: int64(st.CtimeNsec),
		Blocks:    int64(st.Blocks),
		Blksize:   int64(st.Blksize),
		Rdev:      st.Rdev,
	}
}

func (s StatResult) AccessTime() time.Time { return time.Unix(s.Atime, s.AtimeNsec) }
func (s StatResult) ModTime() time.Time    { return time.Unix(s.Mtime, s.MtimeNsec) }
func (s StatResult) ChangeTime() time.Time { return time.Unix(s.Ctime, s.CtimeNsec) }

func (s StatResult) IsDir() bool     { return s.Mode&unix.S_IFMT == unix.S_IFDIR }
func (s StatResult) IsRegular() bool { return s.Mode&unix.S_IFMT == unix.S_IFREG }
func (s StatResult) IsSymlink() bool { return s.Mode&unix.S_IFMT == unix.S_IFLNK }

// FileMode converts Mode to an os.FileMode.
func (s StatResult) FileMode() os.FileMode {
	m := os.FileMode(s.Mode & 0777)
	switch s.Mode & unix.S_IFMT {
	case unix.S_IFDIR:
		m |= os.ModeDir
	case unix.S_IFLNK:
		m |= os.ModeSymlink
	case unix.S_IFIFO:
		m |= os.ModeNamedPipe
	case unix.S_IFSOCK:
		m |= os.ModeSocket
	case unix.S_IFBLK:
		m |= os.ModeDevice
	case unix.S_IFCHR:
		m |= os.ModeDevice | os.ModeCharDevice
	}
	if s.Mode&unix.S_ISUID != 0 {
		m |= os.ModeSetuid
	}
	if s.Mode&unix.S_ISGID != 0 {
		m |= os.ModeSetgid
	}
	if s.Mode&unix.S_ISVTX != 0 {
		m |= os.ModeSticky
	}
	return m
}
