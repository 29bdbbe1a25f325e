package fs

import (
	"time"
)

// FileType is the kind of object a path refers to.
type FileType uint32

const (
	FileTypeRegular FileType = iota
	FileTypeDirectory
	FileTypeSymlink
	FileTypeBlock
	FileTypeChar
	FileTypeFIFO
	FileTypeSocket
)

func (ft FileType) String() string {
	switch ft {
	case FileTypeRegular:
		return "regular"
	case FileTypeDirectory:
		return "directory"
	case FileTypeSymlink:
		return "symlink"
	case FileTypeBlock:
		return "block"
	case FileTypeChar:
		return "char"
	case FileTypeFIFO:
		return "fifo"
	case FileTypeSocket:
		return "socket"
	default:
		return "unknown"
	}
}

// FileMode holds permission bits plus setuid, setgid and sticky.
type FileMode uint32

const (
	ModeMask    FileMode = 0777
	ModeSetUID  FileMode = 04000
	ModeSetGID  FileMode = 02000
	ModeSticky  FileMode = 01000
	ModeAllBits FileMode = 07777
)

// Access bits checked by FileSystem.Access.
const (
	AccessRead    FileMode = 04
	AccessWrite   FileMode = 02
	AccessExecute FileMode = 01
)

// FileInfo contains information about a file.
type FileInfo struct {
	Type FileType
	Mode FileMode
	Size int64

	Uid   uint32
	Gid   uint32
	Nlink uint32

	// FileId is the backend inode number.
	FileId uint64

	// Rdev is the device number of block and character devices.
	Rdev uint64

	BlockSize uint32

	// Blocks counts 512-byte units allocated to the file.
	Blocks uint64

	AccessTime time.Time
	ModifyTime time.Time
	ChangeTime time.Time
}

// FileAttr describes a SETATTR. Only non-nil fields are applied.
type FileAttr struct {
	Mode       *FileMode
	Size       *int64
	Uid        *uint32
	Gid        *uint32
	AccessTime *time.Time
	ModifyTime *time.Time
}

// DirEntry represents an entry in a directory.
type DirEntry struct {
	Name   string
	FileId uint64

	// Cookie resumes a listing right after this entry.
	Cookie uint64
}
