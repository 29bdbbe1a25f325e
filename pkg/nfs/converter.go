package nfs

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/example/libnfs/pkg/api"
	"github.com/example/libnfs/pkg/fs"
)

func toFileTime(t time.Time) *api.FileTime {
	return &api.FileTime{
		Seconds: t.Unix(),
		Nano:    int32(t.Nanosecond()),
	}
}

func fromFileTime(t *api.FileTime) time.Time {
	return time.Unix(t.Seconds, int64(t.Nano))
}

// FileTypeToProto converts a backend file type to its wire value.
func FileTypeToProto(t fs.FileType) api.FileType {
	switch t {
	case fs.FileTypeRegular:
		return api.FileType_REGULAR
	case fs.FileTypeDirectory:
		return api.FileType_DIRECTORY
	case fs.FileTypeSymlink:
		return api.FileType_SYMLINK
	case fs.FileTypeBlock:
		return api.FileType_BLOCK
	case fs.FileTypeChar:
		return api.FileType_CHAR
	case fs.FileTypeFIFO:
		return api.FileType_FIFO
	case fs.FileTypeSocket:
		return api.FileType_SOCKET
	default:
		return api.FileType_UNKNOWN
	}
}

// FSInfoToProtoAttributes converts backend attributes to fattr3. fsid is the
// export's file system id.
func FSInfoToProtoAttributes(info fs.FileInfo, fsid uint32) *api.FileAttributes {
	return &api.FileAttributes{
		Type:      FileTypeToProto(info.Type),
		Mode:      uint32(info.Mode & fs.ModeAllBits),
		Nlink:     info.Nlink,
		Uid:       info.Uid,
		Gid:       info.Gid,
		Size:      uint64(info.Size),
		Used:      info.Blocks * 512,
		RdevMajor: unix.Major(info.Rdev),
		RdevMinor: unix.Minor(info.Rdev),
		Fsid:      uint64(fsid),
		Fileid:    info.FileId,
		Atime:     toFileTime(info.AccessTime),
		Mtime:     toFileTime(info.ModifyTime),
		Ctime:     toFileTime(info.ChangeTime),
		Blksize:   info.BlockSize,
		Blocks:    info.Blocks,
	}
}

// SetAttributesToFSAttr converts a sattr3 to a backend FileAttr. Absent
// fields stay nil.
func SetAttributesToFSAttr(attr *api.SetAttributes) fs.FileAttr {
	var result fs.FileAttr
	if attr == nil {
		return result
	}
	if attr.Mode != nil {
		mode := fs.FileMode(*attr.Mode) & fs.ModeAllBits
		result.Mode = &mode
	}
	if attr.Size != nil {
		size := int64(*attr.Size)
		result.Size = &size
	}
	if attr.Uid != nil {
		uid := *attr.Uid
		result.Uid = &uid
	}
	if attr.Gid != nil {
		gid := *attr.Gid
		result.Gid = &gid
	}
	if attr.Atime != nil {
		atime := fromFileTime(attr.Atime)
		result.AccessTime = &atime
	}
	if attr.Mtime != nil {
		mtime := fromFileTime(attr.Mtime)
		result.ModifyTime = &mtime
	}
	return result
}

// ProtoCredsToFSCreds converts wire credentials. Missing credentials are
// treated as root; the server squashes them when root squashing is on.
func ProtoCredsToFSCreds(creds *api.Credentials) fs.Credentials {
	if creds == nil {
		return fs.Credentials{
			UID:    0,
			GID:    0,
			Groups: []uint32{0},
		}
	}
	return fs.Credentials{
		UID:    creds.Uid,
		GID:    creds.Gid,
		Groups: creds.Groups,
	}
}
