// Package api defines the wire contract between the libnfs protocol client
// and the export server: NFSv3-shaped messages, status codes and the gRPC
// service description.
package api

import "fmt"

// Status is an NFSv3 status code (RFC 1813 nfsstat3).
type Status int32

const (
	Status_OK               Status = 0
	Status_ERR_PERM         Status = 1
	Status_ERR_NOENT        Status = 2
	Status_ERR_IO           Status = 5
	Status_ERR_NXIO         Status = 6
	Status_ERR_ACCES        Status = 13
	Status_ERR_EXIST        Status = 17
	Status_ERR_XDEV         Status = 18
	Status_ERR_NODEV        Status = 19
	Status_ERR_NOTDIR       Status = 20
	Status_ERR_ISDIR        Status = 21
	Status_ERR_INVAL        Status = 22
	Status_ERR_FBIG         Status = 27
	Status_ERR_NOSPC        Status = 28
	Status_ERR_ROFS         Status = 30
	Status_ERR_MLINK        Status = 31
	Status_ERR_NAMETOOLONG  Status = 63
	Status_ERR_NOTEMPTY     Status = 66
	Status_ERR_DQUOT        Status = 69
	Status_ERR_STALE        Status = 70
	Status_ERR_BADHANDLE    Status = 10001
	Status_ERR_NOT_SYNC     Status = 10002
	Status_ERR_BAD_COOKIE   Status = 10003
	Status_ERR_NOTSUPP      Status = 10004
	Status_ERR_TOOSMALL     Status = 10005
	Status_ERR_SERVERFAULT  Status = 10006
	Status_ERR_BADTYPE      Status = 10007
	Status_ERR_JUKEBOX      Status = 10008
)

var statusNames = map[Status]string{
	Status_OK:              "OK",
	Status_ERR_PERM:        "ERR_PERM",
	Status_ERR_NOENT:       "ERR_NOENT",
	Status_ERR_IO:          "ERR_IO",
	Status_ERR_NXIO:        "ERR_NXIO",
	Status_ERR_ACCES:       "ERR_ACCES",
	Status_ERR_EXIST:       "ERR_EXIST",
	Status_ERR_XDEV:        "ERR_XDEV",
	Status_ERR_NODEV:       "ERR_NODEV",
	Status_ERR_NOTDIR:      "ERR_NOTDIR",
	Status_ERR_ISDIR:       "ERR_ISDIR",
	Status_ERR_INVAL:       "ERR_INVAL",
	Status_ERR_FBIG:        "ERR_FBIG",
	Status_ERR_NOSPC:       "ERR_NOSPC",
	Status_ERR_ROFS:        "ERR_ROFS",
	Status_ERR_MLINK:       "ERR_MLINK",
	Status_ERR_NAMETOOLONG: "ERR_NAMETOOLONG",
	Status_ERR_NOTEMPTY:    "ERR_NOTEMPTY",
	Status_ERR_DQUOT:       "ERR_DQUOT",
	Status_ERR_STALE:       "ERR_STALE",
	Status_ERR_BADHANDLE:   "ERR_BADHANDLE",
	Status_ERR_NOT_SYNC:    "ERR_NOT_SYNC",
	Status_ERR_BAD_COOKIE:  "ERR_BAD_COOKIE",
	Status_ERR_NOTSUPP:     "ERR_NOTSUPP",
	Status_ERR_TOOSMALL:    "ERR_TOOSMALL",
	Status_ERR_SERVERFAULT: "ERR_SERVERFAULT",
	Status_ERR_BADTYPE:     "ERR_BADTYPE",
	Status_ERR_JUKEBOX:     "ERR_JUKEBOX",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int32(s))
}

// FileType is an NFSv3 ftype3 value.
type FileType int32

const (
	FileType_UNKNOWN   FileType = 0
	FileType_REGULAR   FileType = 1
	FileType_DIRECTORY FileType = 2
	FileType_BLOCK     FileType = 3
	FileType_CHAR      FileType = 4
	FileType_SYMLINK   FileType = 5
	FileType_SOCKET    FileType = 6
	FileType_FIFO      FileType = 7
)

func (t FileType) String() string {
	switch t {
	case FileType_REGULAR:
		return "REGULAR"
	case FileType_DIRECTORY:
		return "DIRECTORY"
	case FileType_BLOCK:
		return "BLOCK"
	case FileType_CHAR:
		return "CHAR"
	case FileType_SYMLINK:
		return "SYMLINK"
	case FileType_SOCKET:
		return "SOCKET"
	case FileType_FIFO:
		return "FIFO"
	default:
		return "UNKNOWN"
	}
}

// CreateMode selects how CREATE treats an existing target.
type CreateMode int32

const (
	CreateMode_UNCHECKED CreateMode = 0
	CreateMode_GUARDED   CreateMode = 1
	CreateMode_EXCLUSIVE CreateMode = 2
)

// StableHow is the stability level requested for a WRITE.
type StableHow int32

const (
	StableHow_UNSTABLE  StableHow = 0
	StableHow_DATA_SYNC StableHow = 1
	StableHow_FILE_SYNC StableHow = 2
)

// Credentials carries AUTH_UNIX style caller identity.
type Credentials struct {
	Uid    uint32   `json:"uid"`
	Gid    uint32   `json:"gid"`
	Groups []uint32 `json:"groups,omitempty"`
}

// FileTime is a seconds/nanoseconds timestamp.
type FileTime struct {
	Seconds int64 `json:"seconds"`
	Nano    int32 `json:"nano"`
}

// FileAttributes mirrors fattr3.
type FileAttributes struct {
	Type      FileType  `json:"type"`
	Mode      uint32    `json:"mode"`
	Nlink     uint32    `json:"nlink"`
	Uid       uint32    `json:"uid"`
	Gid       uint32    `json:"gid"`
	Size      uint64    `json:"size"`
	Used      uint64    `json:"used"`
	RdevMajor uint32    `json:"rdev_major"`
	RdevMinor uint32    `json:"rdev_minor"`
	Fsid      uint64    `json:"fsid"`
	Fileid    uint64    `json:"fileid"`
	Atime     *FileTime `json:"atime,omitempty"`
	Mtime     *FileTime `json:"mtime,omitempty"`
	Ctime     *FileTime `json:"ctime,omitempty"`
	Blksize   uint32    `json:"blksize"`
	Blocks    uint64    `json:"blocks"`
}

// SetAttributes mirrors sattr3: only non-nil fields are applied.
type SetAttributes struct {
	Mode  *uint32   `json:"mode,omitempty"`
	Uid   *uint32   `json:"uid,omitempty"`
	Gid   *uint32   `json:"gid,omitempty"`
	Size  *uint64   `json:"size,omitempty"`
	Atime *FileTime `json:"atime,omitempty"`
	Mtime *FileTime `json:"mtime,omitempty"`
}

// DirEntry is one READDIR entry.
type DirEntry struct {
	FileId uint64 `json:"fileid"`
	Name   string `json:"name"`
	Cookie uint64 `json:"cookie"`
}

type MountRequest struct {
	Path        string       `json:"path"`
	Credentials *Credentials `json:"credentials,omitempty"`
}

type MountResponse struct {
	Status     Status          `json:"status"`
	FileHandle []byte          `json:"file_handle,omitempty"`
	Attributes *FileAttributes `json:"attributes,omitempty"`
}

type GetAttrRequest struct {
	FileHandle  []byte       `json:"file_handle"`
	Credentials *Credentials `json:"credentials,omitempty"`
}

type GetAttrResponse struct {
	Status     Status          `json:"status"`
	Attributes *FileAttributes `json:"attributes,omitempty"`
}

type SetAttrRequest struct {
	FileHandle  []byte         `json:"file_handle"`
	Attributes  *SetAttributes `json:"attributes"`
	Credentials *Credentials   `json:"credentials,omitempty"`
}

type SetAttrResponse struct {
	Status     Status          `json:"status"`
	Attributes *FileAttributes `json:"attributes,omitempty"`
}

type LookupRequest struct {
	DirectoryHandle []byte       `json:"directory_handle"`
	Name            string       `json:"name"`
	Credentials     *Credentials `json:"credentials,omitempty"`
}

type LookupResponse struct {
	Status        Status          `json:"status"`
	FileHandle    []byte          `json:"file_handle,omitempty"`
	Attributes    *FileAttributes `json:"attributes,omitempty"`
	DirAttributes *FileAttributes `json:"dir_attributes,omitempty"`
}

type ReadlinkRequest struct {
	FileHandle  []byte       `json:"file_handle"`
	Credentials *Credentials `json:"credentials,omitempty"`
}

type ReadlinkResponse struct {
	Status Status `json:"status"`
	Target string `json:"target,omitempty"`
}

type ReadRequest struct {
	FileHandle  []byte       `json:"file_handle"`
	Offset      uint64       `json:"offset"`
	Count       uint32       `json:"count"`
	Credentials *Credentials `json:"credentials,omitempty"`
}

type ReadResponse struct {
	Status     Status          `json:"status"`
	Data       []byte          `json:"data,omitempty"`
	Eof        bool            `json:"eof"`
	Attributes *FileAttributes `json:"attributes,omitempty"`
}

type WriteRequest struct {
	FileHandle  []byte       `json:"file_handle"`
	Offset      uint64       `json:"offset"`
	Data        []byte       `json:"data"`
	Stability   StableHow    `json:"stability"`
	Credentials *Credentials `json:"credentials,omitempty"`
}

type WriteResponse struct {
	Status     Status          `json:"status"`
	Count      uint32          `json:"count"`
	Stability  StableHow       `json:"stability"`
	Verifier   uint64          `json:"verifier"`
	Attributes *FileAttributes `json:"attributes,omitempty"`
}

type CreateRequest struct {
	DirectoryHandle []byte         `json:"directory_handle"`
	Name            string         `json:"name"`
	Attributes      *SetAttributes `json:"attributes,omitempty"`
	Mode            CreateMode     `json:"mode"`
	Credentials     *Credentials   `json:"credentials,omitempty"`
}

type CreateResponse struct {
	Status     Status          `json:"status"`
	FileHandle []byte          `json:"file_handle,omitempty"`
	Attributes *FileAttributes `json:"attributes,omitempty"`
}

type MkdirRequest struct {
	DirectoryHandle []byte         `json:"directory_handle"`
	Name            string         `json:"name"`
	Attributes      *SetAttributes `json:"attributes,omitempty"`
	Credentials     *Credentials   `json:"credentials,omitempty"`
}

type MkdirResponse struct {
	Status     Status          `json:"status"`
	FileHandle []byte          `json:"file_handle,omitempty"`
	Attributes *FileAttributes `json:"attributes,omitempty"`
}

type RemoveRequest struct {
	DirectoryHandle []byte       `json:"directory_handle"`
	Name            string       `json:"name"`
	Credentials     *Credentials `json:"credentials,omitempty"`
}

type RemoveResponse struct {
	Status Status `json:"status"`
}

type RmdirRequest struct {
	DirectoryHandle []byte       `json:"directory_handle"`
	Name            string       `json:"name"`
	Credentials     *Credentials `json:"credentials,omitempty"`
}

type RmdirResponse struct {
	Status Status `json:"status"`
}

type RenameRequest struct {
	FromDirHandle []byte       `json:"from_dir_handle"`
	FromName      string       `json:"from_name"`
	ToDirHandle   []byte       `json:"to_dir_handle"`
	ToName        string       `json:"to_name"`
	Credentials   *Credentials `json:"credentials,omitempty"`
}

type RenameResponse struct {
	Status Status `json:"status"`
}

type ReadDirRequest struct {
	DirectoryHandle []byte       `json:"directory_handle"`
	Cookie          uint64       `json:"cookie"`
	CookieVerifier  uint64       `json:"cookie_verifier"`
	Count           uint32       `json:"count"`
	Credentials     *Credentials `json:"credentials,omitempty"`
}

type ReadDirResponse struct {
	Status         Status      `json:"status"`
	CookieVerifier uint64      `json:"cookie_verifier"`
	Entries        []*DirEntry `json:"entries,omitempty"`
	Eof            bool        `json:"eof"`
}

type CommitRequest struct {
	FileHandle  []byte       `json:"file_handle"`
	Offset      uint64       `json:"offset"`
	Count       uint32       `json:"count"`
	Credentials *Credentials `json:"credentials,omitempty"`
}

type CommitResponse struct {
	Status   Status `json:"status"`
	Verifier uint64 `json:"verifier"`
}
