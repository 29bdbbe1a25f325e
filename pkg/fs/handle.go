// pkg/fs/handle.go
package fs

import (
	"encoding/binary"
	"fmt"
)

// HandleSize is the length of a serialized FileHandle.
const HandleSize = 16

// FileHandle identifies a file on an export independently of its path.
//
// Layout (big endian): fsid uint32 | inode uint64 | generation uint32.
type FileHandle struct {
	// FileSystemID identifies the export.
	FileSystemID uint32

	// Inode is the backend inode number.
	Inode uint64

	// Generation is bumped when an inode number is seen again under a
	// different path, so handles to the previous file turn stale.
	Generation uint32
}

// Serialize returns the wire form of the handle.
func (fh *FileHandle) Serialize() []byte {
	data := make([]byte, HandleSize)
	binary.BigEndian.PutUint32(data[0:4], fh.FileSystemID)
	binary.BigEndian.PutUint64(data[4:12], fh.Inode)
	binary.BigEndian.PutUint32(data[12:16], fh.Generation)
	return data
}

// DeserializeFileHandle parses the wire form produced by Serialize.
func DeserializeFileHandle(data []byte) (*FileHandle, error) {
	if len(data) != HandleSize {
		return nil, fmt.Errorf("%w: length %d, want %d", ErrInvalidHandle, len(data), HandleSize)
	}
	return &FileHandle{
		FileSystemID: binary.BigEndian.Uint32(data[0:4]),
		Inode:        binary.BigEndian.Uint64(data[4:12]),
		Generation:   binary.BigEndian.Uint32(data[12:16]),
	}, nil
}

func (fh *FileHandle) String() string {
	return fmt.Sprintf("FileHandle{FS:%d, Inode:%d, Gen:%d}",
		fh.FileSystemID, fh.Inode, fh.Generation)
}
