package client

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/libnfs/pkg/api"
)

// Common error types
var (
	ErrNotImplemented = errors.New("operation not implemented")
	ErrInvalidHandle  = errors.New("invalid file handle")
	ErrInvalidPath    = errors.New("invalid path")
	ErrPermission     = errors.New("permission denied")
	ErrNotExist       = errors.New("file does not exist")
	ErrIsDir          = errors.New("is a directory")
	ErrNotDir         = errors.New("not a directory")
	ErrExist          = errors.New("file exists")
	ErrNotEmpty       = errors.New("directory not empty")
	ErrStale          = errors.New("stale file handle")
	ErrNotMounted     = errors.New("no export mounted")
)

// NFSError represents an error in an NFS operation
type NFSError struct {
	// Operation that failed
	Op string

	// NFS status code
	Status api.Status

	// Error message
	Message string

	// Underlying error
	Err error
}

// Error implements the error interface
func (e *NFSError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s (%s) - %v", e.Op, e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s (%s)", e.Op, e.Status, e.Message)
}

// Unwrap returns the underlying error
func (e *NFSError) Unwrap() error {
	return e.Err
}

// NewNFSError creates a new NFS error
func NewNFSError(op string, status api.Status, message string, err error) *NFSError {
	return &NFSError{
		Op:      op,
		Status:  status,
		Message: message,
		Err:     err,
	}
}

// StatusToError converts an NFS status to an error
func StatusToError(op string, status api.Status) error {
	if status == api.Status_OK {
		return nil
	}

	var message string
	var err error

	switch status {
	case api.Status_ERR_PERM:
		message = "not owner"
		err = ErrPermission
	case api.Status_ERR_NOENT:
		message = "no such file or directory"
		err = ErrNotExist
	case api.Status_ERR_IO:
		message = "I/O error"
	case api.Status_ERR_NXIO:
		message = "no such device or address"
	case api.Status_ERR_ACCES:
		message = "permission denied"
		err = ErrPermission
	case api.Status_ERR_EXIST:
		message = "file exists"
		err = ErrExist
	case api.Status_ERR_XDEV:
		message = "cross-device link"
	case api.Status_ERR_NODEV:
		message = "no such device"
	case api.Status_ERR_NOTDIR:
		message = "not a directory"
		err = ErrNotDir
	case api.Status_ERR_ISDIR:
		message = "is a directory"
		err = ErrIsDir
	case api.Status_ERR_INVAL:
		message = "invalid argument"
	case api.Status_ERR_FBIG:
		message = "file too large"
	case api.Status_ERR_NOSPC:
		message = "no space left on device"
	case api.Status_ERR_ROFS:
		message = "read-only file system"
	case api.Status_ERR_MLINK:
		message = "too many links"
	case api.Status_ERR_NAMETOOLONG:
		message = "filename too long"
	case api.Status_ERR_NOTEMPTY:
		message = "directory not empty"
		err = ErrNotEmpty
	case api.Status_ERR_DQUOT:
		message = "disk quota exceeded"
	case api.Status_ERR_STALE:
		message = "stale file handle"
		err = ErrStale
	case api.Status_ERR_BADHANDLE:
		message = "illegal NFS file handle"
		err = ErrInvalidHandle
	case api.Status_ERR_NOT_SYNC:
		message = "update synchronization mismatch"
	case api.Status_ERR_BAD_COOKIE:
		message = "READDIR cookie is stale"
	case api.Status_ERR_NOTSUPP:
		message = "operation not supported"
		err = ErrNotImplemented
	case api.Status_ERR_TOOSMALL:
		message = "buffer or request is too small"
	case api.Status_ERR_SERVERFAULT:
		message = "server fault"
	case api.Status_ERR_BADTYPE:
		message = "type not supported"
	case api.Status_ERR_JUKEBOX:
		message = "operation requires human intervention"
	default:
		message = "unknown error"
	}

	return NewNFSError(op, status, message, err)
}

// statusErrno maps wire statuses to the errno a local filesystem would
// report for the same failure.
var statusErrno = map[api.Status]unix.Errno{
	api.Status_ERR_PERM:        unix.EPERM,
	api.Status_ERR_NOENT:       unix.ENOENT,
	api.Status_ERR_IO:          unix.EIO,
	api.Status_ERR_NXIO:        unix.ENXIO,
	api.Status_ERR_ACCES:       unix.EACCES,
	api.Status_ERR_EXIST:       unix.EEXIST,
	api.Status_ERR_XDEV:        unix.EXDEV,
	api.Status_ERR_NODEV:       unix.ENODEV,
	api.Status_ERR_NOTDIR:      unix.ENOTDIR,
	api.Status_ERR_ISDIR:       unix.EISDIR,
	api.Status_ERR_INVAL:       unix.EINVAL,
	api.Status_ERR_FBIG:        unix.EFBIG,
	api.Status_ERR_NOSPC:       unix.ENOSPC,
	api.Status_ERR_ROFS:        unix.EROFS,
	api.Status_ERR_MLINK:       unix.EMLINK,
	api.Status_ERR_NAMETOOLONG: unix.ENAMETOOLONG,
	api.Status_ERR_NOTEMPTY:    unix.ENOTEMPTY,
	api.Status_ERR_DQUOT:       unix.EDQUOT,
	api.Status_ERR_STALE:       unix.ESTALE,
	api.Status_ERR_BADHANDLE:   unix.EINVAL,
	api.Status_ERR_NOT_SYNC:    unix.EINVAL,
	api.Status_ERR_BAD_COOKIE:  unix.EINVAL,
	api.Status_ERR_NOTSUPP:     unix.ENOTSUP,
	api.Status_ERR_TOOSMALL:    unix.EINVAL,
	api.Status_ERR_SERVERFAULT: unix.EIO,
	api.Status_ERR_BADTYPE:     unix.EINVAL,
	api.Status_ERR_JUKEBOX:     unix.EAGAIN,
}

// Errno converts err into the negative errno used as a Context status.
// A nil error is 0.
func Errno(err error) int {
	if err == nil {
		return 0
	}

	var nfsErr *NFSError
	if errors.As(err, &nfsErr) {
		if e, ok := statusErrno[nfsErr.Status]; ok {
			return -int(e)
		}
		return -int(unix.EIO)
	}

	var errno unix.Errno
	if errors.As(err, &errno) {
		return -int(errno)
	}

	if errors.Is(err, ErrNotMounted) {
		return -int(unix.ENOTCONN)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return -int(unix.ETIMEDOUT)
	}
	if errors.Is(err, context.Canceled) {
		return -int(unix.ECANCELED)
	}

	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unavailable:
			return -int(unix.ECONNREFUSED)
		case codes.DeadlineExceeded:
			return -int(unix.ETIMEDOUT)
		case codes.Canceled:
			return -int(unix.ECANCELED)
		case codes.Unimplemented:
			return -int(unix.ENOSYS)
		}
	}
	return -int(unix.EIO)
}

// Strerror describes a status returned by Context methods.
func Strerror(status int) string {
	if status >= 0 {
		return "success"
	}
	return unix.Errno(-status).Error()
}
