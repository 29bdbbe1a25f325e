// Package nfs holds the server-side glue between the wire contract and the
// file system backends: status mapping, attribute conversion and request
// logging.
package nfs

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/example/libnfs/internal/logger"
	"github.com/example/libnfs/pkg/api"
	"github.com/example/libnfs/pkg/fs"
)

var sentinelStatus = []struct {
	err    error
	status api.Status
}{
	{fs.ErrNotExist, api.Status_ERR_NOENT},
	{fs.ErrPermission, api.Status_ERR_ACCES},
	{fs.ErrExist, api.Status_ERR_EXIST},
	{fs.ErrIO, api.Status_ERR_IO},
	{fs.ErrIsDir, api.Status_ERR_ISDIR},
	{fs.ErrNotDir, api.Status_ERR_NOTDIR},
	{fs.ErrInvalidName, api.Status_ERR_INVAL},
	{fs.ErrNameTooLong, api.Status_ERR_NAMETOOLONG},
	{fs.ErrInvalidHandle, api.Status_ERR_BADHANDLE},
	{fs.ErrNoSpace, api.Status_ERR_NOSPC},
	{fs.ErrReadOnly, api.Status_ERR_ROFS},
	{fs.ErrBadCookie, api.Status_ERR_BAD_COOKIE},
	{fs.ErrStale, api.Status_ERR_STALE},
	{fs.ErrCrossDevice, api.Status_ERR_XDEV},
	{fs.ErrNotSupported, api.Status_ERR_NOTSUPP},
	{fs.ErrNotEmpty, api.Status_ERR_NOTEMPTY},
}

var errnoStatus = map[unix.Errno]api.Status{
	unix.EPERM:        api.Status_ERR_PERM,
	unix.ENOENT:       api.Status_ERR_NOENT,
	unix.EIO:          api.Status_ERR_IO,
	unix.ENXIO:        api.Status_ERR_NXIO,
	unix.EACCES:       api.Status_ERR_ACCES,
	unix.EEXIST:       api.Status_ERR_EXIST,
	unix.EXDEV:        api.Status_ERR_XDEV,
	unix.ENODEV:       api.Status_ERR_NODEV,
	unix.ENOTDIR:      api.Status_ERR_NOTDIR,
	unix.EISDIR:       api.Status_ERR_ISDIR,
	unix.EINVAL:       api.Status_ERR_INVAL,
	unix.EFBIG:        api.Status_ERR_FBIG,
	unix.ENOSPC:       api.Status_ERR_NOSPC,
	unix.EROFS:        api.Status_ERR_ROFS,
	unix.EMLINK:       api.Status_ERR_MLINK,
	unix.ENAMETOOLONG: api.Status_ERR_NAMETOOLONG,
	unix.ENOTEMPTY:    api.Status_ERR_NOTEMPTY,
	unix.EDQUOT:       api.Status_ERR_DQUOT,
	unix.ESTALE:       api.Status_ERR_STALE,
}

// MapErrorToStatus converts a backend error to an NFS status code.
func MapErrorToStatus(err error) api.Status {
	if err == nil {
		return api.Status_OK
	}

	var nfsErr *NFSError
	if errors.As(err, &nfsErr) {
		return nfsErr.Status
	}

	for _, m := range sentinelStatus {
		if errors.Is(err, m.err) {
			return m.status
		}
	}

	var errno unix.Errno
	if errors.As(err, &errno) {
		if st, ok := errnoStatus[errno]; ok {
			return st
		}
	}

	switch {
	case errors.Is(err, os.ErrPermission):
		return api.Status_ERR_PERM
	case errors.Is(err, os.ErrNotExist):
		return api.Status_ERR_NOENT
	case errors.Is(err, os.ErrExist):
		return api.Status_ERR_EXIST
	}

	LogUnknownError(err)
	return api.Status_ERR_IO
}

// LogUnknownError logs errors MapErrorToStatus could not classify.
func LogUnknownError(err error) {
	logger.Warn("Unknown error type: %T, message: %v", err, err)
}

// LogRequest logs a received request.
func LogRequest(op string, reqID string, clientAddr string) {
	logger.Debug("NFS request: %s, ID: %s, Client: %s", op, reqID, clientAddr)
}

// LogResponse logs a response; failures are logged at INFO.
func LogResponse(op string, reqID string, status api.Status, duration string) {
	if status == api.Status_OK {
		logger.Debug("NFS response: %s, ID: %s, Status: %s, Duration: %s", op, reqID, status, duration)
		return
	}
	logger.Info("NFS response: %s, ID: %s, Status: %s, Duration: %s", op, reqID, status, duration)
}

// LogError logs an error with its context.
func LogError(op string, reqID string, err error) {
	logger.Error("NFS error: %s, ID: %s, Error: %v", op, reqID, err)
}

// NFSError carries an explicit status through error returns.
type NFSError struct {
	Status  api.Status
	Message string
	Cause   error
}

func (e *NFSError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (underlying: %v)", e.Status, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Status, e.Message)
}

func (e *NFSError) Unwrap() error {
	return e.Cause
}

func NewNFSError(status api.Status, message string, cause error) *NFSError {
	return &NFSError{
		Status:  status,
		Message: message,
		Cause:   cause,
	}
}
