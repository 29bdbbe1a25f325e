// pkg/fs/errors.go
package fs

import (
	"errors"
	"fmt"
)

// Backend errors. pkg/nfs maps each of them to a wire status.
var (
	ErrNotExist      = errors.New("file does not exist")
	ErrExist         = errors.New("file already exists")
	ErrPermission    = errors.New("permission denied")
	ErrIO            = errors.New("input/output error")
	ErrIsDir         = errors.New("is a directory")
	ErrNotDir        = errors.New("not a directory")
	ErrNotEmpty      = errors.New("directory not empty")
	ErrInvalidName   = errors.New("invalid name")
	ErrNameTooLong   = errors.New("file name too long")
	ErrInvalidHandle = errors.New("invalid file handle")
	ErrNoSpace       = errors.New("no space left on device")
	ErrReadOnly      = errors.New("read-only filesystem")
	ErrBadCookie     = errors.New("invalid directory cookie")
	ErrStale         = errors.New("stale file handle")
	ErrCrossDevice   = errors.New("cross-device link")
	ErrNotSupported  = errors.New("operation not supported")
)

// FSError attaches the failing operation and path to a backend error.
type FSError struct {
	Op   string
	Path string
	Err  error
}

func (e *FSError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FSError) Unwrap() error {
	return e.Err
}

// NewError wraps err in an FSError. Wrapping an FSError again keeps the
// innermost sentinel reachable through errors.Is.
func NewError(op, path string, err error) error {
	return &FSError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}
