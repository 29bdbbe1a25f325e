package libnfs

import (
	"errors"
	"strings"

	"golang.org/x/sys/unix"
)

// Error kinds. Every error returned by this package is an *Error whose Kind
// is one of these, so errors.Is(err, ErrNotFound) and friends work.
var (
	// ErrConnection reports a failed connect or mount.
	ErrConnection = errors.New("connection error")

	// ErrNotFound reports a remote "no such entry" result.
	ErrNotFound = errors.New("no such file or directory")

	// ErrValue reports misuse: a closed handle or context, a bad mode
	// string, or an open that failed for a reason other than ENOENT.
	ErrValue = errors.New("invalid operation")

	// ErrIO reports a failed remote call or writing to a read-only handle.
	ErrIO = errors.New("i/o error")
)

// Error describes a failed operation.
type Error struct {
	// Kind is one of ErrConnection, ErrNotFound, ErrValue or ErrIO.
	Kind error
	Op   string
	Path string

	// Err is the underlying cause, usually a unix.Errno.
	Err error

	// Msg is the remote error string, if there was one.
	Msg string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	b.WriteString(": ")
	switch {
	case e.Msg != "":
		b.WriteString(e.Msg)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		b.WriteString(e.Kind.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches the error kind.
func (e *Error) Is(target error) bool { return target == e.Kind }

// Errno returns the negative errno of a remote failure, or 0.
func (e *Error) Errno() int {
	var errno unix.Errno
	if errors.As(e.Err, &errno) {
		return -int(errno)
	}
	return 0
}

// statusError builds an error of the given kind for a negative status.
func statusError(kind error, op, path string, status int, msg string) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: unix.Errno(-status), Msg: msg}
}

func notFound(op, path string) *Error {
	return &Error{Kind: ErrNotFound, Op: op, Path: path, Err: unix.ENOENT}
}

const (
	msgClosedFile    = "I/O operation on closed file"
	msgClosedContext = "operation on closed context"
)
