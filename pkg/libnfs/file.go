package libnfs

import (
	"errors"
	"io"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
	"golang.org/x/text/encoding"

	"github.com/example/libnfs/pkg/client"
)

// createMode is the permission of files created by open.
const createMode = 0o664

// FileHandle is an open remote file. The read/write position lives with
// the protocol context; Tell asks it every time. A handle may be used from
// several goroutines; its calls run one at a time.
type FileHandle struct {
	nfs *NFS
	// owned marks a private mount created for this handle; it is closed
	// with the handle.
	owned bool

	fh        *client.Fh
	name      string
	codec     encoding.Encoding
	binary    bool
	writing   bool

	mu        sync.Mutex // guards needFlush and closed
	needFlush bool
	closed    bool
}

// Open opens an nfs:// URL on a private mount of its parent directory,
// closed again when the handle is closed.
func Open(url, mode string, codec encoding.Encoding, opts ...Option) (*FileHandle, error) {
	if !client.IsURL(url) {
		return nil, &Error{Kind: ErrValue, Op: "open", Path: url, Msg: "not an nfs:// URL"}
	}
	return openURL(url, mode, codec, buildOptions(opts))
}

func openURL(url, mode string, codec encoding.Encoding, o options) (*FileHandle, error) {
	if _, err := ParseMode(mode); err != nil {
		return nil, &Error{Kind: ErrValue, Op: "open", Path: url, Err: err}
	}

	i := strings.LastIndex(url, "/")
	dir, file := url[:i], url[i:]

	private, err := New(dir, withOptions(o))
	if err != nil {
		return nil, err
	}
	h, err := openOn(private, true, url, file, mode, codec)
	if err != nil {
		private.Close()
		return nil, err
	}
	return h, nil
}

// withOptions carries already-built options into New.
func withOptions(o options) Option {
	return func(dst *options) { *dst = o }
}

func openOn(n *NFS, owned bool, name, path, mode string, codec encoding.Encoding) (*FileHandle, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return nil, &Error{Kind: ErrValue, Op: "open", Path: name, Err: err}
	}

	h := &FileHandle{
		nfs:     n,
		owned:   owned,
		name:    name,
		binary:  m.Binary,
		writing: m.Writing(),
	}
	if !m.Binary {
		h.codec = codec
		if h.codec == nil {
			h.codec = n.opts.codec
		}
	}

	err = n.do("open", name, func(c Conn) error {
		fh, ret := c.Open(path, m.Flags)
		if ret == -int(unix.ENOENT) && m.Create() {
			fh, ret = c.Create(path, m.Flags, createMode)
		}
		if ret == -int(unix.ENOENT) {
			return notFound("open", name)
		}
		if ret != 0 {
			return statusError(ErrValue, "open", name, ret, "open failed: "+client.Strerror(ret))
		}
		h.fh = fh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// call runs fn with the connection held, failing if the handle is closed.
func (h *FileHandle) call(op string, fn func(Conn) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return &Error{Kind: ErrValue, Op: op, Path: h.name, Msg: msgClosedFile}
	}
	return h.nfs.do(op, h.name, fn)
}

func (h *FileHandle) ioError(c Conn, op string, ret int) error {
	return statusError(ErrIO, op, h.name, ret, c.GetError())
}

// Write writes p unchanged and returns the number of bytes written.
func (h *FileHandle) Write(p []byte) (int, error) {
	var n int
	err := h.call("write", func(c Conn) error {
		if !h.writing {
			return &Error{Kind: ErrIO, Op: "write", Path: h.name, Msg: "trying to write on file open for reading"}
		}
		ret := c.Write(h.fh, p)
		if ret < 0 {
			return h.ioError(c, "write", ret)
		}
		n = ret
		h.needFlush = true
		if n < len(p) {
			return &Error{Kind: ErrIO, Op: "write", Path: h.name, Err: io.ErrShortWrite}
		}
		return nil
	})
	return n, err
}

// WriteString encodes s with the handle's codec and writes it. Binary
// handles write the bytes of s as they are.
func (h *FileHandle) WriteString(s string) (int, error) {
	if h.Closed() {
		return 0, &Error{Kind: ErrValue, Op: "write", Path: h.name, Msg: msgClosedFile}
	}
	data, err := encodeText(h.codec, s)
	if err != nil {
		return 0, &Error{Kind: ErrValue, Op: "write", Path: h.name, Err: err}
	}
	return h.Write(data)
}

// ReadN reads up to size bytes. A negative size reads to the end of the
// file. Short reads are not errors.
func (h *FileHandle) ReadN(size int) ([]byte, error) {
	var data []byte
	err := h.call("read", func(c Conn) error {
		if size < 0 {
			pos, ret := c.Lseek(h.fh, 0, io.SeekCurrent)
			if ret != 0 {
				return h.ioError(c, "read", ret)
			}
			var st client.Stat64
			if ret := c.Fstat64(h.fh, &st); ret != 0 {
				return h.ioError(c, "read", ret)
			}
			size = 0
			if remain := int64(st.Size) - pos; remain > 0 {
				size = int(remain)
			}
		}

		buf := make([]byte, size)
		ret := c.Read(h.fh, buf)
		if ret < 0 {
			return h.ioError(c, "read", ret)
		}
		data = buf[:ret]
		return nil
	})
	return data, err
}

// ReadText reads like ReadN and decodes the bytes received with the
// handle's codec.
func (h *FileHandle) ReadText(size int) (string, error) {
	data, err := h.ReadN(size)
	if err != nil {
		return "", err
	}
	s, err := decodeText(h.codec, data)
	if err != nil {
		return "", &Error{Kind: ErrValue, Op: "read", Path: h.name, Err: err}
	}
	return s, nil
}

// Read implements io.Reader.
func (h *FileHandle) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	var n int
	err := h.call("read", func(c Conn) error {
		ret := c.Read(h.fh, p)
		if ret < 0 {
			return h.ioError(c, "read", ret)
		}
		n = ret
		return nil
	})
	if err == nil && n == 0 {
		return 0, io.EOF
	}
	return n, err
}

// Seek moves the position; whence is io.SeekStart, io.SeekCurrent or
// io.SeekEnd.
func (h *FileHandle) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	err := h.call("seek", func(c Conn) error {
		var ret int
		pos, ret = c.Lseek(h.fh, offset, whence)
		if ret != 0 {
			return h.ioError(c, "seek", ret)
		}
		return nil
	})
	return pos, err
}

// Tell returns the current position.
func (h *FileHandle) Tell() (int64, error) {
	return h.Seek(0, io.SeekCurrent)
}

// Truncate sets the file size; a negative size truncates at the current
// position.
func (h *FileHandle) Truncate(size int64) error {
	if size < 0 {
		pos, err := h.Tell()
		if err != nil {
			return err
		}
		size = pos
	}
	return h.call("truncate", func(c Conn) error {
		if ret := c.Ftruncate(h.fh, size); ret != 0 {
			return h.ioError(c, "truncate", ret)
		}
		return nil
	})
}

// Flush commits written data on the server.
func (h *FileHandle) Flush() error {
	return h.call("flush", h.fsync)
}

func (h *FileHandle) fsync(c Conn) error {
	if ret := c.Fsync(h.fh); ret != 0 {
		return h.ioError(c, "flush", ret)
	}
	h.needFlush = false
	return nil
}

// Close flushes pending writes and releases the file. A private mount is
// closed as well. Closing a closed handle does nothing.
func (h *FileHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}

	var err error
	if h.needFlush {
		err = h.nfs.do("flush", h.name, h.fsync)
	}
	relErr := h.nfs.do("close", h.name, func(c Conn) error {
		if ret := c.Close(h.fh); ret != 0 {
			return h.ioError(c, "close", ret)
		}
		return nil
	})
	h.closed = true
	if err == nil && !errors.Is(relErr, ErrValue) {
		// a context closed under the handle already released the file
		err = relErr
	}

	if h.owned {
		h.nfs.Close()
	}
	return err
}

// Fstat returns the metadata of the open file.
func (h *FileHandle) Fstat() (StatResult, error) {
	var res StatResult
	err := h.call("fstat", func(c Conn) error {
		var st client.Stat64
		if ret := c.Fstat64(h.fh, &st); ret != 0 {
			return h.ioError(c, "fstat", ret)
		}
		res = statFromNative(&st)
		return nil
	})
	return res, err
}

// Fileno returns the inode number of the file. It identifies the file but
// is not an operating system descriptor.
func (h *FileHandle) Fileno() (uint64, error) {
	st, err := h.Fstat()
	if err != nil {
		return 0, err
	}
	return st.Ino, nil
}

// IsTerminal is always false.
func (h *FileHandle) IsTerminal() bool { return false }

// Name returns the path or URL the handle was opened with.
func (h *FileHandle) Name() string { return h.name }

// Closed reports whether Close has been called.
func (h *FileHandle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// LastError returns the connection's description of its last failure.
func (h *FileHandle) LastError() string { return h.nfs.LastError() }

var (
	_ io.ReadWriteSeeker = (*FileHandle)(nil)
	_ io.StringWriter    = (*FileHandle)(nil)
	_ io.Closer          = (*FileHandle)(nil)
)
