package libnfs

import (
	"golang.org/x/text/encoding"

	"github.com/example/libnfs/pkg/client"
)

// Conn is the protocol context an NFS drives. Methods follow the libnfs
// convention: 0 or a count on success, a negated errno on failure, with
// GetError describing the last failure. *client.Context implements it.
type Conn interface {
	Mount(server, export string) int
	Destroy()
	GetError() string

	Open(path string, flags int) (*client.Fh, int)
	Create(path string, flags int, mode uint32) (*client.Fh, int)
	Close(fh *client.Fh) int
	Read(fh *client.Fh, buf []byte) int
	Write(fh *client.Fh, buf []byte) int
	Lseek(fh *client.Fh, offset int64, whence int) (int64, int)
	Ftruncate(fh *client.Fh, length int64) int
	Fsync(fh *client.Fh) int

	Stat64(path string, st *client.Stat64) int
	Lstat64(path string, st *client.Stat64) int
	Fstat64(fh *client.Fh, st *client.Stat64) int

	Unlink(path string) int
	Mkdir(path string) int
	Rmdir(path string) int
	Rename(src, dst string) int

	Opendir(path string) (*client.Dir, int)
	Readdir(dir *client.Dir) *client.Dirent
	Closedir(dir *client.Dir)
}

// identity is implemented by contexts that can send a uid and gid taken
// from the address.
type identity interface {
	SetUID(uid uint32)
	SetGID(gid uint32)
}

var _ Conn = (*client.Context)(nil)

// Option configures New and Open.
type Option func(*options)

type options struct {
	clientConfig *client.Config
	connector    func(*client.Config) Conn
	codec        encoding.Encoding
}

// WithClientConfig sets the configuration of the protocol client.
func WithClientConfig(cfg *client.Config) Option {
	return func(o *options) { o.clientConfig = cfg }
}

// WithConnector replaces the function creating the protocol context.
func WithConnector(connect func(*client.Config) Conn) Option {
	return func(o *options) { o.connector = connect }
}

// WithDefaultCodec sets the codec of text-mode handles opened without one.
func WithDefaultCodec(codec encoding.Encoding) Option {
	return func(o *options) { o.codec = codec }
}

func defaultConnector(cfg *client.Config) Conn {
	return client.NewContext(cfg)
}

func buildOptions(opts []Option) options {
	o := options{connector: defaultConnector, codec: DefaultCodec}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clientConfig == nil {
		o.clientConfig = client.DefaultConfig()
	}
	return o
}
