package libnfs

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
	"golang.org/x/text/encoding/charmap"

	"github.com/example/libnfs/pkg/client"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		mode   string
		flags  int
		binary bool
	}{
		{"r", unix.O_RDONLY, false},
		{"rb", unix.O_RDONLY, true},
		{"br", unix.O_RDONLY, true},
		{"r+", unix.O_RDWR, false},
		{"w", unix.O_WRONLY | unix.O_CREAT | unix.O_TRUNC, false},
		{"w+b", unix.O_RDWR | unix.O_CREAT | unix.O_TRUNC, true},
		{"a", unix.O_WRONLY | unix.O_CREAT | unix.O_APPEND, false},
		{"+a", unix.O_RDWR | unix.O_CREAT | unix.O_APPEND, false},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			m, err := ParseMode(tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.flags, m.Flags)
			assert.Equal(t, tt.binary, m.Binary)
		})
	}

	for _, bad := range []string{"", "b", "+", "rw", "rr", "r++", "rbb", "x", "rt"} {
		_, err := ParseMode(bad)
		assert.Error(t, err, "mode %q", bad)
	}
}

func TestOpenCreatesMissingFile(t *testing.T) {
	n, fake := newFakeNFS(t)

	f, err := n.Open("/new", "w", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"open /new", "create /new 664"}, fake.calls)
	assert.Equal(t, uint32(0o664), fake.modes["/new"])
	require.NoError(t, f.Close())
}

func TestOpenReadMissing(t *testing.T) {
	n, fake := newFakeNFS(t)

	_, err := n.Open("/missing", "r", nil)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, []string{"open /missing"}, fake.calls, "read mode never creates")
}

func TestOpenOtherFailure(t *testing.T) {
	n, fake := newFakeNFS(t)
	fake.files["/f"] = nil
	fake.fail["open /f"] = -int(unix.EACCES)

	_, err := n.Open("/f", "r", nil)
	assert.True(t, errors.Is(err, ErrValue))
	assert.Contains(t, err.Error(), "open failed")

	_, err = n.Open("/f", "q", nil)
	assert.True(t, errors.Is(err, ErrValue))
}

func TestWriteOnReadHandle(t *testing.T) {
	n, fake := newFakeNFS(t)
	fake.files["/f"] = []byte("data")

	f, err := n.Open("/f", "r", nil)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Write([]byte("x"))
	assert.True(t, errors.Is(err, ErrIO))
	assert.Equal(t, []byte("data"), fake.files["/f"])
}

func TestClosedHandle(t *testing.T) {
	n, fake := newFakeNFS(t)
	fake.files["/f"] = []byte("data")

	f, err := n.Open("/f", "r+", nil)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
	assert.True(t, f.Closed())
	assert.Equal(t, 1, countCalls(fake, "close"))

	_, err = f.ReadN(1)
	assert.True(t, errors.Is(err, ErrValue))
	_, err = f.Write([]byte("x"))
	assert.True(t, errors.Is(err, ErrValue))
	_, err = f.WriteString("x")
	assert.True(t, errors.Is(err, ErrValue))
	_, err = f.Tell()
	assert.True(t, errors.Is(err, ErrValue))
	assert.True(t, errors.Is(f.Flush(), ErrValue))
	assert.True(t, errors.Is(f.Truncate(0), ErrValue))
}

func countCalls(f *fakeConn, call string) int {
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func TestCloseFlushesWrites(t *testing.T) {
	n, fake := newFakeNFS(t)

	f, err := n.Open("/f", "wb", nil)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Zero(t, countCalls(fake, "fsync"), "nothing written, nothing to flush")

	fake.calls = nil
	f, err = n.Open("/f", "wb", nil)
	require.NoError(t, err)
	_, err = f.Write([]byte("abc"))
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, []string{"open /f", `write "abc"`, "fsync", "close"}, fake.calls)

	fake.calls = nil
	f, err = n.Open("/f", "ab", nil)
	require.NoError(t, err)
	_, err = f.Write([]byte("d"))
	require.NoError(t, err)
	require.NoError(t, f.Flush())
	require.NoError(t, f.Close())
	assert.Equal(t, 1, countCalls(fake, "fsync"), "flushed data is not flushed again")
	assert.Equal(t, []byte("abcd"), fake.files["/f"])
}

func TestConcurrentWriteAndClose(t *testing.T) {
	n, fake := newFakeNFS(t)

	f, err := n.Open("/f", "wb", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := f.Write([]byte("x")); err != nil {
				assert.True(t, errors.Is(err, ErrValue), err)
			}
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, f.Close())
		}()
	}
	wg.Wait()

	assert.True(t, f.Closed())
	assert.Equal(t, 1, countCalls(fake, "close"))
	if len(fake.files["/f"]) > 0 {
		assert.Equal(t, 1, countCalls(fake, "fsync"), "written data is flushed once before close")
	}
}

func TestCloseAfterContextClose(t *testing.T) {
	n, fake := newFakeNFS(t)
	fake.files["/f"] = nil

	f, err := n.Open("/f", "r", nil)
	require.NoError(t, err)
	require.NoError(t, n.Close())
	assert.NoError(t, f.Close())
	assert.True(t, f.Closed())
}

func TestReadAll(t *testing.T) {
	n, fake := newFakeNFS(t)
	fake.files["/f"] = []byte("0123456789")

	f, err := n.Open("/f", "rb", nil)
	require.NoError(t, err)
	defer f.Close()

	data, err := f.ReadN(3)
	require.NoError(t, err)
	assert.Equal(t, []byte("012"), data)

	data, err = f.ReadN(-1)
	require.NoError(t, err)
	assert.Equal(t, []byte("3456789"), data)

	data, err = f.ReadN(-1)
	require.NoError(t, err)
	assert.Empty(t, data)

	pos, err := f.Seek(-4, io.SeekEnd)
	require.NoError(t, err)
	assert.EqualValues(t, 6, pos)
	rest, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, []byte("6789"), rest)
}

func TestReadFailure(t *testing.T) {
	n, fake := newFakeNFS(t)
	fake.files["/f"] = []byte("x")
	fake.fail["read 1"] = -int(unix.EIO)

	f, err := n.Open("/f", "r", nil)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.ReadN(1)
	assert.True(t, errors.Is(err, ErrIO))
	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, -int(unix.EIO), e.Errno())
	assert.NotEmpty(t, f.LastError())
}

func TestTextCodec(t *testing.T) {
	n, fake := newFakeNFS(t)

	f, err := n.Open("/latin", "w", charmap.ISO8859_1)
	require.NoError(t, err)
	_, err = f.WriteString("café")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, []byte{'c', 'a', 'f', 0xe9}, fake.files["/latin"])

	f, err = n.Open("/latin", "r", charmap.ISO8859_1)
	require.NoError(t, err)
	s, err := f.ReadText(-1)
	require.NoError(t, err)
	assert.Equal(t, "café", s)
	require.NoError(t, f.Close())

	// binary handles ignore the codec
	f, err = n.Open("/latin", "rb", charmap.ISO8859_1)
	require.NoError(t, err)
	s, err = f.ReadText(-1)
	require.NoError(t, err)
	assert.Equal(t, "caf\xe9", s)
	require.NoError(t, f.Close())
}

func TestDefaultCodecOption(t *testing.T) {
	fake := newFakeConn()
	n, err := New("nfs://server/export",
		WithConnector(func(*client.Config) Conn { return fake }),
		WithDefaultCodec(charmap.ISO8859_1))
	require.NoError(t, err)
	defer n.Close()

	f, err := n.Open("/f", "w", nil)
	require.NoError(t, err)
	_, err = f.WriteString("é")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, []byte{0xe9}, fake.files["/f"])
}

func TestLookupCodec(t *testing.T) {
	enc, err := LookupCodec("iso-8859-1")
	require.NoError(t, err)
	assert.NotNil(t, enc)

	_, err = LookupCodec("no-such-codec")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	n, fake := newFakeNFS(t)
	fake.files["/f"] = []byte("0123456789")

	f, err := n.Open("/f", "r+b", nil)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Seek(4, io.SeekStart)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(-1))
	assert.Equal(t, []byte("0123"), fake.files["/f"])

	require.NoError(t, f.Truncate(6))
	assert.Equal(t, []byte("0123\x00\x00"), fake.files["/f"])
}

func TestFileMetadata(t *testing.T) {
	n, fake := newFakeNFS(t)
	fake.files["/f"] = []byte("abc")

	f, err := n.Open("/f", "r", nil)
	require.NoError(t, err)
	defer f.Close()

	st, err := f.Fstat()
	require.NoError(t, err)
	assert.EqualValues(t, 3, st.Size)

	ino, err := f.Fileno()
	require.NoError(t, err)
	assert.Equal(t, inode("/f"), ino)
	assert.False(t, f.IsTerminal())
	assert.Equal(t, "/f", f.Name())
}

func TestOpenURLOwnsMount(t *testing.T) {
	var fakes []*fakeConn
	connector := WithConnector(func(*client.Config) Conn {
		f := newFakeConn()
		f.files["/f"] = []byte("remote")
		fakes = append(fakes, f)
		return f
	})

	f, err := Open("nfs://server/export/f", "r", nil, connector)
	require.NoError(t, err)
	require.Len(t, fakes, 1)
	assert.Equal(t, []string{"mount server:2049 /export", "open /f"}, fakes[0].calls)
	assert.Equal(t, "nfs://server/export/f", f.Name())

	data, err := f.ReadText(-1)
	require.NoError(t, err)
	assert.Equal(t, "remote", data)

	require.NoError(t, f.Close())
	assert.Equal(t, 1, fakes[0].destroyed)

	_, err = Open("/local/path", "r", nil, connector)
	assert.True(t, errors.Is(err, ErrValue))

	_, err = Open("nfs://server/export/missing", "r", nil, connector)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, 1, fakes[len(fakes)-1].destroyed, "failed open releases the private mount")
}

func TestOpenURLFromContext(t *testing.T) {
	var fakes []*fakeConn
	fake := newFakeConn()
	n, err := New("nfs://server/export", WithConnector(func(*client.Config) Conn {
		if len(fakes) == 0 {
			fakes = append(fakes, fake)
			return fake
		}
		f := newFakeConn()
		fakes = append(fakes, f)
		return f
	}))
	require.NoError(t, err)
	defer n.Close()

	f, err := n.Open("nfs://other/vol/new", "w", nil)
	require.NoError(t, err)
	require.Len(t, fakes, 2)
	assert.Equal(t, "mount other:2049 /vol", fakes[1].calls[0])
	require.NoError(t, f.Close())
	assert.Equal(t, 1, fakes[1].destroyed)
	assert.Zero(t, fake.destroyed, "the outer context stays mounted")
}
