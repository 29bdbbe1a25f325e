package libnfs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/example/libnfs/pkg/client"
)

func TestNewMountFailure(t *testing.T) {
	fake := newFakeConn()
	fake.fail["mount server:2049 /export"] = -int(unix.EACCES)

	n, err := New("nfs://server/export", WithConnector(func(*client.Config) Conn { return fake }))
	require.Error(t, err)
	assert.Nil(t, n)
	assert.True(t, errors.Is(err, ErrConnection))
	assert.Equal(t, 1, fake.destroyed, "failed mount must release the context")

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, -int(unix.EACCES), e.Errno())
	assert.Contains(t, e.Error(), "permission denied")
}

func TestNewBadAddress(t *testing.T) {
	for _, addr := range []string{"", "/export", "http://server/export", "nfs://server:0/export"} {
		t.Run(addr, func(t *testing.T) {
			fake := newFakeConn()
			_, err := New(addr, WithConnector(func(*client.Config) Conn { return fake }))
			assert.True(t, errors.Is(err, ErrConnection))
			assert.Equal(t, 1, fake.destroyed)
			assert.Empty(t, fake.calls, "no mount for a bad address")
		})
	}
}

func TestNewPassesMountArguments(t *testing.T) {
	n, _ := newFakeNFS(t)
	u := n.URL()
	require.NotNil(t, u)
	assert.Equal(t, "server:2049", u.Server)
	assert.Equal(t, "server", u.Host)
	assert.Equal(t, "/export", u.Path)
}

func TestCloseIsIdempotent(t *testing.T) {
	n, fake := newFakeNFS(t)

	require.NoError(t, n.Close())
	require.NoError(t, n.Close())
	assert.Equal(t, 1, fake.destroyed)
	assert.Nil(t, n.URL())
	assert.Empty(t, n.LastError())
}

func TestOperationsAfterClose(t *testing.T) {
	n, fake := newFakeNFS(t)
	require.NoError(t, n.Close())

	_, err := n.Stat("/x")
	assert.True(t, errors.Is(err, ErrValue))
	_, err = n.Listdir("/")
	assert.True(t, errors.Is(err, ErrValue))
	_, err = n.Mkdir("/d")
	assert.True(t, errors.Is(err, ErrValue))
	_, err = n.Open("/x", "w", nil)
	assert.True(t, errors.Is(err, ErrValue))
	assert.Empty(t, fake.calls)
}

func TestWithClosesOnError(t *testing.T) {
	fake := newFakeConn()
	boom := errors.New("boom")
	err := With("nfs://server/export", func(n *NFS) error {
		_, err := n.Mkdir("/d")
		require.NoError(t, err)
		return boom
	}, WithConnector(func(*client.Config) Conn { return fake }))

	assert.Equal(t, boom, err)
	assert.Equal(t, 1, fake.destroyed)
	assert.True(t, fake.dirs["/d"])
}

func TestWithClosesOnPanic(t *testing.T) {
	fake := newFakeConn()
	assert.Panics(t, func() {
		_ = With("nfs://server/export", func(*NFS) error {
			panic("inside")
		}, WithConnector(func(*client.Config) Conn { return fake }))
	})
	assert.Equal(t, 1, fake.destroyed)
}

func TestStat(t *testing.T) {
	n, fake := newFakeNFS(t)
	fake.files["/f"] = []byte("hello")
	fake.modes["/f"] = 0640

	st, err := n.Stat("/f")
	require.NoError(t, err)
	assert.EqualValues(t, 5, st.Size)
	assert.True(t, st.IsRegular())
	assert.Equal(t, uint32(0640), st.Mode&0777)
	assert.Equal(t, inode("/f"), st.Ino)
	assert.Equal(t, int64(1700000000), st.ModTime().Unix())
	assert.Equal(t, 5, st.ModTime().Nanosecond())

	st, err = n.Lstat("/")
	require.NoError(t, err)
	assert.True(t, st.IsDir())
	assert.True(t, st.FileMode().IsDir())

	_, err = n.Stat("/missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, unix.ENOENT))

	fake.fail["stat /f"] = -int(unix.EIO)
	_, err = n.Stat("/f")
	assert.True(t, errors.Is(err, ErrIO))
}

func TestMutationsReturnStatus(t *testing.T) {
	n, fake := newFakeNFS(t)
	fake.files["/f"] = []byte("x")
	fake.dirs["/d"] = true
	fake.files["/d/inner"] = nil

	st, err := n.Unlink("/f")
	require.NoError(t, err)
	assert.Equal(t, 0, st)

	// statuses other than ENOENT come back to the caller
	st, err = n.Unlink("/d")
	require.NoError(t, err)
	assert.Equal(t, -int(unix.EISDIR), st)

	st, err = n.Rmdir("/d")
	require.NoError(t, err)
	assert.Equal(t, -int(unix.ENOTEMPTY), st)

	st, err = n.Mkdir("/d")
	require.NoError(t, err)
	assert.Equal(t, -int(unix.EEXIST), st)

	_, err = n.Unlink("/f")
	assert.True(t, errors.Is(err, ErrNotFound))

	st, err = n.Rename("/d/inner", "/moved")
	require.NoError(t, err)
	assert.Equal(t, 0, st)
	_, ok := fake.files["/moved"]
	assert.True(t, ok)

	_, err = n.Rename("/nothing", "/else")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListdir(t *testing.T) {
	n, fake := newFakeNFS(t)
	fake.dirs["/d"] = true
	fake.files["/d/a"] = nil
	fake.files["/d/b"] = nil
	fake.dirs["/d/c"] = true

	names, err := n.Listdir("/d")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, names, "server order is kept, dot entries dropped")
	assert.Equal(t, "closedir", fake.calls[len(fake.calls)-1])

	fake.dirs["/empty"] = true
	names, err = n.Listdir("/empty")
	require.NoError(t, err)
	assert.NotNil(t, names)
	assert.Empty(t, names)

	_, err = n.Listdir("/missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	fake.fail["opendir /d"] = -int(unix.EACCES)
	_, err = n.Listdir("/d")
	assert.True(t, errors.Is(err, ErrIO))
}

func TestMakedirs(t *testing.T) {
	n, fake := newFakeNFS(t)
	fake.dirs["/a"] = true

	st, err := n.Makedirs("/a/b/c")
	require.NoError(t, err)
	assert.Equal(t, 0, st)
	assert.Equal(t, []string{"mkdir /a", "mkdir /a/b", "mkdir /a/b/c"}, fake.calls,
		"existing prefixes are not skipped")
	assert.True(t, fake.dirs["/a/b/c"])

	fake.calls = nil
	st, err = n.Makedirs("a//b/")
	require.NoError(t, err)
	assert.Equal(t, -int(unix.EEXIST), st)
	assert.Equal(t, []string{"mkdir /a", "mkdir /a/b"}, fake.calls)
}

func TestMakedirsStopsOnMissingParent(t *testing.T) {
	n, fake := newFakeNFS(t)
	fake.fail["mkdir /x/y"] = -int(unix.ENOENT)

	_, err := n.Makedirs("/x/y/z")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, []string{"mkdir /x", "mkdir /x/y"}, fake.calls)
	assert.True(t, fake.dirs["/x"], "created prefixes stay")
}
