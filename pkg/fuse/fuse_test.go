package fuse

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"bazil.org/fuse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/libnfs/internal/testutil"
	"github.com/example/libnfs/pkg/libnfs"
)

func setupFS(t *testing.T) (*NFSFS, *Dir, *testutil.Server) {
	t.Helper()
	srv := testutil.NewServer(t)
	n, err := libnfs.New(srv.URL("/"), libnfs.WithClientConfig(srv.ClientConfig()))
	require.NoError(t, err)
	t.Cleanup(func() { n.Close() })

	nfs := NewNFSFS(n, time.Second)
	root, err := nfs.Root()
	require.NoError(t, err)
	return nfs, root.(*Dir), srv
}

func TestLookupAndAttr(t *testing.T) {
	_, root, srv := setupFS(t)
	require.NoError(t, os.Mkdir(filepath.Join(srv.Dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(srv.Dir, "sub", "f"), []byte("12345"), 0o640))

	ctx := context.Background()
	var a fuse.Attr
	require.NoError(t, root.Attr(ctx, &a))
	assert.True(t, a.Mode.IsDir())
	assert.Equal(t, time.Second, a.Valid)

	node, err := root.Lookup(ctx, "sub")
	require.NoError(t, err)
	sub, ok := node.(*Dir)
	require.True(t, ok)

	node, err = sub.Lookup(ctx, "f")
	require.NoError(t, err)
	file, ok := node.(*File)
	require.True(t, ok)
	require.NoError(t, file.Attr(ctx, &a))
	assert.EqualValues(t, 5, a.Size)
	assert.Equal(t, os.FileMode(0o640), a.Mode)
	assert.NotZero(t, a.Inode)

	_, err = root.Lookup(ctx, "missing")
	assert.Equal(t, fuse.ENOENT, err)
}

func TestReadDirAll(t *testing.T) {
	_, root, srv := setupFS(t)
	require.NoError(t, os.Mkdir(filepath.Join(srv.Dir, "d"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(srv.Dir, "f"), nil, 0o644))

	entries, err := root.ReadDirAll(context.Background())
	require.NoError(t, err)
	types := map[string]fuse.DirentType{}
	for _, e := range entries {
		types[e.Name] = e.Type
		assert.NotZero(t, e.Inode, e.Name)
	}
	assert.Equal(t, map[string]fuse.DirentType{"d": fuse.DT_Dir, "f": fuse.DT_File}, types)
}

func TestCreateWriteRead(t *testing.T) {
	_, root, srv := setupFS(t)
	ctx := context.Background()

	req := &fuse.CreateRequest{Name: "new", Flags: fuse.OpenReadWrite | fuse.OpenCreate, Mode: 0o644}
	var resp fuse.CreateResponse
	node, handle, err := root.Create(ctx, req, &resp)
	require.NoError(t, err)
	require.IsType(t, &File{}, node)
	h := handle.(*Handle)

	var wresp fuse.WriteResponse
	require.NoError(t, h.Write(ctx, &fuse.WriteRequest{Offset: 0, Data: []byte("hello world")}, &wresp))
	assert.Equal(t, 11, wresp.Size)
	require.NoError(t, h.Write(ctx, &fuse.WriteRequest{Offset: 6, Data: []byte("there")}, &wresp))

	var rresp fuse.ReadResponse
	require.NoError(t, h.Read(ctx, &fuse.ReadRequest{Offset: 6, Size: 100}, &rresp))
	assert.Equal(t, "there", string(rresp.Data))

	require.NoError(t, h.Flush(ctx, &fuse.FlushRequest{}))
	require.NoError(t, h.Release(ctx, &fuse.ReleaseRequest{}))

	data, err := os.ReadFile(filepath.Join(srv.Dir, "new"))
	require.NoError(t, err)
	assert.Equal(t, "hello there", string(data))

	_, _, err = root.Create(ctx, &fuse.CreateRequest{Name: "new", Flags: fuse.OpenWriteOnly | fuse.OpenCreate | fuse.OpenExclusive}, &resp)
	assert.Equal(t, fuse.EEXIST, err)
}

func TestOpenKeepsContent(t *testing.T) {
	_, root, srv := setupFS(t)
	require.NoError(t, os.WriteFile(filepath.Join(srv.Dir, "f"), []byte("abcdef"), 0o644))
	ctx := context.Background()

	node, err := root.Lookup(ctx, "f")
	require.NoError(t, err)
	handle, err := node.(*File).Open(ctx, &fuse.OpenRequest{Flags: fuse.OpenWriteOnly}, &fuse.OpenResponse{})
	require.NoError(t, err)
	h := handle.(*Handle)
	var wresp fuse.WriteResponse
	require.NoError(t, h.Write(ctx, &fuse.WriteRequest{Offset: 2, Data: []byte("XY")}, &wresp))
	require.NoError(t, h.Release(ctx, &fuse.ReleaseRequest{}))

	data, err := os.ReadFile(filepath.Join(srv.Dir, "f"))
	require.NoError(t, err)
	assert.Equal(t, "abXYef", string(data))
}

func TestOpenMode(t *testing.T) {
	tests := []struct {
		flags fuse.OpenFlags
		mode  string
	}{
		{fuse.OpenReadOnly, "rb"},
		{fuse.OpenWriteOnly, "r+b"},
		{fuse.OpenReadWrite, "r+b"},
		{fuse.OpenWriteOnly | fuse.OpenTruncate, "wb"},
		{fuse.OpenReadWrite | fuse.OpenTruncate, "w+b"},
		{fuse.OpenWriteOnly | fuse.OpenAppend, "ab"},
		{fuse.OpenReadWrite | fuse.OpenAppend, "a+b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.mode, openMode(tt.flags), "flags %v", tt.flags)
	}
}

func TestSetattrSize(t *testing.T) {
	_, root, srv := setupFS(t)
	require.NoError(t, os.WriteFile(filepath.Join(srv.Dir, "f"), []byte("abcdef"), 0o644))
	ctx := context.Background()

	node, err := root.Lookup(ctx, "f")
	require.NoError(t, err)
	var resp fuse.SetattrResponse
	require.NoError(t, node.(*File).Setattr(ctx, &fuse.SetattrRequest{Valid: fuse.SetattrSize, Size: 2}, &resp))
	assert.EqualValues(t, 2, resp.Attr.Size)

	data, err := os.ReadFile(filepath.Join(srv.Dir, "f"))
	require.NoError(t, err)
	assert.Equal(t, "ab", string(data))
}

func TestMkdirRemoveRename(t *testing.T) {
	_, root, srv := setupFS(t)
	ctx := context.Background()

	node, err := root.Mkdir(ctx, &fuse.MkdirRequest{Name: "d", Mode: os.ModeDir | 0o755})
	require.NoError(t, err)
	dir := node.(*Dir)

	_, err = root.Mkdir(ctx, &fuse.MkdirRequest{Name: "d"})
	assert.Equal(t, fuse.Errno(syscall.EEXIST), err)

	require.NoError(t, os.WriteFile(filepath.Join(srv.Dir, "f"), []byte("x"), 0o644))
	require.NoError(t, root.Rename(ctx, &fuse.RenameRequest{OldName: "f", NewName: "g"}, dir))
	_, err = os.Stat(filepath.Join(srv.Dir, "d", "g"))
	require.NoError(t, err)

	err = root.Remove(ctx, &fuse.RemoveRequest{Name: "d", Dir: true})
	assert.Equal(t, fuse.Errno(syscall.ENOTEMPTY), err)

	require.NoError(t, dir.Remove(ctx, &fuse.RemoveRequest{Name: "g"}))
	require.NoError(t, root.Remove(ctx, &fuse.RemoveRequest{Name: "d", Dir: true}))

	err = root.Remove(ctx, &fuse.RemoveRequest{Name: "d", Dir: true})
	assert.Equal(t, fuse.ENOENT, err)
}

func TestToErrno(t *testing.T) {
	assert.NoError(t, toErrno(nil))
	assert.Equal(t, fuse.ENOENT, toErrno(&libnfs.Error{Kind: libnfs.ErrNotFound}))
	assert.Equal(t, fuse.Errno(syscall.EACCES),
		toErrno(&libnfs.Error{Kind: libnfs.ErrValue, Err: syscall.EACCES}))
	assert.Equal(t, fuse.EIO, toErrno(&libnfs.Error{Kind: libnfs.ErrIO}))
	assert.Equal(t, fuse.EIO, toErrno(errors.New("other")))

	assert.NoError(t, statusErrno(0))
	assert.Equal(t, fuse.Errno(syscall.EISDIR), statusErrno(-int(syscall.EISDIR)))
}
