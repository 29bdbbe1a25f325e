package client

import (
	"errors"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/example/libnfs/pkg/api"
)

func TestParseURLDir(t *testing.T) {
	testCases := []struct {
		raw    string
		server string
		path   string
	}{
		{"nfs://server/export", "server:2049", "/export"},
		{"nfs://server:2050/export/sub/", "server:2050", "/export/sub"},
		{"nfs://10.0.0.1", "10.0.0.1:2049", "/"},
		{"nfs://[::1]:111/x", "[::1]:111", "/x"},
	}
	for _, tc := range testCases {
		u, err := ParseURLDir(tc.raw)
		if err != nil {
			t.Fatalf("ParseURLDir(%q): %v", tc.raw, err)
		}
		if u.Server != tc.server || u.Path != tc.path || u.File != "" {
			t.Errorf("ParseURLDir(%q) = %+v", tc.raw, u)
		}
	}
}

func TestParseURL(t *testing.T) {
	u, err := ParseURL("nfs://host/export/dir/file.txt?uid=1000&gid=100")
	if err != nil {
		t.Fatalf("ParseURL: %v", err)
	}
	if u.Path != "/export/dir" || u.File != "file.txt" {
		t.Errorf("split: %q %q", u.Path, u.File)
	}
	if u.UID == nil || *u.UID != 1000 || u.GID == nil || *u.GID != 100 {
		t.Errorf("ids: %v %v", u.UID, u.GID)
	}
	if got := u.String(); got != "nfs://host:2049/export/dir/file.txt" {
		t.Errorf("String: %q", got)
	}

	u, err = ParseURL("nfs://host/file")
	if err != nil || u.Path != "/" || u.File != "file" {
		t.Errorf("top-level file: %+v %v", u, err)
	}
}

func TestParseURLErrors(t *testing.T) {
	for _, raw := range []string{
		"/local/path",
		"http://host/export",
		"nfs:///export",
		"nfs://host:notaport/export",
		"nfs://host:70000/export",
		"nfs://host/export?uid=abc",
		"nfs://host/export?color=blue",
	} {
		if _, err := ParseURLDir(raw); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("ParseURLDir(%q): got %v", raw, err)
		}
	}
	if _, err := ParseURL("nfs://host/"); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("ParseURL without a file: %v", err)
	}
	if !IsURL("nfs://h/x") || IsURL("/x") {
		t.Error("IsURL")
	}
}

func TestErrno(t *testing.T) {
	if Errno(nil) != 0 {
		t.Error("nil error")
	}
	if got := Errno(StatusToError("Lookup", api.Status_ERR_NOENT)); got != -int(unix.ENOENT) {
		t.Errorf("NOENT: got %d", got)
	}
	if got := Errno(StatusToError("Remove", api.Status_ERR_NOTEMPTY)); got != -int(unix.ENOTEMPTY) {
		t.Errorf("NOTEMPTY: got %d", got)
	}
	if got := Errno(ErrNotMounted); got != -int(unix.ENOTCONN) {
		t.Errorf("not mounted: got %d", got)
	}
	if got := Errno(errors.New("boom")); got != -int(unix.EIO) {
		t.Errorf("unknown: got %d", got)
	}
	if Strerror(-int(unix.ENOENT)) != unix.ENOENT.Error() {
		t.Errorf("Strerror: %q", Strerror(-int(unix.ENOENT)))
	}
}
