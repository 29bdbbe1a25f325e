package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/libnfs/pkg/api"
)

func TestCreate(t *testing.T) {
	server, lfs, tempDir := setupServer(t)
	testDirPath := filepath.Join(tempDir, "testdir")
	if err := os.Mkdir(testDirPath, 0755); err != nil {
		t.Fatal(err)
	}
	dirHandle := mustHandle(t, lfs, "/testdir")

	testCases := []struct {
		name       string
		fileName   string
		createMode api.CreateMode
	}{
		{"UNCHECKED mode new file", "unchecked.txt", api.CreateMode_UNCHECKED},
		{"GUARDED mode new file", "guarded.txt", api.CreateMode_GUARDED},
		{"EXCLUSIVE mode new file", "exclusive.txt", api.CreateMode_EXCLUSIVE},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := server.Create(context.Background(), &api.CreateRequest{
				DirectoryHandle: dirHandle,
				Name:            tc.fileName,
				Credentials:     rootCreds,
				Attributes:      &api.SetAttributes{Mode: u32(0664)},
				Mode:            tc.createMode,
			})
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if resp.Status != api.Status_OK {
				t.Fatalf("Unexpected status: got %v, want OK", resp.Status)
			}
			if len(resp.FileHandle) == 0 {
				t.Error("FileHandle is empty")
			}
			if resp.Attributes == nil || resp.Attributes.Type != api.FileType_REGULAR {
				t.Errorf("Attributes: %+v", resp.Attributes)
			}

			fi, err := os.Stat(filepath.Join(testDirPath, tc.fileName))
			if err != nil {
				t.Fatalf("File %s should exist: %v", tc.fileName, err)
			}
			if fi.Mode().Perm() != 0664 {
				t.Errorf("mode: got %o, want 664", fi.Mode().Perm())
			}
		})
	}

	writeFile(t, testDirPath, "existing.txt", "existing content", 0644)

	guardedResp, err := server.Create(context.Background(), &api.CreateRequest{
		DirectoryHandle: dirHandle,
		Name:            "existing.txt",
		Credentials:     rootCreds,
		Mode:            api.CreateMode_GUARDED,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if guardedResp.Status != api.Status_ERR_EXIST {
		t.Errorf("GUARDED on existing file: got %v, want ERR_EXIST", guardedResp.Status)
	}

	uncheckedResp, err := server.Create(context.Background(), &api.CreateRequest{
		DirectoryHandle: dirHandle,
		Name:            "existing.txt",
		Credentials:     rootCreds,
		Mode:            api.CreateMode_UNCHECKED,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if uncheckedResp.Status != api.Status_OK || uncheckedResp.Attributes.Size != 16 {
		t.Errorf("UNCHECKED on existing file should keep it: %+v", uncheckedResp)
	}

	for _, name := range []string{"", ".", "..", "a/b"} {
		resp, err := server.Create(context.Background(), &api.CreateRequest{
			DirectoryHandle: dirHandle,
			Name:            name,
			Credentials:     rootCreds,
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if resp.Status != api.Status_ERR_INVAL {
			t.Errorf("name %q: got %v, want ERR_INVAL", name, resp.Status)
		}
	}
}

func TestCreateInFile(t *testing.T) {
	server, lfs, tempDir := setupServer(t)
	writeFile(t, tempDir, "f", "", 0644)

	resp, err := server.Create(context.Background(), &api.CreateRequest{
		DirectoryHandle: mustHandle(t, lfs, "/f"),
		Name:            "child",
		Credentials:     rootCreds,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if resp.Status != api.Status_ERR_NOTDIR {
		t.Errorf("got %v, want ERR_NOTDIR", resp.Status)
	}
}
