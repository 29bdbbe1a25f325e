package server

import (
	"context"
	"testing"

	"github.com/example/libnfs/pkg/api"
)

func TestRead(t *testing.T) {
	server, lfs, tempDir := setupServer(t)
	content := "This is a test file for NFS read operation testing."
	writeFile(t, tempDir, "testfile.txt", content, 0644)
	fileHandle := mustHandle(t, lfs, "/testfile.txt")

	testCases := []struct {
		name     string
		offset   uint64
		count    uint32
		wantEof  bool
		wantData string
	}{
		{"Read from start", 0, 10, false, "This is a "},
		{"Read middle", 5, 5, false, "is a "},
		{"Read to end", 33, 50, true, "operation testing."},
		{"Read past end", 100, 10, true, ""},
		{"Read zero bytes", 0, 0, false, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := server.Read(context.Background(), &api.ReadRequest{
				FileHandle:  fileHandle,
				Offset:      tc.offset,
				Count:       tc.count,
				Credentials: rootCreds,
			})
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if resp.Status != api.Status_OK {
				t.Fatalf("Unexpected status: got %v, want OK", resp.Status)
			}
			if string(resp.Data) != tc.wantData {
				t.Errorf("Data: got %q, want %q", resp.Data, tc.wantData)
			}
			if resp.Eof != tc.wantEof {
				t.Errorf("EOF: got %v, want %v", resp.Eof, tc.wantEof)
			}
			if resp.Attributes == nil || resp.Attributes.Size != uint64(len(content)) {
				t.Errorf("post-op attributes: %+v", resp.Attributes)
			}
		})
	}
}

func TestReadClampsToMaxReadSize(t *testing.T) {
	server, lfs, tempDir := setupServer(t, func(c *Config) { c.MaxReadSize = 4 })
	writeFile(t, tempDir, "f", "0123456789", 0644)

	resp, err := server.Read(context.Background(), &api.ReadRequest{
		FileHandle:  mustHandle(t, lfs, "/f"),
		Count:       100,
		Credentials: rootCreds,
	})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(resp.Data) != "0123" || resp.Eof {
		t.Errorf("got %q eof=%v, want \"0123\" eof=false", resp.Data, resp.Eof)
	}
}

func TestReadPermissions(t *testing.T) {
	server, lfs, tempDir := setupServer(t, func(c *Config) { c.EnableRootSquash = true })
	writeFile(t, tempDir, "secret", "s3cr3t", 0600)
	ctx := context.Background()

	// root is squashed to nobody, which has no access to a 0600 file
	resp, err := server.Read(ctx, &api.ReadRequest{
		FileHandle:  mustHandle(t, lfs, "/secret"),
		Count:       10,
		Credentials: rootCreds,
	})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if resp.Status != api.Status_ERR_ACCES {
		t.Errorf("squashed root: got %v, want ERR_ACCES", resp.Status)
	}

	resp, err = server.Read(ctx, &api.ReadRequest{
		FileHandle:  mustHandle(t, lfs, "/"),
		Count:       10,
		Credentials: rootCreds,
	})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if resp.Status != api.Status_ERR_ISDIR {
		t.Errorf("directory: got %v, want ERR_ISDIR", resp.Status)
	}
}
