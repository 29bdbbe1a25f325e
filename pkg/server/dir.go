package server

import (
	"context"
	"path"
	"strings"

	"github.com/example/libnfs/pkg/api"
	"github.com/example/libnfs/pkg/fs"
	"github.com/example/libnfs/pkg/nfs"
)

const (
	defaultReadDirCount = 1000
	maxReadDirCount     = 10000
)

func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsRune(name, '/')
}

// modifiableDir resolves a directory handle for an operation that adds or
// removes entries: the caller needs write and search permission.
func (s *NFSServer) modifiableDir(ctx context.Context, handle []byte, creds fs.Credentials) (string, api.Status) {
	if s.config.ReadOnly {
		return "", api.Status_ERR_ROFS
	}
	dirPath, status := s.resolveHandle(handle)
	if status != api.Status_OK {
		return "", status
	}
	info, err := s.fileSystem.GetAttr(ctx, dirPath)
	if err != nil {
		return "", nfs.MapErrorToStatus(err)
	}
	if info.Type != fs.FileTypeDirectory {
		return "", api.Status_ERR_NOTDIR
	}
	if err := s.fileSystem.Access(ctx, dirPath, fs.AccessWrite|fs.AccessExecute, creds); err != nil {
		return "", nfs.MapErrorToStatus(err)
	}
	return dirPath, api.Status_OK
}

// Create implements the CREATE procedure. GUARDED and EXCLUSIVE fail on an
// existing name; UNCHECKED returns the existing file.
func (s *NFSServer) Create(ctx context.Context, req *api.CreateRequest) (*api.CreateResponse, error) {
	result, err := s.processRequest(ctx, "Create", func(ctx context.Context) (interface{}, error) {
		creds := s.credentials(req.Credentials)
		dirPath, status := s.modifiableDir(ctx, req.DirectoryHandle, creds)
		if status != api.Status_OK {
			return &api.CreateResponse{Status: status}, nil
		}
		if !validName(req.Name) {
			return &api.CreateResponse{Status: api.Status_ERR_INVAL}, nil
		}

		excl := req.Mode != api.CreateMode_UNCHECKED
		attr := s.newObjectAttr(req.Attributes, creds)
		filePath, info, err := s.fileSystem.Create(ctx, dirPath, req.Name, attr, excl)
		if err != nil {
			return &api.CreateResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}

		handle, err := s.fileSystem.PathToFileHandle(filePath)
		if err != nil {
			return &api.CreateResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}

		return &api.CreateResponse{
			Status:     api.Status_OK,
			FileHandle: handle,
			Attributes: nfs.FSInfoToProtoAttributes(info, s.fsid),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*api.CreateResponse), nil
}

// Mkdir implements the MKDIR procedure.
func (s *NFSServer) Mkdir(ctx context.Context, req *api.MkdirRequest) (*api.MkdirResponse, error) {
	result, err := s.processRequest(ctx, "Mkdir", func(ctx context.Context) (interface{}, error) {
		creds := s.credentials(req.Credentials)
		dirPath, status := s.modifiableDir(ctx, req.DirectoryHandle, creds)
		if status != api.Status_OK {
			return &api.MkdirResponse{Status: status}, nil
		}
		if !validName(req.Name) {
			if req.Name == "." || req.Name == ".." {
				return &api.MkdirResponse{Status: api.Status_ERR_EXIST}, nil
			}
			return &api.MkdirResponse{Status: api.Status_ERR_INVAL}, nil
		}

		attr := s.newObjectAttr(req.Attributes, creds)
		newPath, info, err := s.fileSystem.Mkdir(ctx, dirPath, req.Name, attr)
		if err != nil {
			return &api.MkdirResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}

		handle, err := s.fileSystem.PathToFileHandle(newPath)
		if err != nil {
			return &api.MkdirResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}

		return &api.MkdirResponse{
			Status:     api.Status_OK,
			FileHandle: handle,
			Attributes: nfs.FSInfoToProtoAttributes(info, s.fsid),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*api.MkdirResponse), nil
}

// Remove implements the REMOVE procedure for non-directories.
func (s *NFSServer) Remove(ctx context.Context, req *api.RemoveRequest) (*api.RemoveResponse, error) {
	result, err := s.processRequest(ctx, "Remove", func(ctx context.Context) (interface{}, error) {
		creds := s.credentials(req.Credentials)
		dirPath, status := s.modifiableDir(ctx, req.DirectoryHandle, creds)
		if status != api.Status_OK {
			return &api.RemoveResponse{Status: status}, nil
		}
		if !validName(req.Name) {
			return &api.RemoveResponse{Status: api.Status_ERR_INVAL}, nil
		}

		if err := s.fileSystem.Remove(ctx, path.Join(dirPath, req.Name)); err != nil {
			return &api.RemoveResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}
		return &api.RemoveResponse{Status: api.Status_OK}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*api.RemoveResponse), nil
}

// Rmdir implements the RMDIR procedure.
func (s *NFSServer) Rmdir(ctx context.Context, req *api.RmdirRequest) (*api.RmdirResponse, error) {
	result, err := s.processRequest(ctx, "Rmdir", func(ctx context.Context) (interface{}, error) {
		creds := s.credentials(req.Credentials)
		dirPath, status := s.modifiableDir(ctx, req.DirectoryHandle, creds)
		if status != api.Status_OK {
			return &api.RmdirResponse{Status: status}, nil
		}
		if !validName(req.Name) {
			return &api.RmdirResponse{Status: api.Status_ERR_INVAL}, nil
		}

		if err := s.fileSystem.Rmdir(ctx, path.Join(dirPath, req.Name)); err != nil {
			return &api.RmdirResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}
		return &api.RmdirResponse{Status: api.Status_OK}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*api.RmdirResponse), nil
}

// Rename implements the RENAME procedure.
func (s *NFSServer) Rename(ctx context.Context, req *api.RenameRequest) (*api.RenameResponse, error) {
	result, err := s.processRequest(ctx, "Rename", func(ctx context.Context) (interface{}, error) {
		creds := s.credentials(req.Credentials)
		fromDir, status := s.modifiableDir(ctx, req.FromDirHandle, creds)
		if status != api.Status_OK {
			return &api.RenameResponse{Status: status}, nil
		}
		toDir, status := s.modifiableDir(ctx, req.ToDirHandle, creds)
		if status != api.Status_OK {
			return &api.RenameResponse{Status: status}, nil
		}
		if !validName(req.FromName) || !validName(req.ToName) {
			return &api.RenameResponse{Status: api.Status_ERR_INVAL}, nil
		}

		from := path.Join(fromDir, req.FromName)
		to := path.Join(toDir, req.ToName)
		if to == from || strings.HasPrefix(to, from+"/") {
			if to == from {
				return &api.RenameResponse{Status: api.Status_OK}, nil
			}
			return &api.RenameResponse{Status: api.Status_ERR_INVAL}, nil
		}

		if err := s.fileSystem.Rename(ctx, from, to); err != nil {
			return &api.RenameResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}
		return &api.RenameResponse{Status: api.Status_OK}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*api.RenameResponse), nil
}

// ReadDir implements the READDIR procedure. Count is the maximum number of
// entries to return; Cookie resumes after the entry that carried it.
func (s *NFSServer) ReadDir(ctx context.Context, req *api.ReadDirRequest) (*api.ReadDirResponse, error) {
	result, err := s.processRequest(ctx, "ReadDir", func(ctx context.Context) (interface{}, error) {
		dirPath, status := s.resolveHandle(req.DirectoryHandle)
		if status != api.Status_OK {
			return &api.ReadDirResponse{Status: status}, nil
		}

		info, err := s.fileSystem.GetAttr(ctx, dirPath)
		if err != nil {
			return &api.ReadDirResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}
		if info.Type != fs.FileTypeDirectory {
			return &api.ReadDirResponse{Status: api.Status_ERR_NOTDIR}, nil
		}

		creds := s.credentials(req.Credentials)
		if err := s.fileSystem.Access(ctx, dirPath, fs.AccessRead, creds); err != nil {
			return &api.ReadDirResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}

		maxCount := int(req.Count)
		if maxCount <= 0 {
			maxCount = defaultReadDirCount
		} else if maxCount > maxReadDirCount {
			maxCount = maxReadDirCount
		}

		entries, eof, err := s.fileSystem.ReadDir(ctx, dirPath, req.Cookie, maxCount)
		if err != nil {
			return &api.ReadDirResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}

		protoEntries := make([]*api.DirEntry, len(entries))
		for i, entry := range entries {
			protoEntries[i] = &api.DirEntry{
				FileId: entry.FileId,
				Name:   entry.Name,
				Cookie: entry.Cookie,
			}
		}

		return &api.ReadDirResponse{
			Status:         api.Status_OK,
			CookieVerifier: s.verifier,
			Entries:        protoEntries,
			Eof:            eof,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*api.ReadDirResponse), nil
}
