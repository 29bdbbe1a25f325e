package server

import (
	"context"

	"github.com/example/libnfs/pkg/api"
	"github.com/example/libnfs/pkg/fs"
	"github.com/example/libnfs/pkg/nfs"
)

// Lookup implements the LOOKUP procedure. "." and ".." are resolved by
// the backend; ".." of the export root is the root itself.
func (s *NFSServer) Lookup(ctx context.Context, req *api.LookupRequest) (*api.LookupResponse, error) {
	result, err := s.processRequest(ctx, "Lookup", func(ctx context.Context) (interface{}, error) {
		dirPath, status := s.resolveHandle(req.DirectoryHandle)
		if status != api.Status_OK {
			return &api.LookupResponse{Status: status}, nil
		}

		creds := s.credentials(req.Credentials)
		if err := s.fileSystem.Access(ctx, dirPath, fs.AccessExecute, creds); err != nil {
			return &api.LookupResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}

		targetPath, info, err := s.fileSystem.Lookup(ctx, dirPath, req.Name)
		if err != nil {
			return &api.LookupResponse{
				Status:        nfs.MapErrorToStatus(err),
				DirAttributes: s.attributes(ctx, dirPath),
			}, nil
		}

		fileHandle, err := s.fileSystem.PathToFileHandle(targetPath)
		if err != nil {
			return &api.LookupResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}

		return &api.LookupResponse{
			Status:        api.Status_OK,
			FileHandle:    fileHandle,
			Attributes:    nfs.FSInfoToProtoAttributes(info, s.fsid),
			DirAttributes: s.attributes(ctx, dirPath),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*api.LookupResponse), nil
}

// Readlink implements the READLINK procedure.
func (s *NFSServer) Readlink(ctx context.Context, req *api.ReadlinkRequest) (*api.ReadlinkResponse, error) {
	result, err := s.processRequest(ctx, "Readlink", func(ctx context.Context) (interface{}, error) {
		p, status := s.resolveHandle(req.FileHandle)
		if status != api.Status_OK {
			return &api.ReadlinkResponse{Status: status}, nil
		}

		target, err := s.fileSystem.Readlink(ctx, p)
		if err != nil {
			return &api.ReadlinkResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}
		return &api.ReadlinkResponse{Status: api.Status_OK, Target: target}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*api.ReadlinkResponse), nil
}
