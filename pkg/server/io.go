package server

import (
	"context"

	"github.com/example/libnfs/pkg/api"
	"github.com/example/libnfs/pkg/fs"
	"github.com/example/libnfs/pkg/nfs"
)

// Read implements the READ procedure. Counts above MaxReadSize are
// clamped, so callers must be ready for short reads.
func (s *NFSServer) Read(ctx context.Context, req *api.ReadRequest) (*api.ReadResponse, error) {
	result, err := s.processRequest(ctx, "Read", func(ctx context.Context) (interface{}, error) {
		p, status := s.resolveHandle(req.FileHandle)
		if status != api.Status_OK {
			return &api.ReadResponse{Status: status}, nil
		}

		info, err := s.fileSystem.GetAttr(ctx, p)
		if err != nil {
			return &api.ReadResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}
		switch info.Type {
		case fs.FileTypeRegular:
		case fs.FileTypeDirectory:
			return &api.ReadResponse{Status: api.Status_ERR_ISDIR}, nil
		default:
			return &api.ReadResponse{Status: api.Status_ERR_INVAL}, nil
		}

		creds := s.credentials(req.Credentials)
		if err := s.fileSystem.Access(ctx, p, fs.AccessRead, creds); err != nil {
			return &api.ReadResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}

		count := req.Count
		if count > uint32(s.config.MaxReadSize) {
			count = uint32(s.config.MaxReadSize)
		}

		data, eof, err := s.fileSystem.Read(ctx, p, int64(req.Offset), int(count))
		if err != nil {
			return &api.ReadResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}

		return &api.ReadResponse{
			Status:     api.Status_OK,
			Data:       data,
			Eof:        eof,
			Attributes: s.attributes(ctx, p),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*api.ReadResponse), nil
}

// Write implements the WRITE procedure. At most MaxWriteSize bytes are
// written per call; Count reports how many.
func (s *NFSServer) Write(ctx context.Context, req *api.WriteRequest) (*api.WriteResponse, error) {
	result, err := s.processRequest(ctx, "Write", func(ctx context.Context) (interface{}, error) {
		if s.config.ReadOnly {
			return &api.WriteResponse{Status: api.Status_ERR_ROFS}, nil
		}
		p, status := s.resolveHandle(req.FileHandle)
		if status != api.Status_OK {
			return &api.WriteResponse{Status: status}, nil
		}

		info, err := s.fileSystem.GetAttr(ctx, p)
		if err != nil {
			return &api.WriteResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}
		switch info.Type {
		case fs.FileTypeRegular:
		case fs.FileTypeDirectory:
			return &api.WriteResponse{Status: api.Status_ERR_ISDIR}, nil
		default:
			return &api.WriteResponse{Status: api.Status_ERR_INVAL}, nil
		}

		creds := s.credentials(req.Credentials)
		if err := s.fileSystem.Access(ctx, p, fs.AccessWrite, creds); err != nil {
			return &api.WriteResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}

		data := req.Data
		if len(data) > s.config.MaxWriteSize {
			data = data[:s.config.MaxWriteSize]
		}

		sync := req.Stability == api.StableHow_FILE_SYNC
		n, err := s.fileSystem.Write(ctx, p, int64(req.Offset), data, sync)
		if err != nil {
			return &api.WriteResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}
		if req.Stability == api.StableHow_DATA_SYNC {
			if err := s.fileSystem.Commit(ctx, p); err != nil {
				return &api.WriteResponse{Status: nfs.MapErrorToStatus(err)}, nil
			}
		}

		return &api.WriteResponse{
			Status:     api.Status_OK,
			Count:      uint32(n),
			Stability:  req.Stability,
			Verifier:   s.verifier,
			Attributes: s.attributes(ctx, p),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*api.WriteResponse), nil
}

// Commit implements the COMMIT procedure.
func (s *NFSServer) Commit(ctx context.Context, req *api.CommitRequest) (*api.CommitResponse, error) {
	result, err := s.processRequest(ctx, "Commit", func(ctx context.Context) (interface{}, error) {
		p, status := s.resolveHandle(req.FileHandle)
		if status != api.Status_OK {
			return &api.CommitResponse{Status: status}, nil
		}
		if err := s.fileSystem.Commit(ctx, p); err != nil {
			return &api.CommitResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}
		return &api.CommitResponse{Status: api.Status_OK, Verifier: s.verifier}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*api.CommitResponse), nil
}
