package server

import (
	"context"

	"github.com/example/libnfs/pkg/api"
	"github.com/example/libnfs/pkg/fs"
	"github.com/example/libnfs/pkg/nfs"
)

// GetAttr implements the GETATTR procedure. Attributes are readable by
// anyone who holds the handle.
func (s *NFSServer) GetAttr(ctx context.Context, req *api.GetAttrRequest) (*api.GetAttrResponse, error) {
	result, err := s.processRequest(ctx, "GetAttr", func(ctx context.Context) (interface{}, error) {
		p, status := s.resolveHandle(req.FileHandle)
		if status != api.Status_OK {
			return &api.GetAttrResponse{Status: status}, nil
		}

		info, err := s.fileSystem.GetAttr(ctx, p)
		if err != nil {
			return &api.GetAttrResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}

		return &api.GetAttrResponse{
			Status:     api.Status_OK,
			Attributes: nfs.FSInfoToProtoAttributes(info, s.fsid),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*api.GetAttrResponse), nil
}

// SetAttr implements the SETATTR procedure. Changing the size needs write
// permission; changing mode, owner or times needs ownership.
func (s *NFSServer) SetAttr(ctx context.Context, req *api.SetAttrRequest) (*api.SetAttrResponse, error) {
	result, err := s.processRequest(ctx, "SetAttr", func(ctx context.Context) (interface{}, error) {
		if s.config.ReadOnly {
			return &api.SetAttrResponse{Status: api.Status_ERR_ROFS}, nil
		}
		p, status := s.resolveHandle(req.FileHandle)
		if status != api.Status_OK {
			return &api.SetAttrResponse{Status: status}, nil
		}
		if req.Attributes == nil {
			return &api.SetAttrResponse{Status: api.Status_ERR_INVAL}, nil
		}

		info, err := s.fileSystem.GetAttr(ctx, p)
		if err != nil {
			return &api.SetAttrResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}

		creds := s.credentials(req.Credentials)
		attr := nfs.SetAttributesToFSAttr(req.Attributes)

		ownerOnly := attr.Mode != nil || attr.Uid != nil || attr.Gid != nil ||
			attr.AccessTime != nil || attr.ModifyTime != nil
		if ownerOnly && !creds.IsRoot() && creds.UID != info.Uid {
			return &api.SetAttrResponse{Status: api.Status_ERR_PERM}, nil
		}
		if attr.Size != nil {
			if err := s.fileSystem.Access(ctx, p, fs.AccessWrite, creds); err != nil {
				return &api.SetAttrResponse{Status: nfs.MapErrorToStatus(err)}, nil
			}
		}

		newInfo, err := s.fileSystem.SetAttr(ctx, p, attr)
		if err != nil {
			return &api.SetAttrResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}

		return &api.SetAttrResponse{
			Status:     api.Status_OK,
			Attributes: nfs.FSInfoToProtoAttributes(newInfo, s.fsid),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*api.SetAttrResponse), nil
}
