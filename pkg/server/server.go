// Package server implements the export server behind the NFS service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/netutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/peer"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/example/libnfs/internal/logger"
	"github.com/example/libnfs/pkg/api"
	"github.com/example/libnfs/pkg/fs"
	"github.com/example/libnfs/pkg/nfs"
)

// Config contains the NFS server configuration
type Config struct {
	// Network address to listen on (e.g. ":2049")
	ListenAddress string

	// ExportPath is the name clients mount, e.g. "/export".
	ExportPath string

	// Maximum concurrent requests
	MaxConcurrent int

	// MaxConnections caps accepted client connections; 0 means unlimited.
	MaxConnections int

	// Maximum read size in bytes
	MaxReadSize int

	// Maximum write size in bytes
	MaxWriteSize int

	// Request timeout in seconds
	RequestTimeout int

	// Enable root squashing (map root to anonymous user)
	EnableRootSquash bool

	AnonUID uint32
	AnonGID uint32

	// ReadOnly rejects every mutating request with ERR_ROFS.
	ReadOnly bool
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		ListenAddress:    ":2049",
		ExportPath:       "/export",
		MaxConcurrent:    100,
		MaxConnections:   0,
		MaxReadSize:      1024 * 1024,
		MaxWriteSize:     1024 * 1024,
		RequestTimeout:   30,
		EnableRootSquash: true,
		AnonUID:          65534, // nobody
		AnonGID:          65534, // nogroup
	}
}

// NFSServer implements the NFS service over one fs.FileSystem.
type NFSServer struct {
	api.UnimplementedNFSServiceServer

	config *Config

	fileSystem fs.FileSystem

	// fsid is reported in attributes; taken from the root handle.
	fsid uint32

	// verifier changes on every server start.
	verifier uint64

	// ownNewFiles makes created objects belong to the caller. Only
	// possible when the server runs as root.
	ownNewFiles bool

	// Worker pool for limiting concurrent requests
	workerPool chan struct{}

	mu         sync.Mutex
	grpcServer *grpc.Server
}

// NewNFSServer creates a new NFS server
func NewNFSServer(config *Config, fileSystem fs.FileSystem) (*NFSServer, error) {
	if config.MaxConcurrent <= 0 {
		return nil, fmt.Errorf("max concurrent requests must be positive, got %d", config.MaxConcurrent)
	}

	rootHandle, err := fileSystem.PathToFileHandle("/")
	if err != nil {
		return nil, fmt.Errorf("failed to get export root handle: %w", err)
	}
	root, err := fs.DeserializeFileHandle(rootHandle)
	if err != nil {
		return nil, fmt.Errorf("invalid export root handle: %w", err)
	}

	return &NFSServer{
		config:      config,
		fileSystem:  fileSystem,
		fsid:        root.FileSystemID,
		verifier:    uint64(time.Now().UnixNano()),
		ownNewFiles: os.Geteuid() == 0,
		workerPool:  make(chan struct{}, config.MaxConcurrent),
	}, nil
}

// Start listens on the configured address and serves until Stop.
func (s *NFSServer) Start() error {
	lis, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(lis)
}

// Serve serves the NFS service on lis until Stop is called.
func (s *NFSServer) Serve(lis net.Listener) error {
	if s.config.MaxConnections > 0 {
		lis = netutil.LimitListener(lis, s.config.MaxConnections)
	}

	grpcServer := grpc.NewServer()
	api.RegisterNFSServiceServer(grpcServer, s)

	s.mu.Lock()
	s.grpcServer = grpcServer
	s.mu.Unlock()

	logger.Info("NFS server exporting %s on %s", s.config.ExportPath, lis.Addr())
	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Stop waits for in-flight requests and stops serving.
func (s *NFSServer) Stop() {
	s.mu.Lock()
	grpcServer := s.grpcServer
	s.grpcServer = nil
	s.mu.Unlock()

	if grpcServer != nil {
		grpcServer.GracefulStop()
		logger.Info("NFS server stopped")
	}
}

// acquireWorker gets a worker from the pool or times out
func (s *NFSServer) acquireWorker(ctx context.Context) error {
	select {
	case s.workerPool <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *NFSServer) releaseWorker() {
	<-s.workerPool
}

// statusOf extracts the status from any response message.
func statusOf(resp interface{}) api.Status {
	switch r := resp.(type) {
	case *api.MountResponse:
		return r.Status
	case *api.GetAttrResponse:
		return r.Status
	case *api.SetAttrResponse:
		return r.Status
	case *api.LookupResponse:
		return r.Status
	case *api.ReadlinkResponse:
		return r.Status
	case *api.ReadResponse:
		return r.Status
	case *api.WriteResponse:
		return r.Status
	case *api.CreateResponse:
		return r.Status
	case *api.MkdirResponse:
		return r.Status
	case *api.RemoveResponse:
		return r.Status
	case *api.RmdirResponse:
		return r.Status
	case *api.RenameResponse:
		return r.Status
	case *api.ReadDirResponse:
		return r.Status
	case *api.CommitResponse:
		return r.Status
	default:
		return api.Status_OK
	}
}

// processRequest runs process inside a worker slot with request logging and
// the configured timeout. process reports protocol failures through the
// response status; a returned error becomes a transport error.
func (s *NFSServer) processRequest(ctx context.Context, op string,
	process func(ctx context.Context) (interface{}, error)) (interface{}, error) {

	reqID := uuid.New().String()
	clientAddr := "unknown"
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		clientAddr = p.Addr.String()
	}

	nfs.LogRequest(op, reqID, clientAddr)
	startTime := time.Now()

	if s.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.config.RequestTimeout)*time.Second)
		defer cancel()
	}

	if err := s.acquireWorker(ctx); err != nil {
		nfs.LogError(op, reqID, err)
		return nil, err
	}
	defer s.releaseWorker()

	result, err := process(ctx)
	if err != nil {
		nfs.LogError(op, reqID, err)
		return nil, err
	}

	nfs.LogResponse(op, reqID, statusOf(result), time.Since(startTime).String())
	return result, nil
}

// resolveHandle validates a handle and converts it to an export path.
func (s *NFSServer) resolveHandle(handle []byte) (string, api.Status) {
	if len(handle) != fs.HandleSize {
		return "", api.Status_ERR_BADHANDLE
	}
	p, err := s.fileSystem.FileHandleToPath(handle)
	if err != nil {
		return "", nfs.MapErrorToStatus(err)
	}
	return p, api.Status_OK
}

// credentials converts wire credentials and applies root squashing.
func (s *NFSServer) credentials(creds *api.Credentials) fs.Credentials {
	c := nfs.ProtoCredsToFSCreds(creds)
	if s.config.EnableRootSquash && c.UID == 0 {
		c.UID = s.config.AnonUID
		c.GID = s.config.AnonGID
		c.Groups = nil
	}
	return c
}

// attributes returns wire attributes for p, or nil if p cannot be stat'ed.
func (s *NFSServer) attributes(ctx context.Context, p string) *api.FileAttributes {
	info, err := s.fileSystem.GetAttr(ctx, p)
	if err != nil {
		return nil
	}
	return nfs.FSInfoToProtoAttributes(info, s.fsid)
}

// newObjectAttr prepares attributes for CREATE and MKDIR.
func (s *NFSServer) newObjectAttr(sattr *api.SetAttributes, creds fs.Credentials) fs.FileAttr {
	attr := nfs.SetAttributesToFSAttr(sattr)
	if s.ownNewFiles {
		uid, gid := creds.UID, creds.GID
		if attr.Uid == nil {
			attr.Uid = &uid
		}
		if attr.Gid == nil {
			attr.Gid = &gid
		}
	} else {
		// cannot chown without privileges
		attr.Uid, attr.Gid = nil, nil
	}
	return attr
}

// Null implements the NULL procedure.
func (s *NFSServer) Null(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, nil
}

// Mount returns the handle of the export root, or of a directory below it.
func (s *NFSServer) Mount(ctx context.Context, req *api.MountRequest) (*api.MountResponse, error) {
	result, err := s.processRequest(ctx, "Mount", func(ctx context.Context) (interface{}, error) {
		export := path.Clean("/" + s.config.ExportPath)
		requested := path.Clean("/" + req.Path)

		var rel string
		switch {
		case export == "/":
			rel = requested
		case requested == export:
			rel = "/"
		case strings.HasPrefix(requested, export+"/"):
			rel = strings.TrimPrefix(requested, export)
		default:
			return &api.MountResponse{Status: api.Status_ERR_NOENT}, nil
		}

		info, err := s.fileSystem.GetAttr(ctx, rel)
		if err != nil {
			return &api.MountResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}
		if info.Type != fs.FileTypeDirectory {
			return &api.MountResponse{Status: api.Status_ERR_NOTDIR}, nil
		}

		creds := s.credentials(req.Credentials)
		if err := s.fileSystem.Access(ctx, rel, fs.AccessExecute, creds); err != nil {
			return &api.MountResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}

		handle, err := s.fileSystem.PathToFileHandle(rel)
		if err != nil {
			return &api.MountResponse{Status: nfs.MapErrorToStatus(err)}, nil
		}

		return &api.MountResponse{
			Status:     api.Status_OK,
			FileHandle: handle,
			Attributes: nfs.FSInfoToProtoAttributes(info, s.fsid),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*api.MountResponse), nil
}
