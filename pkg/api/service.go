package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const ServiceName = "nfs.NFSService"

const (
	NFSService_Null_FullMethodName     = "/nfs.NFSService/Null"
	NFSService_Mount_FullMethodName    = "/nfs.NFSService/Mount"
	NFSService_GetAttr_FullMethodName  = "/nfs.NFSService/GetAttr"
	NFSService_SetAttr_FullMethodName  = "/nfs.NFSService/SetAttr"
	NFSService_Lookup_FullMethodName   = "/nfs.NFSService/Lookup"
	NFSService_Readlink_FullMethodName = "/nfs.NFSService/Readlink"
	NFSService_Read_FullMethodName     = "/nfs.NFSService/Read"
	NFSService_Write_FullMethodName    = "/nfs.NFSService/Write"
	NFSService_Create_FullMethodName   = "/nfs.NFSService/Create"
	NFSService_Mkdir_FullMethodName    = "/nfs.NFSService/Mkdir"
	NFSService_Remove_FullMethodName   = "/nfs.NFSService/Remove"
	NFSService_Rmdir_FullMethodName    = "/nfs.NFSService/Rmdir"
	NFSService_Rename_FullMethodName   = "/nfs.NFSService/Rename"
	NFSService_ReadDir_FullMethodName  = "/nfs.NFSService/ReadDir"
	NFSService_Commit_FullMethodName   = "/nfs.NFSService/Commit"
)

// NFSServiceClient is the client API for NFSService.
type NFSServiceClient interface {
	Null(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Mount(ctx context.Context, in *MountRequest, opts ...grpc.CallOption) (*MountResponse, error)
	GetAttr(ctx context.Context, in *GetAttrRequest, opts ...grpc.CallOption) (*GetAttrResponse, error)
	SetAttr(ctx context.Context, in *SetAttrRequest, opts ...grpc.CallOption) (*SetAttrResponse, error)
	Lookup(ctx context.Context, in *LookupRequest, opts ...grpc.CallOption) (*LookupResponse, error)
	Readlink(ctx context.Context, in *ReadlinkRequest, opts ...grpc.CallOption) (*ReadlinkResponse, error)
	Read(ctx context.Context, in *ReadRequest, opts ...grpc.CallOption) (*ReadResponse, error)
	Write(ctx context.Context, in *WriteRequest, opts ...grpc.CallOption) (*WriteResponse, error)
	Create(ctx context.Context, in *CreateRequest, opts ...grpc.CallOption) (*CreateResponse, error)
	Mkdir(ctx context.Context, in *MkdirRequest, opts ...grpc.CallOption) (*MkdirResponse, error)
	Remove(ctx context.Context, in *RemoveRequest, opts ...grpc.CallOption) (*RemoveResponse, error)
	Rmdir(ctx context.Context, in *RmdirRequest, opts ...grpc.CallOption) (*RmdirResponse, error)
	Rename(ctx context.Context, in *RenameRequest, opts ...grpc.CallOption) (*RenameResponse, error)
	ReadDir(ctx context.Context, in *ReadDirRequest, opts ...grpc.CallOption) (*ReadDirResponse, error)
	Commit(ctx context.Context, in *CommitRequest, opts ...grpc.CallOption) (*CommitResponse, error)
}

type nfsServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewNFSServiceClient returns a client stub. Every call is sent with the
// package's json codec.
func NewNFSServiceClient(cc grpc.ClientConnInterface) NFSServiceClient {
	return &nfsServiceClient{cc}
}

func (c *nfsServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *nfsServiceClient) Null(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.invoke(ctx, NFSService_Null_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nfsServiceClient) Mount(ctx context.Context, in *MountRequest, opts ...grpc.CallOption) (*MountResponse, error) {
	out := new(MountResponse)
	if err := c.invoke(ctx, NFSService_Mount_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nfsServiceClient) GetAttr(ctx context.Context, in *GetAttrRequest, opts ...grpc.CallOption) (*GetAttrResponse, error) {
	out := new(GetAttrResponse)
	if err := c.invoke(ctx, NFSService_GetAttr_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nfsServiceClient) SetAttr(ctx context.Context, in *SetAttrRequest, opts ...grpc.CallOption) (*SetAttrResponse, error) {
	out := new(SetAttrResponse)
	if err := c.invoke(ctx, NFSService_SetAttr_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nfsServiceClient) Lookup(ctx context.Context, in *LookupRequest, opts ...grpc.CallOption) (*LookupResponse, error) {
	out := new(LookupResponse)
	if err := c.invoke(ctx, NFSService_Lookup_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nfsServiceClient) Readlink(ctx context.Context, in *ReadlinkRequest, opts ...grpc.CallOption) (*ReadlinkResponse, error) {
	out := new(ReadlinkResponse)
	if err := c.invoke(ctx, NFSService_Readlink_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nfsServiceClient) Read(ctx context.Context, in *ReadRequest, opts ...grpc.CallOption) (*ReadResponse, error) {
	out := new(ReadResponse)
	if err := c.invoke(ctx, NFSService_Read_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nfsServiceClient) Write(ctx context.Context, in *WriteRequest, opts ...grpc.CallOption) (*WriteResponse, error) {
	out := new(WriteResponse)
	if err := c.invoke(ctx, NFSService_Write_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nfsServiceClient) Create(ctx context.Context, in *CreateRequest, opts ...grpc.CallOption) (*CreateResponse, error) {
	out := new(CreateResponse)
	if err := c.invoke(ctx, NFSService_Create_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nfsServiceClient) Mkdir(ctx context.Context, in *MkdirRequest, opts ...grpc.CallOption) (*MkdirResponse, error) {
	out := new(MkdirResponse)
	if err := c.invoke(ctx, NFSService_Mkdir_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nfsServiceClient) Remove(ctx context.Context, in *RemoveRequest, opts ...grpc.CallOption) (*RemoveResponse, error) {
	out := new(RemoveResponse)
	if err := c.invoke(ctx, NFSService_Remove_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nfsServiceClient) Rmdir(ctx context.Context, in *RmdirRequest, opts ...grpc.CallOption) (*RmdirResponse, error) {
	out := new(RmdirResponse)
	if err := c.invoke(ctx, NFSService_Rmdir_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nfsServiceClient) Rename(ctx context.Context, in *RenameRequest, opts ...grpc.CallOption) (*RenameResponse, error) {
	out := new(RenameResponse)
	if err := c.invoke(ctx, NFSService_Rename_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nfsServiceClient) ReadDir(ctx context.Context, in *ReadDirRequest, opts ...grpc.CallOption) (*ReadDirResponse, error) {
	out := new(ReadDirResponse)
	if err := c.invoke(ctx, NFSService_ReadDir_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nfsServiceClient) Commit(ctx context.Context, in *CommitRequest, opts ...grpc.CallOption) (*CommitResponse, error) {
	out := new(CommitResponse)
	if err := c.invoke(ctx, NFSService_Commit_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// NFSServiceServer is the server API for NFSService.
type NFSServiceServer interface {
	Null(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	Mount(context.Context, *MountRequest) (*MountResponse, error)
	GetAttr(context.Context, *GetAttrRequest) (*GetAttrResponse, error)
	SetAttr(context.Context, *SetAttrRequest) (*SetAttrResponse, error)
	Lookup(context.Context, *LookupRequest) (*LookupResponse, error)
	Readlink(context.Context, *ReadlinkRequest) (*ReadlinkResponse, error)
	Read(context.Context, *ReadRequest) (*ReadResponse, error)
	Write(context.Context, *WriteRequest) (*WriteResponse, error)
	Create(context.Context, *CreateRequest) (*CreateResponse, error)
	Mkdir(context.Context, *MkdirRequest) (*MkdirResponse, error)
	Remove(context.Context, *RemoveRequest) (*RemoveResponse, error)
	Rmdir(context.Context, *RmdirRequest) (*RmdirResponse, error)
	Rename(context.Context, *RenameRequest) (*RenameResponse, error)
	ReadDir(context.Context, *ReadDirRequest) (*ReadDirResponse, error)
	Commit(context.Context, *CommitRequest) (*CommitResponse, error)
	mustEmbedUnimplementedNFSServiceServer()
}

// UnimplementedNFSServiceServer must be embedded by server implementations.
type UnimplementedNFSServiceServer struct{}

func (UnimplementedNFSServiceServer) Null(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Null not implemented")
}
func (UnimplementedNFSServiceServer) Mount(context.Context, *MountRequest) (*MountResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Mount not implemented")
}
func (UnimplementedNFSServiceServer) GetAttr(context.Context, *GetAttrRequest) (*GetAttrResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetAttr not implemented")
}
func (UnimplementedNFSServiceServer) SetAttr(context.Context, *SetAttrRequest) (*SetAttrResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SetAttr not implemented")
}
func (UnimplementedNFSServiceServer) Lookup(context.Context, *LookupRequest) (*LookupResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Lookup not implemented")
}
func (UnimplementedNFSServiceServer) Readlink(context.Context, *ReadlinkRequest) (*ReadlinkResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Readlink not implemented")
}
func (UnimplementedNFSServiceServer) Read(context.Context, *ReadRequest) (*ReadResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Read not implemented")
}
func (UnimplementedNFSServiceServer) Write(context.Context, *WriteRequest) (*WriteResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Write not implemented")
}
func (UnimplementedNFSServiceServer) Create(context.Context, *CreateRequest) (*CreateResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Create not implemented")
}
func (UnimplementedNFSServiceServer) Mkdir(context.Context, *MkdirRequest) (*MkdirResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Mkdir not implemented")
}
func (UnimplementedNFSServiceServer) Remove(context.Context, *RemoveRequest) (*RemoveResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Remove not implemented")
}
func (UnimplementedNFSServiceServer) Rmdir(context.Context, *RmdirRequest) (*RmdirResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Rmdir not implemented")
}
func (UnimplementedNFSServiceServer) Rename(context.Context, *RenameRequest) (*RenameResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Rename not implemented")
}
func (UnimplementedNFSServiceServer) ReadDir(context.Context, *ReadDirRequest) (*ReadDirResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ReadDir not implemented")
}
func (UnimplementedNFSServiceServer) Commit(context.Context, *CommitRequest) (*CommitResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Commit not implemented")
}
func (UnimplementedNFSServiceServer) mustEmbedUnimplementedNFSServiceServer() {}

// RegisterNFSServiceServer registers srv on s.
func RegisterNFSServiceServer(s grpc.ServiceRegistrar, srv NFSServiceServer) {
	s.RegisterService(&NFSService_ServiceDesc, srv)
}

// unaryHandler adapts a typed server method into a grpc.MethodHandler.
func unaryHandler[Req, Resp any](fullMethod string, call func(NFSServiceServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(NFSServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(NFSServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// NFSService_ServiceDesc is the grpc.ServiceDesc for NFSService.
var NFSService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*NFSServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Null", Handler: unaryHandler(NFSService_Null_FullMethodName, NFSServiceServer.Null)},
		{MethodName: "Mount", Handler: unaryHandler(NFSService_Mount_FullMethodName, NFSServiceServer.Mount)},
		{MethodName: "GetAttr", Handler: unaryHandler(NFSService_GetAttr_FullMethodName, NFSServiceServer.GetAttr)},
		{MethodName: "SetAttr", Handler: unaryHandler(NFSService_SetAttr_FullMethodName, NFSServiceServer.SetAttr)},
		{MethodName: "Lookup", Handler: unaryHandler(NFSService_Lookup_FullMethodName, NFSServiceServer.Lookup)},
		{MethodName: "Readlink", Handler: unaryHandler(NFSService_Readlink_FullMethodName, NFSServiceServer.Readlink)},
		{MethodName: "Read", Handler: unaryHandler(NFSService_Read_FullMethodName, NFSServiceServer.Read)},
		{MethodName: "Write", Handler: unaryHandler(NFSService_Write_FullMethodName, NFSServiceServer.Write)},
		{MethodName: "Create", Handler: unaryHandler(NFSService_Create_FullMethodName, NFSServiceServer.Create)},
		{MethodName: "Mkdir", Handler: unaryHandler(NFSService_Mkdir_FullMethodName, NFSServiceServer.Mkdir)},
		{MethodName: "Remove", Handler: unaryHandler(NFSService_Remove_FullMethodName, NFSServiceServer.Remove)},
		{MethodName: "Rmdir", Handler: unaryHandler(NFSService_Rmdir_FullMethodName, NFSServiceServer.Rmdir)},
		{MethodName: "Rename", Handler: unaryHandler(NFSService_Rename_FullMethodName, NFSServiceServer.Rename)},
		{MethodName: "ReadDir", Handler: unaryHandler(NFSService_ReadDir_FullMethodName, NFSServiceServer.ReadDir)},
		{MethodName: "Commit", Handler: unaryHandler(NFSService_Commit_FullMethodName, NFSServiceServer.Commit)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nfs.proto",
}
