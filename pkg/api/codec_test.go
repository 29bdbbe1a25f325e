package api

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
)

func TestCodecEmpty(t *testing.T) {
	c := Codec{}
	assert.Equal(t, "json", c.Name())

	data, err := c.Marshal(&emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	require.NoError(t, c.Unmarshal(data, &emptypb.Empty{}))
}

func TestCodecBinaryPayload(t *testing.T) {
	c := Codec{}
	in := &WriteRequest{FileHandle: []byte{0, 1, 2, 255}, Offset: 7, Data: []byte("\x00\xffbin")}

	data, err := c.Marshal(in)
	require.NoError(t, err)

	out := new(WriteRequest)
	require.NoError(t, c.Unmarshal(data, out))
	assert.Equal(t, in.FileHandle, out.FileHandle)
	assert.Equal(t, in.Data, out.Data)
	assert.Equal(t, uint64(7), out.Offset)
}

func TestCodecRejectsGarbage(t *testing.T) {
	err := Codec{}.Unmarshal([]byte("{not json"), new(GetAttrResponse))
	assert.Error(t, err)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ERR_NOENT", Status_ERR_NOENT.String())
	assert.Equal(t, "Status(4242)", Status(4242).String())
	assert.Equal(t, "DIRECTORY", FileType_DIRECTORY.String())
}

type pingServer struct {
	UnimplementedNFSServiceServer
}

func (pingServer) Null(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, nil
}

func (pingServer) GetAttr(_ context.Context, req *GetAttrRequest) (*GetAttrResponse, error) {
	return &GetAttrResponse{
		Status:     Status_OK,
		Attributes: &FileAttributes{Type: FileType_REGULAR, Size: uint64(len(req.FileHandle))},
	}, nil
}

func TestServiceRoundTrip(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterNFSServiceServer(srv, pingServer{})
	go srv.Serve(lis)
	defer srv.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	c := NewNFSServiceClient(conn)
	ctx := context.Background()

	_, err = c.Null(ctx, &emptypb.Empty{})
	require.NoError(t, err)

	resp, err := c.GetAttr(ctx, &GetAttrRequest{FileHandle: make([]byte, 16)})
	require.NoError(t, err)
	assert.Equal(t, Status_OK, resp.Status)
	assert.Equal(t, FileType_REGULAR, resp.Attributes.Type)
	assert.Equal(t, uint64(16), resp.Attributes.Size)

	_, err = c.Commit(ctx, &CommitRequest{})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}
