package client

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/dmitrijs2005/campusroutine/internal/common"
	"github.com/dmitrijs2005/campusroutine/internal/models"
	"github.com/dmitrijs2005/campusroutine/internal/rpc"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type fakeServer struct {
	rpc.RoutineServer

	pingStatus string
	fetchErr   error
	metaVer    int64
	lastToken  string
}

func (f *fakeServer) Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(f.pingStatus), nil
}

func (f *fakeServer) CheckForUpdates(_ context.Context, in *structpb.Struct) (*wrapperspb.BoolValue, error) {
	var req rpc.CheckRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, err
	}
	return wrapperspb.Bool(req.Since < f.metaVer), nil
}

func (f *fakeServer) FetchLatest(_ context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return rpc.Encode(models.Schedule{Department: in.GetValue(), Version: 3})
}

func (f *fakeServer) MetadataVersion(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	return wrapperspb.Int64(f.metaVer), nil
}

func (f *fakeServer) Maintenance(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return rpc.Encode(models.MaintenanceInfo{MaintenanceMode: true, Message: "exam week", Version: f.metaVer})
}

func (f *fakeServer) Delete(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.Int64Value, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	if v := md.Get(common.AccessTokenHeaderName); len(v) > 0 {
		f.lastToken = v[0]
	}
	if f.lastToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	return wrapperspb.Int64(f.metaVer + 1), nil
}

func newTestClient(t *testing.T, srv rpc.RoutineServer) *GRPCClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	rpc.RegisterRoutineServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	c, err := NewGRPCClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestGRPCClient_ReadPath(t *testing.T) {
	fake := &fakeServer{pingStatus: "OK", metaVer: 20}
	c := newTestClient(t, fake)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	flagged, err := c.CheckForUpdates(ctx, "CSE", 10)
	require.NoError(t, err)
	require.True(t, flagged)

	flagged, err = c.CheckForUpdates(ctx, "CSE", 20)
	require.NoError(t, err)
	require.False(t, flagged)

	s, err := c.FetchLatest(ctx, "CSE")
	require.NoError(t, err)
	require.Equal(t, "CSE", s.Department)

	v, err := c.MetadataVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(20), v)

	info, err := c.Maintenance(ctx)
	require.NoError(t, err)
	require.True(t, info.MaintenanceMode)
	require.Equal(t, "exam week", info.Message)
}

func TestGRPCClient_PingNotOK(t *testing.T) {
	c := newTestClient(t, &fakeServer{pingStatus: "DEGRADED"})
	require.ErrorIs(t, c.Ping(context.Background()), common.ErrUnavailable)
}

func TestGRPCClient_FetchLatestNotFound(t *testing.T) {
	c := newTestClient(t, &fakeServer{fetchErr: status.Error(codes.NotFound, "no routine documents found")})

	_, err := c.FetchLatest(context.Background(), "EEE")
	require.ErrorIs(t, err, common.ErrNotFound)
	require.NotErrorIs(t, err, common.ErrUnavailable)
}

func TestGRPCClient_AccessTokenIsSent(t *testing.T) {
	fake := &fakeServer{metaVer: 4}
	c := newTestClient(t, fake)
	ctx := context.Background()

	_, err := c.Delete(ctx, "CSE")
	require.ErrorIs(t, err, common.ErrUnauthorized)

	c.SetAccessToken("admin-token")
	v, err := c.Delete(ctx, "CSE")
	require.NoError(t, err)
	require.Equal(t, int64(5), v)
	require.Equal(t, "admin-token", fake.lastToken)
}

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	require.NoError(t, c.mapError(nil))
	require.ErrorIs(t, c.mapError(status.Error(codes.NotFound, "x")), common.ErrNotFound)
	require.ErrorIs(t, c.mapError(status.Error(codes.PermissionDenied, "x")), common.ErrUnauthorized)
	require.ErrorIs(t, c.mapError(status.Error(codes.InvalidArgument, "x")), common.ErrValidation)
	require.ErrorIs(t, c.mapError(status.Error(codes.DeadlineExceeded, "x")), common.ErrUnavailable)
	require.ErrorIs(t, c.mapError(status.Error(codes.Internal, "x")), common.ErrUnavailable)
	require.ErrorIs(t, c.mapError(errors.New("plain")), common.ErrUnavailable)
}

func TestWithAccessToken_ReplacesExisting(t *testing.T) {
	ctx := metadata.NewOutgoingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, "old", "x-other", "1"))
	ctx = withAccessToken(ctx, "new")

	md, ok := metadata.FromOutgoingContext(ctx)
	require.True(t, ok)
	require.Equal(t, []string{"new"}, md.Get(common.AccessTokenHeaderName))
	require.Equal(t, []string{"1"}, md.Get("x-other"))
}
