package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/campusroutine/internal/common"
	"github.com/dmitrijs2005/campusroutine/internal/models"
	"github.com/dmitrijs2005/campusroutine/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      *rpc.RoutineClient

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	s.mu.RLock()
	token := s.accessToken
	s.mu.RUnlock()

	if token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient creates a client for endpointURL. Extra dial options are
// appended to the defaults (insecure transport, token interceptor).
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = rpc.NewRoutineClient(conn)
	return c, nil
}

// SetAccessToken sets the bearer sent with every call; admin calls need one.
func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx)
	if err != nil {
		return s.mapError(err)
	}
	if resp != "OK" {
		return common.ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) CheckForUpdates(ctx context.Context, department string, since int64) (bool, error) {
	ok, err := s.client.CheckForUpdates(ctx, department, since)
	if err != nil {
		return false, s.mapError(err)
	}
	return ok, nil
}

func (s *GRPCClient) FetchLatest(ctx context.Context, department string) (*models.Schedule, error) {
	sch, err := s.client.FetchLatest(ctx, department)
	if err != nil {
		return nil, s.mapError(err)
	}
	return sch, nil
}

func (s *GRPCClient) MetadataVersion(ctx context.Context) (int64, error) {
	v, err := s.client.MetadataVersion(ctx)
	if err != nil {
		return 0, s.mapError(err)
	}
	return v, nil
}

func (s *GRPCClient) Maintenance(ctx context.Context) (models.MaintenanceInfo, error) {
	info, err := s.client.Maintenance(ctx)
	if err != nil {
		return models.MaintenanceInfo{}, s.mapError(err)
	}
	return info, nil
}

func (s *GRPCClient) Publish(ctx context.Context, sch *models.Schedule, updateType string) (int64, error) {
	v, err := s.client.Publish(ctx, rpc.PublishRequest{Schedule: sch, UpdateType: updateType})
	if err != nil {
		return 0, s.mapError(err)
	}
	return v, nil
}

func (s *GRPCClient) Delete(ctx context.Context, department string) (int64, error) {
	v, err := s.client.Delete(ctx, department)
	if err != nil {
		return 0, s.mapError(err)
	}
	return v, nil
}

func (s *GRPCClient) SetMaintenance(ctx context.Context, info models.MaintenanceInfo) (int64, error) {
	v, err := s.client.SetMaintenance(ctx, info)
	if err != nil {
		return 0, s.mapError(err)
	}
	return v, nil
}

// mapError turns gRPC statuses into the sentinel errors the sync layer
// branches on. Anything unrecognised counts as transient.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.NotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, st.Message())
	case codes.Unauthenticated, codes.PermissionDenied:
		return common.ErrUnauthorized
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrValidation, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return common.ErrUnavailable
	default:
		return fmt.Errorf("%w: rpc error: %v", common.ErrUnavailable, err)
	}
}
