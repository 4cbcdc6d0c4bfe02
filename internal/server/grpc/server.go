package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/campusroutine/internal/logging"
	"github.com/dmitrijs2005/campusroutine/internal/models"
	"github.com/dmitrijs2005/campusroutine/internal/rpc"
	"google.golang.org/grpc"
)

// RoutineBackend is the service layer the handlers delegate to.
type RoutineBackend interface {
	FetchLatest(ctx context.Context, department string) (*models.Schedule, error)
	CheckForUpdates(ctx context.Context, department string, since int64) (bool, error)
	MetadataVersion(ctx context.Context) (int64, error)
	Maintenance(ctx context.Context) (models.MaintenanceInfo, error)
	Publish(ctx context.Context, s *models.Schedule, updateType string) (int64, error)
	Delete(ctx context.Context, department string) (int64, error)
	SetMaintenance(ctx context.Context, info models.MaintenanceInfo) (int64, error)
}

type GRPCServer struct {
	address   string
	routines  RoutineBackend
	logger    logging.Logger
	jwtSecret []byte
}

var _ rpc.RoutineServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, routines RoutineBackend, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		routines:  routines,
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.adminInterceptor))
	rpc.RegisterRoutineServer(srv, s)
	return srv
}

// Run listens on the configured address until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis and stops gracefully when ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	return srv.Serve(lis)
}
