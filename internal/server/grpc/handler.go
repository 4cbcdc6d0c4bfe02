package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/campusroutine/internal/common"
	"github.com/dmitrijs2005/campusroutine/internal/models"
	"github.com/dmitrijs2005/campusroutine/internal/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// toStatus maps service errors onto gRPC codes the client understands.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, "invalid token")
	case errors.Is(err, common.ErrUnauthorized):
		return status.Error(codes.PermissionDenied, "admin role required")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func (s *GRPCServer) fail(ctx context.Context, op string, err error) error {
	if !errors.Is(err, common.ErrNotFound) && !errors.Is(err, common.ErrValidation) {
		s.logger.Error(ctx, op+" failed", "error", err)
	}
	return toStatus(err)
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String("OK"), nil
}

func (s *GRPCServer) CheckForUpdates(ctx context.Context, in *structpb.Struct) (*wrapperspb.BoolValue, error) {
	var req rpc.CheckRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	ok, err := s.routines.CheckForUpdates(ctx, req.Department, req.Since)
	if err != nil {
		return nil, s.fail(ctx, "check for updates", err)
	}
	return wrapperspb.Bool(ok), nil
}

func (s *GRPCServer) FetchLatest(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	sch, err := s.routines.FetchLatest(ctx, in.GetValue())
	if err != nil {
		return nil, s.fail(ctx, "fetch latest", err)
	}
	out, err := rpc.Encode(sch)
	if err != nil {
		return nil, s.fail(ctx, "fetch latest", err)
	}
	return out, nil
}

func (s *GRPCServer) MetadataVersion(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	v, err := s.routines.MetadataVersion(ctx)
	if err != nil {
		return nil, s.fail(ctx, "metadata version", err)
	}
	return wrapperspb.Int64(v), nil
}

func (s *GRPCServer) Maintenance(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	info, err := s.routines.Maintenance(ctx)
	if err != nil {
		return nil, s.fail(ctx, "maintenance", err)
	}
	return rpc.Encode(info)
}

func (s *GRPCServer) Publish(ctx context.Context, in *structpb.Struct) (*wrapperspb.Int64Value, error) {
	var req rpc.PublishRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	v, err := s.routines.Publish(ctx, req.Schedule, req.UpdateType)
	if err != nil {
		return nil, s.fail(ctx, "publish", err)
	}
	s.logger.Info(ctx, "Published", "department", req.Schedule.Department, "version", v, "by", ctx.Value(SubjectKey))
	return wrapperspb.Int64(v), nil
}

func (s *GRPCServer) Delete(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.Int64Value, error) {
	v, err := s.routines.Delete(ctx, in.GetValue())
	if err != nil {
		return nil, s.fail(ctx, "delete", err)
	}
	s.logger.Info(ctx, "Deleted", "department", in.GetValue(), "version", v, "by", ctx.Value(SubjectKey))
	return wrapperspb.Int64(v), nil
}

func (s *GRPCServer) SetMaintenance(ctx context.Context, in *structpb.Struct) (*wrapperspb.Int64Value, error) {
	var info models.MaintenanceInfo
	if err := rpc.Decode(in, &info); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	v, err := s.routines.SetMaintenance(ctx, info)
	if err != nil {
		return nil, s.fail(ctx, "set maintenance", err)
	}
	return wrapperspb.Int64(v), nil
}
