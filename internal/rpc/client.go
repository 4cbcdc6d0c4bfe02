package rpc

import (
	"context"

	"github.com/dmitrijs2005/campusroutine/internal/models"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// RoutineClient is a typed stub over a gRPC connection.
type RoutineClient struct {
	cc grpc.ClientConnInterface
}

func NewRoutineClient(cc grpc.ClientConnInterface) *RoutineClient {
	return &RoutineClient{cc: cc}
}

func (c *RoutineClient) Ping(ctx context.Context, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, MethodPing, &emptypb.Empty{}, out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

func (c *RoutineClient) CheckForUpdates(ctx context.Context, department string, since int64, opts ...grpc.CallOption) (bool, error) {
	in, err := Encode(CheckRequest{Department: department, Since: since})
	if err != nil {
		return false, err
	}
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, MethodCheckForUpdates, in, out, opts...); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

func (c *RoutineClient) FetchLatest(ctx context.Context, department string, opts ...grpc.CallOption) (*models.Schedule, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodFetchLatest, wrapperspb.String(department), out, opts...); err != nil {
		return nil, err
	}
	var s models.Schedule
	if err := Decode(out, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *RoutineClient) MetadataVersion(ctx context.Context, opts ...grpc.CallOption) (int64, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, MethodMetadataVersion, &emptypb.Empty{}, out, opts...); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

func (c *RoutineClient) Maintenance(ctx context.Context, opts ...grpc.CallOption) (models.MaintenanceInfo, error) {
	var info models.MaintenanceInfo
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodMaintenance, &emptypb.Empty{}, out, opts...); err != nil {
		return info, err
	}
	err := Decode(out, &info)
	return info, err
}

func (c *RoutineClient) Publish(ctx context.Context, req PublishRequest, opts ...grpc.CallOption) (int64, error) {
	in, err := Encode(req)
	if err != nil {
		return 0, err
	}
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, MethodPublish, in, out, opts...); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

func (c *RoutineClient) Delete(ctx context.Context, department string, opts ...grpc.CallOption) (int64, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, MethodDelete, wrapperspb.String(department), out, opts...); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

func (c *RoutineClient) SetMaintenance(ctx context.Context, info models.MaintenanceInfo, opts ...grpc.CallOption) (int64, error) {
	in, err := Encode(info)
	if err != nil {
		return 0, err
	}
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, MethodSetMaintenance, in, out, opts...); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}
