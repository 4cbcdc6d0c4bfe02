package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "campusroutine.v1.RoutineService"

const (
	MethodPing            = "/" + ServiceName + "/Ping"
	MethodCheckForUpdates = "/" + ServiceName + "/CheckForUpdates"
	MethodFetchLatest     = "/" + ServiceName + "/FetchLatest"
	MethodMetadataVersion = "/" + ServiceName + "/MetadataVersion"
	MethodMaintenance     = "/" + ServiceName + "/Maintenance"
	MethodPublish         = "/" + ServiceName + "/Publish"
	MethodDelete          = "/" + ServiceName + "/Delete"
	MethodSetMaintenance  = "/" + ServiceName + "/SetMaintenance"
)

// AdminMethods need an admin access token.
var AdminMethods = map[string]bool{
	MethodPublish:        true,
	MethodDelete:         true,
	MethodSetMaintenance: true,
}

// RoutineServer is implemented by the backend.
type RoutineServer interface {
	Ping(ctx context.Context, in *emptypb.Empty) (*wrapperspb.StringValue, error)
	// CheckForUpdates takes an encoded CheckRequest.
	CheckForUpdates(ctx context.Context, in *structpb.Struct) (*wrapperspb.BoolValue, error)
	// FetchLatest takes a department and returns an encoded models.Schedule.
	FetchLatest(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
	MetadataVersion(ctx context.Context, in *emptypb.Empty) (*wrapperspb.Int64Value, error)
	// Maintenance returns an encoded models.MaintenanceInfo.
	Maintenance(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	// Publish takes an encoded PublishRequest and returns the stamped version.
	Publish(ctx context.Context, in *structpb.Struct) (*wrapperspb.Int64Value, error)
	Delete(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.Int64Value, error)
	SetMaintenance(ctx context.Context, in *structpb.Struct) (*wrapperspb.Int64Value, error)
}

func handler(method string, newIn func() any, call func(RoutineServer, context.Context, any) (any, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newIn()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RoutineServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(RoutineServer), ctx, req)
		})
	}
}

func newEmpty() any  { return new(emptypb.Empty) }
func newString() any { return new(wrapperspb.StringValue) }
func newStruct() any { return new(structpb.Struct) }

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RoutineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: handler(MethodPing, newEmpty,
			func(s RoutineServer, ctx context.Context, in any) (any, error) { return s.Ping(ctx, in.(*emptypb.Empty)) })},
		{MethodName: "CheckForUpdates", Handler: handler(MethodCheckForUpdates, newStruct,
			func(s RoutineServer, ctx context.Context, in any) (any, error) {
				return s.CheckForUpdates(ctx, in.(*structpb.Struct))
			})},
		{MethodName: "FetchLatest", Handler: handler(MethodFetchLatest, newString,
			func(s RoutineServer, ctx context.Context, in any) (any, error) {
				return s.FetchLatest(ctx, in.(*wrapperspb.StringValue))
			})},
		{MethodName: "MetadataVersion", Handler: handler(MethodMetadataVersion, newEmpty,
			func(s RoutineServer, ctx context.Context, in any) (any, error) {
				return s.MetadataVersion(ctx, in.(*emptypb.Empty))
			})},
		{MethodName: "Maintenance", Handler: handler(MethodMaintenance, newEmpty,
			func(s RoutineServer, ctx context.Context, in any) (any, error) {
				return s.Maintenance(ctx, in.(*emptypb.Empty))
			})},
		{MethodName: "Publish", Handler: handler(MethodPublish, newStruct,
			func(s RoutineServer, ctx context.Context, in any) (any, error) {
				return s.Publish(ctx, in.(*structpb.Struct))
			})},
		{MethodName: "Delete", Handler: handler(MethodDelete, newString,
			func(s RoutineServer, ctx context.Context, in any) (any, error) {
				return s.Delete(ctx, in.(*wrapperspb.StringValue))
			})},
		{MethodName: "SetMaintenance", Handler: handler(MethodSetMaintenance, newStruct,
			func(s RoutineServer, ctx context.Context, in any) (any, error) {
				return s.SetMaintenance(ctx, in.(*structpb.Struct))
			})},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "campusroutine/v1/routine.proto",
}

func RegisterRoutineServer(s grpc.ServiceRegistrar, srv RoutineServer) {
	s.RegisterService(&ServiceDesc, srv)
}
