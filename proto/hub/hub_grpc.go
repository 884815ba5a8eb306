// Package hub describes the origin hub services. Messages are protobuf
// well-known types so the services need no generated message code.
//
// Broadcast.Relay is a bidirectional stream of JSON encoded chat messages
// wrapped in BytesValue. LocalStorage mirrors a browser's localStorage.
// The service definitions live in hub.proto.
package hub

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	Broadcast_Relay_FullMethodName         = "/globalchat.hub.Broadcast/Relay"
	LocalStorage_GetItem_FullMethodName    = "/globalchat.hub.LocalStorage/GetItem"
	LocalStorage_SetItem_FullMethodName    = "/globalchat.hub.LocalStorage/SetItem"
	LocalStorage_RemoveItem_FullMethodName = "/globalchat.hub.LocalStorage/RemoveItem"
	TopicMetadataKey                       = "x-broadcast-topic"
	ItemKeyField                           = "key"
	ItemValueField                         = "value"
)

type BroadcastClient interface {
	Relay(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[wrapperspb.BytesValue, wrapperspb.BytesValue], error)
}

type broadcastClient struct {
	cc grpc.ClientConnInterface
}

func NewBroadcastClient(cc grpc.ClientConnInterface) BroadcastClient {
	return &broadcastClient{cc}
}

func (c *broadcastClient) Relay(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[wrapperspb.BytesValue, wrapperspb.BytesValue], error) {
	stream, err := c.cc.NewStream(ctx, &Broadcast_ServiceDesc.Streams[0], Broadcast_Relay_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[wrapperspb.BytesValue, wrapperspb.BytesValue]{ClientStream: stream}, nil
}

type BroadcastServer interface {
	Relay(grpc.BidiStreamingServer[wrapperspb.BytesValue, wrapperspb.BytesValue]) error
}

type UnimplementedBroadcastServer struct{}

func (UnimplementedBroadcastServer) Relay(grpc.BidiStreamingServer[wrapperspb.BytesValue, wrapperspb.BytesValue]) error {
	return status.Error(codes.Unimplemented, "method Relay not implemented")
}

func RegisterBroadcastServer(s grpc.ServiceRegistrar, srv BroadcastServer) {
	s.RegisterService(&Broadcast_ServiceDesc, srv)
}

func _Broadcast_Relay_Handler(srv any, stream grpc.ServerStream) error {
	return srv.(BroadcastServer).Relay(&grpc.GenericServerStream[wrapperspb.BytesValue, wrapperspb.BytesValue]{ServerStream: stream})
}

var Broadcast_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "globalchat.hub.Broadcast",
	HandlerType: (*BroadcastServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Relay",
			Handler:       _Broadcast_Relay_Handler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "hub.proto",
}

type LocalStorageClient interface {
	GetItem(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	SetItem(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	RemoveItem(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type localStorageClient struct {
	cc grpc.ClientConnInterface
}

func NewLocalStorageClient(cc grpc.ClientConnInterface) LocalStorageClient {
	return &localStorageClient{cc}
}

func (c *localStorageClient) GetItem(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, LocalStorage_GetItem_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *localStorageClient) SetItem(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, LocalStorage_SetItem_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *localStorageClient) RemoveItem(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, LocalStorage_RemoveItem_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// LocalStorageServer answers codes.NotFound from GetItem when the key is absent.
type LocalStorageServer interface {
	GetItem(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	SetItem(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	RemoveItem(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
}

type UnimplementedLocalStorageServer struct{}

func (UnimplementedLocalStorageServer) GetItem(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method GetItem not implemented")
}

func (UnimplementedLocalStorageServer) SetItem(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SetItem not implemented")
}

func (UnimplementedLocalStorageServer) RemoveItem(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method RemoveItem not implemented")
}

func RegisterLocalStorageServer(s grpc.ServiceRegistrar, srv LocalStorageServer) {
	s.RegisterService(&LocalStorage_ServiceDesc, srv)
}

func _LocalStorage_GetItem_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LocalStorageServer).GetItem(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: LocalStorage_GetItem_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LocalStorageServer).GetItem(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _LocalStorage_SetItem_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LocalStorageServer).SetItem(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: LocalStorage_SetItem_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LocalStorageServer).SetItem(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _LocalStorage_RemoveItem_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LocalStorageServer).RemoveItem(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: LocalStorage_RemoveItem_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LocalStorageServer).RemoveItem(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

var LocalStorage_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "globalchat.hub.LocalStorage",
	HandlerType: (*LocalStorageServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetItem", Handler: _LocalStorage_GetItem_Handler},
		{MethodName: "SetItem", Handler: _LocalStorage_SetItem_Handler},
		{MethodName: "RemoveItem", Handler: _LocalStorage_RemoveItem_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hub.proto",
}
