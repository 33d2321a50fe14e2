package gameserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the full name of the game service.
const ServiceName = "yspahan.v1.GameService"

// Messages are structpb.Struct values. The fields each method reads and
// writes are listed on the server methods.

// GameServiceServer is the server side of yspahan.v1.GameService.
type GameServiceServer interface {
	CreateGame(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LoadGame(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitMove(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetState(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LegalMoves(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RobotMove(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Undo(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Verify(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WatchGame(*structpb.Struct, GameService_WatchGameServer) error
}

// GameService_WatchGameServer is the stream handed to WatchGame.
type GameService_WatchGameServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type watchGameServer struct {
	grpc.ServerStream
}

func (x *watchGameServer) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

func unaryHandler(method string, call func(GameServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(GameServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + method,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(GameServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchGameHandler(srv interface{}, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(GameServiceServer).WatchGame(in, &watchGameServer{stream})
}

// GameService_ServiceDesc describes yspahan.v1.GameService for
// grpc.Server.RegisterService.
var GameService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GameServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("CreateGame", GameServiceServer.CreateGame),
		unaryHandler("LoadGame", GameServiceServer.LoadGame),
		unaryHandler("SubmitMove", GameServiceServer.SubmitMove),
		unaryHandler("GetState", GameServiceServer.GetState),
		unaryHandler("LegalMoves", GameServiceServer.LegalMoves),
		unaryHandler("RobotMove", GameServiceServer.RobotMove),
		unaryHandler("Undo", GameServiceServer.Undo),
		unaryHandler("Verify", GameServiceServer.Verify),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchGame",
			Handler:       watchGameHandler,
			ServerStreams: true,
		},
	},
	Metadata: "yspahan/v1/game.proto",
}

// RegisterGameServiceServer registers srv on s.
func RegisterGameServiceServer(s grpc.ServiceRegistrar, srv GameServiceServer) {
	s.RegisterService(&GameService_ServiceDesc, srv)
}

// GameServiceClient is the client side of yspahan.v1.GameService.
type GameServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewGameServiceClient(cc grpc.ClientConnInterface) *GameServiceClient {
	return &GameServiceClient{cc: cc}
}

func (c *GameServiceClient) call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GameServiceClient) CreateGame(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "CreateGame", in, opts...)
}

func (c *GameServiceClient) LoadGame(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "LoadGame", in, opts...)
}

func (c *GameServiceClient) SubmitMove(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "SubmitMove", in, opts...)
}

func (c *GameServiceClient) GetState(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "GetState", in, opts...)
}

func (c *GameServiceClient) LegalMoves(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "LegalMoves", in, opts...)
}

func (c *GameServiceClient) RobotMove(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "RobotMove", in, opts...)
}

func (c *GameServiceClient) Undo(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "Undo", in, opts...)
}

func (c *GameServiceClient) Verify(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "Verify", in, opts...)
}

// WatchGameClient receives event frames.
type WatchGameClient interface {
	Recv() (*structpb.Struct, error)
	grpc.ClientStream
}

type watchGameClient struct {
	grpc.ClientStream
}

func (x *watchGameClient) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *GameServiceClient) WatchGame(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (WatchGameClient, error) {
	stream, err := c.cc.NewStream(ctx, &GameService_ServiceDesc.Streams[0], "/"+ServiceName+"/WatchGame", opts...)
	if err != nil {
		return nil, err
	}
	x := &watchGameClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
