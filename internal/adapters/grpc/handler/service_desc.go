package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// サービス名です。メッセージには protobuf の well-known types を使います。
const (
	RosterServiceName = "roster.v1.RosterService"
	LedgerServiceName = "roster.v1.LedgerService"
	AuthServiceName   = "roster.v1.AuthService"
)

// RosterServiceServer は roster.v1.RosterService のサーバー実装です。
type RosterServiceServer interface {
	AddEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteEmployee(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	GetEmployee(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	SearchEmployees(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error)
	ListPositions(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
}

// LedgerServiceServer は roster.v1.LedgerService のサーバー実装です。
type LedgerServiceServer interface {
	RecordScan(context.Context, *wrapperspb.StringValue) (*wrapperspb.Int64Value, error)
	CountFor(context.Context, *wrapperspb.StringValue) (*wrapperspb.Int64Value, error)
	Clear(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	Report(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error)
}

// AuthServiceServer は roster.v1.AuthService のサーバー実装です。
type AuthServiceServer interface {
	Login(context.Context, *structpb.Struct) (*wrapperspb.BoolValue, error)
	Logout(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	Register(context.Context, *structpb.Struct) (*wrapperspb.BoolValue, error)
	EditUser(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	DeleteUser(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	ListUsers(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
}

// RosterService_ServiceDesc は roster.v1.RosterService のサービス定義です。
var RosterService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: RosterServiceName,
	HandlerType: (*RosterServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method(RosterServiceName, "AddEmployee", newMessage[structpb.Struct], RosterServiceServer.AddEmployee),
		method(RosterServiceName, "UpdateEmployee", newMessage[structpb.Struct], RosterServiceServer.UpdateEmployee),
		method(RosterServiceName, "DeleteEmployee", newMessage[wrapperspb.StringValue], RosterServiceServer.DeleteEmployee),
		method(RosterServiceName, "GetEmployee", newMessage[wrapperspb.StringValue], RosterServiceServer.GetEmployee),
		method(RosterServiceName, "SearchEmployees", newMessage[wrapperspb.StringValue], RosterServiceServer.SearchEmployees),
		method(RosterServiceName, "ListPositions", newMessage[emptypb.Empty], RosterServiceServer.ListPositions),
	},
	Streams: []grpc.StreamDesc{},
}

// LedgerService_ServiceDesc は roster.v1.LedgerService のサービス定義です。
var LedgerService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: LedgerServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method(LedgerServiceName, "RecordScan", newMessage[wrapperspb.StringValue], LedgerServiceServer.RecordScan),
		method(LedgerServiceName, "CountFor", newMessage[wrapperspb.StringValue], LedgerServiceServer.CountFor),
		method(LedgerServiceName, "Clear", newMessage[emptypb.Empty], LedgerServiceServer.Clear),
		method(LedgerServiceName, "Report", newMessage[wrapperspb.StringValue], LedgerServiceServer.Report),
	},
	Streams: []grpc.StreamDesc{},
}

// AuthService_ServiceDesc は roster.v1.AuthService のサービス定義です。
var AuthService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method(AuthServiceName, "Login", newMessage[structpb.Struct], AuthServiceServer.Login),
		method(AuthServiceName, "Logout", newMessage[emptypb.Empty], AuthServiceServer.Logout),
		method(AuthServiceName, "Register", newMessage[structpb.Struct], AuthServiceServer.Register),
		method(AuthServiceName, "EditUser", newMessage[structpb.Struct], AuthServiceServer.EditUser),
		method(AuthServiceName, "DeleteUser", newMessage[wrapperspb.StringValue], AuthServiceServer.DeleteUser),
		method(AuthServiceName, "ListUsers", newMessage[emptypb.Empty], AuthServiceServer.ListUsers),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterRosterServiceServer は RosterService を登録します。
func RegisterRosterServiceServer(s grpc.ServiceRegistrar, srv RosterServiceServer) {
	s.RegisterService(&RosterService_ServiceDesc, srv)
}

// RegisterLedgerServiceServer は LedgerService を登録します。
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerService_ServiceDesc, srv)
}

// RegisterAuthServiceServer は AuthService を登録します。
func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthService_ServiceDesc, srv)
}

// FullMethod は "/service/method" 形式のメソッド名を返します。
func FullMethod(service, name string) string {
	return "/" + service + "/" + name
}

func newMessage[T any]() *T {
	return new(T)
}

func method[S any, Req proto.Message, Resp proto.Message](service, name string, newReq func() Req, call func(S, context.Context, Req) (Resp, error)) grpc.MethodDesc {
	fullMethod := FullMethod(service, name)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
