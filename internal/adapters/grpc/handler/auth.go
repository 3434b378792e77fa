package handler

import (
	"context"

	"github.com/ogurasousui/pin-roster/internal/core/auth"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// AuthGrpcHandler は AuthService の gRPC 実装です。
type AuthGrpcHandler struct {
	svc auth.UseCase
}

var _ AuthServiceServer = (*AuthGrpcHandler)(nil)

// NewAuthGrpcHandler は AuthGrpcHandler を生成します。
func NewAuthGrpcHandler(svc auth.UseCase) *AuthGrpcHandler {
	return &AuthGrpcHandler{svc: svc}
}

// Login は資格情報を照合します。
func (h *AuthGrpcHandler) Login(_ context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error) {
	return wrapperspb.Bool(h.svc.Login(stringField(req, "username"), stringField(req, "password"))), nil
}

// Logout はログイン状態を解除します。
func (h *AuthGrpcHandler) Logout(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	h.svc.Logout()
	return &emptypb.Empty{}, nil
}

// Register は利用者を追加します。既存の利用者名や空欄の場合は false です。
func (h *AuthGrpcHandler) Register(_ context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error) {
	return wrapperspb.Bool(h.svc.Register(stringField(req, "username"), stringField(req, "password"))), nil
}

// EditUser はパスワードを変更します。
func (h *AuthGrpcHandler) EditUser(_ context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	if err := h.svc.EditUser(stringField(req, "username"), stringField(req, "password")); err != nil {
		return nil, toStatusError(err)
	}
	return &emptypb.Empty{}, nil
}

// DeleteUser は利用者を削除します。
func (h *AuthGrpcHandler) DeleteUser(_ context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := h.svc.DeleteUser(req.GetValue()); err != nil {
		return nil, toStatusError(err)
	}
	return &emptypb.Empty{}, nil
}

// ListUsers は登録順の利用者名を返します。
func (h *AuthGrpcHandler) ListUsers(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	users := h.svc.Users()
	values := make([]*structpb.Value, 0, len(users))
	for _, u := range users {
		values = append(values, structpb.NewStringValue(u))
	}
	return &structpb.ListValue{Values: values}, nil
}
