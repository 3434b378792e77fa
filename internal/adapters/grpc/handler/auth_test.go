package handler

import (
	"context"
	"testing"

	"github.com/ogurasousui/pin-roster/internal/core/auth"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestAuthGrpcHandler_Flow(t *testing.T) {
	t.Parallel()

	handler := NewAuthGrpcHandler(auth.NewService())
	ctx := context.Background()

	ok, err := handler.Login(ctx, mustStruct(t, map[string]any{"username": "admin", "password": "121314"}))
	if err != nil || !ok.GetValue() {
		t.Fatalf("expected seeded admin to log in, got %v %v", ok, err)
	}

	ok, _ = handler.Login(ctx, mustStruct(t, map[string]any{"username": "admin", "password": "wrong"}))
	if ok.GetValue() {
		t.Fatal("expected wrong password to be rejected")
	}

	ok, _ = handler.Register(ctx, mustStruct(t, map[string]any{"username": "maria", "password": "pw"}))
	if !ok.GetValue() {
		t.Fatal("expected registration to succeed")
	}
	ok, _ = handler.Register(ctx, mustStruct(t, map[string]any{"username": "maria", "password": "other"}))
	if ok.GetValue() {
		t.Fatal("expected duplicate registration to fail")
	}

	if _, err := handler.EditUser(ctx, mustStruct(t, map[string]any{"username": "maria", "password": "new"})); err != nil {
		t.Fatalf("EditUser returned error: %v", err)
	}
	if _, err := handler.EditUser(ctx, mustStruct(t, map[string]any{"username": "nobody", "password": "x"})); status.Code(err) != codes.NotFound {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := handler.EditUser(ctx, mustStruct(t, map[string]any{"username": "maria", "password": " "})); status.Code(err) != codes.InvalidArgument {
		t.Errorf("expected invalid argument, got %v", err)
	}

	users, err := handler.ListUsers(ctx, &emptypb.Empty{})
	if err != nil {
		t.Fatalf("ListUsers returned error: %v", err)
	}
	if len(users.GetValues()) != 2 || users.GetValues()[1].GetStringValue() != "maria" {
		t.Fatalf("unexpected users: %v", users)
	}

	if _, err := handler.DeleteUser(ctx, wrapperspb.String("maria")); err != nil {
		t.Fatalf("DeleteUser returned error: %v", err)
	}
	if _, err := handler.DeleteUser(ctx, wrapperspb.String("maria")); status.Code(err) != codes.NotFound {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}

func TestAuthGrpcHandler_Logout(t *testing.T) {
	t.Parallel()

	svc := auth.NewService()
	handler := NewAuthGrpcHandler(svc)
	ctx := context.Background()

	if ok, _ := handler.Login(ctx, mustStruct(t, map[string]any{"username": "admin", "password": "121314"})); !ok.GetValue() {
		t.Fatal("expected seeded admin to log in")
	}
	if _, err := handler.Logout(ctx, &emptypb.Empty{}); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, ok := svc.CurrentUser(); ok {
		t.Fatal("expected no current user after logout")
	}
}
