package handler

import (
	"context"
	"strings"

	"github.com/ogurasousui/pin-roster/internal/core/employee"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// RosterGrpcHandler は RosterService の gRPC 実装です。
type RosterGrpcHandler struct {
	svc employee.UseCase
}

var _ RosterServiceServer = (*RosterGrpcHandler)(nil)

// NewRosterGrpcHandler は RosterGrpcHandler を生成します。
func NewRosterGrpcHandler(svc employee.UseCase) *RosterGrpcHandler {
	return &RosterGrpcHandler{svc: svc}
}

// AddEmployee は社員を登録し PIN を払い出します。
func (h *RosterGrpcHandler) AddEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	created, err := h.svc.AddEmployee(ctx, employee.AddEmployeeInput{
		Name:     stringField(req, "name"),
		Position: employee.Position(stringField(req, "position")),
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toProtoEmployee(created), nil
}

// UpdateEmployee は社員の氏名と役職を更新します。PIN は変わりません。
func (h *RosterGrpcHandler) UpdateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if strings.TrimSpace(stringField(req, "id")) == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	updated, err := h.svc.UpdateEmployee(ctx, employee.UpdateEmployeeInput{
		ID:       stringField(req, "id"),
		Name:     stringField(req, "name"),
		Position: employee.Position(stringField(req, "position")),
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toProtoEmployee(updated), nil
}

// DeleteEmployee は社員を削除します。
func (h *RosterGrpcHandler) DeleteEmployee(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := h.svc.DeleteEmployee(ctx, employee.DeleteEmployeeInput{ID: req.GetValue()}); err != nil {
		return nil, toStatusError(err)
	}
	return &emptypb.Empty{}, nil
}

// GetEmployee は ID で社員を取得します。
func (h *RosterGrpcHandler) GetEmployee(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	found, err := h.svc.GetEmployee(ctx, employee.GetEmployeeInput{ID: req.GetValue()})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toProtoEmployee(found), nil
}

// SearchEmployees は氏名の部分一致で社員を検索します。空文字は全件です。
func (h *RosterGrpcHandler) SearchEmployees(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	employees, err := h.svc.SearchEmployees(ctx, employee.SearchEmployeesInput{Query: req.GetValue()})
	if err != nil {
		return nil, toStatusError(err)
	}

	values := make([]*structpb.Value, 0, len(employees))
	for _, e := range employees {
		values = append(values, structpb.NewStructValue(toProtoEmployee(e)))
	}
	return &structpb.ListValue{Values: values}, nil
}

// ListPositions は選択可能な役職を表示順で返します。
func (h *RosterGrpcHandler) ListPositions(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	positions := employee.Positions()
	values := make([]*structpb.Value, 0, len(positions))
	for _, p := range positions {
		values = append(values, structpb.NewStringValue(string(p)))
	}
	return &structpb.ListValue{Values: values}, nil
}

func toProtoEmployee(e *employee.Employee) *structpb.Struct {
	if e == nil {
		return &structpb.Struct{Fields: map[string]*structpb.Value{}}
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":       structpb.NewStringValue(e.ID),
		"name":     structpb.NewStringValue(e.Name),
		"position": structpb.NewStringValue(string(e.Position)),
		"code":     structpb.NewStringValue(e.Code),
	}}
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}
