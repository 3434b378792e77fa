package handler

import (
	"context"

	"github.com/ogurasousui/pin-roster/internal/core/ledger"
	"github.com/ogurasousui/pin-roster/internal/core/report"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Reporter は名簿とスキャン回数の突き合わせ結果を提供します。
type Reporter interface {
	Snapshot(ctx context.Context, query string) ([]report.Entry, error)
}

// LedgerGrpcHandler は LedgerService の gRPC 実装です。
type LedgerGrpcHandler struct {
	svc      ledger.UseCase
	reporter Reporter
}

var _ LedgerServiceServer = (*LedgerGrpcHandler)(nil)

// NewLedgerGrpcHandler は LedgerGrpcHandler を生成します。
func NewLedgerGrpcHandler(svc ledger.UseCase, reporter Reporter) *LedgerGrpcHandler {
	return &LedgerGrpcHandler{svc: svc, reporter: reporter}
}

// RecordScan は PIN のスキャンを 1 回記録し、記録後の回数を返します。
func (h *LedgerGrpcHandler) RecordScan(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.Int64Value, error) {
	count, err := h.svc.RecordScan(ctx, req.GetValue())
	if err != nil {
		return nil, toStatusError(err)
	}
	return wrapperspb.Int64(int64(count)), nil
}

// CountFor は PIN のスキャン回数を返します。未記録の PIN は 0 です。
func (h *LedgerGrpcHandler) CountFor(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.Int64Value, error) {
	return wrapperspb.Int64(int64(h.svc.CountFor(ctx, req.GetValue()))), nil
}

// Clear は全てのスキャン記録を消去します。
func (h *LedgerGrpcHandler) Clear(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := h.svc.Clear(ctx); err != nil {
		return nil, toStatusError(err)
	}
	return &emptypb.Empty{}, nil
}

// Report は検索に一致する社員をスキャン回数付きで返します。
func (h *LedgerGrpcHandler) Report(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	entries, err := h.reporter.Snapshot(ctx, req.GetValue())
	if err != nil {
		return nil, toStatusError(err)
	}

	values := make([]*structpb.Value, 0, len(entries))
	for i := range entries {
		row := toProtoEmployee(&entries[i].Employee)
		row.Fields["scan_count"] = structpb.NewNumberValue(float64(entries[i].ScanCount))
		values = append(values, structpb.NewStructValue(row))
	}
	return &structpb.ListValue{Values: values}, nil
}
