package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/ogurasousui/pin-roster/internal/core/employee"
	"github.com/ogurasousui/pin-roster/internal/core/ledger"
	"github.com/ogurasousui/pin-roster/internal/core/report"
	"github.com/ogurasousui/pin-roster/internal/core/state"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type stubLedgerUseCase struct {
	recorded []string
	counts   map[string]int
	scanErr  error
	clearErr error
	cleared  bool
}

func (s *stubLedgerUseCase) RecordScan(_ context.Context, code string) (int, error) {
	if s.scanErr != nil {
		return 0, s.scanErr
	}
	s.recorded = append(s.recorded, code)
	s.counts[code]++
	return s.counts[code], nil
}

func (s *stubLedgerUseCase) CountFor(_ context.Context, code string) int {
	return s.counts[code]
}

func (s *stubLedgerUseCase) Clear(context.Context) error {
	s.cleared = true
	return s.clearErr
}

func (s *stubLedgerUseCase) Counts(context.Context) map[string]int {
	return s.counts
}

type stubReporter struct {
	entries []report.Entry
	err     error
	query   string
}

func (s *stubReporter) Snapshot(_ context.Context, query string) ([]report.Entry, error) {
	s.query = query
	return s.entries, s.err
}

func TestLedgerGrpcHandler_RecordScanAndCount(t *testing.T) {
	t.Parallel()

	stub := &stubLedgerUseCase{counts: map[string]int{}}
	handler := NewLedgerGrpcHandler(stub, &stubReporter{})

	for want := int64(1); want <= 2; want++ {
		resp, err := handler.RecordScan(context.Background(), wrapperspb.String("AbC12345"))
		if err != nil {
			t.Fatalf("RecordScan returned error: %v", err)
		}
		if resp.GetValue() != want {
			t.Fatalf("expected count %d, got %d", want, resp.GetValue())
		}
	}

	count, err := handler.CountFor(context.Background(), wrapperspb.String("AbC12345"))
	if err != nil {
		t.Fatalf("CountFor returned error: %v", err)
	}
	if count.GetValue() != 2 {
		t.Errorf("expected 2, got %d", count.GetValue())
	}

	unknown, _ := handler.CountFor(context.Background(), wrapperspb.String("ZZZZZZZZ"))
	if unknown.GetValue() != 0 {
		t.Errorf("expected 0 for unknown code, got %d", unknown.GetValue())
	}
}

func TestLedgerGrpcHandler_RecordScan_Errors(t *testing.T) {
	t.Parallel()

	invalid := NewLedgerGrpcHandler(&stubLedgerUseCase{scanErr: ledger.ErrInvalidCode}, &stubReporter{})
	if _, err := invalid.RecordScan(context.Background(), wrapperspb.String(" ")); status.Code(err) != codes.InvalidArgument {
		t.Errorf("expected invalid argument, got %v", err)
	}

	storage := NewLedgerGrpcHandler(&stubLedgerUseCase{scanErr: state.Wrap("save", state.KeyScanLog, errors.New("io"))}, &stubReporter{})
	if _, err := storage.RecordScan(context.Background(), wrapperspb.String("AbC12345")); status.Code(err) != codes.Unavailable {
		t.Errorf("expected unavailable, got %v", err)
	}
}

func TestLedgerGrpcHandler_Clear(t *testing.T) {
	t.Parallel()

	stub := &stubLedgerUseCase{counts: map[string]int{"a": 1}}
	if _, err := NewLedgerGrpcHandler(stub, &stubReporter{}).Clear(context.Background(), &emptypb.Empty{}); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if !stub.cleared {
		t.Fatal("expected Clear to reach the use case")
	}
}

func TestLedgerGrpcHandler_Report(t *testing.T) {
	t.Parallel()

	reporter := &stubReporter{entries: []report.Entry{
		{Employee: employee.Employee{ID: "1", Name: "Ana", Position: employee.PositionTI, Code: "AAAAAAAA"}, ScanCount: 3},
		{Employee: employee.Employee{ID: "2", Name: "Bia", Position: employee.PositionRHU, Code: "BBBBBBBB"}},
	}}
	handler := NewLedgerGrpcHandler(&stubLedgerUseCase{counts: map[string]int{}}, reporter)

	resp, err := handler.Report(context.Background(), wrapperspb.String("a"))
	if err != nil {
		t.Fatalf("Report returned error: %v", err)
	}
	if reporter.query != "a" {
		t.Errorf("expected query to pass through, got %q", reporter.query)
	}
	rows := resp.GetValues()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if got := rows[0].GetStructValue().GetFields()["scan_count"].GetNumberValue(); got != 3 {
		t.Errorf("expected scan_count 3, got %v", got)
	}
	if got := rows[1].GetStructValue().GetFields()["scan_count"].GetNumberValue(); got != 0 {
		t.Errorf("expected scan_count 0, got %v", got)
	}

	failing := NewLedgerGrpcHandler(&stubLedgerUseCase{}, &stubReporter{err: errors.New("boom")})
	if _, err := failing.Report(context.Background(), wrapperspb.String("")); status.Code(err) != codes.Internal {
		t.Errorf("expected internal, got %v", err)
	}
}
