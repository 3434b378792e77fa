package report

import (
	"context"

	"github.com/ogurasousui/pin-roster/internal/core/employee"
)

// RosterReader は名簿の検索を提供します。
type RosterReader interface {
	SearchEmployees(ctx context.Context, in employee.SearchEmployeesInput) ([]*employee.Employee, error)
}

// CountReader はスキャン回数の参照を提供します。
type CountReader interface {
	Counts(ctx context.Context) map[string]int
}

// Entry は社員とその PIN のスキャン回数の組です。
type Entry struct {
	Employee  employee.Employee
	ScanCount int
}

// Service は名簿とスキャン記録を PIN で突き合わせた読み取り専用の一覧を作ります。
// CSV や PDF 出力などのエクスポート先はこの一覧だけを参照します。
type Service struct {
	roster RosterReader
	counts CountReader
}

// NewService は Service を生成します。
func NewService(roster RosterReader, counts CountReader) *Service {
	return &Service{roster: roster, counts: counts}
}

// Snapshot は名前検索に一致する社員を登録順に、スキャン回数 (未記録は 0) とともに返します。
func (s *Service) Snapshot(ctx context.Context, query string) ([]Entry, error) {
	employees, err := s.roster.SearchEmployees(ctx, employee.SearchEmployeesInput{Query: query})
	if err != nil {
		return nil, err
	}

	counts := s.counts.Counts(ctx)
	entries := make([]Entry, 0, len(employees))
	for _, emp := range employees {
		entries = append(entries, Entry{Employee: *emp, ScanCount: counts[emp.Code]})
	}
	return entries, nil
}
