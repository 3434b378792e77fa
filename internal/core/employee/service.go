package employee

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/pin-roster/internal/core/state"
	"github.com/ogurasousui/pin-roster/internal/platform/writequeue"
)

const (
	// CodeLength は PIN の文字数です。
	CodeLength   = 8
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// CodeGenerator は PIN を払い出します。
type CodeGenerator interface {
	NewCode() (string, error)
}

type randomCodeGenerator struct {
	rand io.Reader
}

func (g randomCodeGenerator) NewCode() (string, error) {
	return randomCode(g.rand, CodeLength)
}

// IDGenerator は社員 ID を払い出します。
type IDGenerator interface {
	NewID() (string, error)
}

type uuidGenerator struct{}

// NewID は時刻順に並ぶ UUIDv7 を返します。
func (uuidGenerator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Options は Service の依存を差し替えるための設定です。nil のフィールドは既定値になります。
type Options struct {
	Codes       CodeGenerator
	IDs         IDGenerator
	SaveTimeout time.Duration
	Logger      *slog.Logger
}

// Service は名簿に関するユースケースをまとめます。
//
// 名簿はメモリ上で保持され、変更のたびに名簿全体のスナップショットが
// 書き込みキューに積まれます。保存に失敗してもメモリ上の変更は取り消されません。
type Service struct {
	store Store
	codes CodeGenerator
	ids   IDGenerator

	mu     sync.RWMutex
	roster []Employee
	writes *writequeue.Queue[[]Employee]
}

// UseCase は名簿ユースケースの公開インターフェースです。
type UseCase interface {
	AddEmployee(ctx context.Context, in AddEmployeeInput) (*Employee, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	SearchEmployees(ctx context.Context, in SearchEmployeesInput) ([]*Employee, error)
}

// NewService は Service を生成します。
func NewService(store Store, opts Options) *Service {
	if opts.Codes == nil {
		opts.Codes = randomCodeGenerator{rand: rand.Reader}
	}
	if opts.IDs == nil {
		opts.IDs = uuidGenerator{}
	}

	s := &Service{store: store, codes: opts.Codes, ids: opts.IDs}
	s.writes = writequeue.New(state.KeyUsers, store.SaveRoster, writequeue.Options{
		Timeout: opts.SaveTimeout,
		Logger:  opts.Logger,
	})
	return s
}

// AddEmployeeInput は社員登録時の入力です。
type AddEmployeeInput struct {
	Name     string
	Position Position
}

// UpdateEmployeeInput は社員更新時の入力です。PIN は変更できません。
type UpdateEmployeeInput struct {
	ID       string
	Name     string
	Position Position
}

// DeleteEmployeeInput は社員削除時の入力です。
type DeleteEmployeeInput struct {
	ID string
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// SearchEmployeesInput は名前検索の入力です。空の Query は全件に一致します。
type SearchEmployeesInput struct {
	Query string
}

// Load は永続化済みの名簿でメモリ上の名簿を置き換えます。
func (s *Service) Load(ctx context.Context) error {
	roster, err := s.store.LoadRoster(ctx)
	if err != nil {
		return fmt.Errorf("employee: load roster: %w", err)
	}

	s.mu.Lock()
	s.roster = cloneRoster(roster)
	s.mu.Unlock()
	return nil
}

// AddEmployee は社員を登録し、新しい PIN を払い出します。
//
// 保存に失敗した場合は登録済みの社員と state.ErrStorage を満たすエラーを両方返します。
func (s *Service) AddEmployee(ctx context.Context, in AddEmployeeInput) (*Employee, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}

	position := in.Position
	if position == "" {
		position = DefaultPosition
	}
	if !position.IsValid() {
		return nil, ErrInvalidPosition
	}

	id, err := s.ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("employee: generate id: %w", err)
	}
	code, err := s.codes.NewCode()
	if err != nil {
		return nil, fmt.Errorf("employee: generate code: %w", err)
	}

	emp := Employee{ID: id, Name: name, Position: position, Code: code}

	s.mu.Lock()
	s.roster = append(s.roster, emp)
	pending := s.writes.Enqueue(cloneRoster(s.roster))
	s.mu.Unlock()

	created := emp
	return &created, awaitWrite(ctx, pending)
}

// UpdateEmployee は社員の名前と職位を更新します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}

	if !in.Position.IsValid() {
		return nil, ErrInvalidPosition
	}

	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, ErrEmployeeNotFound
	}
	s.roster[idx].Name = name
	s.roster[idx].Position = in.Position
	updated := s.roster[idx]
	pending := s.writes.Enqueue(cloneRoster(s.roster))
	s.mu.Unlock()

	return &updated, awaitWrite(ctx, pending)
}

// DeleteEmployee は社員を削除します。スキャン記録には触れません。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error {
	id, err := normalizeID(in.ID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrEmployeeNotFound
	}
	s.roster = append(s.roster[:idx:idx], s.roster[idx+1:]...)
	pending := s.writes.Enqueue(cloneRoster(s.roster))
	s.mu.Unlock()

	return awaitWrite(ctx, pending)
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOfLocked(id)
	if idx < 0 {
		return nil, ErrEmployeeNotFound
	}
	found := s.roster[idx]
	return &found, nil
}

// SearchEmployees は名前の部分一致 (大文字小文字を区別しない) で社員を登録順に返します。
func (s *Service) SearchEmployees(ctx context.Context, in SearchEmployeesInput) ([]*Employee, error) {
	query := strings.ToLower(in.Query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Employee, 0, len(s.roster))
	for _, emp := range s.roster {
		if query != "" && !strings.Contains(strings.ToLower(emp.Name), query) {
			continue
		}
		found := emp
		result = append(result, &found)
	}
	return result, nil
}

// Flush は直近の変更が保存されるまで待ちます。
func (s *Service) Flush(ctx context.Context) error {
	return s.writes.Flush(ctx)
}

// Close は未保存の書き込みを処理してから書き込みキューを停止します。
func (s *Service) Close(ctx context.Context) error {
	return s.writes.Close(ctx)
}

// s.mu を保持した状態で呼び出すこと。
func (s *Service) indexOfLocked(id string) int {
	for i := range s.roster {
		if s.roster[i].ID == id {
			return i
		}
	}
	return -1
}

// awaitWrite は書き込みの完了を待ちます。呼び出し側の ctx が先に終了した場合は ctx.Err() をそのまま返します。
func awaitWrite(ctx context.Context, pending *writequeue.Pending) error {
	if err := pending.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return ctxErr
		}
		return fmt.Errorf("employee: persist roster: %w", state.Wrap("save", state.KeyUsers, err))
	}
	return nil
}

// ValidCode は code が PIN の形式 (英数字 8 文字) を満たすかどうかを返します。
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(codeAlphabet, rune(code[i])) {
			return false
		}
	}
	return true
}

func randomCode(r io.Reader, length int) (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(r, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

func normalizeID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("id: %w", ErrInvalidID)
	}
	return trimmed, nil
}

func normalizeName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

func cloneRoster(roster []Employee) []Employee {
	if roster == nil {
		return []Employee{}
	}
	out := make([]Employee, len(roster))
	copy(out, roster)
	return out
}
