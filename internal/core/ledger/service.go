package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ogurasousui/pin-roster/internal/core/state"
	"github.com/ogurasousui/pin-roster/internal/platform/writequeue"
)

// Options は Service の設定です。
type Options struct {
	SaveTimeout time.Duration
	Logger      *slog.Logger
}

// Service はコード別のスキャン回数を管理します。
//
// 名簿とは独立しており、どの社員にも属さないコードのスキャンも数えます。
// 重複スキャンの抑止は行いません (Session を参照)。
type Service struct {
	store Store

	mu     sync.RWMutex
	counts map[string]int
	writes *writequeue.Queue[map[string]int]
}

// UseCase はスキャン記録ユースケースの公開インターフェースです。
type UseCase interface {
	RecordScan(ctx context.Context, code string) (int, error)
	CountFor(ctx context.Context, code string) int
	Clear(ctx context.Context) error
	Counts(ctx context.Context) map[string]int
}

// NewService は Service を生成します。
func NewService(store Store, opts Options) *Service {
	s := &Service{store: store, counts: make(map[string]int)}
	s.writes = writequeue.New(state.KeyScanLog, store.SaveCounts, writequeue.Options{
		Timeout: opts.SaveTimeout,
		Logger:  opts.Logger,
	})
	return s
}

// Load は永続化済みのスキャン回数でメモリ上の状態を置き換えます。
func (s *Service) Load(ctx context.Context) error {
	counts, err := s.store.LoadCounts(ctx)
	if err != nil {
		return fmt.Errorf("ledger: load counts: %w", err)
	}

	s.mu.Lock()
	s.counts = cloneCounts(counts)
	s.mu.Unlock()
	return nil
}

// RecordScan はコードのスキャン回数を 1 増やし、更新後の回数を返します。
//
// 保存に失敗した場合も加算は保持され、更新後の回数とエラーを両方返します。
func (s *Service) RecordScan(ctx context.Context, code string) (int, error) {
	if strings.TrimSpace(code) == "" {
		return 0, ErrInvalidCode
	}

	s.mu.Lock()
	s.counts[code]++
	count := s.counts[code]
	pending := s.writes.Enqueue(cloneCounts(s.counts))
	s.mu.Unlock()

	return count, awaitWrite(ctx, pending)
}

// CountFor はコードのスキャン回数を返します。未知のコードは 0 です。
func (s *Service) CountFor(ctx context.Context, code string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[code]
}

// Counts は全コードのスキャン回数のコピーを返します。
func (s *Service) Counts(ctx context.Context) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCounts(s.counts)
}

// Clear は全てのスキャン回数を破棄し、空の状態を保存します。
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.counts = make(map[string]int)
	pending := s.writes.Enqueue(map[string]int{})
	s.mu.Unlock()

	return awaitWrite(ctx, pending)
}

// Flush は直近の変更が保存されるまで待ちます。
func (s *Service) Flush(ctx context.Context) error {
	return s.writes.Flush(ctx)
}

// Close は未保存の書き込みを処理してから書き込みキューを停止します。
func (s *Service) Close(ctx context.Context) error {
	return s.writes.Close(ctx)
}

// awaitWrite は書き込みの完了を待ちます。呼び出し側の ctx が先に終了した場合は ctx.Err() をそのまま返します。
func awaitWrite(ctx context.Context, pending *writequeue.Pending) error {
	if err := pending.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return ctxErr
		}
		return fmt.Errorf("ledger: persist counts: %w", state.Wrap("save", state.KeyScanLog, err))
	}
	return nil
}

func cloneCounts(counts map[string]int) map[string]int {
	out := make(map[string]int, len(counts))
	for code, n := range counts {
		out[code] = n
	}
	return out
}
