package ledger

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/ogurasousui/pin-roster/internal/core/symbol"
)

// RecognitionEvent はカメラ等の読み取り元から届く認識結果です。
type RecognitionEvent struct {
	SymbolType string
	Data       string
}

// ScanResult は Session がイベントを処理した結果です。
type ScanResult struct {
	Accepted bool
	Code     string
	Count    int
}

// Recorder はスキャンを記録する先です。*Service が実装します。
type Recorder interface {
	RecordScan(ctx context.Context, code string) (int, error)
}

// Session は 1 回の読み取りセッションです。
//
// 同じシンボルが映り続けると認識イベントは連続して届くため、Session は
// 1 件受理すると停止し、Rearm が呼ばれるまで後続のイベントを無視します。
type Session struct {
	recorder Recorder
	decoder  symbol.Decoder

	mu    sync.Mutex
	armed bool
}

// NewSession は受付可能な状態の Session を生成します。decoder は HandleFrame を使わない場合 nil で構いません。
func NewSession(recorder Recorder, decoder symbol.Decoder) *Session {
	return &Session{recorder: recorder, decoder: decoder, armed: true}
}

// Handle は認識イベントを処理します。停止中や空データのイベントは記録されません。
func (s *Session) Handle(ctx context.Context, ev RecognitionEvent) (ScanResult, error) {
	code := strings.TrimSpace(ev.Data)
	if code == "" {
		return ScanResult{}, nil
	}

	s.mu.Lock()
	if !s.armed {
		s.mu.Unlock()
		return ScanResult{}, nil
	}
	s.armed = false
	s.mu.Unlock()

	// 保存に失敗しても記録は受理済みなので Accepted のまま返す。
	count, err := s.recorder.RecordScan(ctx, code)
	return ScanResult{Accepted: true, Code: code, Count: count}, err
}

// HandleFrame は画像からシンボルを読み取って Handle します。
// シンボルが見つからないフレームはエラーにせず無視します。
func (s *Session) HandleFrame(ctx context.Context, img image.Image) (ScanResult, error) {
	if s.decoder == nil {
		return ScanResult{}, fmt.Errorf("ledger: session has no decoder")
	}
	if !s.Armed() {
		return ScanResult{}, nil
	}

	text, err := s.decoder.Decode(img)
	if err != nil {
		if errors.Is(err, symbol.ErrDecodeFailure) {
			return ScanResult{}, nil
		}
		return ScanResult{}, fmt.Errorf("ledger: decode frame: %w", err)
	}

	return s.Handle(ctx, RecognitionEvent{SymbolType: "qr", Data: text})
}

// Rearm は次のイベントを受け付けるよう Session を再開します。
func (s *Session) Rearm() {
	s.mu.Lock()
	s.armed = true
	s.mu.Unlock()
}

// Armed は Session がイベントを受け付ける状態かどうかを返します。
func (s *Session) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}
