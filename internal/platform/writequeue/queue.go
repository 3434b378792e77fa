package writequeue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrClosed は Close 後に Enqueue された書き込みに返却されます。
var ErrClosed = errors.New("writequeue: closed")

// SaveFunc はスナップショットを永続化する関数です。
type SaveFunc[T any] func(ctx context.Context, snapshot T) error

// Options は Queue の動作設定です。
type Options struct {
	// Timeout は 1 回の保存に許す時間です。0 の場合は無制限です。
	Timeout time.Duration
	Logger  *slog.Logger
}

// Pending は投入済みの書き込み 1 件の完了を表します。
type Pending struct {
	done chan struct{}
	err  error
}

// Done は書き込み完了時に close されるチャネルを返します。
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait は書き込みの完了を待ち、保存結果を返します。
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pending) finish(err error) {
	p.err = err
	close(p.done)
}

type item[T any] struct {
	snapshot T
	pending  *Pending
}

// Queue はキー 1 つ分のスナップショット書き込みを投入順に直列実行します。
type Queue[T any] struct {
	key     string
	save    SaveFunc[T]
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	items   []item[T]
	last    *Pending
	closed  bool
	wake    chan struct{}
	stopped chan struct{}
}

// New は Queue を生成し、書き込み用のワーカーを起動します。
func New[T any](key string, save SaveFunc[T], opts Options) *Queue[T] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	q := &Queue[T]{
		key:     key,
		save:    save,
		timeout: opts.Timeout,
		logger:  logger.With("key", key),
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	go q.run()
	return q
}

// Enqueue はスナップショットの保存を予約します。呼び出し順がそのまま保存順になります。
func (q *Queue[T]) Enqueue(snapshot T) *Pending {
	p := &Pending{done: make(chan struct{})}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		p.finish(ErrClosed)
		return p
	}
	q.items = append(q.items, item[T]{snapshot: snapshot, pending: p})
	q.last = p
	q.mu.Unlock()

	q.signal()
	return p
}

// Flush は直近に投入された書き込みの完了を待ち、その結果を返します。
func (q *Queue[T]) Flush(ctx context.Context) error {
	q.mu.Lock()
	last := q.last
	q.mu.Unlock()

	if last == nil {
		return nil
	}
	return last.Wait(ctx)
}

// Close は新規投入を止め、残りの書き込みを処理し終えるまで待ちます。
func (q *Queue[T]) Close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()

	select {
	case <-q.stopped:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("writequeue: close %s: %w", q.key, ctx.Err())
	}
}

func (q *Queue[T]) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue[T]) run() {
	defer close(q.stopped)

	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			closed := q.closed
			q.mu.Unlock()
			if closed {
				return
			}
			<-q.wake
			continue
		}
		next := q.items[0]
		q.items[0] = item[T]{}
		q.items = q.items[1:]
		q.mu.Unlock()

		next.pending.finish(q.write(next.snapshot))
	}
}

func (q *Queue[T]) write(snapshot T) error {
	ctx := context.Background()
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := q.save(ctx, snapshot); err != nil {
		q.logger.Error("snapshot write failed", "error", err)
		return err
	}
	q.logger.Debug("snapshot written", "elapsed", time.Since(start))
	return nil
}
