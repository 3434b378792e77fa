package ledger

import "context"

// Store はスキャン記録の永続化の抽象です。
type Store interface {
	// LoadCounts は保存済みのコード別スキャン回数を返します。未保存の場合は空です。
	LoadCounts(ctx context.Context) (map[string]int, error)
	// SaveCounts はスキャン回数全体を上書き保存します。
	SaveCounts(ctx context.Context, counts map[string]int) error
}
