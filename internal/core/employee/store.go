package employee

import "context"

// Store は名簿スナップショットの永続化の抽象です。
type Store interface {
	// LoadRoster は保存済みの名簿を登録順で返します。未保存の場合は空です。
	LoadRoster(ctx context.Context) ([]Employee, error)
	// SaveRoster は名簿全体を上書き保存します。
	SaveRoster(ctx context.Context, roster []Employee) error
}
