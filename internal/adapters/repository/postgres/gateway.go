// Package postgres は PostgreSQL の app_state テーブルを使う state.Gateway の実装です。
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	pgdb "github.com/ogurasousui/pin-roster/internal/platform/db/postgres"
)

// DefaultHistoryLimit はキーごとに残す置き換え前スナップショットの件数の既定値です。
const DefaultHistoryLimit = 10

// DB は pgxpool.Pool と pgxmock の双方が満たすインターフェースです。
type DB interface {
	pgdb.Queryer
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Gateway はキーごとに 1 行の JSONB を保持します。
//
// 上書きの際には直前の値を app_state_history に退避し、historyLimit 件を超えた古い履歴を削除します。
type Gateway struct {
	db           DB
	tx           *pgdb.TransactionManager
	historyLimit int
}

// NewGateway は Gateway を生成します。historyLimit が 0 以下なら既定値を使います。
func NewGateway(db DB, historyLimit int) *Gateway {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Gateway{db: db, tx: pgdb.NewTransactionManager(db), historyLimit: historyLimit}
}

// Load はキーの値を読み取り専用トランザクション内で取得します。
func (g *Gateway) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		blob  []byte
		found bool
	)
	err := g.tx.WithinReadOnly(ctx, func(ctx context.Context) error {
		exec := pgdb.QueryerFromContext(ctx, g.db)

		var value string
		if err := exec.QueryRow(ctx, `SELECT value::text FROM app_state WHERE key = $1`, key).Scan(&value); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("postgres: load %s: %w", key, err)
		}
		blob, found = []byte(value), true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return blob, found, nil
}

// Save は直前の値を履歴へ退避してからキーの値を上書きします。
func (g *Gateway) Save(ctx context.Context, key string, blob []byte) error {
	return g.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		exec := pgdb.QueryerFromContext(ctx, g.db)

		if _, err := exec.Exec(ctx, `
        INSERT INTO app_state_history (key, value)
        SELECT key, value FROM app_state WHERE key = $1
    `, key); err != nil {
			return fmt.Errorf("postgres: archive %s: %w", key, err)
		}

		if _, err := exec.Exec(ctx, `
        INSERT INTO app_state (key, value, updated_at)
        VALUES ($1, $2::jsonb, now())
        ON CONFLICT (key) DO UPDATE
           SET value = EXCLUDED.value,
               updated_at = EXCLUDED.updated_at
    `, key, string(blob)); err != nil {
			return fmt.Errorf("postgres: save %s: %w", key, err)
		}

		if _, err := exec.Exec(ctx, `
        DELETE FROM app_state_history
         WHERE key = $1
           AND id NOT IN (
               SELECT id FROM app_state_history WHERE key = $1 ORDER BY id DESC LIMIT $2
           )
    `, key, g.historyLimit); err != nil {
			return fmt.Errorf("postgres: prune history %s: %w", key, err)
		}

		return nil
	})
}
