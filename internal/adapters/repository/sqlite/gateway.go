// Package sqlite は SQLite の app_state テーブルを使う state.Gateway の実装です。
package sqlite

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	sqlitedb "github.com/ogurasousui/pin-roster/internal/platform/db/sqlite"
)

// Schema は app_state テーブルの定義です。プールの OnConnect に渡してください。
const Schema = `
CREATE TABLE IF NOT EXISTS app_state (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// EnsureSchema は app_state テーブルを作成します。
func EnsureSchema(conn *sqlite.Conn) error {
	return sqlitex.ExecuteScript(conn, Schema, nil)
}

// Gateway はキーごとに 1 行を保持します。
type Gateway struct {
	pool *sqlitedb.Pool
	now  func() time.Time
}

// NewGateway は Gateway を生成します。
func NewGateway(pool *sqlitedb.Pool) *Gateway {
	return &Gateway{pool: pool, now: time.Now}
}

// Load はキーの値を取得します。
func (g *Gateway) Load(ctx context.Context, key string) ([]byte, bool, error) {
	conn, err := g.pool.Take(ctx)
	if err != nil {
		return nil, false, err
	}
	defer g.pool.Put(conn)

	var (
		value string
		found bool
	)
	err = sqlitex.Execute(conn, `SELECT value FROM app_state WHERE key = ?`, &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = stmt.ColumnText(0)
			found = true
			return nil
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: load %s: %w", key, err)
	}
	if !found {
		return nil, false, nil
	}
	return []byte(value), true, nil
}

// Save はキーの値を上書きします。
func (g *Gateway) Save(ctx context.Context, key string, blob []byte) error {
	conn, err := g.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer g.pool.Put(conn)

	const query = `
INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: []any{key, string(blob), g.now().UnixMilli()},
	})
	if err != nil {
		return fmt.Errorf("sqlite: save %s: %w", key, err)
	}
	return nil
}
