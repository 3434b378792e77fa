package state

import (
	"context"
	"errors"
	"fmt"
)

// 永続化キーです。各コレクションは 1 キーに丸ごと上書き保存されます。
const (
	KeyUsers   = "users"
	KeyScanLog = "scanLog"
)

// ErrStorage は永続化の読み書きに失敗した場合の識別子です。
var ErrStorage = errors.New("state: storage failure")

// Gateway はキー単位で JSON ブロブを保存するローカルストレージの抽象です。
type Gateway interface {
	// Load は保存済みのブロブを返します。一度も保存されていないキーは found=false です。
	Load(ctx context.Context, key string) (blob []byte, found bool, err error)
	// Save はキーの内容をブロブで上書きします。
	Save(ctx context.Context, key string, blob []byte) error
}

// Error は永続化処理の失敗を表します。errors.Is(err, ErrStorage) が真になります。
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrStorage
}

// Wrap は err を *Error で包みます。err が nil または既に *Error の場合はそのまま返します。
func Wrap(op, key string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Key: key, Err: err}
}
