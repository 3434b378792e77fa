package ledger

import "errors"

var (
	// ErrInvalidCode は空のコードが渡された場合に返却されます。
	ErrInvalidCode = errors.New("ledger: invalid code")
)
