package auth

import "errors"

var (
	// ErrUserNotFound はユーザーが存在しない場合に返却されます。
	ErrUserNotFound = errors.New("auth: user not found")
	// ErrInvalidPassword はパスワードが空の場合に返却されます。
	ErrInvalidPassword = errors.New("auth: invalid password")
)
