package employee

import "errors"

var (
	ErrInvalidID        = errors.New("employee: invalid id")
	ErrInvalidName      = errors.New("employee: invalid name")
	ErrInvalidPosition  = errors.New("employee: invalid position")
	ErrEmployeeNotFound = errors.New("employee: not found")
)

// IsValidation は入力検証エラーかどうかを返します。
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrInvalidPosition)
}
