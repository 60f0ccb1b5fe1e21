package uniqueness

import "errors"

var (
	ErrUnknownField  = errors.New("uniqueness: field is not tracked")
	ErrStoreFailure  = errors.New("uniqueness: store lookup failed")
	ErrInvalidConfig = errors.New("uniqueness: invalid store configuration")
)
