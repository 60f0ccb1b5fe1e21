package ajax

import "errors"

var (
	ErrInvalidTarget  = errors.New("ajax: invalid target url")
	ErrNoConfirmation = errors.New("ajax: no confirmation in response")
)
