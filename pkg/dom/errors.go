package dom

import "errors"

var (
	ErrParseDocument = errors.New("dom: failed to parse document")
	ErrParseFragment = errors.New("dom: failed to parse html fragment")
	ErrNotAttached   = errors.New("dom: element has no parent")
)
