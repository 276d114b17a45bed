package session

import (
	"errors"
	"fmt"
)

// ErrInvalidPath is matched by every *PathError.
var ErrInvalidPath = errors.New("invalid path")

// ErrNilTree is returned by Replace for a nil tree.
var ErrNilTree = errors.New("nil rule tree")

// PathError reports an edit whose path does not address a suitable node.
type PathError struct {
	Op     string
	Path   Path
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Reason)
}

func (e *PathError) Unwrap() error {
	return ErrInvalidPath
}
