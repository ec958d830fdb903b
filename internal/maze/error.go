package maze

import (
	"errors"
	"fmt"
)

type ErrorKind uint8

const (
	InvalidDimension ErrorKind = iota + 1
	AlreadyBuilt
	OutOfBounds
	NotAdjacent
	WallBlocking
	Underflow
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidDimension:
		return "invalid dimension"
	case AlreadyBuilt:
		return "already built"
	case OutOfBounds:
		return "out of bounds"
	case NotAdjacent:
		return "not adjacent"
	case WallBlocking:
		return "wall blocking"
	case Underflow:
		return "underflow"
	default:
		return "unknown"
	}
}

// Error is the only error type produced by this package. Sentinels below
// carry no message and match any [Error] of the same kind via [errors.Is].
type Error struct {
	Kind    ErrorKind
	message string
}

var (
	ErrInvalidDimension = &Error{Kind: InvalidDimension}
	ErrAlreadyBuilt     = &Error{Kind: AlreadyBuilt}
	ErrOutOfBounds      = &Error{Kind: OutOfBounds}
	ErrNotAdjacent      = &Error{Kind: NotAdjacent}
	ErrWallBlocking     = &Error{Kind: WallBlocking}
	ErrUnderflow        = &Error{Kind: Underflow}
)

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, message: fmt.Sprintf(format, args...)}
}

// [Error] implements [error]
func (e *Error) Error() string {
	if e.message == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first [Error] in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
