package native

import (
	"errors"

	"github.com/specialistvlad/scriptbridge/internal/dynamic"
)

var (
	// ErrAlreadyConsumed is returned for any use of a container whose value
	// has been moved into another container or across the bridge.
	ErrAlreadyConsumed = errors.New("already consumed")

	// ErrNoSuchKey is returned when reading a key a map does not hold.
	ErrNoSuchKey = errors.New("no such key")

	// ErrInvalidIterator is returned by NextKey once the iterator is exhausted.
	ErrInvalidIterator = errors.New("no such element exists")

	// ErrIndexOutOfRange is returned when reading past the end of an array.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrUnexpectedType matches every UnexpectedTypeError.
	ErrUnexpectedType = dynamic.ErrUnexpectedType

	// ErrInvalidNumber is returned when pushing or putting NaN.
	ErrInvalidNumber = dynamic.ErrInvalidNumber
)

// UnexpectedTypeError carries the requested and the actual kind of a value.
type UnexpectedTypeError = dynamic.TypeError
