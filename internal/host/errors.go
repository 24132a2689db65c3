package host

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrOverflow      = errors.New("integer overflow")
	ErrInvalidCast   = errors.New("invalid cast")
	ErrHostPanic     = errors.New("host method panicked")
	ErrArgumentCount = errors.New("wrong number of arguments")
)

// CastError reports a value that cannot be cast to the requested type.
type CastError struct {
	From reflect.Type // nil for a nil value
	To   reflect.Type
}

func (e *CastError) Error() string {
	if e.From == nil {
		return fmt.Sprintf("cannot cast nil to %s", TypeName(e.To))
	}
	return fmt.Sprintf("cannot cast %s to %s", TypeName(e.From), TypeName(e.To))
}

func (e *CastError) Unwrap() error { return ErrInvalidCast }
