package compiler

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/funvibe/hostcall/internal/host"
)

var (
	// ErrInvalidState is a broken compiler contract, e.g. an unboxed emit
	// of a call that was not statically resolved.
	ErrInvalidState          = errors.New("invalid state")
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	ErrIllegalByRef          = errors.New("illegal by-reference argument")
	ErrArity                 = errors.New("argument count mismatch")
)

// ConversionError reports an argument that cannot be coerced to its
// parameter type by any primitive widening or boxed cast.
type ConversionError struct {
	Position  int
	ParamType reflect.Type
	ArgType   reflect.Type // nil when unknown
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("argument %d: cannot convert %s to parameter type %s",
		e.Position, host.TypeName(e.ArgType), host.TypeName(e.ParamType))
}

func (e *ConversionError) Unwrap() error { return ErrUnsupportedConversion }
