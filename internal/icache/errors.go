package icache

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/funvibe/hostcall/internal/host"
)

var (
	ErrMethodNotFound = errors.New("method not found")
	ErrArgumentCount  = errors.New("wrong number of arguments")
	ErrNilReceiver    = errors.New("nil receiver")
	ErrUnknownCache   = errors.New("unknown inline cache")
)

// MethodNotFoundError is returned by Dispatch when no member of the
// receiver's type matches the name, arity and call-site signature.
type MethodNotFoundError struct {
	Receiver     any
	ReceiverType reflect.Type
	Method       string
	Signature    []reflect.Type
}

func (e *MethodNotFoundError) Error() string {
	return fmt.Sprintf("could not find method %s%s for receiver %v of type %s",
		e.Method, host.SignatureString(e.Signature), e.Receiver, host.TypeName(e.ReceiverType))
}

func (e *MethodNotFoundError) Unwrap() error { return ErrMethodNotFound }
