package compiler

import (
	"reflect"

	"github.com/funvibe/hostcall/internal/host"
	"github.com/funvibe/hostcall/internal/il"
)

// emitBoxReturn turns the raw result of a call returning t into a boxed
// value. Void calls produce nil.
func emitBoxReturn(c *il.Chunk, t reflect.Type) {
	switch {
	case t == nil:
		c.EmitNil()
	case host.IsPrimitive(t):
		c.EmitBox()
	}
}

// emitUnboxArg casts the boxed value on the stack to paramType.
func emitUnboxArg(c *il.Chunk, paramType reflect.Type) {
	if paramType == host.Object {
		return
	}
	c.EmitUnbox(paramType)
}
