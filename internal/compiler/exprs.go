package compiler

import (
	"fmt"
	"reflect"

	"github.com/funvibe/hostcall/internal/host"
)

// Literal is a constant value.
type Literal struct {
	Value any
}

func (l *Literal) Emit(rhc RHC, u *Unit) error {
	if rhc == Statement {
		return nil
	}
	if l.Value == nil {
		u.Chunk.EmitNil()
		return nil
	}
	u.Chunk.EmitConst(l.Value)
	return nil
}

func (l *Literal) PrimitiveType() reflect.Type {
	if t := reflect.TypeOf(l.Value); host.IsPrimitive(t) {
		return t
	}
	return nil
}

func (l *Literal) EmitUnboxed(rhc RHC, u *Unit) error {
	if l.PrimitiveType() == nil {
		return fmt.Errorf("%w: literal %v is not primitive", ErrInvalidState, l.Value)
	}
	if rhc != Statement {
		u.Chunk.EmitPrimitive(l.Value)
	}
	return nil
}

// StaticType is nil for the nil literal.
func (l *Literal) StaticType() reflect.Type { return reflect.TypeOf(l.Value) }

// LocalExpr reads a local, an argument or the receiver.
type LocalExpr struct {
	Binding *LocalBinding
}

func (e *LocalExpr) Emit(rhc RHC, u *Unit) error {
	if rhc == Statement {
		return nil
	}
	e.load(u)
	if host.IsPrimitive(e.Binding.Type) {
		u.Chunk.EmitBox()
	}
	return nil
}

func (e *LocalExpr) PrimitiveType() reflect.Type {
	if host.IsPrimitive(e.Binding.Type) {
		return e.Binding.Type
	}
	return nil
}

func (e *LocalExpr) EmitUnboxed(rhc RHC, u *Unit) error {
	if e.PrimitiveType() == nil {
		return fmt.Errorf("%w: %s is not primitive", ErrInvalidState, e.Binding.Name)
	}
	if rhc != Statement {
		e.load(u)
	}
	return nil
}

func (e *LocalExpr) StaticType() reflect.Type { return e.Binding.Type }

func (e *LocalExpr) load(u *Unit) {
	if e.Binding.Kind == BindLocal {
		u.Chunk.EmitLoadLocal(e.Binding.Index)
	} else {
		u.Chunk.EmitLoadArg(e.Binding.Index)
	}
}

// TypeExpr evaluates to a type descriptor. As the receiver of a dynamic
// call it names the type whose static members are searched.
type TypeExpr struct {
	Type reflect.Type
}

func (e *TypeExpr) Emit(rhc RHC, u *Unit) error {
	if rhc != Statement {
		u.Chunk.EmitConst(e.Type)
	}
	return nil
}

func (e *TypeExpr) StaticType() reflect.Type { return host.TypeType }

// SetLocalExpr assigns Value to a local. Its value is the assigned value.
type SetLocalExpr struct {
	Binding *LocalBinding
	Value   Expr
}

func (e *SetLocalExpr) Emit(rhc RHC, u *Unit) error {
	b := e.Binding
	if b.Kind != BindLocal {
		return fmt.Errorf("%w: cannot assign to parameter %s", ErrInvalidState, b.Name)
	}
	if err := emitTypedArg(u, 0, b.Type, e.Value); err != nil {
		return fmt.Errorf("assigning %s: %w", b.Name, err)
	}
	u.Chunk.EmitStoreLocal(b.Index)
	if rhc == Statement {
		return nil
	}
	return (&LocalExpr{Binding: b}).Emit(rhc, u)
}

func (e *SetLocalExpr) StaticType() reflect.Type { return e.Binding.Type }

// DoExpr evaluates Body in order; its value is the last expression's.
type DoExpr struct {
	Body []Expr
}

func (e *DoExpr) Emit(rhc RHC, u *Unit) error {
	if len(e.Body) == 0 {
		return (&Literal{}).Emit(rhc, u)
	}
	last := len(e.Body) - 1
	for _, x := range e.Body[:last] {
		if err := x.Emit(Statement, u); err != nil {
			return err
		}
	}
	return e.Body[last].Emit(rhc, u)
}

func (e *DoExpr) StaticType() reflect.Type {
	if len(e.Body) == 0 {
		return nil
	}
	return StaticTypeOf(e.Body[len(e.Body)-1])
}
