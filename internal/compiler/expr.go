// Package compiler compiles host method calls: a direct typed call when the
// target method is known statically, an inline-cache dispatch otherwise.
package compiler

import (
	"reflect"

	"github.com/funvibe/hostcall/internal/host"
)

// RHC is the context an expression is emitted in.
type RHC uint8

const (
	Expression RHC = iota // value is consumed
	Statement             // value is discarded
	Return                // value is returned from the unit
)

// Expr is a node that can emit itself into a unit.
type Expr interface {
	Emit(rhc RHC, u *Unit) error
}

// MaybePrimitiveExpr is an expression that can leave an unboxed primitive
// on the stack. PrimitiveType returns nil when it cannot.
type MaybePrimitiveExpr interface {
	Expr
	PrimitiveType() reflect.Type
	EmitUnboxed(rhc RHC, u *Unit) error
}

// TypedExpr is an expression whose static type is known.
type TypedExpr interface {
	Expr
	StaticType() reflect.Type
}

// MaybePrimitiveType returns the primitive type e can be emitted unboxed
// as, or nil.
func MaybePrimitiveType(e Expr) reflect.Type {
	if mp, ok := e.(MaybePrimitiveExpr); ok {
		if t := mp.PrimitiveType(); host.IsPrimitive(t) {
			return t
		}
	}
	return nil
}

// StaticTypeOf returns the static type of e, or nil if unknown.
func StaticTypeOf(e Expr) reflect.Type {
	if te, ok := e.(TypedExpr); ok {
		return te.StaticType()
	}
	return nil
}

// CallShape says whether a call has a receiver.
type CallShape uint8

const (
	Static CallShape = iota
	Instance
)

func (s CallShape) String() string {
	if s == Static {
		return "static"
	}
	return "instance"
}

// ArgMode is how an argument is passed.
type ArgMode uint8

const (
	ByValue ArgMode = iota
	ByRef
)

// BindingKind says where a LocalBinding lives.
type BindingKind uint8

const (
	BindLocal BindingKind = iota
	BindArg
	BindThis
)

// LocalBinding is an addressable storage location of the unit.
type LocalBinding struct {
	Name  string
	Kind  BindingKind
	Index int // slot in the unit's locals or args
	Type  reflect.Type
}

func (b *LocalBinding) IsArg() bool  { return b.Kind == BindArg }
func (b *LocalBinding) IsThis() bool { return b.Kind == BindThis }

// HostArg is one argument of a host call. By-reference arguments carry
// the binding whose address is passed.
type HostArg struct {
	Expr    Expr
	Mode    ArgMode
	Binding *LocalBinding
}

// ValueArg passes e by value.
func ValueArg(e Expr) HostArg {
	return HostArg{Expr: e, Mode: ByValue}
}

// RefArg passes the storage of b by reference.
func RefArg(b *LocalBinding) HostArg {
	return HostArg{Expr: &LocalExpr{Binding: b}, Mode: ByRef, Binding: b}
}
