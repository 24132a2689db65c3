package compiler

import (
	"fmt"
	"reflect"

	"github.com/funvibe/hostcall/internal/host"
	"github.com/funvibe/hostcall/internal/il"
)

// MethodExpr is a call of a host method. When Method is set and is not a
// generic definition the call is emitted directly; otherwise it goes
// through an inline cache owned by this site.
type MethodExpr struct {
	MethodName string
	ParamTypes []reflect.Type // call-site signature for dynamic dispatch, derived from Args when empty
	Args       []HostArg
	Shape      CallShape

	Target     Expr         // receiver, Instance only
	TargetType reflect.Type // owner, Static only

	Method *host.Method // nil when unresolved
	Tag    reflect.Type // declared result type, overrides Method.Return for StaticType
	Span   *il.Span

	cacheChunk *il.Chunk
	cacheID    int
}

// IsDirect reports whether the call is emitted without an inline cache.
func (m *MethodExpr) IsDirect() bool {
	return m.Method != nil && !m.Method.Generic
}

// CanEmitPrimitive reports whether the call can leave its result unboxed.
func (m *MethodExpr) CanEmitPrimitive() bool {
	return m.IsDirect() && host.IsPrimitive(m.Method.Return)
}

func (m *MethodExpr) PrimitiveType() reflect.Type {
	if !m.CanEmitPrimitive() {
		return nil
	}
	return m.Method.Return
}

func (m *MethodExpr) StaticType() reflect.Type {
	if m.Tag != nil {
		return m.Tag
	}
	if m.IsDirect() {
		return m.Method.Return
	}
	return nil
}

// Emit emits the call with a boxed result.
func (m *MethodExpr) Emit(rhc RHC, u *Unit) error {
	if err := m.validate(); err != nil {
		return err
	}
	c := u.Chunk
	c.EmitSpan(m.Span)

	if m.IsDirect() {
		if err := m.emitForMethod(u); err != nil {
			return err
		}
		emitBoxReturn(c, m.Method.Return)
	} else if err := m.emitDynamicCall(u); err != nil {
		return err
	}

	if rhc == Statement {
		c.EmitPop()
	}
	return nil
}

// EmitUnboxed emits the call leaving the raw primitive result.
func (m *MethodExpr) EmitUnboxed(rhc RHC, u *Unit) error {
	if !m.CanEmitPrimitive() {
		return fmt.Errorf("%w: %s has no primitive result to emit unboxed", ErrInvalidState, m.describe())
	}
	if err := m.validate(); err != nil {
		return err
	}
	c := u.Chunk
	c.EmitSpan(m.Span)
	if err := m.emitForMethod(u); err != nil {
		return err
	}
	if rhc == Statement {
		c.EmitPop()
	}
	return nil
}

func (m *MethodExpr) validate() error {
	switch m.Shape {
	case Instance:
		if m.Target == nil {
			return fmt.Errorf("%w: instance call %s without a target", ErrInvalidState, m.MethodName)
		}
	case Static:
		if m.TargetType == nil && !m.IsDirect() {
			return fmt.Errorf("%w: static call %s without a target type", ErrInvalidState, m.MethodName)
		}
	}

	if m.Method != nil {
		if m.Method.Static != (m.Shape == Static) {
			return fmt.Errorf("%w: %s call bound to %s", ErrInvalidState, m.Shape, m.Method)
		}
		if m.Method.Arity() != len(m.Args) {
			return fmt.Errorf("%w: %s takes %d arguments, got %d", ErrArity, m.Method, m.Method.Arity(), len(m.Args))
		}
	}
	if len(m.ParamTypes) > 0 && len(m.ParamTypes) != len(m.Args) {
		return fmt.Errorf("%w: %s%s called with %d arguments",
			ErrArity, m.MethodName, host.SignatureString(m.ParamTypes), len(m.Args))
	}
	return nil
}

// emitForMethod pushes the receiver and the typed arguments, then the call
// or its intrinsic replacement. The result is left raw.
func (m *MethodExpr) emitForMethod(u *Unit) error {
	c := u.Chunk

	if m.Shape == Instance {
		if err := m.emitTarget(u); err != nil {
			return err
		}
	}
	if err := emitTypedArgs(u, m.Method.Params, m.Args); err != nil {
		return fmt.Errorf("%s: %w", m.Method, err)
	}

	if m.Shape == Static {
		if op, ok := intrinsicOp(m.Method); ok {
			c.EmitOp(op)
		} else {
			c.EmitCall(m.Method, false)
		}
		return nil
	}
	c.EmitCall(m.Method, true)
	return nil
}

// emitTarget pushes the receiver, cast to the method's receiver type when
// its static type differs.
func (m *MethodExpr) emitTarget(u *Unit) error {
	recv := m.Method.ReceiverType()
	if MaybePrimitiveType(m.Target) == recv && recv != nil {
		return m.Target.(MaybePrimitiveExpr).EmitUnboxed(Expression, u)
	}
	if err := m.Target.Emit(Expression, u); err != nil {
		return err
	}
	if StaticTypeOf(m.Target) != recv {
		emitUnboxArg(u.Chunk, recv)
	}
	return nil
}

// emitDynamicCall emits cache, receiver and an argument array, then the
// dispatch. The dispatch result is already boxed.
func (m *MethodExpr) emitDynamicCall(u *Unit) error {
	c := u.Chunk
	c.EmitLoadCache(m.cacheIndex(u))

	if m.Shape == Instance {
		if err := m.Target.Emit(Expression, u); err != nil {
			return err
		}
	} else {
		c.EmitConst(m.TargetType)
	}

	if err := emitArgsAsArray(u, m.Args); err != nil {
		return err
	}
	c.EmitDispatch()
	return nil
}

// cacheIndex returns this site's cache in u, registering it on first use.
func (m *MethodExpr) cacheIndex(u *Unit) int {
	if m.cacheChunk != u.Chunk {
		m.cacheID = u.newCache(m.MethodName, m.signature(), m.Span)
		m.cacheChunk = u.Chunk
	}
	return m.cacheID
}

// signature is the static parameter-type signature the site's cache
// matches members against. Unknown argument types are Object.
func (m *MethodExpr) signature() []reflect.Type {
	if len(m.ParamTypes) > 0 {
		return m.ParamTypes
	}
	sig := make([]reflect.Type, len(m.Args))
	for i, a := range m.Args {
		t := StaticTypeOf(a.Expr)
		if t == nil {
			t = host.Object
		}
		if a.Mode == ByRef {
			t = reflect.PointerTo(t)
		}
		sig[i] = t
	}
	return sig
}

func (m *MethodExpr) describe() string {
	if m.Method != nil {
		return m.Method.String()
	}
	if m.Shape == Static {
		return host.TypeName(m.TargetType) + "." + m.MethodName
	}
	return m.MethodName
}
