package compiler

import (
	"reflect"

	"github.com/funvibe/hostcall/internal/host"
	"github.com/funvibe/hostcall/internal/il"
)

// ResolveMethod picks the member of t a call with the given static argument
// types binds to at compile time. It returns nil when the choice cannot be
// made statically; the call is then compiled as a dynamic dispatch.
//
// A single member of matching arity is taken as is and its arguments are
// coerced. Among several, the applicable ones are kept and a lone survivor
// wins; otherwise the first exact match in declaration order.
func ResolveMethod(reg *host.Registry, t reflect.Type, name string, argTypes []reflect.Type, static bool) *host.Method {
	if reg == nil || t == nil {
		return nil
	}

	var byArity []*host.Method
	for _, m := range reg.Members(t, name) {
		if m.Static == static && m.Arity() == len(argTypes) {
			byArity = append(byArity, m)
		}
	}
	switch len(byArity) {
	case 0:
		return nil
	case 1:
		return byArity[0]
	}

	var fits []*host.Method
	for _, m := range byArity {
		if applicable(m, argTypes) {
			fits = append(fits, m)
		}
	}
	if len(fits) == 1 {
		return fits[0]
	}
	for _, m := range fits {
		if exact(m, argTypes) {
			return m
		}
	}
	return nil
}

func applicable(m *host.Method, argTypes []reflect.Type) bool {
	for i, p := range m.Params {
		a := argTypes[i]
		if a == nil {
			return false
		}
		if p.ByRef {
			if a != p.Type {
				return false
			}
			continue
		}
		if a == p.Type || a.AssignableTo(p.Type) || widens(a, p.Type) {
			continue
		}
		return false
	}
	return true
}

func exact(m *host.Method, argTypes []reflect.Type) bool {
	for i, p := range m.Params {
		if argTypes[i] != p.Type {
			return false
		}
	}
	return true
}

func widens(from, to reflect.Type) bool {
	return (from == host.Int && to == host.Long) || (from == host.Float && to == host.Double)
}

func argTypes(args []HostArg) []reflect.Type {
	types := make([]reflect.Type, len(args))
	for i, a := range args {
		if a.Mode == ByRef && a.Binding != nil {
			types[i] = a.Binding.Type
			continue
		}
		types[i] = StaticTypeOf(a.Expr)
	}
	return types
}

// NewInstanceMethodExpr builds a call of name on target. The member is
// resolved when target has a concrete static type.
func NewInstanceMethodExpr(reg *host.Registry, span *il.Span, tag reflect.Type, target Expr, name string, args []HostArg) *MethodExpr {
	m := &MethodExpr{
		MethodName: name,
		Args:       args,
		Shape:      Instance,
		Target:     target,
		Tag:        tag,
		Span:       span,
	}
	if t := StaticTypeOf(target); t != nil && t != host.Object {
		m.Method = ResolveMethod(reg, t, name, argTypes(args), false)
	}
	return m
}

// NewStaticMethodExpr builds a call of the static member name of t.
func NewStaticMethodExpr(reg *host.Registry, span *il.Span, tag reflect.Type, t reflect.Type, name string, args []HostArg) *MethodExpr {
	return &MethodExpr{
		MethodName: name,
		Args:       args,
		Shape:      Static,
		TargetType: t,
		Tag:        tag,
		Span:       span,
		Method:     ResolveMethod(reg, t, name, argTypes(args), true),
	}
}
