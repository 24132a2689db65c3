package host

import (
	"fmt"
	"reflect"
	"strings"
)

// Param is one formal parameter of a Method.
type Param struct {
	Name  string
	Type  reflect.Type // element type when ByRef
	ByRef bool
}

// GoType is the type the underlying Go function takes for this parameter.
func (p Param) GoType() reflect.Type {
	if p.ByRef {
		return reflect.PointerTo(p.Type)
	}
	return p.Type
}

func (p Param) String() string {
	if p.ByRef {
		return "ref " + TypeName(p.Type)
	}
	return TypeName(p.Type)
}

// AssignableFrom reports whether an argument of static type arg can be
// bound to p. A by-reference parameter only accepts a pointer to its type.
func AssignableFrom(p Param, arg reflect.Type) bool {
	if arg == nil {
		return false
	}
	if p.ByRef {
		return arg == reflect.PointerTo(p.Type)
	}
	return arg.AssignableTo(p.Type)
}

// Method is a member of a host type. Instance methods are backed by a Go
// function taking the receiver as its first argument.
type Method struct {
	Name    string
	Owner   reflect.Type
	Params  []Param
	Return  reflect.Type // nil for void
	Static  bool
	Generic bool // open generic definition, never called directly

	fn           reflect.Value
	recv         reflect.Type
	returnsError bool
}

// Arity returns the number of formal parameters, not counting the receiver.
func (m *Method) Arity() int { return len(m.Params) }

// ParamTypes returns the formal parameter types in order.
func (m *Method) ParamTypes() []reflect.Type {
	types := make([]reflect.Type, len(m.Params))
	for i, p := range m.Params {
		types[i] = p.GoType()
	}
	return types
}

// ReceiverType is the Go type of the receiver argument, nil for static members.
func (m *Method) ReceiverType() reflect.Type { return m.recv }

func (m *Method) String() string {
	var sb strings.Builder
	if m.Static {
		sb.WriteString("static ")
	}
	sb.WriteString(TypeName(m.Owner))
	sb.WriteByte('.')
	sb.WriteString(m.Name)
	if m.Generic {
		sb.WriteString("[T]")
	}
	sb.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteByte(')')
	if m.Return != nil {
		sb.WriteByte(' ')
		sb.WriteString(TypeName(m.Return))
	}
	return sb.String()
}

// Call invokes the method with already-typed arguments. For instance
// methods in[0] is the receiver. A trailing Go error result is returned
// as the error; a panic in the host function is recovered into ErrHostPanic.
func (m *Method) Call(in []reflect.Value) (out reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrHostPanic, m, r)
		}
	}()

	results := m.fn.Call(in)
	if m.returnsError {
		if e := results[len(results)-1]; !e.IsNil() {
			return reflect.Value{}, e.Interface().(error)
		}
		results = results[:len(results)-1]
	}
	if m.Return == nil || len(results) == 0 {
		return reflect.Value{}, nil
	}
	return results[0], nil
}

// Invoke is late-bound invocation: every argument is cast to its parameter
// type. By-reference parameters are backed by a temporary whose final
// value is written back into args.
func (m *Method) Invoke(receiver any, args []any) (any, error) {
	if len(args) != len(m.Params) {
		return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrArgumentCount, m, len(m.Params), len(args))
	}

	in := make([]reflect.Value, 0, len(args)+1)
	if !m.Static {
		recv, err := Convert(receiver, m.recv)
		if err != nil {
			return nil, fmt.Errorf("%s: receiver: %w", m, err)
		}
		in = append(in, recv)
	}

	var refs map[int]reflect.Value
	for i, p := range m.Params {
		v, err := Convert(args[i], p.Type)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", m, i, err)
		}
		if p.ByRef {
			cell := reflect.New(p.Type)
			cell.Elem().Set(v)
			if refs == nil {
				refs = make(map[int]reflect.Value)
			}
			refs[i] = cell
			v = cell
		}
		in = append(in, v)
	}

	out, err := m.Call(in)
	for i, cell := range refs {
		args[i] = cell.Elem().Interface()
	}
	if err != nil {
		return nil, err
	}
	return Box(out), nil
}

func newMethod(owner reflect.Type, name string, fn reflect.Value, static bool, o *methodOptions) (*Method, error) {
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s.%s: not a function", TypeName(owner), name)
	}
	ft := fn.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("%s.%s: variadic functions are not supported", TypeName(owner), name)
	}

	m := &Method{Name: name, Owner: owner, Static: static, fn: fn}
	if o != nil {
		m.Generic = o.generic
	}

	first := 0
	if !static {
		if ft.NumIn() == 0 {
			return nil, fmt.Errorf("%s.%s: instance method needs a receiver parameter", TypeName(owner), name)
		}
		m.recv = ft.In(0)
		first = 1
	}

	for i := first; i < ft.NumIn(); i++ {
		pos := i - first
		p := Param{Type: ft.In(i)}
		if o != nil {
			if pos < len(o.names) {
				p.Name = o.names[pos]
			}
			if o.byRef[pos] {
				if p.Type.Kind() != reflect.Pointer {
					return nil, fmt.Errorf("%s.%s: by-reference parameter %d must be a pointer, got %s", TypeName(owner), name, pos, p.Type)
				}
				p.Type = p.Type.Elem()
				p.ByRef = true
			}
		}
		m.Params = append(m.Params, p)
	}

	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) == errorType {
			m.returnsError = true
		} else {
			m.Return = ft.Out(0)
		}
	case 2:
		if ft.Out(1) != errorType {
			return nil, fmt.Errorf("%s.%s: second result must be error", TypeName(owner), name)
		}
		m.Return = ft.Out(0)
		m.returnsError = true
	default:
		return nil, fmt.Errorf("%s.%s: too many results", TypeName(owner), name)
	}
	return m, nil
}
