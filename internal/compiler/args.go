package compiler

import (
	"fmt"
	"reflect"

	"github.com/funvibe/hostcall/internal/config"
	"github.com/funvibe/hostcall/internal/host"
	"github.com/funvibe/hostcall/internal/il"
)

// emitTypedArgs pushes each argument as the exact type its parameter
// takes. By-reference parameters receive an address: the binding's own
// storage for ByRef arguments, a fresh temporary for plain values.
func emitTypedArgs(u *Unit, params []host.Param, args []HostArg) error {
	c := u.Chunk
	for i, p := range params {
		arg := args[i]
		switch {
		case !p.ByRef:
			if arg.Mode == ByRef {
				return fmt.Errorf("%w: argument %d of parameter type %s is passed by value",
					ErrIllegalByRef, i, host.TypeName(p.Type))
			}
			if err := emitTypedArg(u, i, p.Type, arg.Expr); err != nil {
				return err
			}

		case arg.Mode == ByRef:
			if err := emitByRefArg(u, i, p, arg); err != nil {
				return err
			}

		default:
			if err := emitTypedArg(u, i, p.Type, arg.Expr); err != nil {
				return err
			}
			slot := c.DeclareLocal(fmt.Sprintf("%s%d", config.ByRefTempPrefix, i), p.Type)
			c.EmitStoreLocal(slot)
			c.EmitLocalAddr(slot)
		}
	}
	return nil
}

func emitByRefArg(u *Unit, pos int, p host.Param, arg HostArg) error {
	b := arg.Binding
	if b == nil {
		return fmt.Errorf("%w: argument %d has no storage to pass", ErrIllegalByRef, pos)
	}
	if b.Type != p.Type {
		return &ConversionError{Position: pos, ParamType: p.GoType(), ArgType: reflect.PointerTo(b.Type)}
	}

	switch b.Kind {
	case BindArg, BindThis:
		u.Chunk.EmitArgAddr(b.Index)
	default:
		u.Chunk.EmitLocalAddr(b.Index)
	}
	return nil
}

// emitTypedArg pushes arg converted to paramType. Primitive arguments are
// widened or narrowed with a single conversion; everything else is boxed
// and cast.
func emitTypedArg(u *Unit, pos int, paramType reflect.Type, arg Expr) error {
	c := u.Chunk
	primt := MaybePrimitiveType(arg)

	if primt != nil {
		if conv, needed, ok := primitiveConversion(primt, paramType); ok {
			if err := arg.(MaybePrimitiveExpr).EmitUnboxed(Expression, u); err != nil {
				return err
			}
			if needed {
				c.EmitConv(conv)
			}
			return nil
		}
	}

	argType := primt
	if argType == nil {
		argType = StaticTypeOf(arg)
	}
	if !host.CanCast(paramType) || !host.Convertible(argType, paramType) {
		return &ConversionError{Position: pos, ParamType: paramType, ArgType: argType}
	}
	if err := arg.Emit(Expression, u); err != nil {
		return err
	}
	emitUnboxArg(c, paramType)
	return nil
}

// primitiveConversion returns the conversion taking an unboxed from to an
// unboxed to; needed is false when the types already agree. The long to
// int narrowing is checked unless unchecked math is on at emission time.
func primitiveConversion(from, to reflect.Type) (kind il.ConvKind, needed, ok bool) {
	switch {
	case from == to:
		return 0, false, true
	case from == host.Int && to == host.Long:
		return il.ConvI8, true, true
	case from == host.Long && to == host.Int:
		if config.UncheckedMath() {
			return il.ConvI4, true, true
		}
		return il.ConvOvfI4, true, true
	case from == host.Float && to == host.Double:
		return il.ConvR8, true, true
	case from == host.Double && to == host.Float:
		return il.ConvR4, true, true
	}
	return 0, false, false
}

// emitArgsAsArray pushes a []any holding each argument boxed.
func emitArgsAsArray(u *Unit, args []HostArg) error {
	c := u.Chunk
	c.EmitInt(int32(len(args)))
	c.EmitNewArray()
	for i, a := range args {
		c.EmitDup()
		c.EmitInt(int32(i))
		if err := a.Expr.Emit(Expression, u); err != nil {
			return err
		}
		c.EmitStoreElem()
	}
	return nil
}
