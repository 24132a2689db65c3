package vm

import (
	"fmt"
	"reflect"

	"github.com/funvibe/hostcall/internal/host"
	"github.com/funvibe/hostcall/internal/il"
)

func (vm *VM) executeOneOp(op il.Opcode) error {
	switch op {
	case il.OP_NOP:

	case il.OP_POP:
		vm.pop()

	case il.OP_DUP:
		vm.push(vm.peek(0))

	case il.OP_NIL:
		vm.push(NilVal())

	case il.OP_CONST:
		vm.push(ObjVal(vm.readConstant()))

	case il.OP_LDC:
		c := vm.readConstant()
		v := FromReflect(reflect.ValueOf(c))
		if !v.IsPrimitive() {
			return fmt.Errorf("ldc of non-primitive constant %T", c)
		}
		vm.push(v)

	case il.OP_LDC_I4:
		vm.push(IntVal(vm.readI32()))

	case il.OP_GET_LOCAL:
		vm.push(FromReflect(vm.readCell(vm.locals)))

	case il.OP_GET_ARG:
		vm.push(FromReflect(vm.readCell(vm.args)))

	case il.OP_SET_LOCAL:
		cell := vm.readCell(vm.locals)
		v, err := host.Convert(vm.pop().Box(), cell.Type())
		if err != nil {
			return err
		}
		cell.Set(v)

	case il.OP_LOCAL_ADDR:
		vm.push(RefVal(vm.readCell(vm.locals).Addr()))

	case il.OP_ARG_ADDR:
		vm.push(RefVal(vm.readCell(vm.args).Addr()))

	case il.OP_NEWARR:
		n := vm.pop()
		if n.Type != ValInt || n.AsInt() < 0 {
			return fmt.Errorf("newarr: invalid length %s", n.Inspect())
		}
		vm.push(ObjVal(make([]any, n.AsInt())))

	case il.OP_STELEM:
		v := vm.pop()
		idx := vm.pop()
		arr, ok := vm.pop().Obj.([]any)
		if !ok {
			return fmt.Errorf("stelem: target is not an array")
		}
		if idx.Type != ValInt || int(idx.AsInt()) >= len(arr) || idx.AsInt() < 0 {
			return fmt.Errorf("stelem: index %s out of range [0, %d)", idx.Inspect(), len(arr))
		}
		arr[idx.AsInt()] = v.Box()

	case il.OP_CONV:
		v, err := convert(il.ConvKind(vm.readByte()), vm.pop())
		if err != nil {
			return err
		}
		vm.push(v)

	case il.OP_BOX:
		vm.push(ObjVal(vm.pop().Box()))

	case il.OP_UNBOX:
		t, ok := vm.readConstant().(reflect.Type)
		if !ok {
			return fmt.Errorf("unbox: operand is not a type")
		}
		rv, err := host.Convert(vm.pop().Box(), t)
		if err != nil {
			return err
		}
		vm.push(FromReflect(rv))

	case il.OP_CALL, il.OP_CALLVIRT:
		m, ok := vm.readConstant().(*host.Method)
		if !ok {
			return fmt.Errorf("%s: operand is not a method", op)
		}
		return vm.callMethod(m, op == il.OP_CALLVIRT)

	case il.OP_LOAD_CACHE:
		id := vm.readU16()
		c, err := vm.chunk.Caches.Lookup(id)
		if err != nil {
			return err
		}
		vm.push(ObjVal(c))

	case il.OP_DISPATCH:
		return vm.dispatch()

	case il.OP_ADD, il.OP_ADD_OVF, il.OP_SUB, il.OP_SUB_OVF, il.OP_MUL, il.OP_MUL_OVF:
		return vm.binaryOp(op)

	case il.OP_LT, il.OP_GT:
		return vm.comparisonOp(op)

	case il.OP_SPAN:
		s, ok := vm.readConstant().(il.Span)
		if !ok {
			return fmt.Errorf("span: operand is not a span")
		}
		vm.span = &s

	default:
		return fmt.Errorf("unknown opcode %s", op)
	}
	return nil
}
