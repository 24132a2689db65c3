package vm

import (
	"fmt"
	"math"

	"github.com/funvibe/hostcall/internal/host"
	"github.com/funvibe/hostcall/internal/il"
)

// binaryOp executes an arithmetic intrinsic. Both operands have the same
// primitive type; the _OVF forms trap on int64 overflow.
func (vm *VM) binaryOp(op il.Opcode) error {
	b := vm.pop()
	a := vm.pop()

	if a.Type == ValLong && b.Type == ValLong {
		x, y := a.AsLong(), b.AsLong()
		var (
			r   int64
			err error
		)
		switch op {
		case il.OP_ADD:
			r = x + y
		case il.OP_SUB:
			r = x - y
		case il.OP_MUL:
			r = x * y
		case il.OP_ADD_OVF:
			r, err = host.AddLong(x, y)
		case il.OP_SUB_OVF:
			r, err = host.SubtractLong(x, y)
		case il.OP_MUL_OVF:
			r, err = host.MultiplyLong(x, y)
		}
		if err != nil {
			return err
		}
		vm.push(LongVal(r))
		return nil
	}

	if a.Type == ValDouble && b.Type == ValDouble {
		x, y := a.AsDouble(), b.AsDouble()
		var r float64
		switch op {
		case il.OP_ADD, il.OP_ADD_OVF:
			r = x + y
		case il.OP_SUB, il.OP_SUB_OVF:
			r = x - y
		case il.OP_MUL, il.OP_MUL_OVF:
			r = x * y
		}
		vm.push(DoubleVal(r))
		return nil
	}

	return fmt.Errorf("%s: operand types %s and %s", op, a.Type, b.Type)
}

func (vm *VM) comparisonOp(op il.Opcode) error {
	b := vm.pop()
	a := vm.pop()

	var lt, gt bool
	switch {
	case a.Type == ValLong && b.Type == ValLong:
		lt, gt = a.AsLong() < b.AsLong(), a.AsLong() > b.AsLong()
	case a.Type == ValDouble && b.Type == ValDouble:
		lt, gt = a.AsDouble() < b.AsDouble(), a.AsDouble() > b.AsDouble()
	default:
		return fmt.Errorf("%s: operand types %s and %s", op, a.Type, b.Type)
	}

	if op == il.OP_LT {
		vm.push(BoolVal(lt))
	} else {
		vm.push(BoolVal(gt))
	}
	return nil
}

// convert applies a numeric conversion to an unboxed primitive.
func convert(kind il.ConvKind, v Value) (Value, error) {
	switch kind {
	case il.ConvI8:
		if v.Type == ValInt {
			return LongVal(int64(v.AsInt())), nil
		}
	case il.ConvI4:
		if v.Type == ValLong {
			return IntVal(int32(v.AsLong())), nil
		}
	case il.ConvOvfI4:
		if v.Type == ValLong {
			x := v.AsLong()
			if x < math.MinInt32 || x > math.MaxInt32 {
				return Value{}, fmt.Errorf("%w: %d does not fit in int32", host.ErrOverflow, x)
			}
			return IntVal(int32(x)), nil
		}
	case il.ConvR8:
		if v.Type == ValFloat {
			return DoubleVal(float64(v.AsFloat())), nil
		}
	case il.ConvR4:
		if v.Type == ValDouble {
			return FloatVal(float32(v.AsDouble())), nil
		}
	}
	return Value{}, fmt.Errorf("conv %s: unexpected operand %s", kind, v.Type)
}
