package vm

import (
	"fmt"
	"reflect"

	"github.com/funvibe/hostcall/internal/host"
	"github.com/funvibe/hostcall/internal/icache"
)

// callMethod pops the arguments and, for instance methods, the receiver,
// then calls m. Void methods push nothing.
func (vm *VM) callMethod(m *host.Method, virtual bool) error {
	if err := vm.Context.Err(); err != nil {
		return err
	}

	n := m.Arity()
	if !m.Static {
		n++
	}
	if vm.sp < n {
		panic(errStackUnderflow)
	}
	base := vm.sp - n

	in := make([]reflect.Value, n)
	for i := 0; i < n; i++ {
		v := vm.stack[base+i]

		var t reflect.Type
		if !m.Static && i == 0 {
			if virtual && v.IsNil() {
				return fmt.Errorf("%w: %s", icache.ErrNilReceiver, m)
			}
			t = m.ReceiverType()
		} else {
			pos := i
			if !m.Static {
				pos--
			}
			t = m.Params[pos].GoType()
		}

		rv, err := host.Convert(v.Box(), t)
		if err != nil {
			return fmt.Errorf("%s: %w", m, err)
		}
		in[i] = rv
	}
	for vm.sp > base {
		vm.pop()
	}

	out, err := m.Call(in)
	if err != nil {
		return err
	}
	if m.Return != nil {
		vm.push(FromReflect(out))
	}
	return nil
}

// dispatch pops an argument array, a receiver and an inline cache, and
// pushes the boxed result of the late-bound call.
func (vm *VM) dispatch() error {
	if err := vm.Context.Err(); err != nil {
		return err
	}

	arr := vm.pop()
	recv := vm.pop()
	site := vm.pop()

	c, ok := site.Obj.(*icache.InlineCache)
	if !ok {
		return fmt.Errorf("dispatch: %s is not an inline cache", site.Inspect())
	}
	args, ok := arr.Obj.([]any)
	if !ok {
		return fmt.Errorf("dispatch: %s is not an argument array", arr.Inspect())
	}

	res, err := c.Dispatch(recv.Box(), args)
	if err != nil {
		return err
	}
	vm.push(ObjVal(res))
	return nil
}
