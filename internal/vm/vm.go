// Package vm executes compiled call units.
package vm

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/funvibe/hostcall/internal/host"
	"github.com/funvibe/hostcall/internal/il"
)

var errTruncatedBytecode = errors.New("truncated bytecode")
var errStackUnderflow = errors.New("stack underflow")
var errStackOverflow = errors.New("stack overflow")
var errInvalidConstantIndex = errors.New("invalid constant index")
var errInvalidSlot = errors.New("invalid slot")

// Initial size for the operand stack
const InitialStackSize = 64

// Growth increment when the stack needs to expand
const StackGrowthIncrement = 64

// Maximum operand stack size to prevent OOM
const MaxStackSize = 1 << 16

// VM is the virtual machine that executes a chunk
type VM struct {
	stack []Value
	sp    int // Stack pointer (points to next free slot)

	chunk *il.Chunk
	ip    int

	// Argument and local cells. Each is addressable so that by-reference
	// parameters can be handed a pointer to it.
	args   []reflect.Value
	locals []reflect.Value

	// Last source span seen
	span *il.Span

	// Context for cancellation
	Context context.Context
}

// New creates a new VM instance
func New() *VM {
	return &VM{
		stack:   make([]Value, InitialStackSize),
		Context: context.Background(),
	}
}

// SetContext sets the context for cancellation
func (vm *VM) SetContext(ctx context.Context) {
	vm.Context = ctx
}

// Run executes chunk with the given arguments, the receiver first when the
// chunk has one, and returns the boxed result.
func (vm *VM) Run(chunk *il.Chunk, args ...any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok || !isMachineFault(e) {
				panic(r)
			}
			err = vm.formatError(e)
			result = nil
		}
	}()

	if err := vm.reset(chunk, args); err != nil {
		return nil, err
	}

	for {
		if vm.ip >= len(chunk.Code) {
			return nil, vm.formatError(errTruncatedBytecode)
		}
		op := il.Opcode(vm.readByte())
		if op == il.OP_RETURN {
			return vm.pop().Box(), nil
		}
		if err := vm.executeOneOp(op); err != nil {
			return nil, vm.formatError(err)
		}
	}
}

// Arg returns the current value of argument cell i, after a run.
func (vm *VM) Arg(i int) any {
	if i < 0 || i >= len(vm.args) {
		return nil
	}
	return vm.args[i].Interface()
}

// Local returns the current value of local cell i, after a run.
func (vm *VM) Local(i int) any {
	if i < 0 || i >= len(vm.locals) {
		return nil
	}
	return vm.locals[i].Interface()
}

func (vm *VM) reset(chunk *il.Chunk, args []any) error {
	if len(args) != len(chunk.Args) {
		return fmt.Errorf("%s: %w: want %d arguments, got %d",
			chunk.Name, host.ErrArgumentCount, len(chunk.Args), len(args))
	}

	vm.chunk = chunk
	vm.ip = 0
	vm.sp = 0
	vm.span = nil

	vm.args = make([]reflect.Value, len(chunk.Args))
	for i, a := range chunk.Args {
		cell := reflect.New(a.Type).Elem()
		v, err := host.Convert(args[i], a.Type)
		if err != nil {
			return fmt.Errorf("%s: argument %s: %w", chunk.Name, a.Name, err)
		}
		cell.Set(v)
		vm.args[i] = cell
	}

	vm.locals = make([]reflect.Value, len(chunk.Locals))
	for i, l := range chunk.Locals {
		vm.locals[i] = reflect.New(l.Type).Elem()
	}
	return nil
}

func isMachineFault(err error) bool {
	return err == errTruncatedBytecode || err == errStackUnderflow ||
		err == errStackOverflow || err == errInvalidConstantIndex || err == errInvalidSlot
}

// Stack operations
func (vm *VM) push(v Value) {
	if vm.sp >= len(vm.stack) {
		if vm.sp >= MaxStackSize {
			panic(errStackOverflow)
		}
		newStack := make([]Value, len(vm.stack)+StackGrowthIncrement)
		copy(newStack, vm.stack[:vm.sp])
		vm.stack = newStack
	}
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() Value {
	if vm.sp <= 0 {
		panic(errStackUnderflow)
	}
	vm.sp--
	v := vm.stack[vm.sp]
	vm.stack[vm.sp] = Value{}
	return v
}

func (vm *VM) peek(distance int) Value {
	idx := vm.sp - 1 - distance
	if idx < 0 {
		panic(errStackUnderflow)
	}
	return vm.stack[idx]
}

// Read helpers
func (vm *VM) readByte() byte {
	if vm.ip >= len(vm.chunk.Code) {
		panic(errTruncatedBytecode)
	}
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) readU16() int {
	high := vm.readByte()
	low := vm.readByte()
	return int(high)<<8 | int(low)
}

func (vm *VM) readI32() int32 {
	if vm.ip+4 > len(vm.chunk.Code) {
		panic(errTruncatedBytecode)
	}
	v := vm.chunk.ReadI32(vm.ip)
	vm.ip += 4
	return v
}

func (vm *VM) readConstant() any {
	idx := vm.readU16()
	if idx >= len(vm.chunk.Constants) {
		panic(errInvalidConstantIndex)
	}
	return vm.chunk.Constants[idx]
}

func (vm *VM) readCell(cells []reflect.Value) reflect.Value {
	idx := vm.readU16()
	if idx >= len(cells) {
		panic(errInvalidSlot)
	}
	return cells[idx]
}

// formatError prefixes err with the chunk name and the line of the
// instruction that failed.
func (vm *VM) formatError(err error) error {
	line := 0
	if vm.chunk != nil && vm.ip > 0 {
		line = vm.chunk.LineAt(vm.ip - 1)
	}
	if line == 0 && vm.span != nil {
		line = vm.span.Line
	}
	name := "<vm>"
	if vm.chunk != nil {
		name = vm.chunk.Name
	}
	return fmt.Errorf("%s:%d: %w", name, line, err)
}
