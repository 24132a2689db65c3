package il

import (
	"errors"
	"fmt"
)

var ErrTruncated = errors.New("truncated bytecode")

// Instruction is one decoded instruction.
type Instruction struct {
	Offset  int
	Op      Opcode
	Operand int // slot, constant index, cache index, immediate or ConvKind
}

// OperandWidth returns the number of operand bytes following op.
func OperandWidth(op Opcode) int {
	switch op {
	case OP_CONST, OP_LDC, OP_GET_LOCAL, OP_SET_LOCAL, OP_LOCAL_ADDR, OP_GET_ARG, OP_ARG_ADDR,
		OP_UNBOX, OP_CALL, OP_CALLVIRT, OP_LOAD_CACHE, OP_SPAN:
		return 2
	case OP_LDC_I4:
		return 4
	case OP_CONV:
		return 1
	}
	return 0
}

// Decode splits the chunk's code into instructions.
func Decode(c *Chunk) ([]Instruction, error) {
	var out []Instruction
	offset := 0
	for offset < len(c.Code) {
		op := Opcode(c.Code[offset])
		if _, ok := OpcodeNames[op]; !ok {
			return out, fmt.Errorf("unknown opcode %d at %04d", op, offset)
		}
		width := OperandWidth(op)
		if offset+1+width > len(c.Code) {
			return out, fmt.Errorf("%w: %s at %04d", ErrTruncated, op, offset)
		}
		ins := Instruction{Offset: offset, Op: op}
		switch width {
		case 1:
			ins.Operand = int(c.Code[offset+1])
		case 2:
			ins.Operand = c.ReadU16(offset + 1)
		case 4:
			ins.Operand = int(c.ReadI32(offset + 1))
		}
		out = append(out, ins)
		offset += 1 + width
	}
	return out, nil
}

// Ops returns just the opcodes of the chunk, in order.
func Ops(c *Chunk) []Opcode {
	ins, _ := Decode(c)
	ops := make([]Opcode, len(ins))
	for i, in := range ins {
		ops[i] = in.Op
	}
	return ops
}
