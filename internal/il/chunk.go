package il

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/funvibe/hostcall/internal/icache"
)

// MaxOperand is the largest constant, slot or cache index an instruction can carry.
const MaxOperand = 1<<16 - 1

var ErrOperandRange = errors.New("operand out of range")

// Span is a source location attached to the instructions that follow it.
type Span struct {
	File string
	Line int
	Col  int
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Col)
}

// Local describes a local variable or argument slot.
type Local struct {
	Name string
	Type reflect.Type
}

// Chunk is a compiled unit: its instruction stream, constant pool and the
// inline caches its dynamic call sites refer to.
type Chunk struct {
	// Code is the bytecode instructions
	Code []byte

	// Constants pool - boxed literals, types, methods, spans
	Constants []any

	// Lines maps bytecode offset to source line number (for errors)
	Lines []int

	// Locals declared while emitting
	Locals []Local

	// Args are the unit's parameters. With HasThis, Args[0] is the receiver.
	Args    []Local
	HasThis bool

	// Caches holds one inline cache per dynamic call site
	Caches *icache.Arena

	Name string
	ID   uuid.UUID

	line int   // line of the last span marker
	err  error // first operand overflow, reported by Err
}

// NewChunk creates a new empty chunk
func NewChunk(name string) *Chunk {
	return &Chunk{
		Code:      make([]byte, 0, 64),
		Constants: make([]any, 0, 16),
		Lines:     make([]int, 0, 64),
		Caches:    icache.NewArena(),
		Name:      name,
		ID:        uuid.New(),
	}
}

// Err returns the first emission error, if any.
func (c *Chunk) Err() error { return c.err }

// Len returns the number of bytes in the chunk
func (c *Chunk) Len() int { return len(c.Code) }

// Write adds a byte to the chunk with the current line
func (c *Chunk) Write(b byte) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, c.line)
}

// WriteOp writes an opcode to the chunk
func (c *Chunk) WriteOp(op Opcode) {
	c.Write(byte(op))
}

func (c *Chunk) writeU16(v int) {
	if v < 0 || v > MaxOperand {
		if c.err == nil {
			c.err = fmt.Errorf("%w: %d in %s", ErrOperandRange, v, c.Name)
		}
		v = 0
	}
	c.Write(byte(v >> 8))
	c.Write(byte(v))
}

func (c *Chunk) writeI32(v int32) {
	u := uint32(v)
	c.Write(byte(u >> 24))
	c.Write(byte(u >> 16))
	c.Write(byte(u >> 8))
	c.Write(byte(u))
}

// AddConstant adds a constant to the pool and returns its index
func (c *Chunk) AddConstant(value any) int {
	c.Constants = append(c.Constants, value)
	return len(c.Constants) - 1
}

// ReadU16 reads a 2-byte operand at offset
func (c *Chunk) ReadU16(offset int) int {
	return int(c.Code[offset])<<8 | int(c.Code[offset+1])
}

// ReadI32 reads a 4-byte signed operand at offset
func (c *Chunk) ReadI32(offset int) int32 {
	return int32(uint32(c.Code[offset])<<24 | uint32(c.Code[offset+1])<<16 | uint32(c.Code[offset+2])<<8 | uint32(c.Code[offset+3]))
}

// LineAt returns the source line recorded for offset, 0 if unknown.
func (c *Chunk) LineAt(offset int) int {
	if offset < 0 || offset >= len(c.Lines) {
		return 0
	}
	return c.Lines[offset]
}

// DeclareArg appends a parameter slot and returns its index.
func (c *Chunk) DeclareArg(name string, t reflect.Type) int {
	c.Args = append(c.Args, Local{Name: name, Type: t})
	return len(c.Args) - 1
}

// DeclareLocal appends a local slot and returns its index.
func (c *Chunk) DeclareLocal(name string, t reflect.Type) int {
	c.Locals = append(c.Locals, Local{Name: name, Type: t})
	return len(c.Locals) - 1
}
