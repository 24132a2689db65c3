package il

import (
	"reflect"

	"github.com/funvibe/hostcall/internal/host"
)

// The Emit methods make Chunk the emission sink of the call compiler.

func (c *Chunk) EmitOp(op Opcode) { c.WriteOp(op) }

func (c *Chunk) EmitPop()    { c.WriteOp(OP_POP) }
func (c *Chunk) EmitDup()    { c.WriteOp(OP_DUP) }
func (c *Chunk) EmitNil()    { c.WriteOp(OP_NIL) }
func (c *Chunk) EmitBox()    { c.WriteOp(OP_BOX) }
func (c *Chunk) EmitReturn() { c.WriteOp(OP_RETURN) }

// EmitConst pushes value in boxed form.
func (c *Chunk) EmitConst(value any) {
	c.WriteOp(OP_CONST)
	c.writeU16(c.AddConstant(value))
}

// EmitPrimitive pushes a primitive constant unboxed.
func (c *Chunk) EmitPrimitive(value any) {
	c.WriteOp(OP_LDC)
	c.writeU16(c.AddConstant(value))
}

// EmitInt pushes an int32 immediate.
func (c *Chunk) EmitInt(v int32) {
	c.WriteOp(OP_LDC_I4)
	c.writeI32(v)
}

func (c *Chunk) EmitConv(kind ConvKind) {
	c.WriteOp(OP_CONV)
	c.Write(byte(kind))
}

// EmitUnbox casts the boxed value on top of the stack to t.
func (c *Chunk) EmitUnbox(t reflect.Type) {
	c.WriteOp(OP_UNBOX)
	c.writeU16(c.AddConstant(t))
}

// EmitCall emits a typed call to m: CALLVIRT when virtual, CALL otherwise.
func (c *Chunk) EmitCall(m *host.Method, virtual bool) {
	if virtual {
		c.WriteOp(OP_CALLVIRT)
	} else {
		c.WriteOp(OP_CALL)
	}
	c.writeU16(c.AddConstant(m))
}

// EmitLoadCache pushes the inline cache registered under id in this unit.
func (c *Chunk) EmitLoadCache(id int) {
	c.WriteOp(OP_LOAD_CACHE)
	c.writeU16(id)
}

func (c *Chunk) EmitDispatch() { c.WriteOp(OP_DISPATCH) }

// EmitNewArray pops a length and pushes a new []any of that length.
func (c *Chunk) EmitNewArray() { c.WriteOp(OP_NEWARR) }

// EmitStoreElem pops value, index and array and stores the boxed value.
func (c *Chunk) EmitStoreElem() { c.WriteOp(OP_STELEM) }

func (c *Chunk) EmitLoadLocal(slot int)  { c.slotOp(OP_GET_LOCAL, slot) }
func (c *Chunk) EmitStoreLocal(slot int) { c.slotOp(OP_SET_LOCAL, slot) }
func (c *Chunk) EmitLocalAddr(slot int)  { c.slotOp(OP_LOCAL_ADDR, slot) }
func (c *Chunk) EmitLoadArg(slot int)    { c.slotOp(OP_GET_ARG, slot) }
func (c *Chunk) EmitArgAddr(slot int)    { c.slotOp(OP_ARG_ADDR, slot) }

func (c *Chunk) slotOp(op Opcode, slot int) {
	c.WriteOp(op)
	c.writeU16(slot)
}

// EmitSpan records a source span. Following instructions are attributed
// to its line. A nil span emits nothing.
func (c *Chunk) EmitSpan(s *Span) {
	if s == nil {
		return
	}
	c.line = s.Line
	c.WriteOp(OP_SPAN)
	c.writeU16(c.AddConstant(*s))
}
