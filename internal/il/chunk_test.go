package il

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/funvibe/hostcall/internal/host"
	"github.com/funvibe/hostcall/internal/icache"
)

func TestEmitDecode(t *testing.T) {
	c := NewChunk("t")
	slot := c.DeclareLocal("x", host.Long)
	c.EmitSpan(&Span{File: "a.clj", Line: 3, Col: 1})
	c.EmitInt(-7)
	c.EmitConv(ConvI8)
	c.EmitStoreLocal(slot)
	c.EmitLocalAddr(slot)
	c.EmitPop()
	c.EmitConst("boxed")
	c.EmitReturn()

	ins, err := Decode(c)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []struct {
		op      Opcode
		operand int
	}{
		{OP_SPAN, 0},
		{OP_LDC_I4, -7},
		{OP_CONV, int(ConvI8)},
		{OP_SET_LOCAL, slot},
		{OP_LOCAL_ADDR, slot},
		{OP_POP, 0},
		{OP_CONST, 1},
		{OP_RETURN, 0},
	}
	if len(ins) != len(want) {
		t.Fatalf("decoded %d instructions, want %d", len(ins), len(want))
	}
	for i, w := range want {
		if ins[i].Op != w.op || ins[i].Operand != w.operand {
			t.Errorf("instruction %d = %s %d, want %s %d", i, ins[i].Op, ins[i].Operand, w.op, w.operand)
		}
	}
	if c.LineAt(ins[1].Offset) != 3 {
		t.Errorf("line after span = %d, want 3", c.LineAt(ins[1].Offset))
	}
	if c.LineAt(-1) != 0 || c.LineAt(c.Len()) != 0 {
		t.Error("LineAt out of range should be 0")
	}
}

func TestEmitSpan_Nil(t *testing.T) {
	c := NewChunk("t")
	c.EmitSpan(nil)
	if c.Len() != 0 {
		t.Errorf("nil span emitted %d bytes", c.Len())
	}
}

func TestOperandRange(t *testing.T) {
	c := NewChunk("big")
	c.EmitLoadLocal(MaxOperand)
	if c.Err() != nil {
		t.Fatalf("MaxOperand should fit: %v", c.Err())
	}
	c.EmitLoadLocal(MaxOperand + 1)
	c.EmitLoadCache(-1)
	if !errors.Is(c.Err(), ErrOperandRange) {
		t.Fatalf("Err = %v, want ErrOperandRange", c.Err())
	}
	if !strings.Contains(c.Err().Error(), "65536") {
		t.Errorf("the first range error should be kept, got %v", c.Err())
	}
}

func TestDecode_Truncated(t *testing.T) {
	c := NewChunk("t")
	c.EmitInt(1)
	c.Code = c.Code[:3]
	if _, err := Decode(c); !errors.Is(err, ErrTruncated) {
		t.Errorf("Decode error = %v, want ErrTruncated", err)
	}

	c = NewChunk("t")
	c.Write(0xFF)
	if _, err := Decode(c); err == nil {
		t.Error("expected unknown opcode error")
	}
}

func TestOps(t *testing.T) {
	c := NewChunk("t")
	c.EmitNil()
	c.EmitBox()
	c.EmitDup()
	if got := Ops(c); !reflect.DeepEqual(got, []Opcode{OP_NIL, OP_BOX, OP_DUP}) {
		t.Errorf("Ops = %v", got)
	}
}

func TestDisassemble(t *testing.T) {
	reg := host.NewRegistry()
	add := reg.Members(host.NumbersType, "Add")[0]

	c := NewChunk("demo")
	c.DeclareArg("this", host.Long)
	tmp := c.DeclareLocal("_byRef_temp0", host.Long)
	id := c.Caches.Register(icache.New(reg, "Speak", []reflect.Type{host.Long}))

	c.EmitSpan(&Span{File: "demo.clj", Line: 1, Col: 2})
	c.EmitLoadArg(0)
	c.EmitLoadLocal(tmp)
	c.EmitCall(add, false)
	c.EmitLoadCache(id)
	c.EmitUnbox(host.Int)
	c.EmitConv(ConvOvfI4)
	c.EmitReturn()

	out := Disassemble(c, func(s string) string { return "<" + s + ">" })
	for _, want := range []string{
		"== demo (",
		"   arg 0 this int64",
		"   local 0 _byRef_temp0 int64",
		"<SPAN> 0 'demo.clj:1:2'",
		"<GET_ARG> 0 (this)",
		"<GET_LOCAL> 0 (_byRef_temp0)",
		"<CALL> 1 'static host.Numbers.Add(int64, int64) int64'",
		"<LOAD_CACHE> 0 Speak(int64)",
		"<UNBOX> 2 'int32'",
		"<CONV> OVF_I4",
		"   | <RETURN>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("disassembly missing %q:\n%s", want, out)
		}
	}
	if c.Caches.Lookups() != 0 {
		t.Error("disassembly must not count cache lookups")
	}
}
