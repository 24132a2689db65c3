package il

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/funvibe/hostcall/internal/host"
)

// Disassemble returns a human-readable representation of the bytecode.
// highlight wraps opcode names, e.g. with terminal colors; nil leaves them plain.
func Disassemble(chunk *Chunk, highlight func(string) string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("== %s (%s) ==\n", chunk.Name, chunk.ID))
	for i, a := range chunk.Args {
		sb.WriteString(fmt.Sprintf("   arg %d %s %s\n", i, a.Name, host.TypeName(a.Type)))
	}
	for i, l := range chunk.Locals {
		sb.WriteString(fmt.Sprintf("   local %d %s %s\n", i, l.Name, host.TypeName(l.Type)))
	}

	ins, err := Decode(chunk)
	for i, in := range ins {
		sb.WriteString(fmt.Sprintf("%04d ", in.Offset))
		if i > 0 && chunk.LineAt(in.Offset) == chunk.LineAt(ins[i-1].Offset) {
			sb.WriteString("   | ")
		} else {
			sb.WriteString(fmt.Sprintf("%4d ", chunk.LineAt(in.Offset)))
		}

		name := in.Op.String()
		if highlight != nil {
			name = highlight(name)
		}
		sb.WriteString(name)
		if operand := describeOperand(chunk, in); operand != "" {
			sb.WriteByte(' ')
			sb.WriteString(operand)
		}
		sb.WriteByte('\n')
	}
	if err != nil {
		sb.WriteString(fmt.Sprintf("!! %v\n", err))
	}
	return sb.String()
}

func describeOperand(chunk *Chunk, in Instruction) string {
	switch in.Op {
	case OP_CONST, OP_LDC, OP_UNBOX, OP_CALL, OP_CALLVIRT, OP_SPAN:
		if in.Operand >= len(chunk.Constants) {
			return fmt.Sprintf("%d <invalid>", in.Operand)
		}
		return fmt.Sprintf("%d '%s'", in.Operand, constantString(chunk.Constants[in.Operand]))
	case OP_GET_LOCAL, OP_SET_LOCAL, OP_LOCAL_ADDR:
		if in.Operand < len(chunk.Locals) {
			return fmt.Sprintf("%d (%s)", in.Operand, chunk.Locals[in.Operand].Name)
		}
		return fmt.Sprintf("%d", in.Operand)
	case OP_GET_ARG, OP_ARG_ADDR:
		if in.Operand < len(chunk.Args) {
			return fmt.Sprintf("%d (%s)", in.Operand, chunk.Args[in.Operand].Name)
		}
		return fmt.Sprintf("%d", in.Operand)
	case OP_LOAD_CACHE:
		if caches := chunk.Caches.Caches(); in.Operand < len(caches) {
			c := caches[in.Operand]
			return fmt.Sprintf("%d %s%s", in.Operand, c.MethodName(), host.SignatureString(c.ParamTypes()))
		}
		return fmt.Sprintf("%d <invalid>", in.Operand)
	case OP_LDC_I4:
		return fmt.Sprintf("%d", in.Operand)
	case OP_CONV:
		return ConvKind(in.Operand).String()
	}
	return ""
}

func constantString(v any) string {
	switch c := v.(type) {
	case reflect.Type:
		return host.TypeName(c)
	case *host.Method:
		return c.String()
	case Span:
		return c.String()
	case nil:
		return "nil"
	}
	return fmt.Sprintf("%v (%T)", v, v)
}
