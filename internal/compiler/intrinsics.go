package compiler

import (
	"reflect"

	"github.com/funvibe/hostcall/internal/host"
	"github.com/funvibe/hostcall/internal/il"
)

type intrinsicKey struct {
	name string
	typ  reflect.Type
}

// intrinsics maps the binary Numbers members to the instruction that
// replaces a static call to them.
var intrinsics = map[intrinsicKey]il.Opcode{
	{"Add", host.Long}:            il.OP_ADD_OVF,
	{"Add", host.Double}:          il.OP_ADD,
	{"UncheckedAdd", host.Long}:   il.OP_ADD,
	{"UncheckedAdd", host.Double}: il.OP_ADD,
	{"Subtract", host.Long}:       il.OP_SUB_OVF,
	{"Subtract", host.Double}:     il.OP_SUB,
	{"Multiply", host.Long}:       il.OP_MUL_OVF,
	{"Multiply", host.Double}:     il.OP_MUL,
	{"Lt", host.Long}:             il.OP_LT,
	{"Lt", host.Double}:           il.OP_LT,
	{"Gt", host.Long}:             il.OP_GT,
	{"Gt", host.Double}:           il.OP_GT,
}

func intrinsicOp(m *host.Method) (il.Opcode, bool) {
	if m == nil || !m.Static || m.Owner != host.NumbersType || len(m.Params) != 2 {
		return 0, false
	}
	x, y := m.Params[0], m.Params[1]
	if x.ByRef || y.ByRef || x.Type != y.Type {
		return 0, false
	}
	op, ok := intrinsics[intrinsicKey{m.Name, x.Type}]
	return op, ok
}

// HasIntrinsic reports whether static calls to m compile to a single
// instruction instead of a call.
func HasIntrinsic(m *host.Method) bool {
	_, ok := intrinsicOp(m)
	return ok
}
