// Package il is the instruction stream that call sites are compiled into.
package il

// Opcode represents a single instruction
type Opcode byte

const (
	// Stack manipulation
	OP_NOP  Opcode = iota
	OP_POP         // Discard top of stack
	OP_DUP         // Duplicate top of stack
	OP_NIL         // Push nil
	OP_CONST       // Push boxed constant: u16 constant index
	OP_LDC         // Push unboxed primitive constant: u16 constant index
	OP_LDC_I4      // Push int32 immediate: i32

	// Locals and arguments
	OP_GET_LOCAL  // Push local: u16 slot
	OP_SET_LOCAL  // Pop into local: u16 slot
	OP_LOCAL_ADDR // Push reference to local: u16 slot
	OP_GET_ARG    // Push argument: u16 slot
	OP_ARG_ADDR   // Push reference to argument: u16 slot

	// Arrays
	OP_NEWARR // [len] -> [array]
	OP_STELEM // [array, index, value] -> []

	// Conversions
	OP_CONV  // Numeric conversion: u8 ConvKind
	OP_BOX   // Box primitive on top of stack
	OP_UNBOX // Cast boxed value to type: u16 constant index of reflect.Type

	// Calls
	OP_CALL       // Static call: u16 constant index of *host.Method
	OP_CALLVIRT   // Instance call: u16 constant index of *host.Method
	OP_LOAD_CACHE // Push inline cache from the unit's arena: u16 arena index
	OP_DISPATCH   // [cache, receiver, args] -> [result]

	// Intrinsic arithmetic on two primitives of the same type
	OP_ADD     // unchecked +
	OP_ADD_OVF // checked + (integers)
	OP_SUB_OVF // checked - (integers)
	OP_MUL_OVF // checked * (integers)
	OP_SUB     // unchecked - (floats)
	OP_MUL     // unchecked * (floats)
	OP_LT      // <
	OP_GT      // >

	// Debug info
	OP_SPAN // Source span marker: u16 constant index of Span

	OP_RETURN // Return top of stack
)

// ConvKind selects the numeric conversion performed by OP_CONV.
type ConvKind byte

const (
	ConvI8    ConvKind = iota // int32 -> int64
	ConvI4                    // int64 -> int32, wrapping
	ConvOvfI4                 // int64 -> int32, raises on overflow
	ConvR8                    // float32 -> float64
	ConvR4                    // float64 -> float32
)

// OpcodeNames maps opcodes to their string names (for debugging)
var OpcodeNames = map[Opcode]string{
	OP_NOP:    "NOP",
	OP_POP:    "POP",
	OP_DUP:    "DUP",
	OP_NIL:    "NIL",
	OP_CONST:  "CONST",
	OP_LDC:    "LDC",
	OP_LDC_I4: "LDC_I4",

	OP_GET_LOCAL:  "GET_LOCAL",
	OP_SET_LOCAL:  "SET_LOCAL",
	OP_LOCAL_ADDR: "LOCAL_ADDR",
	OP_GET_ARG:    "GET_ARG",
	OP_ARG_ADDR:   "ARG_ADDR",

	OP_NEWARR: "NEWARR",
	OP_STELEM: "STELEM",

	OP_CONV:  "CONV",
	OP_BOX:   "BOX",
	OP_UNBOX: "UNBOX",

	OP_CALL:       "CALL",
	OP_CALLVIRT:   "CALLVIRT",
	OP_LOAD_CACHE: "LOAD_CACHE",
	OP_DISPATCH:   "DISPATCH",

	OP_ADD:     "ADD",
	OP_ADD_OVF: "ADD_OVF",
	OP_SUB_OVF: "SUB_OVF",
	OP_MUL_OVF: "MUL_OVF",
	OP_SUB:     "SUB",
	OP_MUL:     "MUL",
	OP_LT:      "LT",
	OP_GT:      "GT",

	OP_SPAN:   "SPAN",
	OP_RETURN: "RETURN",
}

// ConvNames maps conversion kinds to their names.
var ConvNames = map[ConvKind]string{
	ConvI8:    "I8",
	ConvI4:    "I4",
	ConvOvfI4: "OVF_I4",
	ConvR8:    "R8",
	ConvR4:    "R4",
}

func (op Opcode) String() string {
	if name, ok := OpcodeNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}

func (k ConvKind) String() string {
	if name, ok := ConvNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}
