package vm

import (
	"fmt"
	"math"
	"reflect"

	"github.com/funvibe/hostcall/internal/host"
)

// ValueType identifies the type of value stored in the Value struct
type ValueType uint8

const (
	ValNil ValueType = iota
	ValInt
	ValLong
	ValFloat
	ValDouble
	ValBool
	ValObj // Boxed value: any host object, including boxed primitives
	ValRef // Address of an argument or local cell
)

var valueTypeNames = map[ValueType]string{
	ValNil:    "nil",
	ValInt:    "int32",
	ValLong:   "int64",
	ValFloat:  "float32",
	ValDouble: "float64",
	ValBool:   "bool",
	ValObj:    "object",
	ValRef:    "ref",
}

func (t ValueType) String() string {
	if s, ok := valueTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("ValueType(%d)", t)
}

// Value is a stack-allocated tagged union.
// Unboxed primitives live in Data; boxed values and cell addresses in Obj.
type Value struct {
	Type ValueType
	Data uint64 // int bits, float bits, or bool (0/1)
	Obj  any    // boxed object, or reflect.Value pointer for ValRef
}

// Constructors

func NilVal() Value { return Value{Type: ValNil} }

func IntVal(v int32) Value { return Value{Type: ValInt, Data: uint64(int64(v))} }

func LongVal(v int64) Value { return Value{Type: ValLong, Data: uint64(v)} }

func FloatVal(v float32) Value { return Value{Type: ValFloat, Data: uint64(math.Float32bits(v))} }

func DoubleVal(v float64) Value { return Value{Type: ValDouble, Data: math.Float64bits(v)} }

func BoolVal(v bool) Value {
	var data uint64
	if v {
		data = 1
	}
	return Value{Type: ValBool, Data: data}
}

// ObjVal boxes o. A nil o is the nil value.
func ObjVal(o any) Value {
	if o == nil {
		return NilVal()
	}
	return Value{Type: ValObj, Obj: o}
}

// RefVal wraps the address of a cell.
func RefVal(ptr reflect.Value) Value { return Value{Type: ValRef, Obj: ptr} }

// Accessors

func (v Value) AsInt() int32     { return int32(int64(v.Data)) }
func (v Value) AsLong() int64    { return int64(v.Data) }
func (v Value) AsFloat() float32 { return math.Float32frombits(uint32(v.Data)) }
func (v Value) AsDouble() float64 {
	return math.Float64frombits(v.Data)
}
func (v Value) AsBool() bool { return v.Data == 1 }

func (v Value) IsNil() bool { return v.Type == ValNil }
func (v Value) IsObj() bool { return v.Type == ValObj }

// IsPrimitive reports whether v is an unboxed primitive.
func (v Value) IsPrimitive() bool {
	switch v.Type {
	case ValInt, ValLong, ValFloat, ValDouble, ValBool:
		return true
	}
	return false
}

// Box returns the uniform boxed form of v.
func (v Value) Box() any {
	switch v.Type {
	case ValInt:
		return v.AsInt()
	case ValLong:
		return v.AsLong()
	case ValFloat:
		return v.AsFloat()
	case ValDouble:
		return v.AsDouble()
	case ValBool:
		return v.AsBool()
	case ValObj:
		return v.Obj
	case ValRef:
		return v.Obj.(reflect.Value).Interface()
	default:
		return nil
	}
}

// FromReflect converts a host value to a stack value. Primitive types are
// unboxed, everything else is boxed.
func FromReflect(rv reflect.Value) Value {
	if !rv.IsValid() {
		return NilVal()
	}
	switch rv.Type() {
	case host.Int:
		return IntVal(int32(rv.Int()))
	case host.Long:
		return LongVal(rv.Int())
	case host.Float:
		return FloatVal(float32(rv.Float()))
	case host.Double:
		return DoubleVal(rv.Float())
	case host.Bool:
		return BoolVal(rv.Bool())
	}
	if rv.Kind() == reflect.Interface && rv.IsNil() {
		return NilVal()
	}
	return ObjVal(rv.Interface())
}

// Inspect returns string representation
func (v Value) Inspect() string {
	switch v.Type {
	case ValInt:
		return fmt.Sprintf("%d", v.AsInt())
	case ValLong:
		return fmt.Sprintf("%dL", v.AsLong())
	case ValFloat:
		return fmt.Sprintf("%gf", v.AsFloat())
	case ValDouble:
		return fmt.Sprintf("%g", v.AsDouble())
	case ValBool:
		return fmt.Sprintf("%t", v.AsBool())
	case ValNil:
		return "nil"
	case ValObj:
		return fmt.Sprintf("box(%v)", v.Obj)
	case ValRef:
		return "&" + v.Obj.(reflect.Value).Type().Elem().String()
	default:
		return "<?>"
	}
}
