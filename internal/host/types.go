// Package host describes the Go runtime as seen by compiled call sites:
// type descriptors, overloaded members, assignability and checked casts.
package host

import (
	"reflect"
	"strings"
)

// Primitive types of the hosted language. Every other type is a reference
// type as far as call compilation is concerned.
var (
	Int    = reflect.TypeOf((*int32)(nil)).Elem()
	Long   = reflect.TypeOf((*int64)(nil)).Elem()
	Float  = reflect.TypeOf((*float32)(nil)).Elem()
	Double = reflect.TypeOf((*float64)(nil)).Elem()
	Bool   = reflect.TypeOf((*bool)(nil)).Elem()
)

// Object is the uniform boxed type. Dynamic calls always produce it.
var Object = reflect.TypeOf((*any)(nil)).Elem()

// TypeType is the static type of a type value used as a receiver.
var TypeType = reflect.TypeOf((*reflect.Type)(nil)).Elem()

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// IsPrimitive reports whether t is one of the primitive numeric or boolean types.
func IsPrimitive(t reflect.Type) bool {
	switch t {
	case Int, Long, Float, Double, Bool:
		return true
	}
	return false
}

// TypeOfReceiver returns the runtime type used to look members up on v.
// A type value is used as-is so that static members can be reached
// through a type object.
func TypeOfReceiver(v any) reflect.Type {
	if t, ok := v.(reflect.Type); ok {
		return t
	}
	return reflect.TypeOf(v)
}

// TypeName formats t for messages. A nil type prints as void.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "void"
	}
	if t == Object {
		return "any"
	}
	return t.String()
}

// SignatureString formats a parameter-type signature as "(a, b)".
func SignatureString(types []reflect.Type) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, t := range types {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(TypeName(t))
	}
	sb.WriteByte(')')
	return sb.String()
}

func isNilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}

func isIntKind(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUintKind(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isNumberKind(k reflect.Kind) bool {
	return isIntKind(k) || isUintKind(k) || isFloatKind(k)
}
