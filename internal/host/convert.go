package host

import (
	"fmt"
	"math"
	"reflect"
)

// Convert casts a boxed value to t. It is the runtime half of unboxing:
// assignable values pass through, numbers are cast with a range check
// (ErrOverflow when the value does not fit) and nil becomes the zero
// value of nilable types. Anything else is a *CastError.
func Convert(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		if isNilable(t) {
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, &CastError{To: t}
	}

	rv := reflect.ValueOf(v)
	if rv.Type() == t {
		return rv, nil
	}
	if rv.Type().AssignableTo(t) {
		// Re-home the value so the result carries t (matters for interfaces).
		out := reflect.New(t).Elem()
		out.Set(rv)
		return out, nil
	}
	if isNumberKind(rv.Kind()) && isNumberKind(t.Kind()) {
		return convertNumber(rv, t)
	}
	return reflect.Value{}, &CastError{From: rv.Type(), To: t}
}

// Convertible is the compile-time mirror of Convert: it reports whether a
// value of static type from could ever be cast to to. A nil from means the
// static type is unknown and the check is left to run time.
func Convertible(from, to reflect.Type) bool {
	if from == nil {
		return true
	}
	if from.AssignableTo(to) {
		return true
	}
	if from.Kind() == reflect.Interface {
		// The dynamic value decides.
		return true
	}
	return isNumberKind(from.Kind()) && isNumberKind(to.Kind())
}

// CanCast reports whether values can be unboxed to t at all.
func CanCast(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Invalid, reflect.UnsafePointer:
		return false
	}
	return true
}

// Box returns the uniform representation of a reflected value.
func Box(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}

func convertNumber(rv reflect.Value, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	src := rv.Kind()
	dst := t.Kind()

	switch {
	case isIntKind(src):
		i := rv.Int()
		switch {
		case isIntKind(dst):
			if out.OverflowInt(i) {
				return reflect.Value{}, overflow(i, t)
			}
			out.SetInt(i)
		case isUintKind(dst):
			if i < 0 || out.OverflowUint(uint64(i)) {
				return reflect.Value{}, overflow(i, t)
			}
			out.SetUint(uint64(i))
		default:
			out.SetFloat(float64(i))
		}

	case isUintKind(src):
		u := rv.Uint()
		switch {
		case isIntKind(dst):
			if u > math.MaxInt64 || out.OverflowInt(int64(u)) {
				return reflect.Value{}, overflow(u, t)
			}
			out.SetInt(int64(u))
		case isUintKind(dst):
			if out.OverflowUint(u) {
				return reflect.Value{}, overflow(u, t)
			}
			out.SetUint(u)
		default:
			out.SetFloat(float64(u))
		}

	default:
		f := rv.Float()
		switch {
		case isIntKind(dst):
			if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 || out.OverflowInt(int64(f)) {
				return reflect.Value{}, overflow(f, t)
			}
			out.SetInt(int64(f))
		case isUintKind(dst):
			if math.IsNaN(f) || f < 0 || f >= math.MaxUint64 || out.OverflowUint(uint64(f)) {
				return reflect.Value{}, overflow(f, t)
			}
			out.SetUint(uint64(f))
		default:
			if !math.IsInf(f, 0) && !math.IsNaN(f) && out.OverflowFloat(f) {
				return reflect.Value{}, overflow(f, t)
			}
			out.SetFloat(f)
		}
	}
	return out, nil
}

func overflow(v any, t reflect.Type) error {
	return fmt.Errorf("%w: %v does not fit in %s", ErrOverflow, v, TypeName(t))
}
