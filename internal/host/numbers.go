package host

import (
	"fmt"
	"reflect"
)

// Numbers is the core arithmetic type. Its static members have intrinsic
// instruction substitutes, so static calls to them never go through Call.
type Numbers struct{}

// NumbersType is the owner of the arithmetic members.
var NumbersType = reflect.TypeOf((*Numbers)(nil)).Elem()

func defineNumbers(r *Registry) {
	xy := ParamNames("x", "y")

	r.DefineStatic(NumbersType, "Add", AddLong, xy)
	r.DefineStatic(NumbersType, "Add", func(x, y float64) float64 { return x + y }, xy)
	r.DefineStatic(NumbersType, "UncheckedAdd", func(x, y int64) int64 { return x + y }, xy)
	r.DefineStatic(NumbersType, "UncheckedAdd", func(x, y float64) float64 { return x + y }, xy)
	r.DefineStatic(NumbersType, "Subtract", SubtractLong, xy)
	r.DefineStatic(NumbersType, "Subtract", func(x, y float64) float64 { return x - y }, xy)
	r.DefineStatic(NumbersType, "Multiply", MultiplyLong, xy)
	r.DefineStatic(NumbersType, "Multiply", func(x, y float64) float64 { return x * y }, xy)
	r.DefineStatic(NumbersType, "Lt", func(x, y int64) bool { return x < y }, xy)
	r.DefineStatic(NumbersType, "Lt", func(x, y float64) bool { return x < y }, xy)
	r.DefineStatic(NumbersType, "Gt", func(x, y int64) bool { return x > y }, xy)
	r.DefineStatic(NumbersType, "Gt", func(x, y float64) bool { return x > y }, xy)
}

// AddLong adds with an overflow check.
func AddLong(x, y int64) (int64, error) {
	s := x + y
	if (s^x)&(s^y) < 0 {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, x, y)
	}
	return s, nil
}

// SubtractLong subtracts with an overflow check.
func SubtractLong(x, y int64) (int64, error) {
	d := x - y
	if (x^y)&(x^d) < 0 {
		return 0, fmt.Errorf("%w: %d - %d", ErrOverflow, x, y)
	}
	return d, nil
}

// MultiplyLong multiplies with an overflow check.
func MultiplyLong(x, y int64) (int64, error) {
	p := x * y
	if x != 0 && (p/x != y || (x == -1 && y == -1<<63)) {
		return 0, fmt.Errorf("%w: %d * %d", ErrOverflow, x, y)
	}
	return p, nil
}
