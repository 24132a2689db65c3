package host

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
	"unsafe"
)

type label string

func (l label) String() string { return string(l) }

var stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		in   any
		to   reflect.Type
		want any
	}{
		{"identity", int64(7), Long, int64(7)},
		{"long to int", int64(-42), Int, int32(-42)},
		{"int to long", int32(9), Long, int64(9)},
		{"double truncates", 1.75, Long, int64(1)},
		{"long to double", int64(3), Double, float64(3)},
		{"double to float", 0.5, Float, float32(0.5)},
		{"to interface", label("x"), stringerType, label("x")},
		{"to any", "s", Object, "s"},
		{"nil pointer", nil, reflect.TypeOf((**int)(nil)).Elem(), (*int)(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.in, tt.to)
			if err != nil {
				t.Fatalf("Convert(%v, %s): %v", tt.in, tt.to, err)
			}
			if got.Type() != tt.to {
				t.Errorf("type = %s, want %s", got.Type(), tt.to)
			}
			if !reflect.DeepEqual(got.Interface(), tt.want) {
				t.Errorf("value = %#v, want %#v", got.Interface(), tt.want)
			}
		})
	}
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   any
		to   reflect.Type
		want error
	}{
		{"long overflows int", int64(math.MaxInt64), Int, ErrOverflow},
		{"negative to uint", int32(-1), reflect.TypeOf((*uint8)(nil)).Elem(), ErrOverflow},
		{"nan to long", math.NaN(), Long, ErrOverflow},
		{"huge double to float", math.MaxFloat64, Float, ErrOverflow},
		{"nil to long", nil, Long, ErrInvalidCast},
		{"string to long", "12", Long, ErrInvalidCast},
		{"bool to int", true, Int, ErrInvalidCast},
		{"int to stringer", 3, stringerType, ErrInvalidCast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Convert(tt.in, tt.to)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Convert(%v, %s) error = %v, want %v", tt.in, tt.to, err, tt.want)
			}
		})
	}
}

func TestCastError_Message(t *testing.T) {
	_, err := Convert(nil, Long)
	var ce *CastError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CastError, got %T", err)
	}
	if ce.From != nil || ce.To != Long {
		t.Errorf("CastError = %+v", ce)
	}
	if got := err.Error(); got != "cannot cast nil to int64" {
		t.Errorf("message = %q", got)
	}
}

func TestConvertible(t *testing.T) {
	tests := []struct {
		from, to reflect.Type
		want     bool
	}{
		{nil, Long, true},
		{Int, Long, true},
		{Int, Double, true},
		{Object, Long, true},
		{reflect.TypeOf((*label)(nil)).Elem(), stringerType, true},
		{Bool, Long, false},
		{reflect.TypeOf((*string)(nil)).Elem(), Long, false},
		{Long, Bool, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%s", TypeName(tt.from), TypeName(tt.to)), func(t *testing.T) {
			if got := Convertible(tt.from, tt.to); got != tt.want {
				t.Errorf("Convertible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanCast(t *testing.T) {
	if !CanCast(Long) || !CanCast(stringerType) {
		t.Error("ordinary types must be castable")
	}
	if CanCast(nil) || CanCast(reflect.TypeOf((*unsafe.Pointer)(nil)).Elem()) {
		t.Error("nil and unsafe pointer types must not be castable")
	}
}

func TestTypeOfReceiver(t *testing.T) {
	if got := TypeOfReceiver(Long); got != Long {
		t.Errorf("type value receiver = %s, want int64", got)
	}
	if got := TypeOfReceiver(int64(1)); got != Long {
		t.Errorf("TypeOfReceiver(int64) = %s", got)
	}
}

func TestTypeNames(t *testing.T) {
	if got := TypeName(nil); got != "void" {
		t.Errorf("TypeName(nil) = %q", got)
	}
	if got := TypeName(Object); got != "any" {
		t.Errorf("TypeName(any) = %q", got)
	}
	if got := SignatureString([]reflect.Type{Long, Object}); got != "(int64, any)" {
		t.Errorf("SignatureString = %q", got)
	}
}
