package main

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/funvibe/hostcall/internal/compiler"
	"github.com/funvibe/hostcall/internal/host"
	"github.com/funvibe/hostcall/internal/icache"
	"github.com/funvibe/hostcall/internal/il"
)

// Thermometer and Barometer share a Read method but no interface, so a
// call on an untyped sensor can only be resolved per receiver type.
type Thermometer struct{ Celsius float64 }

func (t *Thermometer) Read(unit string) float64 {
	if unit == "F" {
		return t.Celsius*9/5 + 32
	}
	return t.Celsius
}

type Barometer struct{ Pascal int64 }

func (b *Barometer) Read(unit string) float64 {
	if unit == "hPa" {
		return float64(b.Pascal) / 100
	}
	return float64(b.Pascal)
}

// Gauges holds static helpers.
type Gauges struct{}

var gaugesType = reflect.TypeOf((*Gauges)(nil)).Elem()

func defineGauges(reg *host.Registry) {
	reg.DefineStatic(gaugesType, "Clamp", func(x, lo, hi int32) int32 {
		return min(max(x, lo), hi)
	}, host.ParamNames("x", "lo", "hi"))
	reg.DefineStatic(gaugesType, "Parse", func(s string, out *int64) bool {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return false
		}
		*out = v
		return true
	}, host.ByRef(1), host.ParamNames("s", "out"))
	reg.DefineStatic(gaugesType, "Describe", func(v any) string {
		return fmt.Sprintf("<%v>", v)
	}, host.Generic())
}

type demoUnit struct {
	chunk  *il.Chunk
	inputs [][]any
}

func buildDemo(tracer icache.Tracer) ([]*demoUnit, error) {
	reg := host.NewRegistry()
	defineGauges(reg)

	builders := []func(*host.Registry, icache.Tracer) (*demoUnit, error){
		clampUnit,
		parseUnit,
		sensorUnit,
		describeUnit,
	}
	var units []*demoUnit
	for _, build := range builders {
		d, err := build(reg, tracer)
		if err != nil {
			return nil, err
		}
		units = append(units, d)
	}
	return units, nil
}

func span(line, col int) *il.Span {
	return &il.Span{File: "demo", Line: line, Col: col}
}

func values(exprs ...compiler.Expr) []compiler.HostArg {
	args := make([]compiler.HostArg, len(exprs))
	for i, e := range exprs {
		args[i] = compiler.ValueArg(e)
	}
	return args
}

// clampUnit: Gauges.Clamp(Numbers.Multiply(x, 1000), 0, MaxInt32)
// The product is narrowed to int32 at the call boundary.
func clampUnit(reg *host.Registry, tracer icache.Tracer) (*demoUnit, error) {
	u := compiler.NewUnit("clamp", reg, nil, il.Local{Name: "x", Type: host.Long})
	u.Tracer = tracer

	product := compiler.NewStaticMethodExpr(reg, span(1, 14), nil, host.NumbersType, "Multiply",
		values(&compiler.LocalExpr{Binding: u.Param(0)}, &compiler.Literal{Value: int64(1000)}))
	call := compiler.NewStaticMethodExpr(reg, span(1, 1), nil, gaugesType, "Clamp",
		values(product, &compiler.Literal{Value: int32(0)}, &compiler.Literal{Value: int32(math.MaxInt32)}))

	chunk, err := u.Compile(call)
	if err != nil {
		return nil, err
	}
	return &demoUnit{chunk: chunk, inputs: [][]any{{int64(7)}, {int64(-3)}, {int64(5_000_000)}}}, nil
}

// parseUnit: (do (Gauges.Parse s (ref n)) n)
func parseUnit(reg *host.Registry, tracer icache.Tracer) (*demoUnit, error) {
	u := compiler.NewUnit("parse", reg, nil, il.Local{Name: "s", Type: reflect.TypeOf((*string)(nil)).Elem()})
	u.Tracer = tracer
	n := u.DeclareLocal("n", host.Long)

	call := compiler.NewStaticMethodExpr(reg, span(2, 1), nil, gaugesType, "Parse",
		[]compiler.HostArg{compiler.ValueArg(&compiler.LocalExpr{Binding: u.Param(0)}), compiler.RefArg(n)})
	body := &compiler.DoExpr{Body: []compiler.Expr{call, &compiler.LocalExpr{Binding: n}}}

	chunk, err := u.Compile(body)
	if err != nil {
		return nil, err
	}
	return &demoUnit{chunk: chunk, inputs: [][]any{{"1234"}, {"x"}}}, nil
}

// sensorUnit: (.Read sensor "C") on a sensor of unknown type.
func sensorUnit(reg *host.Registry, tracer icache.Tracer) (*demoUnit, error) {
	u := compiler.NewUnit("sensor", reg, nil, il.Local{Name: "sensor", Type: host.Object})
	u.Tracer = tracer

	call := compiler.NewInstanceMethodExpr(reg, span(3, 1), nil,
		&compiler.LocalExpr{Binding: u.Param(0)}, "Read", values(&compiler.Literal{Value: "C"}))

	chunk, err := u.Compile(call)
	if err != nil {
		return nil, err
	}
	return &demoUnit{chunk: chunk, inputs: [][]any{
		{&Thermometer{Celsius: 21.5}},
		{&Barometer{Pascal: 101325}},
		{&Thermometer{Celsius: -4}},
		{&Barometer{Pascal: 99000}},
		{"not a sensor"},
	}}, nil
}

// describeUnit calls a generic definition, which is always dispatched late.
func describeUnit(reg *host.Registry, tracer icache.Tracer) (*demoUnit, error) {
	u := compiler.NewUnit("describe", reg, nil, il.Local{Name: "v", Type: host.Object})
	u.Tracer = tracer

	call := compiler.NewStaticMethodExpr(reg, span(4, 1), nil, gaugesType, "Describe",
		values(&compiler.LocalExpr{Binding: u.Param(0)}))

	chunk, err := u.Compile(call)
	if err != nil {
		return nil, err
	}
	return &demoUnit{chunk: chunk, inputs: [][]any{{int64(1)}, {"two"}}}, nil
}
