package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/funvibe/hostcall/internal/vm"
)

func TestParseArgs(t *testing.T) {
	a, err := parseArgs([]string{"-config", "x.yaml", "-unchecked", "--trace", "-disasm"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.configPath != "x.yaml" || !a.unchecked || !a.trace || !a.disasm {
		t.Errorf("args = %+v", a)
	}

	for _, bad := range [][]string{{"-config"}, {"-what"}} {
		if _, err := parseArgs(bad); err == nil {
			t.Errorf("parseArgs(%v) should fail", bad)
		}
	}
}

func TestDemoUnits(t *testing.T) {
	units, err := buildDemo(nil)
	if err != nil {
		t.Fatalf("buildDemo: %v", err)
	}
	byName := make(map[string]*demoUnit)
	for _, d := range units {
		byName[d.chunk.Name] = d
	}

	tests := []struct {
		unit string
		in   []any
		want any
	}{
		{"clamp", []any{int64(7)}, int32(7000)},
		{"clamp", []any{int64(-3)}, int32(0)},
		{"parse", []any{"1234"}, int64(1234)},
		{"parse", []any{"x"}, int64(0)},
		{"sensor", []any{&Thermometer{Celsius: 21.5}}, 21.5},
		{"sensor", []any{&Barometer{Pascal: 100}}, float64(100)},
		{"describe", []any{"two"}, "<two>"},
	}
	for _, tt := range tests {
		t.Run(tt.unit, func(t *testing.T) {
			got, err := vm.New().Run(byName[tt.unit].chunk, tt.in...)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if got != tt.want {
				t.Errorf("result = %#v, want %#v", got, tt.want)
			}
		})
	}

	var buf bytes.Buffer
	printStats(&buf, units)
	if !strings.Contains(buf.String(), "sensor#0@demo:3:1 Read: hits=0 misses=2 entries=2") {
		t.Errorf("stats:\n%s", buf.String())
	}
}
