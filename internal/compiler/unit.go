package compiler

import (
	"fmt"
	"reflect"

	"github.com/funvibe/hostcall/internal/config"
	"github.com/funvibe/hostcall/internal/host"
	"github.com/funvibe/hostcall/internal/icache"
	"github.com/funvibe/hostcall/internal/il"
)

// Unit is one compilation unit: the chunk being emitted plus the host
// registry that dynamic call sites resolve against.
type Unit struct {
	Chunk    *il.Chunk
	Registry *host.Registry
	Tracer   icache.Tracer

	this   *LocalBinding
	params []*LocalBinding
}

// NewUnit starts a unit. A non-nil this declares a receiver in arg slot 0;
// params follow it.
func NewUnit(name string, reg *host.Registry, this reflect.Type, params ...il.Local) *Unit {
	if name == "" {
		name = config.ScriptUnitName
	}
	u := &Unit{Chunk: il.NewChunk(name), Registry: reg}

	if this != nil {
		u.Chunk.HasThis = true
		idx := u.Chunk.DeclareArg(config.ThisName, this)
		u.this = &LocalBinding{Name: config.ThisName, Kind: BindThis, Index: idx, Type: this}
	}
	for _, p := range params {
		idx := u.Chunk.DeclareArg(p.Name, p.Type)
		u.params = append(u.params, &LocalBinding{Name: p.Name, Kind: BindArg, Index: idx, Type: p.Type})
	}
	return u
}

// This returns the receiver binding, nil for units without one.
func (u *Unit) This() *LocalBinding { return u.this }

// Param returns the i-th declared parameter, not counting the receiver.
func (u *Unit) Param(i int) *LocalBinding {
	if i < 0 || i >= len(u.params) {
		return nil
	}
	return u.params[i]
}

// DeclareLocal adds a local slot of type t.
func (u *Unit) DeclareLocal(name string, t reflect.Type) *LocalBinding {
	idx := u.Chunk.DeclareLocal(name, t)
	return &LocalBinding{Name: name, Kind: BindLocal, Index: idx, Type: t}
}

// Compile emits body in return context and terminates the chunk.
func (u *Unit) Compile(body Expr) (*il.Chunk, error) {
	if body == nil {
		u.Chunk.EmitNil()
	} else if err := body.Emit(Return, u); err != nil {
		return nil, fmt.Errorf("%s: %w", u.Chunk.Name, err)
	}
	u.Chunk.EmitReturn()
	if err := u.Chunk.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", u.Chunk.Name, err)
	}
	return u.Chunk, nil
}

// newCache registers a fresh inline cache for a dynamic call site.
func (u *Unit) newCache(name string, sig []reflect.Type, span *il.Span) int {
	id := u.Chunk.Caches.Len()
	site := fmt.Sprintf("%s#%d", u.Chunk.Name, id)
	if span != nil {
		site = fmt.Sprintf("%s@%s", site, span)
	}

	opts := []icache.Option{icache.WithSite(site)}
	if u.Tracer != nil {
		opts = append(opts, icache.WithTracer(u.Tracer))
	}
	return u.Chunk.Caches.Register(icache.New(u.Registry, name, sig, opts...))
}
