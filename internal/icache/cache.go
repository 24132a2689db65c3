// Package icache implements per-call-site inline caches for dynamic
// method dispatch on host objects.
//
// A cache is keyed by the receiver's runtime type. The first dispatch for a
// type performs a linear search over the type's members; later dispatches
// with the same receiver type reuse the resolved method. Resolution is a
// pure function of (type, name, signature), so entries are never invalidated.
package icache

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/funvibe/hostcall/internal/host"
)

// InlineCache is owned by exactly one dynamic call site.
type InlineCache struct {
	methodName string
	paramTypes []reflect.Type
	registry   *host.Registry
	site       string
	tracer     Tracer

	// methods is replaced wholesale on every miss so that readers never lock.
	mu      sync.Mutex
	methods atomic.Pointer[map[reflect.Type]*host.Method]

	hits   atomic.Uint64
	misses atomic.Uint64
}

// Option configures an InlineCache.
type Option func(*InlineCache)

// WithTracer installs a dispatch tracer.
func WithTracer(t Tracer) Option {
	return func(c *InlineCache) { c.tracer = t }
}

// WithSite labels the cache's call site in trace events.
func WithSite(site string) Option {
	return func(c *InlineCache) { c.site = site }
}

// New creates a cache for calls to methodName whose call site has the given
// static parameter-type signature.
func New(reg *host.Registry, methodName string, paramTypes []reflect.Type, opts ...Option) *InlineCache {
	c := &InlineCache{
		methodName: methodName,
		paramTypes: append([]reflect.Type(nil), paramTypes...),
		registry:   reg,
		site:       methodName,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *InlineCache) MethodName() string { return c.methodName }

// ParamTypes returns the call-site signature.
func (c *InlineCache) ParamTypes() []reflect.Type {
	return append([]reflect.Type(nil), c.paramTypes...)
}

func (c *InlineCache) Site() string { return c.site }

// Dispatch resolves methodName on receiver and invokes it with args.
func (c *InlineCache) Dispatch(receiver any, args []any) (any, error) {
	if len(args) != len(c.paramTypes) {
		return nil, fmt.Errorf("%w: %s%s called with %d",
			ErrArgumentCount, c.methodName, host.SignatureString(c.paramTypes), len(args))
	}
	if receiver == nil {
		return nil, fmt.Errorf("%w: cannot call %s", ErrNilReceiver, c.methodName)
	}

	t := host.TypeOfReceiver(receiver)
	m, ok := c.Lookup(t)
	if ok {
		c.hits.Add(1)
		c.trace(EventHit, t, m)
	} else {
		c.misses.Add(1)
		if m = c.resolve(t); m == nil {
			c.trace(EventNotFound, t, nil)
			return nil, &MethodNotFoundError{
				Receiver:     receiver,
				ReceiverType: t,
				Method:       c.methodName,
				Signature:    c.ParamTypes(),
			}
		}
		c.record(t, m)
		c.trace(EventMiss, t, m)
	}

	return m.Invoke(receiver, args)
}

// Lookup returns the method resolved for receiver type t, if any.
func (c *InlineCache) Lookup(t reflect.Type) (*host.Method, bool) {
	p := c.methods.Load()
	if p == nil {
		return nil, false
	}
	m, ok := (*p)[t]
	return m, ok
}

// resolve picks the first member, in declaration order, whose arity matches
// and whose every parameter is assignable from the call-site signature.
func (c *InlineCache) resolve(t reflect.Type) *host.Method {
	for _, m := range c.registry.Members(t, c.methodName) {
		if m.Arity() != len(c.paramTypes) {
			continue
		}
		if c.matches(m) {
			return m
		}
	}
	return nil
}

func (c *InlineCache) matches(m *host.Method) bool {
	for i, p := range m.Params {
		if !host.AssignableFrom(p, c.paramTypes[i]) {
			return false
		}
	}
	return true
}

// record adds t -> m. Two concurrent misses on the same type both resolve
// the same method, so the later write is harmless.
func (c *InlineCache) record(t reflect.Type, m *host.Method) {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.methods.Load()
	next := make(map[reflect.Type]*host.Method, 1)
	if old != nil {
		for k, v := range *old {
			next[k] = v
		}
	}
	next[t] = m
	c.methods.Store(&next)
}

func (c *InlineCache) trace(kind EventKind, t reflect.Type, m *host.Method) {
	if c.tracer == nil {
		return
	}
	c.tracer.Trace(Event{Kind: kind, Site: c.site, ReceiverType: t, Method: c.methodName, Resolved: m})
}

// Stats holds the counters of one cache.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// Stats returns a snapshot of the cache counters.
func (c *InlineCache) Stats() Stats {
	s := Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
	if p := c.methods.Load(); p != nil {
		s.Entries = len(*p)
	}
	return s
}

// Resolved returns a copy of the receiver-type to method mapping.
func (c *InlineCache) Resolved() map[reflect.Type]*host.Method {
	out := make(map[reflect.Type]*host.Method)
	if p := c.methods.Load(); p != nil {
		for k, v := range *p {
			out[k] = v
		}
	}
	return out
}
