package host

import (
	"fmt"
	"reflect"
	"sync"
)

// Option configures a defined member.
type Option func(*methodOptions)

type methodOptions struct {
	byRef   map[int]bool
	generic bool
	names   []string
}

// ByRef marks the given parameter positions as by-reference. The Go
// function must take a pointer at those positions.
func ByRef(positions ...int) Option {
	return func(o *methodOptions) {
		if o.byRef == nil {
			o.byRef = make(map[int]bool)
		}
		for _, p := range positions {
			o.byRef[p] = true
		}
	}
}

// Generic marks the member as an open generic definition.
func Generic() Option {
	return func(o *methodOptions) { o.generic = true }
}

// ParamNames names the parameters, for diagnostics.
func ParamNames(names ...string) Option {
	return func(o *methodOptions) { o.names = names }
}

// Registry is the member table of the host runtime. Types expose the
// members defined on them, in definition order, followed by the Go
// method of the same name from their method set.
type Registry struct {
	mu        sync.RWMutex
	defined   map[reflect.Type][]*Method
	reflected map[reflect.Type]map[string]*Method
}

// NewRegistry creates a registry with the core Numbers type defined.
func NewRegistry() *Registry {
	r := &Registry{
		defined:   make(map[reflect.Type][]*Method),
		reflected: make(map[reflect.Type]map[string]*Method),
	}
	defineNumbers(r)
	return r
}

// Define adds an instance member to owner. fn takes the receiver as its
// first parameter. Define panics if fn does not describe a valid member,
// since that is a setup error of the embedding program.
func (r *Registry) Define(owner reflect.Type, name string, fn any, opts ...Option) *Method {
	return r.define(owner, name, fn, false, opts)
}

// DefineStatic adds a static member to owner.
func (r *Registry) DefineStatic(owner reflect.Type, name string, fn any, opts ...Option) *Method {
	return r.define(owner, name, fn, true, opts)
}

func (r *Registry) define(owner reflect.Type, name string, fn any, static bool, opts []Option) *Method {
	o := &methodOptions{}
	for _, opt := range opts {
		opt(o)
	}
	m, err := newMethod(owner, name, reflect.ValueOf(fn), static, o)
	if err != nil {
		panic(fmt.Sprintf("host: define: %v", err))
	}

	r.mu.Lock()
	r.defined[owner] = append(r.defined[owner], m)
	r.mu.Unlock()
	return m
}

// Members returns the members of t named name, in declaration order.
func (r *Registry) Members(t reflect.Type, name string) []*Method {
	if t == nil {
		return nil
	}

	r.mu.RLock()
	var out []*Method
	for _, m := range r.defined[t] {
		if m.Name == name {
			out = append(out, m)
		}
	}
	rm, seen := r.reflected[t][name]
	r.mu.RUnlock()

	if !seen {
		rm = r.reflectMember(t, name)
	}
	if rm != nil {
		out = append(out, rm)
	}
	return out
}

// reflectMember builds and memoizes the Go method name of t, nil if t has none.
func (r *Registry) reflectMember(t reflect.Type, name string) *Method {
	var m *Method
	if t.Kind() != reflect.Interface {
		if gm, ok := t.MethodByName(name); ok {
			m, _ = newMethod(t, name, gm.Func, false, nil)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	byName := r.reflected[t]
	if byName == nil {
		byName = make(map[string]*Method)
		r.reflected[t] = byName
	}
	if prev, ok := byName[name]; ok {
		return prev
	}
	byName[name] = m
	return m
}
