package icache

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/funvibe/hostcall/internal/host"
)

type dog struct{ name string }

func (d dog) Speak(n int64) string { return fmt.Sprintf("%s woofs %d", d.name, n) }

type cat struct{}

func (cat) Speak(n int64) string { return fmt.Sprintf("meows %d", n) }

type label string

func (l label) String() string { return string(l) }

var (
	dogType   = reflect.TypeOf((*dog)(nil)).Elem()
	catType   = reflect.TypeOf((*cat)(nil)).Elem()
	labelType = reflect.TypeOf((*label)(nil)).Elem()
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Trace(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

func mustDispatch(t *testing.T, c *InlineCache, recv any, args ...any) any {
	t.Helper()
	got, err := c.Dispatch(recv, args)
	if err != nil {
		t.Fatalf("Dispatch(%v): %v", recv, err)
	}
	return got
}

func TestDispatch_HitsAndMisses(t *testing.T) {
	rec := &recorder{}
	c := New(host.NewRegistry(), "Speak", []reflect.Type{host.Long}, WithTracer(rec), WithSite("s1"))

	if got := mustDispatch(t, c, dog{"rex"}, int64(2)); got != "rex woofs 2" {
		t.Errorf("first call = %v", got)
	}
	mustDispatch(t, c, dog{"fido"}, int64(3))
	if got := mustDispatch(t, c, cat{}, int64(1)); got != "meows 1" {
		t.Errorf("cat call = %v", got)
	}
	mustDispatch(t, c, cat{}, int64(1))

	s := c.Stats()
	if s.Misses != 2 || s.Hits != 2 || s.Entries != 2 {
		t.Errorf("stats = %+v, want 2 misses, 2 hits, 2 entries", s)
	}

	want := []EventKind{EventMiss, EventHit, EventMiss, EventHit}
	if got := rec.kinds(); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if e := rec.events[0]; e.Site != "s1" || e.ReceiverType != dogType || e.Resolved == nil {
		t.Errorf("miss event = %+v", e)
	}

	m, ok := c.Lookup(catType)
	if !ok || m.Owner != catType {
		t.Errorf("Lookup(cat) = %v, %v", m, ok)
	}
}

func TestDispatch_FirstMatchInDeclarationOrder(t *testing.T) {
	reg := host.NewRegistry()
	reg.Define(dogType, "Describe", func(d dog, x any) string { return "any" })
	reg.Define(dogType, "Describe", func(d dog, x fmt.Stringer) string { return "stringer" })

	c := New(reg, "Describe", []reflect.Type{labelType})
	if got := mustDispatch(t, c, dog{}, label("x")); got != "any" {
		t.Errorf("got %v, want the first declared match", got)
	}

	// The signature, not the runtime argument, selects the member.
	narrow := New(reg, "Describe", []reflect.Type{reflect.TypeOf((*fmt.Stringer)(nil)).Elem()})
	if got := mustDispatch(t, narrow, dog{}, label("x")); got != "any" {
		t.Errorf("got %v, want any", got)
	}
}

func TestDispatch_SkipsInapplicable(t *testing.T) {
	reg := host.NewRegistry()
	reg.Define(dogType, "Describe", func(d dog, x string) string { return "string" })
	reg.Define(dogType, "Describe", func(d dog, x fmt.Stringer) string { return "stringer" })
	reg.Define(dogType, "Describe", func(d dog, x, y any) string { return "pair" })

	c := New(reg, "Describe", []reflect.Type{labelType})
	if got := mustDispatch(t, c, dog{}, label("x")); got != "stringer" {
		t.Errorf("got %v, want stringer", got)
	}
}

func TestDispatch_NotFound(t *testing.T) {
	rec := &recorder{}
	c := New(host.NewRegistry(), "Speak", []reflect.Type{host.Long}, WithTracer(rec))

	for i := 0; i < 2; i++ {
		_, err := c.Dispatch("str", []any{int64(1)})
		if !errors.Is(err, ErrMethodNotFound) {
			t.Fatalf("error = %v, want ErrMethodNotFound", err)
		}
		var nf *MethodNotFoundError
		if !errors.As(err, &nf) || nf.ReceiverType != reflect.TypeOf((*string)(nil)).Elem() || nf.Method != "Speak" {
			t.Errorf("MethodNotFoundError = %+v", nf)
		}
	}

	if len(c.Resolved()) != 0 {
		t.Errorf("a failed lookup must not be recorded, got %v", c.Resolved())
	}
	if s := c.Stats(); s.Misses != 2 || s.Entries != 0 {
		t.Errorf("stats = %+v", s)
	}
	if got := rec.kinds(); !reflect.DeepEqual(got, []EventKind{EventNotFound, EventNotFound}) {
		t.Errorf("events = %v", got)
	}

	// Wrong signature on a type that has the name.
	strict := New(host.NewRegistry(), "Speak", []reflect.Type{reflect.TypeOf((*string)(nil)).Elem()})
	if _, err := strict.Dispatch(dog{}, []any{"2"}); !errors.Is(err, ErrMethodNotFound) {
		t.Errorf("error = %v, want ErrMethodNotFound", err)
	}
}

func TestDispatch_TypeAsReceiver(t *testing.T) {
	reg := host.NewRegistry()
	reg.DefineStatic(dogType, "Make", func(name string) dog { return dog{name} })

	c := New(reg, "Make", []reflect.Type{reflect.TypeOf((*string)(nil)).Elem()})
	if got := mustDispatch(t, c, dogType, "rex"); got != (dog{"rex"}) {
		t.Errorf("got %v", got)
	}
	if _, ok := c.Lookup(dogType); !ok {
		t.Error("type receiver should be cached under the type itself")
	}
}

func TestDispatch_ByRefWriteBack(t *testing.T) {
	reg := host.NewRegistry()
	reg.DefineStatic(dogType, "Bump", func(p *int64) { *p++ }, host.ByRef(0))

	c := New(reg, "Bump", []reflect.Type{reflect.PointerTo(host.Long)})
	args := []any{int64(41)}
	got := mustDispatch(t, c, dogType, args...)
	if got != nil {
		t.Errorf("void result = %v", got)
	}

	args = []any{int64(41)}
	if _, err := c.Dispatch(dogType, args); err != nil {
		t.Fatal(err)
	}
	if args[0] != int64(42) {
		t.Errorf("args[0] = %v, want 42", args[0])
	}
}

func TestDispatch_BadCalls(t *testing.T) {
	c := New(host.NewRegistry(), "Speak", []reflect.Type{host.Long})

	if _, err := c.Dispatch(dog{}, nil); !errors.Is(err, ErrArgumentCount) {
		t.Errorf("error = %v, want ErrArgumentCount", err)
	}
	if _, err := c.Dispatch(nil, []any{int64(1)}); !errors.Is(err, ErrNilReceiver) {
		t.Errorf("error = %v, want ErrNilReceiver", err)
	}
	if _, err := c.Dispatch(dog{}, []any{"x"}); !errors.Is(err, host.ErrInvalidCast) {
		t.Errorf("error = %v, want ErrInvalidCast", err)
	}
	if s := c.Stats(); s.Misses != 1 || s.Entries != 1 {
		t.Errorf("only the bad argument call should resolve, stats = %+v", s)
	}
}

func TestDispatch_Concurrent(t *testing.T) {
	c := New(host.NewRegistry(), "Speak", []reflect.Type{host.Long})
	receivers := []any{dog{"a"}, cat{}, dog{"b"}}

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < 100; i++ {
				if _, err := c.Dispatch(receivers[(w+i)%len(receivers)], []any{int64(i)}); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	s := c.Stats()
	if s.Hits+s.Misses != 800 {
		t.Errorf("hits+misses = %d, want 800", s.Hits+s.Misses)
	}
	if s.Entries != 2 || s.Misses < 2 {
		t.Errorf("stats = %+v, want 2 entries", s)
	}
}

func TestNew_CopiesSignature(t *testing.T) {
	sig := []reflect.Type{host.Long}
	c := New(host.NewRegistry(), "Speak", sig)
	sig[0] = host.Bool
	if got := c.ParamTypes(); got[0] != host.Long {
		t.Errorf("signature aliased caller slice: %v", got)
	}
	if c.Site() != "Speak" || c.MethodName() != "Speak" {
		t.Errorf("site = %q, name = %q", c.Site(), c.MethodName())
	}
}
