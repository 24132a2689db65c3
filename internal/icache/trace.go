package icache

import (
	"fmt"
	"log"
	"reflect"

	"github.com/funvibe/hostcall/internal/host"
)

// EventKind identifies a dispatch event.
type EventKind uint8

const (
	EventHit EventKind = iota
	EventMiss
	EventNotFound
)

var eventNames = map[EventKind]string{
	EventHit:      "cache_hit",
	EventMiss:     "cache_miss",
	EventNotFound: "cache_not_found",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", uint8(k))
}

// Event describes one dispatch through an inline cache.
type Event struct {
	Kind         EventKind
	Site         string
	ReceiverType reflect.Type
	Method       string
	Resolved     *host.Method // nil for EventNotFound
}

func (e Event) String() string {
	s := fmt.Sprintf("%s site=%s receiver=%s method=%s", e.Kind, e.Site, host.TypeName(e.ReceiverType), e.Method)
	if e.Resolved != nil {
		s += fmt.Sprintf(" resolved=%q", e.Resolved.String())
	}
	return s
}

// Tracer receives dispatch events. A cache without a tracer reports nothing.
type Tracer interface {
	Trace(Event)
}

// TracerFunc adapts a function to Tracer.
type TracerFunc func(Event)

func (f TracerFunc) Trace(e Event) { f(e) }

// LogTracer writes events to a logger. Hits are skipped unless Hits is set.
type LogTracer struct {
	Logger *log.Logger
	Hits   bool
}

// NewLogTracer creates a tracer writing to l, or to the standard logger if l is nil.
func NewLogTracer(l *log.Logger, hits bool) *LogTracer {
	if l == nil {
		l = log.Default()
	}
	return &LogTracer{Logger: l, Hits: hits}
}

func (t *LogTracer) Trace(e Event) {
	if e.Kind == EventHit && !t.Hits {
		return
	}
	t.Logger.Print(e.String())
}
