package flow

import (
	"time"
)

// Event describes one attempt observed by the retry executor or the workflow
// engine. Step is empty for attempts made outside a workflow.
type Event struct {
	Time     time.Time
	Workflow string
	Step     string
	Attempt  int
	Success  bool
	Duration time.Duration
	ErrKind  string
}

// Sink receives attempt events. Implementations must be cheap and must never
// block the caller; a sink that loses an event must not affect retry or
// workflow decisions in any way.
type Sink interface {
	Record(Event)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Record(Event) {}

// AsyncSink decouples a potentially slow sink from the hot path through a
// bounded buffer. When the buffer is full events are dropped rather than
// blocking the producer.
type AsyncSink struct {
	events chan Event
	done   chan struct{}
}

// NewAsyncSink starts a single drain goroutine feeding inner.
func NewAsyncSink(inner Sink, buffer int) *AsyncSink {
	if buffer < 1 {
		buffer = 1
	}
	s := &AsyncSink{
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		for ev := range s.events {
			inner.Record(ev)
		}
	}()
	return s
}

func (s *AsyncSink) Record(ev Event) {
	select {
	case s.events <- ev:
	default:
		// Buffer full; drop. Observability never stalls the pipeline.
	}
}

// Close drains buffered events into the inner sink and stops the goroutine.
func (s *AsyncSink) Close() {
	close(s.events)
	<-s.done
}
