package logging

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

type NamedSink struct {
	Name string
	Sink Sink
}

type RouterStats struct {
	EventsTotal  uint64            `json:"eventsTotal"`
	DroppedTotal uint64            `json:"droppedTotal"`
	SinkDrops    map[string]uint64 `json:"sinkDrops,omitempty"`
	SinkFailures map[string]uint64 `json:"sinkFailures,omitempty"`
}

// Router fans published events out to sinks. Publish never blocks: when the
// intake queue or a sink backlog is full the event is dropped and counted.
//
// One dispatcher goroutine stamps, filters and decorates events; each sink
// then has its own worker so a slow sink only backs up itself.
type Router struct {
	intake      chan Event
	stop        chan struct{}
	done        sync.WaitGroup
	closed      atomic.Bool
	clock       Clock
	minSeverity Severity
	fields      map[string]any
	workers     []*sinkWorker
	warn        *log.Logger

	dropWarnEvery time.Duration
	nextDropWarn  atomic.Int64
	eventsTotal   atomic.Uint64
	droppedTotal  atomic.Uint64
}

func NewRouter(clock Clock, cfg Config, namedSinks []NamedSink) (*Router, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	size := cfg.BufferSize
	if size <= 0 {
		size = 512
	}
	dropWarnEvery := cfg.DropWarnInterval
	if dropWarnEvery <= 0 {
		dropWarnEvery = 5 * time.Second
	}
	r := &Router{
		intake:        make(chan Event, size),
		stop:          make(chan struct{}),
		clock:         clock,
		minSeverity:   cfg.MinimumSeverity,
		fields:        cfg.CloneFields(),
		warn:          log.New(os.Stderr, "[logging] ", log.LstdFlags),
		dropWarnEvery: dropWarnEvery,
	}

	backlog := min(max(size, 32), 1024)
	for _, named := range namedSinks {
		if named.Sink == nil {
			continue
		}
		r.workers = append(r.workers, &sinkWorker{
			name:    named.Name,
			sink:    named.Sink,
			backlog: make(chan Event, backlog),
			warn:    r.warn,
		})
	}

	for _, w := range r.workers {
		r.done.Add(1)
		go func() {
			defer r.done.Done()
			w.run()
		}()
	}
	r.done.Add(1)
	go r.dispatch()
	return r, nil
}

func (r *Router) dispatch() {
	defer r.done.Done()
	defer func() {
		for _, w := range r.workers {
			close(w.backlog)
		}
	}()
	for {
		select {
		case event := <-r.intake:
			r.route(event)
		case <-r.stop:
			// flush whatever was accepted before Close
			for {
				select {
				case event := <-r.intake:
					r.route(event)
				default:
					return
				}
			}
		}
	}
}

func (r *Router) route(event Event) {
	if event.Severity < r.minSeverity {
		return
	}
	if event.Time.IsZero() {
		event.Time = r.clock.Now()
	}
	if len(r.fields) > 0 {
		event = cloneEvent(event)
		if event.Extra == nil {
			event.Extra = make(map[string]any, len(r.fields))
		}
		for k, v := range r.fields {
			if _, ok := event.Extra[k]; !ok {
				event.Extra[k] = v
			}
		}
	}
	r.eventsTotal.Add(1)
	for _, w := range r.workers {
		w.offer(event)
	}
}

// Publish queues event for delivery. Events without a type and events
// published after Close are ignored.
func (r *Router) Publish(_ context.Context, event Event) {
	if r == nil || event.Type == "" || r.closed.Load() {
		return
	}
	select {
	case r.intake <- event:
	default:
		r.dropped(event)
	}
}

func (r *Router) dropped(event Event) {
	r.droppedTotal.Add(1)
	now := time.Now().UnixNano()
	next := r.nextDropWarn.Load()
	if now >= next && r.nextDropWarn.CompareAndSwap(next, now+r.dropWarnEvery.Nanoseconds()) {
		r.warn.Printf("intake full, dropping event type=%s tick=%d", event.Type, event.Tick)
	}
}

// Close stops intake, flushes queued events into the sinks and closes them.
// Only the first call does any work.
func (r *Router) Close(ctx context.Context) error {
	if r == nil || !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(r.stop)

	flushed := make(chan struct{})
	go func() {
		r.done.Wait()
		close(flushed)
	}()
	select {
	case <-flushed:
	case <-ctx.Done():
		return ctx.Err()
	}

	var firstErr error
	for _, w := range r.workers {
		if err := w.sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Router) Stats() RouterStats {
	if r == nil {
		return RouterStats{}
	}
	stats := RouterStats{
		EventsTotal:  r.eventsTotal.Load(),
		DroppedTotal: r.droppedTotal.Load(),
	}
	for _, w := range r.workers {
		if n := w.drops.Load(); n > 0 {
			if stats.SinkDrops == nil {
				stats.SinkDrops = make(map[string]uint64)
			}
			stats.SinkDrops[w.name] = n
		}
		if n := w.failures.Load(); n > 0 {
			if stats.SinkFailures == nil {
				stats.SinkFailures = make(map[string]uint64)
			}
			stats.SinkFailures[w.name] = n
		}
	}
	return stats
}

// sinkWorker owns one sink. After a failed write it backs off exponentially
// (2s, 4s, ... capped at 32s) before the next attempt.
type sinkWorker struct {
	name    string
	sink    Sink
	backlog chan Event
	warn    *log.Logger

	streak   int
	retryAt  time.Time
	drops    atomic.Uint64
	failures atomic.Uint64
}

func (w *sinkWorker) offer(event Event) {
	select {
	case w.backlog <- cloneEvent(event):
	default:
		// log on the 1st, 2nd, 4th, 8th... drop
		if n := w.drops.Add(1); n&(n-1) == 0 {
			w.warn.Printf("sink %s backlog full, dropped %d events (latest %s)", w.name, n, event.Type)
		}
	}
}

func (w *sinkWorker) run() {
	for event := range w.backlog {
		if wait := time.Until(w.retryAt); w.streak > 0 && wait > 0 {
			time.Sleep(wait)
		}
		if err := w.sink.Write(event); err != nil {
			w.streak++
			w.failures.Add(1)
			delay := time.Duration(1<<min(w.streak, 5)) * time.Second
			w.retryAt = time.Now().Add(delay)
			w.warn.Printf("sink %s failed: %v (retry in %s)", w.name, err, delay)
			continue
		}
		w.streak = 0
		w.retryAt = time.Time{}
	}
}
