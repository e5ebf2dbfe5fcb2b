package audit

import (
	"context"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Config controls how attempt records are queued.
type Config struct {
	Enabled bool
	// BufferSize is the number of finished attempts that may wait for the
	// sink. Values below one mean one.
	BufferSize int
	// DropIfFull drops the record of an attempt instead of holding the
	// attempt's completion until the queue has room.
	DropIfFull bool
}

// Dispatcher hands finished attempt records to a Sink on its own goroutine
// so a slow sink never delays an attempt's completion callback. A nil
// *Dispatcher is valid and discards everything.
type Dispatcher struct {
	sink       Sink
	dropIfFull bool

	queue    chan Event
	stopping chan struct{}
	worker   sync.WaitGroup
	stopOnce sync.Once
	stopped  atomic.Bool

	delivered atomic.Uint64
	dropped   atomic.Uint64
}

// NewDispatcher starts the delivery goroutine. It returns nil when auditing
// is disabled.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		sink:       sink,
		dropIfFull: cfg.DropIfFull,
		queue:      make(chan Event, max(cfg.BufferSize, 1)),
		stopping:   make(chan struct{}),
	}
	d.worker.Add(1)
	go d.deliverLoop()
	return d
}

func (d *Dispatcher) deliverLoop() {
	defer d.worker.Done()
	for {
		select {
		case record := <-d.queue:
			d.deliver(record)
		case <-d.stopping:
			for {
				select {
				case record := <-d.queue:
					d.deliver(record)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(record Event) {
	d.sink.Emit(context.Background(), record)
	d.delivered.Add(1)
}

// Emit queues the record of a finished attempt. The record is detached from
// the caller's diagnostics and metadata, and stamped with the current time
// when it carries none. Records emitted after Close are discarded.
func (d *Dispatcher) Emit(ctx context.Context, record Event) {
	if d == nil || d.stopped.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	record = detach(record)

	if d.dropIfFull {
		select {
		case d.queue <- record:
		case <-d.stopping:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- record:
	case <-ctx.Done():
		d.dropped.Add(1)
	case <-d.stopping:
	}
}

func detach(record Event) Event {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	record.Diagnostics = slices.Clone(record.Diagnostics)
	record.Metadata = maps.Clone(record.Metadata)
	return record
}

// Close stops accepting records and waits until the queued ones reach the
// sink.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.stopOnce.Do(func() {
		d.stopped.Store(true)
		close(d.stopping)
		d.worker.Wait()
	})
}

// Dropped counts attempts whose record never reached the sink.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

func (d *Dispatcher) Delivered() uint64 {
	if d == nil {
		return 0
	}
	return d.delivered.Load()
}
