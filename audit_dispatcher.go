package authflow

import (
	"context"
	"sync"
	"sync/atomic"
)

// auditDispatcher relays flow events to the configured sink from a dedicated
// goroutine so login, OTP, and reset paths never block on audit I/O. A nil
// dispatcher is valid and discards everything; Build leaves it nil when
// auditing is disabled.
type auditDispatcher struct {
	sink       AuditSink
	events     chan AuditEvent
	quit       chan struct{}
	dropIfFull bool

	lost     atomic.Uint64
	stopping atomic.Bool
	stop     sync.Once
	drained  sync.WaitGroup
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = 1
	}

	d := &auditDispatcher{
		sink:       sink,
		events:     make(chan AuditEvent, buffer),
		quit:       make(chan struct{}),
		dropIfFull: cfg.DropIfFull,
	}
	d.drained.Add(1)
	go d.relay()
	return d
}

// relay forwards events until Close, then flushes whatever is still buffered
// so events emitted during a flow's final transition are not lost.
func (d *auditDispatcher) relay() {
	defer d.drained.Done()
	for {
		select {
		case event := <-d.events:
			d.sink.Emit(context.Background(), event)
		case <-d.quit:
			d.flush()
			return
		}
	}
}

func (d *auditDispatcher) flush() {
	for {
		select {
		case event := <-d.events:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit hands the event to the relay goroutine. With DropIfFull the event is
// discarded and counted when the buffer is full; otherwise Emit waits for
// room until the context ends or the dispatcher closes.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil || d.stopping.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.dropIfFull {
		select {
		case d.events <- event:
		case <-d.quit:
		default:
			d.lost.Add(1)
		}
		return
	}

	select {
	case d.events <- event:
	case <-ctx.Done():
	case <-d.quit:
	}
}

// Close stops intake, waits for buffered events to reach the sink, and is
// safe to call more than once.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.stop.Do(func() {
		d.stopping.Store(true)
		close(d.quit)
		d.drained.Wait()
	})
}

// Dropped reports how many events were discarded because the buffer was full.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.lost.Load()
}
