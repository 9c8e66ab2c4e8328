package namecheck

import (
	"sync"
	"time"
)

// auditDispatcher decouples event emission from the sink. Events are queued
// on a buffered channel and delivered by a single goroutine so a slow sink
// never stalls a resolution.
type auditDispatcher struct {
	sink       AuditSink
	events     chan AuditEvent
	dropIfFull bool

	closeOnce sync.Once
	done      chan struct{}
}

func newAuditDispatcher(sink AuditSink, bufferSize int, dropIfFull bool) *auditDispatcher {
	if sink == nil {
		sink = NoOpSink{}
	}
	if bufferSize <= 0 {
		bufferSize = 256
	}

	d := &auditDispatcher{
		sink:       sink,
		events:     make(chan AuditEvent, bufferSize),
		dropIfFull: dropIfFull,
		done:       make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *auditDispatcher) run() {
	for ev := range d.events {
		d.sink.Emit(ev)
	}
	close(d.done)
}

// emit queues an event. With dropIfFull set a full buffer discards the
// event instead of blocking the caller.
func (d *auditDispatcher) emit(ev AuditEvent) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	if d.dropIfFull {
		select {
		case d.events <- ev:
		default:
		}
		return
	}
	d.events <- ev
}

// close stops the dispatcher after draining queued events.
func (d *auditDispatcher) close() {
	d.closeOnce.Do(func() {
		close(d.events)
	})
	<-d.done
}
