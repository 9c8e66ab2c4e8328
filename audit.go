package namecheck

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

/* ==== EVENT TYPES ==== */

const (
	// AuditEventResolve is emitted once per lookup resolution.
	AuditEventResolve = "lookup.resolve"
	// AuditEventLogin is emitted after a full credential login attempt.
	AuditEventLogin = "session.login"
	// AuditEventRefresh is emitted when a session or token refresh runs.
	AuditEventRefresh = "session.refresh"
	// AuditEventCacheWrite is emitted when persisting a resolved name fails.
	AuditEventCacheWrite = "cache.write"
)

// AuditEvent is one structured audit record. Events never carry credentials
// or session cookie values.
type AuditEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	PlayerID  string            `json:"player_id,omitempty"`
	Backend   string            `json:"backend,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

/* ==== SINKS ==== */

// AuditSink receives audit events. Emit must be safe for concurrent use and
// must not block for long; slow sinks should buffer internally.
type AuditSink interface {
	Emit(event AuditEvent)
}

// NoOpSink discards every event.
type NoOpSink struct{}

// Emit implements [AuditSink].
func (NoOpSink) Emit(AuditEvent) {}

// ChannelSink forwards events to a channel, dropping when the channel is
// full.
type ChannelSink struct {
	C chan AuditEvent
}

// NewChannelSink creates a ChannelSink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 64
	}
	return &ChannelSink{C: make(chan AuditEvent, buffer)}
}

// Emit implements [AuditSink].
func (s *ChannelSink) Emit(event AuditEvent) {
	select {
	case s.C <- event:
	default:
	}
}

// JSONWriterSink writes one JSON object per line to an io.Writer.
type JSONWriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewJSONWriterSink creates a JSONWriterSink writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{w: w}
}

// Emit implements [AuditSink]. Marshal or write errors are ignored; audit
// output is best effort.
func (s *JSONWriterSink) Emit(event AuditEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	data = append(data, '\n')

	s.mu.Lock()
	_, _ = s.w.Write(data)
	s.mu.Unlock()
}
