package audit

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Event records one session state transition. It carries the user id only,
// never profile fields.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	Key       string            `json:"key,omitempty"`
	UserID    string            `json:"user_id,omitempty"`
	LoggedIn  bool              `json:"logged_in"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Sink receives events from the dispatcher goroutine.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, event Event)

func (f SinkFunc) Emit(ctx context.Context, event Event) { f(ctx, event) }

// ChannelSink queues events for a consumer. A session consumer cares about the
// latest transitions, so once the buffer is full the oldest queued event is
// evicted to make room.
type ChannelSink struct {
	mu      sync.Mutex
	events  chan Event
	evicted atomic.Uint64
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{events: make(chan Event, buffer)}
}

func (s *ChannelSink) Emit(_ context.Context, event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		select {
		case s.events <- event:
			return
		default:
		}
		select {
		case <-s.events:
			s.evicted.Add(1)
		default:
		}
	}
}

func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// Evicted returns how many queued events were pushed out by newer ones.
func (s *ChannelSink) Evicted() uint64 {
	return s.evicted.Load()
}

// JSONWriterSink encodes one event per line.
type JSONWriterSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	if w == nil {
		w = io.Discard
	}
	return &JSONWriterSink{enc: json.NewEncoder(w)}
}

func (s *JSONWriterSink) Emit(_ context.Context, event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.enc.Encode(event)
}

// LoggerSink writes events as structured log entries: successful transitions
// at Info, failed ones at Warn.
type LoggerSink struct {
	logger *zap.Logger
}

func NewLoggerSink(logger *zap.Logger) *LoggerSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggerSink{logger: logger}
}

func (s *LoggerSink) Emit(_ context.Context, event Event) {
	fields := make([]zap.Field, 0, 6+len(event.Metadata))
	fields = append(fields,
		zap.String("event", event.EventType),
		zap.String("key", event.Key),
		zap.Bool("logged_in", event.LoggedIn),
		zap.Time("at", event.Timestamp),
	)
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	for k, v := range event.Metadata {
		fields = append(fields, zap.String("meta."+k, v))
	}

	if event.Success {
		s.logger.Info("session transition", fields...)
		return
	}
	if event.Error != "" {
		fields = append(fields, zap.String("error", event.Error))
	}
	s.logger.Warn("session transition failed", fields...)
}
