package goSession

import (
	"io"

	"go.uber.org/zap"

	internalaudit "github.com/MrEthical07/goSession/internal/audit"
)

// AuditEvent describes one state transition of a Store.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the dispatcher goroutine.
type AuditSink = internalaudit.Sink

// NoOpSink drops audit events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink delivers audit events to a buffered channel.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes audit events as JSON lines.
type JSONWriterSink = internalaudit.JSONWriterSink

// LoggerSink writes audit events through a zap logger.
type LoggerSink = internalaudit.LoggerSink

// AuditSinkFunc adapts a function to AuditSink.
type AuditSinkFunc = internalaudit.SinkFunc

// Audit event types.
const (
	AuditSetUser           = "session.set_user"
	AuditSetLoggedIn       = "session.set_logged_in"
	AuditFetchUser         = "session.fetch_user"
	AuditLogout            = "session.logout"
	AuditRehydrate         = "session.rehydrate"
	AuditPersistFailure    = "session.persist_failure"
	AuditSnapshotDiscarded = "session.snapshot_discarded"
)

// NewChannelSink returns a ChannelSink with the given buffer.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewLoggerSink returns a sink logging to logger; nil discards.
func NewLoggerSink(logger *zap.Logger) *LoggerSink {
	return internalaudit.NewLoggerSink(logger)
}
