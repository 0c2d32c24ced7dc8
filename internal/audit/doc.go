// Package audit buffers session events and relays them to a sink.
//
// The package owns buffering and delivery only. Deciding which events to emit
// belongs to the store. It must not import goSession.
package audit
