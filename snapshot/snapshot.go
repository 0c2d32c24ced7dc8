package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrEthical07/goSession/identity"
)

// CurrentVersion is the schema version written by Encode.
const CurrentVersion = 0

var (
	// ErrEmpty is returned when decoding zero bytes.
	ErrEmpty = errors.New("snapshot: empty")
	// ErrCorrupt is returned when the bytes are not a snapshot envelope.
	ErrCorrupt = errors.New("snapshot: corrupt")
	// ErrUnsupportedVersion is returned for envelopes newer than CurrentVersion.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")
)

// State is the session state that survives restarts.
type State struct {
	IsLoggedIn bool           `json:"isLoggedIn"`
	User       *identity.User `json:"user"`
}

// Clone returns a copy of s that shares no memory with it.
func (s State) Clone() State {
	return State{IsLoggedIn: s.IsLoggedIn, User: s.User.Clone()}
}

type envelope struct {
	State   *State `json:"state"`
	Version *int   `json:"version"`
}

// Encode serializes s at CurrentVersion.
func Encode(s State) ([]byte, error) {
	v := CurrentVersion
	data, err := json.Marshal(envelope{State: &s, Version: &v})
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	return data, nil
}

// Decode parses data produced by Encode.
func Decode(data []byte) (State, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return State{}, ErrEmpty
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if env.State == nil || env.Version == nil {
		return State{}, fmt.Errorf("%w: missing state or version", ErrCorrupt)
	}
	if *env.Version < 0 || *env.Version > CurrentVersion {
		return State{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, *env.Version)
	}

	return *env.State, nil
}
