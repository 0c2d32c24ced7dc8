package goSession

import "errors"

var (
	// ErrBuilderUsed is returned when Build is called twice on the same Builder.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrStorageRequired is returned when no persistence adapter was supplied.
	ErrStorageRequired = errors.New("storage adapter required")
	// ErrIdentityRequired is returned when neither an identity client nor an identity base URL was supplied.
	ErrIdentityRequired = errors.New("identity client required")
	// ErrInvalidConfig wraps every Config.Validate failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrSnapshotTooLarge is recorded when an encoded snapshot exceeds Persistence.MaxSnapshotBytes.
	ErrSnapshotTooLarge = errors.New("snapshot too large")
)
