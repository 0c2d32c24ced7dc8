package goSession

import (
	"github.com/MrEthical07/goSession/identity"
	"github.com/MrEthical07/goSession/snapshot"
)

// User is the profile held by the store.
type User = identity.User

// State is the store's authentication state: the login flag and the held profile.
//
// IsLoggedIn == true implies User != nil on every path the store drives itself;
// SetIsLoggedIn does not repair a caller that breaks this.
type State = snapshot.State
