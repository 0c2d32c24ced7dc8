package goSession

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/MrEthical07/goSession/identity"
	internalaudit "github.com/MrEthical07/goSession/internal/audit"
	"go.uber.org/zap"
)

// Store is the single authoritative record of the current authentication state.
//
// Every mutation goes through one commit path that applies the change in memory and
// then mirrors it to the storage adapter. Commits are serialized, so the durable
// snapshot always reflects the last committed state. Reads never wait on the network.
//
// Store is safe for concurrent use. Obtain one from Builder.Build.
type Store struct {
	mu    sync.RWMutex
	state State

	commitMu sync.Mutex

	persist  *persister
	identity identity.Client
	logger   *zap.Logger
	metrics  *Metrics
	audit    *internalaudit.Dispatcher
	now      func() time.Time

	subsMu  sync.RWMutex
	subs    map[uint64]func(State)
	nextSub uint64
}

type mutation struct {
	event  string
	apply  func(State) State
	remove bool
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// User returns a copy of the held profile, or nil.
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User.Clone()
}

// IsLoggedIn reports the login flag.
func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsLoggedIn
}

// SetUser replaces the held profile with a copy of u. The login flag is unchanged.
func (s *Store) SetUser(ctx context.Context, u *User) {
	held := u.Clone()
	s.metrics.Inc(MetricSetUser)
	s.commit(ctx, mutation{
		event: AuditSetUser,
		apply: func(cur State) State {
			return State{IsLoggedIn: cur.IsLoggedIn, User: held}
		},
	})
}

// SetIsLoggedIn sets the login flag and leaves the profile alone. Setting true while
// no profile is held is accepted as is.
func (s *Store) SetIsLoggedIn(ctx context.Context, loggedIn bool) {
	s.metrics.Inc(MetricSetLoggedIn)
	s.commit(ctx, mutation{
		event: AuditSetLoggedIn,
		apply: func(cur State) State {
			return State{IsLoggedIn: loggedIn, User: cur.User}
		},
	})
}

// FetchUser asks the identity collaborator for the current profile. A 200 response
// carrying a profile commits {true, profile}; every other outcome commits {false, nil}.
// It never fails and returns the state it committed.
//
// The round trip holds no lock. Concurrent calls, and mutations made while a call is in
// flight, are last-write-wins: a slow response overwrites anything committed before it
// lands. Callers that need at most one refresh in flight must serialize calls themselves.
func (s *Store) FetchUser(ctx context.Context) State {
	start := s.now()
	res, err := s.identity.Me(ctx)
	s.metrics.Observe(MetricFetchLatency, s.now().Sub(start))

	var next State
	switch {
	case err != nil:
		s.logger.Debug("profile refresh failed", zap.Error(err))
	case res.StatusCode != http.StatusOK:
		s.logger.Debug("profile refresh rejected", zap.Int("status", res.StatusCode))
	case res.User == nil:
		s.logger.Debug("profile refresh returned no profile")
	default:
		next = State{IsLoggedIn: true, User: res.User.Clone()}
	}

	if next.IsLoggedIn {
		s.metrics.Inc(MetricFetchSuccess)
	} else {
		s.metrics.Inc(MetricFetchFailure)
	}

	s.commit(ctx, mutation{
		event: AuditFetchUser,
		apply: func(State) State { return next },
	})
	return next.Clone()
}

// Logout clears the profile and the flag in one transition and removes the persisted
// snapshot. Calling it again is harmless.
func (s *Store) Logout(ctx context.Context) {
	s.metrics.Inc(MetricLogout)
	s.commit(ctx, mutation{
		event:  AuditLogout,
		apply:  func(State) State { return State{} },
		remove: true,
	})
}

// Subscribe registers fn to receive a copy of the state after every commit. Calls
// happen on the committing goroutine, outside the store's locks; with concurrent
// writers the delivery order across commits is not defined.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

// MetricsSnapshot returns the counters of the Metrics this store records into.
func (s *Store) MetricsSnapshot() MetricsSnapshot {
	return s.metrics.Snapshot()
}

// AuditDropped returns how many audit events were dropped because the buffer was full.
func (s *Store) AuditDropped() uint64 {
	return s.audit.Dropped()
}

// Close flushes pending audit events and stops the dispatcher. The state and the
// persisted snapshot are left as they are.
func (s *Store) Close() {
	if s == nil {
		return
	}
	s.audit.Close()
}

func (s *Store) commit(ctx context.Context, m mutation) {
	s.commitMu.Lock()

	s.mu.Lock()
	prev := s.state
	next := m.apply(prev)
	s.state = next
	s.mu.Unlock()

	// The caller may give up on ctx; durable state and the audit trail must
	// still follow memory.
	ctx = context.WithoutCancel(ctx)
	perr := s.write(ctx, next, m.remove)

	s.commitMu.Unlock()

	ev := AuditEvent{
		EventType: m.event,
		UserID:    userID(next.User),
		LoggedIn:  next.IsLoggedIn,
		Success:   perr == nil,
	}
	if ev.UserID == "" {
		ev.UserID = userID(prev.User)
	}
	if perr != nil {
		ev.Error = perr.Error()
	}
	s.emit(ctx, ev)
	s.notify(next)
}

func (s *Store) write(ctx context.Context, st State, remove bool) error {
	op := "set"
	var err error
	if remove {
		op = "remove"
		err = s.persist.clear(ctx)
	} else {
		err = s.persist.save(ctx, st)
	}
	if err == nil {
		return nil
	}

	s.metrics.Inc(MetricPersistFailure)
	s.logger.Warn("session snapshot not persisted",
		zap.String("key", s.persist.cfg.Key),
		zap.String("op", op),
		zap.Error(err),
	)
	s.emit(ctx, AuditEvent{
		EventType: AuditPersistFailure,
		LoggedIn:  st.IsLoggedIn,
		UserID:    userID(st.User),
		Error:     err.Error(),
		Metadata:  map[string]string{"op": op},
	})
	return err
}

// rehydrate restores the persisted snapshot. It runs once, before the store is
// handed out, so it takes no locks.
func (s *Store) rehydrate(ctx context.Context) {
	st, outcome, err := s.persist.load(ctx)

	switch outcome {
	case loadHit:
		s.state = st
		s.metrics.Inc(MetricRehydrateHit)
		s.logger.Debug("session restored",
			zap.Bool("logged_in", st.IsLoggedIn),
			zap.String("user_id", userID(st.User)),
		)
	case loadMiss:
		s.metrics.Inc(MetricRehydrateMiss)
	case loadUnavailable:
		s.metrics.Inc(MetricRehydrateMiss)
		s.logger.Warn("session snapshot unreadable, starting logged out",
			zap.String("key", s.persist.cfg.Key),
			zap.Error(err),
		)
	case loadCorrupt:
		s.metrics.Inc(MetricRehydrateCorrupt)
		s.logger.Warn("discarding corrupt session snapshot",
			zap.String("key", s.persist.cfg.Key),
			zap.Error(err),
		)
		s.emit(ctx, AuditEvent{
			EventType: AuditSnapshotDiscarded,
			Error:     err.Error(),
		})
		if rerr := s.persist.clear(ctx); rerr != nil {
			s.logger.Warn("remove corrupt session snapshot", zap.Error(rerr))
		}
	}

	s.emit(ctx, AuditEvent{
		EventType: AuditRehydrate,
		UserID:    userID(s.state.User),
		LoggedIn:  s.state.IsLoggedIn,
		Success:   outcome == loadHit || outcome == loadMiss,
	})
}

func (s *Store) emit(ctx context.Context, ev AuditEvent) {
	if s.audit == nil {
		return
	}
	ev.Timestamp = s.now()
	ev.Key = s.persist.cfg.Key
	s.audit.Emit(ctx, ev)
}

func (s *Store) notify(st State) {
	s.subsMu.RLock()
	if len(s.subs) == 0 {
		s.subsMu.RUnlock()
		return
	}
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.RUnlock()

	for _, fn := range fns {
		fn(st.Clone())
	}
}

func userID(u *User) string {
	if u == nil {
		return ""
	}
	return u.ID
}
