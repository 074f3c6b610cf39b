// Package session holds the authenticated user's identity, cumulative
// stats and detected location for the lifetime of one login.
package session

import (
	"time"

	"github.com/google/uuid"

	"hottakes/internal/model"
)

// Store is the explicit session-state handle shared by every screen.
// It is mutated only from the UI event loop.
type Store struct {
	id            uuid.UUID
	user          model.SessionUser
	populated     bool
	location      *model.LocationInfo
	lastRefreshed time.Time
	now           func() time.Time
}

func NewStore() *Store {
	return &Store{id: uuid.New(), now: time.Now}
}

// ID identifies this login session; it changes on Reset.
func (s *Store) ID() uuid.UUID { return s.id }

// Snapshot returns a copy of the current user.
func (s *Store) Snapshot() model.SessionUser {
	u := s.user
	u.OpinionIDs = append([]string(nil), s.user.OpinionIDs...)
	return u
}

func (s *Store) UserID() string   { return s.user.UserID }
func (s *Store) LoggedIn() bool   { return s.user.UserID != "" }
func (s *Store) Populated() bool  { return s.populated }
func (s *Store) Username() string { return s.user.Username }

// SetIdentity records who is logged in.
func (s *Store) SetIdentity(userID, username string) {
	s.user.UserID = userID
	s.user.Username = username
}

// ApplyAggregates writes all four aggregate fields in one step. An absent
// field keeps its previous value, which is zero/empty before the first
// population.
func (s *Store) ApplyAggregates(a model.Aggregates) {
	next := s.user
	if a.SessionVotes != nil {
		next.SessionVotes = *a.SessionVotes
	}
	if a.LifetimeVotes != nil {
		next.LifetimeVotes = *a.LifetimeVotes
	}
	if a.OpinionCount != nil {
		next.OpinionCount = *a.OpinionCount
	}
	if a.OpinionIDs != nil {
		next.OpinionIDs = append([]string(nil), a.OpinionIDs...)
	}
	s.user = next
	s.populated = true
	s.lastRefreshed = s.now()
}

// Location returns the cached location, or nil when unknown.
func (s *Store) Location() *model.LocationInfo {
	if s.location == nil {
		return nil
	}
	l := *s.location
	return &l
}

// SetLocation caches loc for the session; nil clears it.
func (s *Store) SetLocation(loc *model.LocationInfo) {
	if loc == nil || loc.Empty() {
		s.location = nil
		return
	}
	l := *loc
	s.location = &l
}

// LastRefreshed is when aggregates were last written.
func (s *Store) LastRefreshed() time.Time { return s.lastRefreshed }

// Stale reports whether aggregates are older than bound. A store that was
// never populated is stale.
func (s *Store) Stale(now time.Time, bound time.Duration) bool {
	if !s.populated {
		return true
	}
	return now.Sub(s.lastRefreshed) > bound
}

// OpinionCountConsistent reports whether opinionIds matches opinionCount.
func (s *Store) OpinionCountConsistent() bool {
	return len(s.user.OpinionIDs) == s.user.OpinionCount
}

// Reset returns the store to empty defaults and starts a new session id.
func (s *Store) Reset() {
	s.user = model.SessionUser{}
	s.populated = false
	s.location = nil
	s.lastRefreshed = time.Time{}
	s.id = uuid.New()
}
