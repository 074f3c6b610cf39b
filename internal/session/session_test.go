package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hottakes/internal/model"
)

func intp(v int) *int { return &v }

func TestApplyAggregatesFirstPopulationDefaultsToZero(t *testing.T) {
	s := NewStore()
	s.ApplyAggregates(model.Aggregates{LifetimeVotes: intp(7)})
	u := s.Snapshot()
	assert.Equal(t, 0, u.SessionVotes)
	assert.Equal(t, 7, u.LifetimeVotes)
	assert.Equal(t, 0, u.OpinionCount)
	assert.Empty(t, u.OpinionIDs)
	assert.True(t, s.Populated())
}

func TestApplyAggregatesKeepsAbsentFields(t *testing.T) {
	s := NewStore()
	s.ApplyAggregates(model.Aggregates{
		SessionVotes: intp(1), LifetimeVotes: intp(10), OpinionCount: intp(2), OpinionIDs: []string{"a", "b"},
	})
	s.ApplyAggregates(model.Aggregates{SessionVotes: intp(2)})
	u := s.Snapshot()
	assert.Equal(t, 2, u.SessionVotes)
	assert.Equal(t, 10, u.LifetimeVotes)
	assert.Equal(t, 2, u.OpinionCount)
	assert.Equal(t, []string{"a", "b"}, u.OpinionIDs)
	assert.True(t, s.OpinionCountConsistent())
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.ApplyAggregates(model.Aggregates{OpinionIDs: []string{"a"}})
	u := s.Snapshot()
	u.OpinionIDs[0] = "mutated"
	assert.Equal(t, "a", s.Snapshot().OpinionIDs[0])
}

func TestStaleness(t *testing.T) {
	s := NewStore()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	assert.True(t, s.Stale(base, time.Minute))
	s.ApplyAggregates(model.Aggregates{})
	assert.False(t, s.Stale(base.Add(30*time.Second), time.Minute))
	assert.True(t, s.Stale(base.Add(61*time.Second), time.Minute))
}

func TestResetClearsEverything(t *testing.T) {
	s := NewStore()
	id := s.ID()
	s.SetIdentity("u1", "alice")
	s.SetLocation(&model.LocationInfo{Region: "CA"})
	s.ApplyAggregates(model.Aggregates{SessionVotes: intp(3)})
	s.Reset()
	assert.Equal(t, model.SessionUser{}, s.Snapshot())
	assert.Nil(t, s.Location())
	assert.False(t, s.LoggedIn())
	assert.False(t, s.Populated())
	assert.NotEqual(t, id, s.ID())
}

func TestSetLocationIgnoresEmpty(t *testing.T) {
	s := NewStore()
	s.SetLocation(&model.LocationInfo{})
	assert.Nil(t, s.Location())
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	sign := func(exp time.Time) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("k"))
		require.NoError(t, err)
		return tok
	}
	assert.True(t, TokenExpired("", now))
	assert.True(t, TokenExpired(sign(now.Add(-time.Hour)), now))
	assert.False(t, TokenExpired(sign(now.Add(time.Hour)), now))
	assert.False(t, TokenExpired("opaque-token", now))
}

func TestMemoryTokens(t *testing.T) {
	var m MemoryTokens
	require.NoError(t, m.Save("t", "u"))
	assert.Equal(t, "t", m.Token())
	require.NoError(t, m.Clear())
	assert.Empty(t, m.UserID())
}
