package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hottakes/internal/backend/backendtest"
	"hottakes/internal/config"
	"hottakes/internal/session"
)

// helper to create client against a test server
func newTestClient(baseURL string, tokens TokenSource) *HTTPClient {
	c := NewHTTPClient(config.BackendConfig{BaseURL: baseURL, RPS: 1000, Burst: 1000}, tokens)
	c.maxAttempts = 3
	c.baseBackoff = 10 * time.Millisecond
	return c
}

func TestDoWithRetryHandles429(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"country":"US","region":"CA"}`))
	}))
	defer ts.Close()

	c := newTestClient(ts.URL, nil)
	loc, err := c.Location(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "CA", loc.Region)
	assert.Equal(t, 2, attempts)
}

func TestPostIsNotRetried(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c := newTestClient(ts.URL, nil)
	_, err := c.Vote(context.Background(), "o1", 1, "u1")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.True(t, se.Retryable())
	assert.Equal(t, 1, attempts)
}

func TestBearerHeaderOnlyWithToken(t *testing.T) {
	var got []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	tokens := &session.MemoryTokens{}
	c := newTestClient(ts.URL, tokens)
	_, _ = c.Location(context.Background())
	require.NoError(t, tokens.Save("abc", "u1"))
	_, _ = c.Location(context.Background())
	assert.Equal(t, []string{"", "Bearer abc"}, got)
}

func TestUnauthorizedIsMatchable(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()
	c := newTestClient(srv.URL, nil)
	_, err := c.NextOpinion(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "invalid token", se.Message)
}

func TestNextOpinionSendsExcludeCSV(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()
	now := time.Now().UTC()
	srv.AddOpinion("a", "pineapple belongs on pizza", 3, 1, now)
	srv.AddOpinion("b", "tabs over spaces", 0, 0, now)
	srv.AddOpinion("c", "cats over dogs", 0, 0, now)

	tokens := &session.MemoryTokens{}
	require.NoError(t, tokens.Save(backendtest.Token, "u1"))
	c := newTestClient(srv.URL, tokens)
	op, err := c.NextOpinion(context.Background(), []string{"a", "b"}, "u1")
	require.NoError(t, err)
	assert.Equal(t, "c", op.ID)
	q, err := url.ParseQuery(srv.LastQuery("next"))
	require.NoError(t, err)
	assert.Equal(t, "a,b", q.Get("exclude"))
	assert.Equal(t, "u1", q.Get("userId"))
}

func TestAuthVoteAndStatusRoundTrip(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()
	srv.AddUser("u1", "alice", "secret1")
	srv.AddOpinion("a", "hot take", 0, 0, time.Now().UTC())

	tokens := &session.MemoryTokens{}
	c := newTestClient(srv.URL, tokens)
	ctx := context.Background()

	auth, err := c.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u1", auth.User.ID)
	require.NotNil(t, auth.User.LifetimeVotes)
	require.NoError(t, tokens.Save(auth.Token, auth.User.ID))

	res, err := c.Vote(ctx, "a", -1, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Opinion.Downvotes)

	st, err := c.VoteStatus(ctx, "a", "u1")
	require.NoError(t, err)
	assert.True(t, st.HasVoted)
	assert.Equal(t, -1, st.VoteValue)

	u, err := c.CurrentUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, *u.LifetimeVotes)
}

func TestVoteRejectsInvalidValue(t *testing.T) {
	c := newTestClient("http://unused.invalid", nil)
	_, err := c.Vote(context.Background(), "a", 0, "u1")
	assert.Error(t, err)
}

func TestLeaderboardDecodesOpinions(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()
	at := time.Date(2026, 1, 22, 17, 16, 0, 0, time.UTC)
	srv.AddOpinion("low", "meh", 1, 0, at)
	srv.AddOpinion("high", "yes", 9, 2, at)

	c := newTestClient(srv.URL, nil)
	ops, err := c.Leaderboard(context.Background(), 500, "")
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, "high", ops[0].ID)
	assert.True(t, ops[0].DateSubmitted.Equal(at))
	q, _ := url.ParseQuery(srv.LastQuery("top"))
	assert.Equal(t, "100", q.Get("limit"))
	assert.Equal(t, "top", q.Get("type"))

	_, err = c.NearMe(context.Background(), "", 10)
	assert.Error(t, err)
}
