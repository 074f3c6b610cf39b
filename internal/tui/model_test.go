package tui

import (
	"context"
	"net/http"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hottakes/internal/app"
	"hottakes/internal/backend"
	"hottakes/internal/backend/backendtest"
	"hottakes/internal/config"
	"hottakes/internal/gesture"
	"hottakes/internal/model"
	"hottakes/internal/profanity"
	"hottakes/internal/router"
	"hottakes/internal/session"
)

func newTestModel(t *testing.T) (Model, *backendtest.Server) {
	t.Helper()
	srv := backendtest.New()
	t.Cleanup(srv.Close)
	cfg := config.Default()
	cfg.Backend.BaseURL = srv.URL
	cfg.Backend.MaxAttempts = 1
	cfg.Voting.ExitDuration = 10 * time.Millisecond
	tokens := &session.MemoryTokens{}
	a := app.New(cfg, backend.NewHTTPClient(cfg.Backend, tokens), profanity.NewClient(cfg.Profanity), tokens)
	return New(context.Background(), a, Options{}), srv
}

func signIn(t *testing.T, m Model) Model {
	t.Helper()
	return signInAs(t, m, "u1", "alice")
}

func signInAs(t *testing.T, m Model, id, name string) Model {
	t.Helper()
	next, _ := m.Update(authDoneMsg{
		res: app.AuthResult{User: model.AuthUser{ID: id, Username: name}},
		ev:  router.LoginSucceeded,
	})
	return next.(Model)
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func withOpinion(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(opinionMsg{sid: m.app.Session.ID(), op: model.Opinion{ID: "o1", Content: "cereal is soup"}})
	return next.(Model)
}

func TestLoginScreenRenders(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Contains(t, m.View(), "Log in")
}

func TestLoginValidationShowsInline(t *testing.T) {
	m, srv := newTestModel(t)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), app.ErrMissingFields.Error())
	assert.Zero(t, srv.Calls("login"))
}

func TestLoginFormSubmits(t *testing.T) {
	m, srv := newTestModel(t)
	srv.AddUser("u1", "alice", "secret1")
	m, _ = press(t, m, runes("alice"), tea.KeyMsg{Type: tea.KeyTab}, runes("secret1"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.authBusy)

	msg := cmd()
	done, ok := msg.(authDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)

	next, cmd := m.Update(done)
	m = next.(Model)
	assert.Equal(t, router.Authenticated, m.app.Router.Screen())
	assert.NotNil(t, cmd)
	assert.True(t, m.app.Voting.Loading())
}

func TestCtrlNOpensRegister(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Equal(t, router.Register, m.app.Router.Screen())
	assert.Contains(t, m.View(), "Create account")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, router.Login, m.app.Router.Screen())
}

func TestNumberKeysSwitchTabs(t *testing.T) {
	m, _ := newTestModel(t)
	m = signIn(t, m)

	m, cmd := press(t, m, runes("2"))
	assert.Equal(t, router.Leaderboard, m.app.Router.Tab())
	assert.NotNil(t, cmd)
	m, _ = press(t, m, runes("3"))
	assert.Equal(t, router.Submission, m.app.Router.Tab())

	// digits are text while the editor has focus
	m, _ = press(t, m, runes("1"))
	assert.Equal(t, router.Submission, m.app.Router.Tab())
	assert.Equal(t, "1", m.editor.Value())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, router.Voting, m.app.Router.Tab())
}

func TestArrowKeyVotesOnce(t *testing.T) {
	m, _ := newTestModel(t)
	m = withOpinion(t, signIn(t, m))

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.NotNil(t, cmd)
	assert.True(t, m.app.Voting.Exiting())
	assert.Equal(t, 1, m.app.Ledger.CountByType(model.Upvote))

	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Nil(t, cmd)
	assert.Zero(t, m.app.Ledger.CountByType(model.Downvote))
}

func TestMouseDragVotes(t *testing.T) {
	m, _ := newTestModel(t)
	m = withOpinion(t, signIn(t, m))

	next, _ := m.Update(tea.MouseMsg{X: 40, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = next.(Model)
	next, _ = m.Update(tea.MouseMsg{X: 30, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m = next.(Model)
	assert.Equal(t, -80.0, m.app.Voting.Classifier().Delta())

	next, cmd := m.Update(tea.MouseMsg{X: 20, Action: tea.MouseActionRelease})
	m = next.(Model)
	assert.NotNil(t, cmd)
	assert.Equal(t, 1, m.app.Ledger.CountByType(model.Downvote))
}

func TestProfileOpensAndEscCloses(t *testing.T) {
	m, _ := newTestModel(t)
	m = signIn(t, m)

	m, cmd := press(t, m, runes("p"))
	assert.True(t, m.app.Router.ProfileOpen())
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "esc to close")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.app.Router.ProfileOpen())
}

func TestCtrlLLogsOut(t *testing.T) {
	m, _ := newTestModel(t)
	m = withOpinion(t, signIn(t, m))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Equal(t, router.Login, m.app.Router.Screen())
	assert.Zero(t, m.app.Ledger.Len())
	assert.False(t, m.app.Voting.Busy())
}

func TestUnauthorizedFetchLogsOut(t *testing.T) {
	m, _ := newTestModel(t)
	m = signIn(t, m)
	err := &backend.StatusError{Method: http.MethodGet, Path: "/api/opinions/next", Code: http.StatusUnauthorized}
	next, _ := m.Update(opinionMsg{sid: m.app.Session.ID(), err: err})
	m = next.(Model)
	assert.Equal(t, router.Login, m.app.Router.Screen())
}

func TestRetryAfterFetchFailure(t *testing.T) {
	m, _ := newTestModel(t)
	m = signIn(t, m)
	next, _ := m.Update(opinionMsg{sid: m.app.Session.ID(), err: app.ErrLoadOpinion})
	m = next.(Model)
	assert.Contains(t, m.View(), "press r to retry")

	m, cmd := press(t, m, runes("r"))
	assert.NotNil(t, cmd)
	assert.True(t, m.app.Voting.Loading())
}

func TestNearMeWithoutLocationShowsNotice(t *testing.T) {
	m, _ := newTestModel(t)
	m = signIn(t, m)
	m, _ = press(t, m, runes("2"))
	m, cmd := press(t, m, runes("n"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), app.ErrNoLocation.Error())
}

func TestVoteFromEndedSessionIsDropped(t *testing.T) {
	m, _ := newTestModel(t)
	m = withOpinion(t, signIn(t, m))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	require.NotNil(t, cmd)

	n := 99
	stale := voteDoneMsg{sid: m.app.Session.ID(), out: app.VoteOutcome{
		Ticket:     app.Ticket{OpinionID: "o1", Action: gesture.Agree, UserID: "u1"},
		Aggregates: &model.Aggregates{SessionVotes: &n, LifetimeVotes: &n},
	}}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	m = withOpinion(t, signInAs(t, m, "u2", "bob"))
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	require.NotNil(t, cmd)
	require.True(t, m.app.Voting.Exiting())

	next, cmd := m.Update(stale)
	m = next.(Model)
	assert.Nil(t, cmd)
	u := m.app.Session.Snapshot()
	assert.Equal(t, "u2", u.UserID)
	assert.NotEqual(t, 99, u.SessionVotes)
	assert.NotEqual(t, 99, u.LifetimeVotes)
	assert.True(t, m.app.Voting.Exiting())
	assert.True(t, m.app.Voting.Busy())
}

func TestSubmissionFromEndedSessionIsDropped(t *testing.T) {
	m, _ := newTestModel(t)
	m = signIn(t, m)
	m, _ = press(t, m, runes("3"), runes("first take"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	require.True(t, m.app.Submission.Busy())

	n := 99
	stale := submitDoneMsg{sid: m.app.Session.ID(), res: app.SubmitResult{Aggregates: &model.Aggregates{OpinionCount: &n}}}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	m = signInAs(t, m, "u2", "bob")
	m, _ = press(t, m, runes("3"), runes("second take"))
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)

	next, cmd := m.Update(stale)
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.True(t, m.app.Submission.Busy())
	assert.False(t, m.app.Submission.Succeeded(time.Now()))
	assert.Equal(t, "second take", m.editor.Value())
	assert.NotEqual(t, 99, m.app.Session.Snapshot().OpinionCount)
}

func TestLeaderboardFromEndedSessionIsDropped(t *testing.T) {
	m, _ := newTestModel(t)
	m = signIn(t, m)
	m, cmd := press(t, m, runes("2"))
	require.NotNil(t, cmd)
	stale := leaderboardMsg{sid: m.app.Session.ID(), rows: []model.LeaderboardOpinion{{ID: "o9", Content: "u1 only"}}}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	m = signInAs(t, m, "u2", "bob")
	next, _ := m.Update(stale)
	m = next.(Model)
	assert.Empty(t, m.app.Leaderboard.Rows())
}

func TestDragShowsTilt(t *testing.T) {
	m, _ := newTestModel(t)
	m = withOpinion(t, signIn(t, m))
	assert.NotContains(t, m.View(), "tilt")

	next, _ := m.Update(tea.MouseMsg{X: 40, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = next.(Model)
	next, _ = m.Update(tea.MouseMsg{X: 50, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m = next.(Model)
	assert.Contains(t, m.View(), "tilt +4°")
}
