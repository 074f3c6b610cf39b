// Package app holds the screen controllers. Each splits its work into a
// loop-side step that reads or writes shared state and a network step that
// takes a context and only returns values.
package app

import (
	"context"
	"errors"
	"time"

	"hottakes/internal/backend"
	"hottakes/internal/config"
	"hottakes/internal/ledger"
	"hottakes/internal/logging"
	"hottakes/internal/model"
	"hottakes/internal/profanity"
	"hottakes/internal/router"
	"hottakes/internal/session"
)

// App wires the shared state to every controller.
type App struct {
	Config  config.Config
	Session *session.Store
	Ledger  *ledger.Ledger
	Tokens  session.TokenStore
	Router  *router.Router

	Auth        *Auth
	Voting      *Voting
	Leaderboard *Leaderboard
	Submission  *Submission
	Profile     *Profile

	gw  backend.Gateway
	now func() time.Time
}

func New(cfg config.Config, gw backend.Gateway, checker profanity.Checker, tokens session.TokenStore) *App {
	if tokens == nil {
		tokens = &session.MemoryTokens{}
	}
	sess := session.NewStore()
	l := &ledger.Ledger{}
	return &App{
		Config:      cfg,
		Session:     sess,
		Ledger:      l,
		Tokens:      tokens,
		Router:      router.New(sess, l, tokens),
		Auth:        NewAuth(gw, sess, tokens),
		Voting:      NewVoting(gw, sess, l, cfg.Voting),
		Leaderboard: NewLeaderboard(gw, sess, cfg.Leaderboard),
		Submission:  NewSubmission(gw, checker, sess, cfg.Submission),
		Profile:     NewProfile(gw, sess, l),
		gw:          gw,
		now:         time.Now,
	}
}

// SignedIn applies an auth result and enters the authenticated screen.
func (a *App) SignedIn(res AuthResult, ev router.Event) error {
	if err := a.Router.Fire(ev); err != nil {
		return err
	}
	a.Auth.Apply(res)
	return nil
}

// Logout clears the session and returns to the login screen.
func (a *App) Logout() error {
	if err := a.Router.Fire(router.Logout); err != nil {
		return err
	}
	a.Voting.Reset()
	a.Leaderboard.Reset()
	a.Submission.Reset()
	a.Profile.Reset()
	logging.Info("session_ended", nil)
	return nil
}

// HandleAuthError logs out when err is a 401 seen while signed in.
func (a *App) HandleAuthError(err error) bool {
	if err == nil || !errors.Is(err, backend.ErrUnauthorized) {
		return false
	}
	if a.Router.Screen() != router.Authenticated {
		return false
	}
	logging.Warn("session_unauthorized", map[string]any{"user_id": a.Session.UserID()})
	return a.Logout() == nil
}

// StatsStale reports whether the displayed aggregates are past the
// configured staleness bound.
func (a *App) StatsStale() bool {
	if !a.Session.LoggedIn() {
		return false
	}
	bound := a.Config.Session.StaleAfter
	if bound <= 0 {
		bound = time.Minute
	}
	return a.Session.Stale(a.now(), bound)
}

// RefreshStats reads the user's aggregates. Network step.
func (a *App) RefreshStats(ctx context.Context, userID string) (model.Aggregates, error) {
	u, err := a.gw.CurrentUser(ctx, userID)
	if err != nil {
		return model.Aggregates{}, err
	}
	return u.Aggregates, nil
}

// ApplyStats writes a refresh result; failures are logged and dropped.
func (a *App) ApplyStats(agg model.Aggregates, err error) {
	if err != nil {
		logging.Warn("stats_refresh_failed", map[string]any{"error": err.Error()})
		return
	}
	if a.Session.LoggedIn() {
		a.Session.ApplyAggregates(agg)
	}
}
