// Package router is the screen state machine: login, register and the
// authenticated app with its tabs and profile overlay.
package router

import (
	"errors"
	"fmt"

	"hottakes/internal/ledger"
	"hottakes/internal/logging"
	"hottakes/internal/session"
)

// ErrIllegalTransition is returned for any event the current screen does
// not accept. State is left unchanged.
var ErrIllegalTransition = errors.New("illegal screen transition")

type Screen int

const (
	Login Screen = iota
	Register
	Authenticated
)

func (s Screen) String() string {
	switch s {
	case Login:
		return "login"
	case Register:
		return "register"
	case Authenticated:
		return "authenticated"
	}
	return fmt.Sprintf("screen(%d)", int(s))
}

type Tab int

const (
	Voting Tab = iota
	Leaderboard
	Submission
)

// Tabs lists tabs in tab-bar order.
var Tabs = []Tab{Voting, Leaderboard, Submission}

func (t Tab) String() string {
	switch t {
	case Voting:
		return "Vote"
	case Leaderboard:
		return "Leaderboard"
	case Submission:
		return "Submit"
	}
	return fmt.Sprintf("tab(%d)", int(t))
}

type Event int

const (
	SwitchToRegister Event = iota
	SwitchToLogin
	LoginSucceeded
	RegisterSucceeded
	Logout
)

func (e Event) String() string {
	switch e {
	case SwitchToRegister:
		return "switch-to-register"
	case SwitchToLogin:
		return "switch-to-login"
	case LoginSucceeded:
		return "login-success"
	case RegisterSucceeded:
		return "register-success"
	case Logout:
		return "logout"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

type edge struct {
	from Screen
	ev   Event
}

var transitions = map[edge]Screen{
	{Login, SwitchToRegister}:     Register,
	{Register, SwitchToLogin}:     Login,
	{Login, LoginSucceeded}:       Authenticated,
	{Register, RegisterSucceeded}: Authenticated,
	{Authenticated, Logout}:       Login,
}

// Router owns the current screen, tab and profile overlay. Logout clears
// the session collaborators it was built with.
type Router struct {
	screen      Screen
	tab         Tab
	profileOpen bool

	session *session.Store
	ledger  *ledger.Ledger
	tokens  session.TokenStore
}

func New(s *session.Store, l *ledger.Ledger, tokens session.TokenStore) *Router {
	return &Router{screen: Login, tab: Voting, session: s, ledger: l, tokens: tokens}
}

func (r *Router) Screen() Screen    { return r.screen }
func (r *Router) Tab() Tab          { return r.tab }
func (r *Router) ProfileOpen() bool { return r.profileOpen }

// Fire applies ev to the current screen.
func (r *Router) Fire(ev Event) error {
	next, ok := transitions[edge{r.screen, ev}]
	if !ok {
		return fmt.Errorf("%w: %s from %s", ErrIllegalTransition, ev, r.screen)
	}
	if ev == Logout {
		r.logout()
	}
	r.screen = next
	return nil
}

func (r *Router) logout() {
	if r.tokens != nil {
		if err := r.tokens.Clear(); err != nil {
			logging.Warn("logout_token_clear_failed", map[string]any{"error": err.Error()})
		}
	}
	if r.session != nil {
		r.session.Reset()
	}
	if r.ledger != nil {
		r.ledger.Clear()
	}
	r.tab = Voting
	r.profileOpen = false
}

// SelectTab switches tabs; only legal while authenticated. The profile
// overlay is unaffected.
func (r *Router) SelectTab(t Tab) error {
	if r.screen != Authenticated {
		return fmt.Errorf("%w: select tab from %s", ErrIllegalTransition, r.screen)
	}
	switch t {
	case Voting, Leaderboard, Submission:
		r.tab = t
		return nil
	}
	return fmt.Errorf("unknown tab %d", int(t))
}

// NextTab cycles through the tab bar.
func (r *Router) NextTab() error {
	return r.SelectTab(Tabs[(int(r.tab)+1)%len(Tabs)])
}

// OpenProfile shows the overlay over any tab.
func (r *Router) OpenProfile() error {
	if r.screen != Authenticated {
		return fmt.Errorf("%w: open profile from %s", ErrIllegalTransition, r.screen)
	}
	r.profileOpen = true
	return nil
}

// CloseProfile hides the overlay without touching tab or auth state.
func (r *Router) CloseProfile() { r.profileOpen = false }

func (r *Router) ToggleProfile() error {
	if r.profileOpen {
		r.CloseProfile()
		return nil
	}
	return r.OpenProfile()
}
