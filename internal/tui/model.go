// Package tui is the bubbletea front end. Update is the only place shared
// state changes; network work runs in commands and reports back as messages.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"

	"hottakes/internal/app"
	"hottakes/internal/gesture"
	"hottakes/internal/logging"
	"hottakes/internal/model"
	"hottakes/internal/router"
	"hottakes/internal/theme"
)

const frameEvery = time.Second / 30

const submitTips = `
**Tips**

- Keep it short and spicy; one take per post.
- No slurs or profanity. Posts are screened first.
- Your region is attached when we know it.

` + "`ctrl+s` to post · `tab` to switch tabs"

// Results of session-scoped commands carry the id of the session that issued
// them and are dropped once that session has ended.
type (
	authDoneMsg struct {
		res app.AuthResult
		err error
		ev  router.Event
	}
	resumeMsg struct {
		res app.AuthResult
		err error
	}
	opinionMsg struct {
		sid uuid.UUID
		op  model.Opinion
		err error
	}
	voteDoneMsg struct {
		sid uuid.UUID
		out app.VoteOutcome
	}
	frameMsg       struct{}
	leaderboardMsg struct {
		sid  uuid.UUID
		rows []model.LeaderboardOpinion
		err  error
	}
	submitDoneMsg struct {
		sid uuid.UUID
		res app.SubmitResult
		err error
	}
	successDoneMsg struct{}
	profileMsg     struct {
		sid  uuid.UUID
		data app.ProfileData
		err  error
	}
	statsMsg struct {
		sid uuid.UUID
		agg model.Aggregates
		err error
	}
)

// Options tune the model.
type Options struct {
	// Resume tries the stored token before showing the login form.
	Resume bool
}

// Model is the root bubbletea model.
type Model struct {
	ctx    context.Context
	app    *app.App
	styles theme.Styles
	opts   Options

	width, height int
	cellWidth     float64

	login    form
	register form
	authErr  string
	authBusy bool

	editor textarea.Model
	tips   string
	notice string
}

func New(ctx context.Context, a *app.App, opts Options) Model {
	ed := textarea.New()
	ed.Placeholder = "What's your hot take?"
	ed.ShowLineNumbers = false
	ed.CharLimit = 0
	ed.SetWidth(56)
	ed.SetHeight(5)

	tips := submitTips
	if r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("dark"), glamour.WithWordWrap(60)); err == nil {
		if out, err := r.Render(submitTips); err == nil {
			tips = out
		}
	}

	cw := a.Config.Voting.CellWidth
	if cw <= 0 {
		cw = 8
	}
	return Model{
		ctx:       ctx,
		app:       a,
		styles:    theme.DefaultStyles(),
		opts:      opts,
		cellWidth: cw,
		login:     loginForm(),
		register:  registerForm(),
		editor:    ed,
		tips:      tips,
	}
}

func (m Model) Init() tea.Cmd {
	if m.opts.Resume {
		return tea.Batch(textinput.Blink, m.resume())
	}
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if w := msg.Width - 8; w > 20 && w < 72 {
			m.editor.SetWidth(w)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.app.Router.Screen() {
		case router.Login:
			return m.updateLogin(msg)
		case router.Register:
			return m.updateRegister(msg)
		case router.Authenticated:
			return m.updateMain(msg)
		}
		return m, nil

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case resumeMsg:
		if msg.err != nil {
			if !errors.Is(msg.err, app.ErrNotLoggedIn) {
				logging.Warn("resume_failed", map[string]any{"error": msg.err.Error()})
			}
			return m, nil
		}
		return m.signedIn(authDoneMsg{res: msg.res, ev: router.LoginSucceeded})

	case authDoneMsg:
		m.authBusy = false
		if msg.err != nil {
			m.authErr = msg.err.Error()
			return m, nil
		}
		return m.signedIn(msg)

	case opinionMsg:
		if !m.current(msg.sid) {
			return m, nil
		}
		m.app.Voting.Show(msg.op, msg.err)
		if m.app.HandleAuthError(msg.err) {
			return m.loggedOut()
		}
		return m, nil

	case voteDoneMsg:
		if !m.current(msg.sid) {
			return m, nil
		}
		m.app.Voting.Settle(msg.out)
		if m.app.HandleAuthError(msg.out.VoteErr) || m.app.HandleAuthError(msg.out.StatsErr) {
			return m.loggedOut()
		}
		return m, m.fetchOpinion()

	case frameMsg:
		if m.app.Voting.Exiting() {
			return m, frame()
		}
		return m, nil

	case leaderboardMsg:
		if !m.current(msg.sid) {
			return m, nil
		}
		m.app.Leaderboard.Show(msg.rows, msg.err)
		if m.app.HandleAuthError(msg.err) {
			return m.loggedOut()
		}
		return m, nil

	case submitDoneMsg:
		if !m.current(msg.sid) {
			return m, nil
		}
		m.app.Submission.Finish(msg.res, msg.err)
		if m.app.HandleAuthError(msg.err) {
			return m.loggedOut()
		}
		if msg.err != nil {
			return m, nil
		}
		m.editor.Reset()
		return m, tea.Tick(m.app.Submission.SuccessFor(), func(time.Time) tea.Msg { return successDoneMsg{} })

	case successDoneMsg:
		return m, nil

	case profileMsg:
		if !m.current(msg.sid) {
			return m, nil
		}
		m.app.Profile.Show(msg.data, msg.err)
		if m.app.HandleAuthError(msg.err) {
			return m.loggedOut()
		}
		return m, nil

	case statsMsg:
		if !m.current(msg.sid) {
			return m, nil
		}
		m.app.ApplyStats(msg.agg, msg.err)
		if m.app.HandleAuthError(msg.err) {
			return m.loggedOut()
		}
		return m, nil
	}

	if m.app.Router.Screen() == router.Authenticated && m.app.Router.Tab() == router.Submission {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

// current reports whether a result belongs to the signed-in session.
func (m Model) current(sid uuid.UUID) bool {
	if m.app.Router.Screen() != router.Authenticated || sid != m.app.Session.ID() {
		logging.Debug("stale_result_dropped", map[string]any{"session": sid.String()})
		return false
	}
	return true
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+n":
		if err := m.app.Router.Fire(router.SwitchToRegister); err == nil {
			m.authErr = ""
			m.login.reset()
		}
		return m, textinput.Blink
	case "tab", "down":
		m.login.move(1)
		return m, nil
	case "shift+tab", "up":
		m.login.move(-1)
		return m, nil
	case "enter":
		if !m.login.last() {
			m.login.move(1)
			return m, nil
		}
		return m.submitLogin()
	}
	return m, m.login.update(msg)
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	if m.authBusy {
		return m, nil
	}
	v := m.login.values()
	if err := app.ValidateLogin(v[0], v[1]); err != nil {
		m.authErr = err.Error()
		return m, nil
	}
	m.authBusy = true
	m.authErr = ""
	auth, ctx := m.app.Auth, m.ctx
	return m, func() tea.Msg {
		res, err := auth.Login(ctx, v[0], v[1])
		return authDoneMsg{res: res, err: err, ev: router.LoginSucceeded}
	}
}

func (m Model) updateRegister(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if err := m.app.Router.Fire(router.SwitchToLogin); err == nil {
			m.authErr = ""
			m.register.reset()
		}
		return m, textinput.Blink
	case "tab", "down":
		m.register.move(1)
		return m, nil
	case "shift+tab", "up":
		m.register.move(-1)
		return m, nil
	case "enter":
		if !m.register.last() {
			m.register.move(1)
			return m, nil
		}
		return m.submitRegister()
	}
	return m, m.register.update(msg)
}

func (m Model) submitRegister() (tea.Model, tea.Cmd) {
	if m.authBusy {
		return m, nil
	}
	v := m.register.values()
	if err := app.ValidateRegister(v[0], v[1], v[2], v[3]); err != nil {
		m.authErr = err.Error()
		return m, nil
	}
	m.authBusy = true
	m.authErr = ""
	auth, ctx := m.app.Auth, m.ctx
	return m, func() tea.Msg {
		res, err := auth.Register(ctx, v[0], v[1], v[2], v[3])
		return authDoneMsg{res: res, err: err, ev: router.RegisterSucceeded}
	}
}

func (m Model) signedIn(msg authDoneMsg) (tea.Model, tea.Cmd) {
	if err := m.app.SignedIn(msg.res, msg.ev); err != nil {
		logging.Warn("sign_in_transition_failed", map[string]any{"error": err.Error()})
		return m, nil
	}
	m.login.reset()
	m.register.reset()
	m.authErr = ""
	return m, m.fetchOpinion()
}

func (m Model) loggedOut() (tea.Model, tea.Cmd) {
	m.editor.Reset()
	m.editor.Blur()
	m.notice = ""
	m.authErr = ""
	m.authBusy = false
	return m, textinput.Blink
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	r := m.app.Router
	key := msg.String()
	typing := r.Tab() == router.Submission && !r.ProfileOpen()

	switch key {
	case "ctrl+l":
		if err := m.app.Logout(); err != nil {
			logging.Warn("logout_failed", map[string]any{"error": err.Error()})
			return m, nil
		}
		return m.loggedOut()
	case "ctrl+p":
		return m.toggleProfile()
	case "esc":
		if r.ProfileOpen() {
			r.CloseProfile()
		}
		return m, nil
	case "tab":
		return m.selectTab(router.Tabs[(int(r.Tab())+1)%len(router.Tabs)])
	}

	if r.ProfileOpen() {
		if key == "p" {
			r.CloseProfile()
		}
		return m, nil
	}

	if typing {
		if key == "ctrl+s" {
			return m.submitOpinion()
		}
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}

	switch key {
	case "p":
		return m.toggleProfile()
	case "1":
		return m.selectTab(router.Voting)
	case "2":
		return m.selectTab(router.Leaderboard)
	case "3":
		return m.selectTab(router.Submission)
	}

	switch r.Tab() {
	case router.Voting:
		return m.updateVoting(key)
	case router.Leaderboard:
		return m.updateLeaderboard(key)
	}
	return m, nil
}

func (m Model) selectTab(t router.Tab) (tea.Model, tea.Cmd) {
	if err := m.app.Router.SelectTab(t); err != nil {
		return m, nil
	}
	m.notice = ""
	switch t {
	case router.Voting:
		m.editor.Blur()
		var cmds []tea.Cmd
		if m.app.StatsStale() {
			cmds = append(cmds, m.refreshStats())
		}
		if _, ok := m.app.Voting.Opinion(); !ok && !m.app.Voting.Loading() && !m.app.Voting.Busy() {
			cmds = append(cmds, m.fetchOpinion())
		}
		return m, tea.Batch(cmds...)
	case router.Leaderboard:
		m.editor.Blur()
		if len(m.app.Leaderboard.Rows()) == 0 && !m.app.Leaderboard.Loading() {
			return m, m.fetchLeaderboard()
		}
	case router.Submission:
		return m, m.editor.Focus()
	}
	return m, nil
}

func (m Model) toggleProfile() (tea.Model, tea.Cmd) {
	r := m.app.Router
	if err := r.ToggleProfile(); err != nil {
		return m, nil
	}
	if !r.ProfileOpen() {
		return m, nil
	}
	p, ctx, sid := m.app.Profile, m.ctx, m.app.Session.ID()
	uid, known := p.Request()
	return m, func() tea.Msg {
		data, err := p.Load(ctx, uid, known)
		return profileMsg{sid: sid, data: data, err: err}
	}
}

func (m Model) updateVoting(key string) (tea.Model, tea.Cmd) {
	v := m.app.Voting
	if key == "r" {
		if v.Err() != nil && !v.Loading() {
			return m, m.fetchOpinion()
		}
		return m, nil
	}
	a := gesture.FromKey(key)
	if a == gesture.None {
		return m, nil
	}
	t, ok := v.Act(a)
	if !ok {
		return m, nil
	}
	return m, tea.Batch(m.submitVote(t), frame())
}

func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	r := m.app.Router
	if r.Screen() != router.Authenticated || r.Tab() != router.Voting || r.ProfileOpen() {
		return m, nil
	}
	v := m.app.Voting
	x := float64(msg.X) * m.cellWidth
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			v.Press(x)
		}
	case tea.MouseActionMotion:
		v.Drag(x)
	case tea.MouseActionRelease:
		if t, ok := v.Release(x); ok {
			return m, tea.Batch(m.submitVote(t), frame())
		}
	}
	return m, nil
}

func (m Model) updateLeaderboard(key string) (tea.Model, tea.Cmd) {
	l := m.app.Leaderboard
	switch key {
	case "o":
		l.ToggleSort()
	case "n":
		if err := l.ToggleNearMe(); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.notice = ""
		return m, m.fetchLeaderboard()
	case "r":
		if !l.Loading() {
			return m, m.fetchLeaderboard()
		}
	}
	return m, nil
}

func (m Model) submitOpinion() (tea.Model, tea.Cmd) {
	s := m.app.Submission
	req, err := s.Begin(m.editor.Value())
	if err != nil {
		return m, nil
	}
	ctx, sid := m.ctx, m.app.Session.ID()
	return m, func() tea.Msg {
		res, err := s.Submit(ctx, req)
		return submitDoneMsg{sid: sid, res: res, err: err}
	}
}

func (m Model) resume() tea.Cmd {
	auth, ctx := m.app.Auth, m.ctx
	return func() tea.Msg {
		res, err := auth.Resume(ctx)
		return resumeMsg{res: res, err: err}
	}
}

func (m Model) fetchOpinion() tea.Cmd {
	v, ctx, sid := m.app.Voting, m.ctx, m.app.Session.ID()
	req := v.NextRequest()
	return func() tea.Msg {
		op, err := v.Fetch(ctx, req)
		return opinionMsg{sid: sid, op: op, err: err}
	}
}

func (m Model) submitVote(t app.Ticket) tea.Cmd {
	v, ctx, sid := m.app.Voting, m.ctx, m.app.Session.ID()
	return func() tea.Msg {
		return voteDoneMsg{sid: sid, out: v.Submit(ctx, t)}
	}
}

func (m Model) fetchLeaderboard() tea.Cmd {
	l, ctx, sid := m.app.Leaderboard, m.ctx, m.app.Session.ID()
	req := l.Request()
	return func() tea.Msg {
		rows, err := l.Fetch(ctx, req)
		return leaderboardMsg{sid: sid, rows: rows, err: err}
	}
}

func (m Model) refreshStats() tea.Cmd {
	a, ctx, sid := m.app, m.ctx, m.app.Session.ID()
	uid := a.Session.UserID()
	return func() tea.Msg {
		agg, err := a.RefreshStats(ctx, uid)
		return statsMsg{sid: sid, agg: agg, err: err}
	}
}

func frame() tea.Cmd {
	return tea.Tick(frameEvery, func(time.Time) tea.Msg { return frameMsg{} })
}

// Run starts the program with mouse tracking on the alternate screen.
func Run(ctx context.Context, a *app.App, opts Options) error {
	p := tea.NewProgram(New(ctx, a, opts), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
