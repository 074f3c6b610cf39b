package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"hottakes/internal/app"
	"hottakes/internal/gesture"
	"hottakes/internal/model"
	"hottakes/internal/router"
	"hottakes/internal/theme"
	"hottakes/internal/util"
)

const cardWidth = 52

func (m Model) View() string {
	switch m.app.Router.Screen() {
	case router.Login:
		return m.loginView()
	case router.Register:
		return m.registerView()
	case router.Authenticated:
		return m.mainView()
	}
	return ""
}

func (m Model) loginView() string {
	var b strings.Builder
	b.WriteString(theme.Banner())
	b.WriteString("\n")
	b.WriteString(m.styles.Title.Render("Log in"))
	b.WriteString("\n\n")
	b.WriteString(m.login.view(m.styles.Label.Render))
	b.WriteString(m.authStatus())
	b.WriteString(m.styles.Muted.Render("enter log in · tab next field · ctrl+n create account · ctrl+c quit"))
	return b.String()
}

func (m Model) registerView() string {
	var b strings.Builder
	b.WriteString(theme.Banner())
	b.WriteString("\n")
	b.WriteString(m.styles.Title.Render("Create account"))
	b.WriteString("\n\n")
	b.WriteString(m.register.view(m.styles.Label.Render))
	b.WriteString(m.authStatus())
	b.WriteString(m.styles.Muted.Render("enter sign up · tab next field · esc back to log in"))
	return b.String()
}

func (m Model) authStatus() string {
	switch {
	case m.authBusy:
		return m.styles.Muted.Render("Working…") + "\n\n"
	case m.authErr != "":
		return m.styles.Error.Render(m.authErr) + "\n\n"
	}
	return ""
}

func (m Model) mainView() string {
	body := ""
	if m.app.Router.ProfileOpen() {
		body = m.profileView()
	} else {
		switch m.app.Router.Tab() {
		case router.Voting:
			body = m.votingView()
		case router.Leaderboard:
			body = m.leaderboardView()
		case router.Submission:
			body = m.submissionView()
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.tabsView(),
		"",
		body,
		"",
		m.footerView(),
	)
}

func (m Model) headerView() string {
	left := m.styles.Title.Render("🔥 hot takes")
	right := m.styles.Muted.Render(fmt.Sprintf("@%s · p profile · ctrl+l log out", m.app.Session.Username()))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 2 {
		gap = 2
	}
	return m.styles.Header.Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) tabsView() string {
	parts := make([]string, 0, len(router.Tabs))
	for i, t := range router.Tabs {
		label := fmt.Sprintf("%d %s", i+1, t)
		if t == m.app.Router.Tab() {
			parts = append(parts, m.styles.ActiveTab.Render(label))
			continue
		}
		parts = append(parts, m.styles.Tab.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) footerView() string {
	u := m.app.Session.Snapshot()
	l := m.app.Ledger
	stats := fmt.Sprintf("session %d · lifetime %d · ", u.SessionVotes, u.LifetimeVotes)
	counts := m.styles.Agree.Render(fmt.Sprintf("▲ %d", l.CountByType(model.Upvote))) + "  " +
		m.styles.Disagree.Render(fmt.Sprintf("▼ %d", l.CountByType(model.Downvote))) + "  " +
		m.styles.Skip.Render(fmt.Sprintf("↷ %d", l.CountByType(model.Skip)))
	return m.styles.Muted.Render(stats) + counts
}

func (m Model) votingView() string {
	v := m.app.Voting
	if err := v.Err(); err != nil && !v.Loading() {
		return m.styles.Error.Render(err.Error()) + "\n" + m.styles.Muted.Render("press r to retry")
	}
	op, ok := v.Opinion()
	if !ok {
		return m.styles.Muted.Render("Loading opinion…")
	}

	card := m.styles.Card
	c := v.Classifier()
	var label string
	switch c.Leaning() {
	case gesture.Agree:
		card = card.BorderForeground(theme.Agree)
		label = m.styles.Agree.Render("AGREE →")
	case gesture.Disagree:
		card = card.BorderForeground(theme.Reject)
		label = m.styles.Disagree.Render("← DISAGREE")
	}
	if c.Dragging() {
		label = strings.TrimSpace(label + " " + m.styles.Muted.Render(tilt(c.Rotation())))
	}

	body := op.Content
	switch op.UserVote {
	case model.VoteAgree:
		body += "\n\n" + m.styles.Muted.Render("you agreed before")
	case model.VoteDisagree:
		body += "\n\n" + m.styles.Muted.Render("you disagreed before")
	}

	left, top := m.cardOffset()
	if e := v.Exit(); e.Active() {
		switch e.Action() {
		case gesture.Agree:
			card = card.BorderForeground(theme.Agree)
		case gesture.Disagree:
			card = card.BorderForeground(theme.Reject)
		case gesture.Skip:
			card = card.BorderForeground(theme.Skip)
		}
	}
	rendered := card.MarginLeft(left).MarginTop(top).Render(body)

	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.Button.Render(m.styles.Disagree.Render("← d  disagree")),
		m.styles.Button.Render(m.styles.Skip.Render("↑ s  skip")),
		m.styles.Button.Render(m.styles.Agree.Render("a →  agree")),
	)
	return lipgloss.JoinVertical(lipgloss.Left, label, rendered, "", lipgloss.NewStyle().MarginLeft(m.centre()).Render(buttons))
}

// tilt renders the card rotation as a slanted glyph plus degrees.
func tilt(deg float64) string {
	glyph := "│"
	switch {
	case deg >= 1:
		glyph = "╱"
	case deg <= -1:
		glyph = "╲"
	}
	return fmt.Sprintf("%s tilt %+.0f°", glyph, deg)
}

func (m Model) centre() int {
	if m.width <= cardWidth {
		return 2
	}
	return (m.width - cardWidth) / 2
}

// cardOffset converts the drag and exit state into cell margins.
func (m Model) cardOffset() (left, top int) {
	v := m.app.Voting
	left = m.centre() + int(v.Classifier().Delta()/m.cellWidth)
	top = 1
	e := v.Exit()
	if e.Active() && e.Duration > 0 {
		progress := 1 - float64(e.Remaining(time.Now()))/float64(e.Duration)
		dx, dy := e.Offset()
		travel := m.width / 2
		if travel < 20 {
			travel = 20
		}
		left += int(float64(dx*travel) * progress)
		if dy < 0 && progress > 0.5 {
			top = 0
		}
	}
	if left < 0 {
		left = 0
	}
	return left, top
}

func (m Model) leaderboardView() string {
	l := m.app.Leaderboard
	scope := "global"
	if l.NearMe() {
		scope = "near me"
		if loc := m.app.Session.Location(); loc != nil {
			scope = "near " + loc.Region
		}
	}
	head := m.styles.Label.Render("Top opinions") + m.styles.Muted.Render(
		fmt.Sprintf(" · sort: %s (o) · %s (n) · r refresh", l.Sort(), scope))

	var b strings.Builder
	b.WriteString(head)
	b.WriteString("\n\n")
	if m.notice != "" {
		b.WriteString(m.styles.Warning.Render(m.notice))
		b.WriteString("\n\n")
	}
	switch {
	case l.Loading():
		b.WriteString(m.styles.Muted.Render("Loading leaderboard…"))
		return b.String()
	case l.Err() != nil:
		b.WriteString(m.styles.Error.Render(l.Err().Error()))
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render("press r to retry"))
		return b.String()
	}
	rows := l.Rows()
	if len(rows) == 0 {
		b.WriteString(m.styles.Muted.Render("Nothing here yet."))
		return b.String()
	}
	now := time.Now()
	for i, r := range rows {
		score := app.FormatScore(r.Score())
		style := m.styles.Muted
		if r.Score() > 0 {
			style = m.styles.Agree
		} else if r.Score() < 0 {
			style = m.styles.Disagree
		}
		fmt.Fprintf(&b, "%2d. %s  %s\n    %s\n",
			i+1,
			style.Render(fmt.Sprintf("%4s", score)),
			util.Truncate(r.Content, 60),
			m.styles.Muted.Render(fmt.Sprintf("▲%d ▼%d · %s", r.Upvotes, r.Downvotes, app.FormatDate(r.DateSubmitted, now))))
	}
	return b.String()
}

func (m Model) submissionView() string {
	s := m.app.Submission
	var b strings.Builder
	b.WriteString(m.editor.View())
	b.WriteString("\n")

	n := util.RuneLen(util.NormalizeWhitespace(m.editor.Value()))
	counter := fmt.Sprintf("%d/%d", n, s.MaxChars())
	switch {
	case n > s.MaxChars():
		b.WriteString(m.styles.Error.Render(counter))
	case s.NearLimit(m.editor.Value()):
		b.WriteString(m.styles.Warning.Render(counter))
	default:
		b.WriteString(m.styles.Muted.Render(counter))
	}
	b.WriteString("\n")

	switch err := s.Err(); {
	case s.Busy():
		b.WriteString(m.styles.Muted.Render("Checking and posting…"))
	case err != nil:
		var pe *app.ProfanityError
		if errors.As(err, &pe) {
			b.WriteString(m.styles.Error.Render(app.ErrProfanity.Error()))
			b.WriteString("\n")
			b.WriteString(m.styles.Muted.Render("censored: " + pe.Censored))
		} else {
			b.WriteString(m.styles.Error.Render(err.Error()))
		}
	case s.Succeeded(time.Now()):
		b.WriteString(m.styles.Success.Render("Opinion submitted!"))
	}
	b.WriteString("\n")
	b.WriteString(m.tips)
	return b.String()
}

func (m Model) profileView() string {
	u := m.app.Session.Snapshot()
	p := m.app.Profile

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("@" + u.Username))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %d\n", m.styles.Label.Render("Lifetime votes"), u.LifetimeVotes)
	fmt.Fprintf(&b, "%s %d\n", m.styles.Label.Render("Session votes "), u.SessionVotes)
	fmt.Fprintf(&b, "%s %d\n", m.styles.Label.Render("Opinions      "), u.OpinionCount)
	if loc := m.app.Session.Location(); loc != nil {
		fmt.Fprintf(&b, "%s %s\n", m.styles.Label.Render("Location      "), strings.Trim(strings.Join([]string{loc.City, loc.Region, loc.Country}, ", "), ", "))
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Label.Render("Your opinions"))
	b.WriteString("\n")
	switch {
	case p.Loading():
		b.WriteString(m.styles.Muted.Render("Loading…"))
		b.WriteString("\n")
	case len(p.Opinions()) == 0:
		b.WriteString(m.styles.Muted.Render("None yet."))
		b.WriteString("\n")
	default:
		for _, op := range p.Opinions() {
			fmt.Fprintf(&b, "%5s  %s\n", app.FormatScore(op.Score()), util.Truncate(op.Content, 44))
		}
	}

	if act := p.Activity(); len(act) > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.Label.Render("This session"))
		b.WriteString("\n")
		for _, h := range act {
			fmt.Fprintf(&b, "%s  %s %s %s\n",
				h.Hour.Local().Format("15:04"),
				m.styles.Agree.Render(fmt.Sprintf("▲%d", h.Counts[model.Upvote])),
				m.styles.Disagree.Render(fmt.Sprintf("▼%d", h.Counts[model.Downvote])),
				m.styles.Skip.Render(fmt.Sprintf("↷%d", h.Counts[model.Skip])))
		}
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("esc to close"))

	modal := m.styles.Modal.Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height-6, lipgloss.Center, lipgloss.Center, modal)
	}
	return modal
}
