package app

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"hottakes/internal/backend"
	"hottakes/internal/config"
	"hottakes/internal/logging"
	"hottakes/internal/model"
	"hottakes/internal/session"
)

type SortMode int

const (
	ByVotes SortMode = iota
	Newest
)

func (m SortMode) String() string {
	if m == Newest {
		return "newest"
	}
	return "votes"
}

// ParseSortMode accepts "votes" or "newest".
func ParseSortMode(s string) (SortMode, error) {
	switch s {
	case "", "votes":
		return ByVotes, nil
	case "newest":
		return Newest, nil
	}
	return ByVotes, fmt.Errorf("unknown sort %q", s)
}

// LeaderboardRequest is a snapshot of what to fetch.
type LeaderboardRequest struct {
	Limit  int
	Type   string
	Region string // non-empty selects near-me
}

// Leaderboard drives the ranked list tab.
type Leaderboard struct {
	gw   backend.Gateway
	sess *session.Store
	cfg  config.LeaderboardConfig

	rows    []model.LeaderboardOpinion
	sort    SortMode
	nearMe  bool
	loading bool
	err     error
}

func NewLeaderboard(gw backend.Gateway, sess *session.Store, cfg config.LeaderboardConfig) *Leaderboard {
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	if cfg.Type == "" {
		cfg.Type = "top"
	}
	return &Leaderboard{gw: gw, sess: sess, cfg: cfg}
}

// Rows returns the loaded rows in the current sort order.
func (l *Leaderboard) Rows() []model.LeaderboardOpinion {
	out := append([]model.LeaderboardOpinion(nil), l.rows...)
	SortOpinions(out, l.sort)
	return out
}

func (l *Leaderboard) Sort() SortMode { return l.sort }
func (l *Leaderboard) NearMe() bool   { return l.nearMe }
func (l *Leaderboard) Loading() bool  { return l.loading }
func (l *Leaderboard) Err() error     { return l.err }

// Request marks the tab loading and returns what to fetch.
func (l *Leaderboard) Request() LeaderboardRequest {
	l.loading = true
	l.err = nil
	req := LeaderboardRequest{Limit: l.cfg.Limit, Type: l.cfg.Type}
	if l.nearMe {
		if loc := l.sess.Location(); loc != nil {
			req.Region = loc.Region
		}
	}
	return req
}

// Fetch runs off the UI loop.
func (l *Leaderboard) Fetch(ctx context.Context, req LeaderboardRequest) ([]model.LeaderboardOpinion, error) {
	var (
		rows []model.LeaderboardOpinion
		err  error
	)
	if req.Region != "" {
		rows, err = l.gw.NearMe(ctx, req.Region, req.Limit)
	} else {
		rows, err = l.gw.Leaderboard(ctx, req.Limit, req.Type)
	}
	if err != nil {
		return nil, &retryable{banner: ErrLoadLeaderboard, cause: err}
	}
	return rows, nil
}

// Show applies a fetch result.
func (l *Leaderboard) Show(rows []model.LeaderboardOpinion, err error) {
	l.loading = false
	if err != nil {
		l.err = err
		logging.Warn("leaderboard_fetch_failed", map[string]any{"error": err.Error(), "near_me": l.nearMe})
		return
	}
	l.err = nil
	l.rows = rows
}

// ToggleSort flips between votes and newest. Sorting is local.
func (l *Leaderboard) ToggleSort() SortMode {
	if l.sort == ByVotes {
		l.sort = Newest
	} else {
		l.sort = ByVotes
	}
	return l.sort
}

// SetSort selects a sort mode directly.
func (l *Leaderboard) SetSort(m SortMode) { l.sort = m }

// ToggleNearMe switches between global and regional rankings. Turning it
// on needs a known location.
func (l *Leaderboard) ToggleNearMe() error {
	if l.nearMe {
		l.nearMe = false
		return nil
	}
	loc := l.sess.Location()
	if loc == nil || loc.Region == "" {
		return ErrNoLocation
	}
	l.nearMe = true
	return nil
}

func (l *Leaderboard) Reset() {
	l.rows = nil
	l.sort = ByVotes
	l.nearMe = false
	l.loading = false
	l.err = nil
}

// SortOpinions orders rows in place. Ties keep backend order.
func SortOpinions(rows []model.LeaderboardOpinion, m SortMode) {
	switch m {
	case Newest:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].DateSubmitted.After(rows[j].DateSubmitted) })
	default:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Upvotes > rows[j].Upvotes })
	}
}

// FormatScore renders a net score with a sign for positives.
func FormatScore(score int) string {
	if score > 0 {
		return "+" + strconv.Itoa(score)
	}
	return strconv.Itoa(score)
}

// FormatDate renders t relative to now's calendar day, in now's location.
func FormatDate(t, now time.Time) string {
	t = t.In(now.Location())
	clock := t.Format("3:04pm")
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	switch {
	case !t.Before(today) && t.Before(today.AddDate(0, 0, 1)):
		return "Today @ " + clock
	case !t.Before(today.AddDate(0, 0, -1)) && t.Before(today):
		return "Yesterday @ " + clock
	}
	return t.Format("1/2/06") + " @ " + clock
}
