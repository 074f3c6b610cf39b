package app

import (
	"context"
	"time"

	"hottakes/internal/analytics"
	"hottakes/internal/backend"
	"hottakes/internal/ledger"
	"hottakes/internal/logging"
	"hottakes/internal/model"
	"hottakes/internal/session"
)

// ProfileData is what the profile overlay shows beyond the session stats.
type ProfileData struct {
	Aggregates *model.Aggregates
	Opinions   []model.Opinion
}

// HourBucket is one hour of this session's voting.
type HourBucket struct {
	Hour   time.Time
	Counts map[model.VoteType]int
}

// Profile drives the profile overlay.
type Profile struct {
	gw     backend.Gateway
	sess   *session.Store
	ledger *ledger.Ledger

	opinions []model.Opinion
	loading  bool
	err      error
}

func NewProfile(gw backend.Gateway, sess *session.Store, l *ledger.Ledger) *Profile {
	return &Profile{gw: gw, sess: sess, ledger: l}
}

func (p *Profile) Opinions() []model.Opinion { return append([]model.Opinion(nil), p.opinions...) }
func (p *Profile) Loading() bool             { return p.loading }
func (p *Profile) Err() error                { return p.err }

// Request marks the overlay loading and returns the ids to fetch with.
func (p *Profile) Request() (userID string, known []string) {
	p.loading = true
	p.err = nil
	return p.sess.UserID(), p.sess.Snapshot().OpinionIDs
}

// Load re-reads the user then each authored opinion. Opinions that fail to
// load are skipped. known is used when the user read fails.
func (p *Profile) Load(ctx context.Context, userID string, known []string) (ProfileData, error) {
	var data ProfileData
	ids := known
	u, err := p.gw.CurrentUser(ctx, userID)
	if err != nil {
		logging.Warn("profile_user_failed", map[string]any{"user_id": userID, "error": err.Error()})
	} else {
		data.Aggregates = &u.Aggregates
		if u.OpinionIDs != nil {
			ids = u.OpinionIDs
		}
	}
	for _, id := range ids {
		op, err := p.gw.GetOpinion(ctx, id)
		if err != nil {
			logging.Warn("profile_opinion_failed", map[string]any{"opinion_id": id, "error": err.Error()})
			continue
		}
		data.Opinions = append(data.Opinions, op)
	}
	return data, err
}

// Show applies a load. A user-read failure is kept so a 401 can be acted
// on, but any opinions that did load are still shown.
func (p *Profile) Show(data ProfileData, err error) {
	p.loading = false
	p.err = err
	if data.Aggregates != nil && p.sess.LoggedIn() {
		p.sess.ApplyAggregates(*data.Aggregates)
	}
	p.opinions = data.Opinions
}

// Activity buckets this session's votes by hour, oldest first.
func (p *Profile) Activity() []HourBucket {
	buckets := analytics.HourlyActivity(p.ledger.Entries())
	out := make([]HourBucket, 0, len(buckets))
	for _, k := range analytics.SortedBucketKeys(buckets) {
		out = append(out, HourBucket{Hour: k, Counts: buckets[k]})
	}
	return out
}

func (p *Profile) Reset() {
	p.opinions = nil
	p.loading = false
	p.err = nil
}
