package app

import (
	"context"
	"sync"
	"time"

	"hottakes/internal/backend"
	"hottakes/internal/config"
	"hottakes/internal/gesture"
	"hottakes/internal/ledger"
	"hottakes/internal/logging"
	"hottakes/internal/metrics"
	"hottakes/internal/model"
	"hottakes/internal/session"
)

// FetchRequest is captured on the UI loop so the fetch never reads the
// ledger from another goroutine.
type FetchRequest struct {
	Exclude []string
	UserID  string
}

// Ticket is one accepted vote action.
type Ticket struct {
	OpinionID string
	Action    gesture.Action
	UserID    string
	Delay     time.Duration
}

// VoteOutcome is what Submit learned; either error may be set.
type VoteOutcome struct {
	Ticket     Ticket
	Result     *model.VoteResult
	VoteErr    error
	Aggregates *model.Aggregates
	StatsErr   error
}

// Voting drives the voting tab: one opinion at a time, gesture input and
// the exit animation between cards.
type Voting struct {
	gw     backend.Gateway
	sess   *session.Store
	ledger *ledger.Ledger

	classifier *gesture.Classifier
	exit       gesture.Exit
	opinion    *model.Opinion
	loading    bool
	err        error
	inFlight   bool
	now        func() time.Time
}

func NewVoting(gw backend.Gateway, sess *session.Store, l *ledger.Ledger, cfg config.VotingConfig) *Voting {
	return &Voting{
		gw:         gw,
		sess:       sess,
		ledger:     l,
		classifier: gesture.NewClassifier(cfg.SwipeThreshold),
		exit:       gesture.Exit{Duration: cfg.ExitDuration},
		now:        time.Now,
	}
}

// Opinion returns the displayed opinion, if any.
func (v *Voting) Opinion() (model.Opinion, bool) {
	if v.opinion == nil {
		return model.Opinion{}, false
	}
	return *v.opinion, true
}

func (v *Voting) Loading() bool                   { return v.loading }
func (v *Voting) Err() error                      { return v.err }
func (v *Voting) Exiting() bool                   { return v.exit.Active() }
func (v *Voting) Exit() *gesture.Exit             { return &v.exit }
func (v *Voting) Classifier() *gesture.Classifier { return v.classifier }
func (v *Voting) Busy() bool                      { return v.inFlight || v.exit.Active() }

// NextRequest starts loading and snapshots the exclusion list.
func (v *Voting) NextRequest() FetchRequest {
	v.loading = true
	v.err = nil
	return FetchRequest{Exclude: v.ledger.OpinionIDs(), UserID: v.sess.UserID()}
}

// Fetch gets the next opinion and, best-effort, the user's existing vote.
func (v *Voting) Fetch(ctx context.Context, req FetchRequest) (model.Opinion, error) {
	op, err := v.gw.NextOpinion(ctx, req.Exclude, req.UserID)
	if err != nil {
		return op, &retryable{banner: ErrLoadOpinion, cause: err}
	}
	if req.UserID != "" {
		st, err := v.gw.VoteStatus(ctx, op.ID, req.UserID)
		if err != nil {
			logging.Warn("vote_status_failed", map[string]any{"opinion_id": op.ID, "error": err.Error()})
		} else {
			op.UserVote = st.UserVote()
		}
	}
	return op, nil
}

// Show applies a fetch result. A failure leaves a retryable error and no card.
func (v *Voting) Show(op model.Opinion, err error) {
	v.loading = false
	v.classifier.Cancel()
	if err != nil {
		v.err = err
		v.opinion = nil
		logging.Warn("opinion_fetch_failed", map[string]any{"error": err.Error()})
		return
	}
	v.err = nil
	v.opinion = &op
}

// Press starts a drag at x. Ignored while a card is leaving.
func (v *Voting) Press(x float64) {
	if v.Busy() || v.opinion == nil {
		return
	}
	v.classifier.Start(x)
}

// Drag updates the live drag offset.
func (v *Voting) Drag(x float64) {
	if v.Busy() {
		return
	}
	v.classifier.Move(x)
}

// Release classifies the drag; a vote starts the exit.
func (v *Voting) Release(x float64) (Ticket, bool) {
	if v.Busy() {
		return Ticket{}, false
	}
	return v.begin(v.classifier.End(x))
}

// Act handles a button or key action.
func (v *Voting) Act(a gesture.Action) (Ticket, bool) {
	if v.Busy() {
		return Ticket{}, false
	}
	v.classifier.Cancel()
	return v.begin(a)
}

func (v *Voting) begin(a gesture.Action) (Ticket, bool) {
	vt, ok := a.VoteType()
	if !ok || v.opinion == nil {
		return Ticket{}, false
	}
	now := v.now()
	if !v.exit.Begin(a, now) {
		return Ticket{}, false
	}
	v.inFlight = true
	v.ledger.Upsert(model.NewInteraction(v.opinion.ID, vt, now))
	metrics.IncVote(string(vt))
	return Ticket{
		OpinionID: v.opinion.ID,
		Action:    a,
		UserID:    v.sess.UserID(),
		Delay:     v.exit.Remaining(now),
	}, true
}

// Submit sends the vote and refreshes stats as two independent calls, then
// waits out the exit animation. Skips send nothing. Safe to run off the UI
// loop.
func (v *Voting) Submit(ctx context.Context, t Ticket) VoteOutcome {
	out := VoteOutcome{Ticket: t}
	vt, _ := t.Action.VoteType()
	value, voted := vt.Value()
	timer := time.NewTimer(t.Delay)
	defer timer.Stop()

	if voted && t.UserID != "" {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			res, err := v.gw.Vote(ctx, t.OpinionID, value, t.UserID)
			if err != nil {
				out.VoteErr = err
				return
			}
			out.Result = &res
		}()
		go func() {
			defer wg.Done()
			u, err := v.gw.CurrentUser(ctx, t.UserID)
			if err != nil {
				out.StatsErr = err
				return
			}
			out.Aggregates = &u.Aggregates
		}()
		wg.Wait()
	}

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	return out
}

// Settle applies a finished vote on the UI loop and returns to neutral.
// Failures are logged; local stats stay as they were.
func (v *Voting) Settle(o VoteOutcome) {
	if o.VoteErr != nil {
		logging.Warn("vote_failed", map[string]any{"opinion_id": o.Ticket.OpinionID, "error": o.VoteErr.Error()})
	}
	if o.StatsErr != nil {
		logging.Warn("stats_refresh_failed", map[string]any{"error": o.StatsErr.Error()})
	}
	if o.Aggregates != nil && v.sess.LoggedIn() {
		v.sess.ApplyAggregates(*o.Aggregates)
	}
	v.exit.Reset()
	v.classifier.Cancel()
	v.inFlight = false
	v.opinion = nil
}

// Reset clears all tab state on logout.
func (v *Voting) Reset() {
	v.exit.Reset()
	v.classifier.Cancel()
	v.inFlight = false
	v.opinion = nil
	v.loading = false
	v.err = nil
}
