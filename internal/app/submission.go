package app

import (
	"context"
	"errors"
	"time"

	"hottakes/internal/backend"
	"hottakes/internal/config"
	"hottakes/internal/logging"
	"hottakes/internal/metrics"
	"hottakes/internal/model"
	"hottakes/internal/profanity"
	"hottakes/internal/session"
	"hottakes/internal/util"
)

// successFor is how long the submitted banner stays up.
const successFor = 3 * time.Second

// SubmitRequest is the normalised text plus the identity it is posted as.
type SubmitRequest struct {
	Content  string
	UserID   string
	Location *model.LocationInfo
}

// SubmitResult is a finished submission. Aggregates is nil when the
// follow-up refresh failed.
type SubmitResult struct {
	Aggregates *model.Aggregates
}

// Submission drives the submit tab.
type Submission struct {
	gw       backend.Gateway
	checker  profanity.Checker
	sess     *session.Store
	maxChars int

	busy        bool
	err         error
	succeededAt time.Time
	now         func() time.Time
}

func NewSubmission(gw backend.Gateway, checker profanity.Checker, sess *session.Store, cfg config.SubmissionConfig) *Submission {
	maxChars := cfg.MaxChars
	if maxChars <= 0 {
		maxChars = 280
	}
	return &Submission{gw: gw, checker: checker, sess: sess, maxChars: maxChars, now: time.Now}
}

func (s *Submission) MaxChars() int { return s.maxChars }
func (s *Submission) Busy() bool    { return s.busy }
func (s *Submission) Err() error    { return s.err }

// Validate normalises text and checks its length in characters.
func (s *Submission) Validate(text string) (string, error) {
	content := util.NormalizeWhitespace(text)
	if content == "" {
		return "", ErrEmptyOpinion
	}
	if util.RuneLen(content) > s.maxChars {
		return "", ErrOpinionTooLong
	}
	return content, nil
}

// NearLimit reports whether text is past 90% of the limit.
func (s *Submission) NearLimit(text string) bool {
	return util.RuneLen(text)*10 > s.maxChars*9
}

// Begin validates on the UI loop and claims the tab for one submission.
func (s *Submission) Begin(text string) (SubmitRequest, error) {
	if s.busy {
		return SubmitRequest{}, ErrBusy
	}
	if !s.sess.LoggedIn() {
		s.err = ErrNotLoggedIn
		return SubmitRequest{}, s.err
	}
	content, err := s.Validate(text)
	if err != nil {
		s.err = err
		return SubmitRequest{}, err
	}
	s.busy = true
	s.err = nil
	s.succeededAt = time.Time{}
	return SubmitRequest{Content: content, UserID: s.sess.UserID(), Location: s.sess.Location()}, nil
}

// Submit checks for profanity, posts, then refreshes stats best-effort.
// Nothing is posted unless the check came back clean.
func (s *Submission) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	res, err := s.checker.Check(ctx, req.Content)
	if err != nil {
		metrics.IncSubmission("check_failed")
		return SubmitResult{}, &retryable{banner: ErrProfanityCheck, cause: err}
	}
	if res.HasProfanity {
		metrics.IncSubmission("profanity")
		return SubmitResult{}, &ProfanityError{Censored: res.Censored}
	}
	if err := s.gw.SubmitOpinion(ctx, model.NewOpinion{Content: req.Content, UserID: req.UserID, Location: req.Location}); err != nil {
		metrics.IncSubmission("failed")
		return SubmitResult{}, &retryable{banner: ErrSubmitOpinion, cause: err}
	}
	metrics.IncSubmission("ok")

	u, err := s.gw.CurrentUser(ctx, req.UserID)
	if err != nil {
		logging.Warn("stats_refresh_failed", map[string]any{"after": "submit", "error": err.Error()})
		return SubmitResult{}, nil
	}
	return SubmitResult{Aggregates: &u.Aggregates}, nil
}

// Finish applies a submission result on the UI loop.
func (s *Submission) Finish(res SubmitResult, err error) {
	s.busy = false
	if err != nil {
		s.err = err
		if !errors.Is(err, ErrProfanity) {
			logging.Warn("submit_failed", map[string]any{"error": err.Error()})
		}
		return
	}
	s.err = nil
	s.succeededAt = s.now()
	if res.Aggregates != nil && s.sess.LoggedIn() {
		s.sess.ApplyAggregates(*res.Aggregates)
	}
	logging.Info("opinion_submitted", map[string]any{"user_id": s.sess.UserID()})
}

// Succeeded reports whether the success banner is still showing.
func (s *Submission) Succeeded(now time.Time) bool {
	return !s.succeededAt.IsZero() && now.Sub(s.succeededAt) < successFor
}

// SuccessFor is the banner lifetime, for scheduling its dismissal.
func (s *Submission) SuccessFor() time.Duration { return successFor }

func (s *Submission) Reset() {
	s.busy = false
	s.err = nil
	s.succeededAt = time.Time{}
}
