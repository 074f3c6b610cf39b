package model

import "time"

// VoteType is the kind of action a user took on an opinion card.
type VoteType string

const (
	Upvote   VoteType = "upvote"
	Downvote VoteType = "downvote"
	Skip     VoteType = "skip"
)

// Value returns the backend vote value (1 or -1). Skip has no value.
func (v VoteType) Value() (int, bool) {
	switch v {
	case Upvote:
		return 1, true
	case Downvote:
		return -1, true
	}
	return 0, false
}

// VoteInteraction records one action against an opinion seen this session.
type VoteInteraction struct {
	OpinionID string   `json:"opinionId"`
	VoteType  VoteType `json:"voteType"`
	Timestamp string   `json:"timestamp"` // RFC 3339, UTC
}

// NewInteraction stamps an interaction at now.
func NewInteraction(opinionID string, vt VoteType, now time.Time) VoteInteraction {
	return VoteInteraction{OpinionID: opinionID, VoteType: vt, Timestamp: now.UTC().Format(time.RFC3339Nano)}
}

// Time parses the interaction timestamp; zero on malformed input.
func (i VoteInteraction) Time() time.Time {
	t, err := time.Parse(time.RFC3339Nano, i.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SessionUser is the authenticated identity plus cumulative stats.
type SessionUser struct {
	UserID        string
	Username      string
	SessionVotes  int
	LifetimeVotes int
	OpinionCount  int
	OpinionIDs    []string
}

// LocationInfo is the detected location; empty fields are absent.
type LocationInfo struct {
	Country  string `json:"country,omitempty"`
	Region   string `json:"region,omitempty"`
	City     string `json:"city,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// Empty reports whether no field is known.
func (l LocationInfo) Empty() bool {
	return l.Country == "" && l.Region == "" && l.City == "" && l.Timezone == ""
}

// UserVote is the current user's standing vote on a displayed opinion.
type UserVote string

const (
	VoteAbsent   UserVote = ""
	VoteAgree    UserVote = "agree"
	VoteDisagree UserVote = "disagree"
)

// Opinion is the opinion held by the voting tab.
type Opinion struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	DateSubmitted time.Time `json:"dateSubmitted"`
	Upvotes       int       `json:"upvotes"`
	Downvotes     int       `json:"downvotes"`
	UserVote      UserVote  `json:"userVote,omitempty"`
}

// Score is upvotes minus downvotes.
func (o Opinion) Score() int { return o.Upvotes - o.Downvotes }
