package model

// Aggregates carries the user stats fields as returned by the backend.
// Nil means the field was absent from the response.
type Aggregates struct {
	SessionVotes  *int     `json:"sessionVotes,omitempty"`
	LifetimeVotes *int     `json:"lifetimeVotes,omitempty"`
	OpinionCount  *int     `json:"opinionCount,omitempty"`
	OpinionIDs    []string `json:"opinionIds,omitempty"`
}

// AuthUser is the user object embedded in auth responses and returned by
// GET /api/auth/user.
type AuthUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Aggregates
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	User  AuthUser `json:"user"`
	Token string   `json:"token"`
}

// VoteStatus reports whether a user has voted on an opinion.
type VoteStatus struct {
	HasVoted  bool `json:"hasVoted"`
	VoteValue int  `json:"voteValue"`
}

// UserVote maps the status to the displayed vote.
func (s VoteStatus) UserVote() UserVote {
	if !s.HasVoted {
		return VoteAbsent
	}
	switch {
	case s.VoteValue > 0:
		return VoteAgree
	case s.VoteValue < 0:
		return VoteDisagree
	}
	return VoteAbsent
}

// VoteResult is the acknowledgement for a vote.
type VoteResult struct {
	Message string  `json:"message"`
	Opinion Opinion `json:"opinion"`
}

// NewOpinion is the body for POST /api/opinions.
type NewOpinion struct {
	Content  string        `json:"content"`
	UserID   string        `json:"userId"`
	Location *LocationInfo `json:"location,omitempty"`
}

// LeaderboardOpinion is one ranked row.
type LeaderboardOpinion = Opinion

// ProfanityResult is the profanity gateway response.
type ProfanityResult struct {
	Original     string `json:"original"`
	Censored     string `json:"censored"`
	HasProfanity bool   `json:"has_profanity"`
}
