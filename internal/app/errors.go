package app

import (
	"errors"
	"fmt"
)

// Validation errors are shown inline; their text is user-facing.
var (
	ErrMissingFields    = errors.New("Please fill in all fields")
	ErrPasswordMismatch = errors.New("Passwords do not match")
	ErrPasswordTooShort = errors.New("Password must be at least 6 characters")
	ErrEmptyOpinion     = errors.New("Opinion cannot be empty")
	ErrOpinionTooLong   = errors.New("Opinion is too long")
	ErrProfanity        = errors.New("Opinion contains profanity")
	ErrProfanityCheck   = errors.New("Could not check your opinion. Please try again.")
	ErrBusy             = errors.New("Still working on the last request")
	ErrNotLoggedIn      = errors.New("Not logged in")
	ErrLoadOpinion      = errors.New("Failed to load opinion. Please try again.")
	ErrLoadLeaderboard  = errors.New("Failed to load leaderboard. Please try again.")
	ErrSubmitOpinion    = errors.New("Failed to submit opinion. Please try again.")
	ErrNoLocation       = errors.New("Location unknown")
)

// MinPasswordLen is the shortest password accepted at registration.
const MinPasswordLen = 6

// ProfanityError carries the censored preview of rejected text.
type ProfanityError struct {
	Censored string
}

func (e *ProfanityError) Error() string {
	return fmt.Sprintf("%s: %q", ErrProfanity.Error(), e.Censored)
}

func (e *ProfanityError) Is(target error) bool { return target == ErrProfanity }

// retryable wraps a required-read failure with its banner text.
type retryable struct {
	banner error
	cause  error
}

func (r *retryable) Error() string { return r.banner.Error() }
func (r *retryable) Unwrap() []error {
	return []error{r.banner, r.cause}
}
