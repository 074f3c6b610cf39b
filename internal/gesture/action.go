package gesture

import "hottakes/internal/model"

// Action is the discrete outcome of any input modality.
type Action int

const (
	None Action = iota
	Agree
	Disagree
	Skip
)

func (a Action) String() string {
	switch a {
	case Agree:
		return "agree"
	case Disagree:
		return "disagree"
	case Skip:
		return "skip"
	}
	return "none"
}

// VoteType maps an action to the ledger vote type.
func (a Action) VoteType() (model.VoteType, bool) {
	switch a {
	case Agree:
		return model.Upvote, true
	case Disagree:
		return model.Downvote, true
	case Skip:
		return model.Skip, true
	}
	return "", false
}

// FromKey maps a key name to an action: left disagrees, right agrees,
// up skips. The letter keys mirror the on-screen buttons.
func FromKey(key string) Action {
	switch key {
	case "left", "h", "d":
		return Disagree
	case "right", "l", "a":
		return Agree
	case "up", "k", "s":
		return Skip
	}
	return None
}
