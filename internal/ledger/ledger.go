// Package ledger keeps the ordered record of vote actions taken on
// opinions during the current session.
package ledger

import "hottakes/internal/model"

// Ledger is an ordered list of interactions. The zero value is ready to use.
// It is not safe for concurrent use; the UI loop owns it.
type Ledger struct {
	entries []model.VoteInteraction
}

// Append adds i at the end unconditionally.
func (l *Ledger) Append(i model.VoteInteraction) {
	l.entries = append(l.entries, i)
}

// Upsert replaces the entry for i.OpinionID in place, or appends when the
// opinion has not been seen. After any sequence of Upserts there is at most
// one entry per opinion and first-seen order is preserved.
func (l *Ledger) Upsert(i model.VoteInteraction) {
	for idx := range l.entries {
		if l.entries[idx].OpinionID == i.OpinionID {
			l.entries[idx] = i
			return
		}
	}
	l.entries = append(l.entries, i)
}

// Clear empties the ledger.
func (l *Ledger) Clear() { l.entries = nil }

// CountByType counts entries with the given vote type.
func (l *Ledger) CountByType(vt model.VoteType) int {
	n := 0
	for _, e := range l.entries {
		if e.VoteType == vt {
			n++
		}
	}
	return n
}

func (l *Ledger) Len() int { return len(l.entries) }

// Entries returns a copy in ledger order.
func (l *Ledger) Entries() []model.VoteInteraction {
	return append([]model.VoteInteraction(nil), l.entries...)
}

// OpinionIDs returns each opinion id once, in first-seen order.
func (l *Ledger) OpinionIDs() []string {
	seen := make(map[string]struct{}, len(l.entries))
	out := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		if _, ok := seen[e.OpinionID]; ok {
			continue
		}
		seen[e.OpinionID] = struct{}{}
		out = append(out, e.OpinionID)
	}
	return out
}

// Latest returns the most recent entry for opinionID.
func (l *Ledger) Latest(opinionID string) (model.VoteInteraction, bool) {
	for idx := len(l.entries) - 1; idx >= 0; idx-- {
		if l.entries[idx].OpinionID == opinionID {
			return l.entries[idx], true
		}
	}
	return model.VoteInteraction{}, false
}
