package gesture

import "time"

// DefaultExitDuration is how long a voted card animates off screen.
const DefaultExitDuration = 300 * time.Millisecond

// Exit is the card's off-screen animation state.
type Exit struct {
	Duration time.Duration

	action Action
	until  time.Time
}

// Begin starts the exit for a. It reports false when an exit is already
// running or a is None.
func (e *Exit) Begin(a Action, now time.Time) bool {
	if a == None || e.action != None {
		return false
	}
	d := e.Duration
	if d <= 0 {
		d = DefaultExitDuration
	}
	e.action = a
	e.until = now.Add(d)
	return true
}

// Active reports whether the exit is running.
func (e *Exit) Active() bool { return e.action != None }

// Remaining is the time left at now, never negative.
func (e *Exit) Remaining(now time.Time) time.Duration {
	if e.action == None {
		return 0
	}
	if d := e.until.Sub(now); d > 0 {
		return d
	}
	return 0
}

func (e *Exit) Action() Action { return e.action }

// Offset is the unit direction the card travels: x is -1 left, +1 right;
// y is -1 up.
func (e *Exit) Offset() (x, y int) {
	switch e.action {
	case Disagree:
		return -1, 0
	case Agree:
		return 1, 0
	case Skip:
		return 0, -1
	}
	return 0, 0
}

// Reset returns to neutral.
func (e *Exit) Reset() {
	e.action = None
	e.until = time.Time{}
}
