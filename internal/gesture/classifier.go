// Package gesture turns horizontal drags, keys and buttons into vote
// actions and tracks the card's exit animation.
package gesture

// DefaultThreshold is the drag distance, in device-independent units,
// beyond which a release counts as a vote.
const DefaultThreshold = 100.0

// Classifier tracks one horizontal drag at a time.
type Classifier struct {
	Threshold float64

	dragging bool
	startX   float64
	deltaX   float64
}

func NewClassifier(threshold float64) *Classifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Classifier{Threshold: threshold}
}

// Start records the first contact point.
func (c *Classifier) Start(x float64) {
	c.dragging = true
	c.startX = x
	c.deltaX = 0
}

// Move updates the live delta. Moves without a start are ignored.
func (c *Classifier) Move(x float64) {
	if !c.dragging {
		return
	}
	c.deltaX = x - c.startX
}

// End classifies the release at x and clears the drag. Positive distance is
// a leftward drag. Below threshold the delta snaps back to zero; an End with
// no Start is a no-op.
func (c *Classifier) End(x float64) Action {
	if !c.dragging {
		return None
	}
	distance := c.startX - x
	c.Cancel()
	switch {
	case distance > c.Threshold:
		return Disagree
	case distance < -c.Threshold:
		return Agree
	}
	return None
}

// Cancel drops any drag in progress and snaps back.
func (c *Classifier) Cancel() {
	c.dragging = false
	c.startX = 0
	c.deltaX = 0
}

func (c *Classifier) Dragging() bool { return c.dragging }
func (c *Classifier) Delta() float64 { return c.deltaX }

// Rotation is a tilt in degrees proportional to the drag, capped at 15.
func (c *Classifier) Rotation() float64 {
	r := c.deltaX / 20
	if r > 15 {
		return 15
	}
	if r < -15 {
		return -15
	}
	return r
}

// Leaning reports which vote the current drag would produce if released now.
func (c *Classifier) Leaning() Action {
	switch {
	case !c.dragging:
		return None
	case c.deltaX < -c.Threshold:
		return Disagree
	case c.deltaX > c.Threshold:
		return Agree
	}
	return None
}
