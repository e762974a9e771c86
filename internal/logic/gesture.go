package logic

import "math"

// HoldCounter classifies press/release gestures from one sample per control tick.
// A combo is a HoldCounter fed with the AND of two inputs.
type HoldCounter struct {
	threshold uint16
	active    bool
	ticks     uint16
}

// NewHoldCounter returns an armed counter that reports LongPress once a hold
// reaches threshold ticks.
func NewHoldCounter(threshold uint16) *HoldCounter {
	return &HoldCounter{threshold: threshold, active: true}
}

// Sample feeds one raw level (true = asserted) and returns the gesture
// completed by this sample, if any. Classification happens on release only.
func (h *HoldCounter) Sample(asserted bool) Gesture {
	if asserted {
		if h.active && h.ticks < math.MaxUint16 {
			h.ticks++
		}
		return GestureIdle
	}

	g := h.classify()
	h.ticks = 0
	h.active = true
	return g
}

func (h *HoldCounter) classify() Gesture {
	switch {
	case h.ticks == 0:
		return GestureIdle
	case h.ticks >= h.threshold:
		return GestureLongPress
	default:
		return GestureShortClick
	}
}

// Disarm drops any hold in progress. Counting resumes only after the input
// has been seen released, so a press carried across a state change is never
// classified.
func (h *HoldCounter) Disarm() {
	h.active = false
	h.ticks = 0
}

// Ticks returns the current hold length.
func (h *HoldCounter) Ticks() uint16 {
	return h.ticks
}

// Active reports whether the counter is armed.
func (h *HoldCounter) Active() bool {
	return h.active
}

// PressEvent is reported by Debouncer.
type PressEvent int

const (
	PressNone PressEvent = iota
	// PressAccepted is reported once the level has stayed asserted for the settle time.
	PressAccepted
	// PressReleased is reported when an accepted press is fully released.
	PressReleased
)

type debouncePhase int

const (
	debounceIdle debouncePhase = iota
	debounceSettling
	debounceHeld
)

// Debouncer accepts a single-button press after it has stayed asserted for
// settle ticks, then waits for full release before reporting it complete.
type Debouncer struct {
	settle uint16
	phase  debouncePhase
	ticks  uint16
}

// NewDebouncer creates a Debouncer with the given settle time in ticks.
func NewDebouncer(settle uint16) *Debouncer {
	return &Debouncer{settle: settle}
}

// Sample feeds one raw level and returns the press event for this tick.
func (d *Debouncer) Sample(asserted bool) PressEvent {
	switch d.phase {
	case debounceIdle:
		if asserted {
			d.phase = debounceSettling
			d.ticks = 0
		}
	case debounceSettling:
		if !asserted {
			// bounce
			d.phase = debounceIdle
			return PressNone
		}
		d.ticks++
		if d.ticks >= d.settle {
			d.phase = debounceHeld
			return PressAccepted
		}
	case debounceHeld:
		if !asserted {
			d.phase = debounceIdle
			return PressReleased
		}
	}
	return PressNone
}

// Reset returns the debouncer to idle.
func (d *Debouncer) Reset() {
	d.phase = debounceIdle
	d.ticks = 0
}
