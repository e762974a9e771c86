// Package pwm implements the software PWM and breathing generator that runs on
// the fast tick, and the single shared cell it reads its duty target from.
package pwm

import "sync/atomic"

// Period is the number of fast ticks in one PWM period.
const Period = 5

const breathingBit = 1 << 8

// Cell is the only state shared between the control loop and the generator.
// It packs the duty target (low byte) and the breathing flag into one word.
//
// The control loop writes with Program or Breathe. While the breathing flag is
// set the generator owns the target and advances it with compare-and-swap, so
// a concurrent store by the control loop always wins.
type Cell struct {
	v atomic.Uint32
}

func pack(target uint8, breathing bool) uint32 {
	w := uint32(target)
	if breathing {
		w |= breathingBit
	}
	return w
}

func unpack(w uint32) (uint8, bool) {
	return uint8(w), w&breathingBit != 0
}

// Program sets a fixed duty target and stops breathing. Targets above Period
// are clamped.
func (c *Cell) Program(target uint8) {
	if target > Period {
		target = Period
	}
	c.v.Store(pack(target, false))
}

// Breathe hands the target to the generator's ramp, starting from zero.
func (c *Cell) Breathe() {
	c.v.Store(pack(0, true))
}

// Load returns the current target and breathing flag.
func (c *Cell) Load() (target uint8, breathing bool) {
	return unpack(c.v.Load())
}

// Target returns the current duty target.
func (c *Cell) Target() uint8 {
	t, _ := c.Load()
	return t
}

// advance is used by the generator's ramp. It fails if the control loop has
// stored anything since old was loaded.
func (c *Cell) advance(old uint32, target uint8) bool {
	return c.v.CompareAndSwap(old, pack(target, true))
}
