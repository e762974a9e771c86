package pwm

import (
	"context"
	"time"
)

// RampEvery is the number of fast ticks between breathing steps.
const RampEvery = 150

// Pin is the indicator output driven by the generator.
type Pin interface {
	Set(on bool) error
}

// Generator produces the indicator's software PWM. Tick must be called from a
// single goroutine at a fixed period; it never blocks.
type Generator struct {
	cell *Cell
	pin  Pin

	counter   uint8
	pulse     uint16
	step      int8
	breathing bool
	level     bool
	started   bool
}

// NewGenerator creates a generator reading its target from cell and driving pin.
func NewGenerator(cell *Cell, pin Pin) *Generator {
	return &Generator{cell: cell, pin: pin, step: 1}
}

// Tick advances the PWM by one fast tick.
func (g *Generator) Tick() {
	w := g.cell.v.Load()
	target, breathing := unpack(w)

	on := g.counter < target
	if on != g.level || !g.started {
		// Write errors are ignored; the next change retries.
		if g.pin.Set(on) == nil {
			g.level = on
			g.started = true
		}
	}
	g.counter++
	if g.counter >= Period {
		g.counter = 0
	}

	if !breathing {
		g.breathing = false
		return
	}
	if !g.breathing {
		g.breathing = true
		g.pulse = 0
		g.step = 1
	}
	g.pulse++
	if g.pulse < RampEvery {
		return
	}
	g.pulse = 0

	next := int16(target) + int16(g.step)
	if next >= Period {
		next = Period
		g.step = -1
	} else if next <= 0 {
		next = 0
		g.step = 1
	}
	g.cell.advance(w, uint8(next))
}

// Step returns the breathing direction.
func (g *Generator) Step() int8 {
	return g.step
}

// Counter returns the position within the current PWM period.
func (g *Generator) Counter() uint8 {
	return g.counter
}

// Run calls Tick on every value received from tick until ctx is cancelled.
func (g *Generator) Run(ctx context.Context, tick <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			g.Tick()
		}
	}
}
