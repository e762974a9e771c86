package pwm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// recordPin counts ticks spent on.
type recordPin struct {
	on     bool
	writes int
	err    error
}

func (p *recordPin) Set(on bool) error {
	if p.err != nil {
		return p.err
	}
	p.on = on
	p.writes++
	return nil
}

func onTicks(g *Generator, pin *recordPin, n int) int {
	count := 0
	for i := 0; i < n; i++ {
		g.Tick()
		if pin.on {
			count++
		}
	}
	return count
}

func TestGeneratorDutyCycle(t *testing.T) {
	for target := uint8(0); target <= Period; target++ {
		var cell Cell
		cell.Program(target)
		pin := &recordPin{}
		g := NewGenerator(&cell, pin)

		got := onTicks(g, pin, Period*10)
		want := int(target) * 10
		if got != want {
			t.Errorf("target %d: on for %d ticks, want %d", target, got, want)
		}
	}
}

func TestGeneratorWritesOnlyOnChange(t *testing.T) {
	var cell Cell
	cell.Program(Period)
	pin := &recordPin{}
	g := NewGenerator(&cell, pin)

	onTicks(g, pin, 100)
	if pin.writes != 1 {
		t.Errorf("expected 1 write for constant level, got %d", pin.writes)
	}
}

func TestGeneratorPinErrorRetries(t *testing.T) {
	var cell Cell
	cell.Program(Period)
	pin := &recordPin{err: errors.New("line busy")}
	g := NewGenerator(&cell, pin)

	g.Tick()
	pin.err = nil
	g.Tick()
	if !pin.on {
		t.Error("expected pin to be driven after error clears")
	}
}

func TestGeneratorCounterWraps(t *testing.T) {
	var cell Cell
	g := NewGenerator(&cell, &recordPin{})
	for i := 0; i < 3*Period+2; i++ {
		g.Tick()
		if g.Counter() >= Period {
			t.Fatalf("tick %d: counter %d out of range", i, g.Counter())
		}
	}
	if g.Counter() != 2 {
		t.Errorf("counter: got %d, want 2", g.Counter())
	}
}

func TestBreathingRamp(t *testing.T) {
	var cell Cell
	cell.Breathe()
	g := NewGenerator(&cell, &recordPin{})

	// Expected target after each ramp step: up to Period, down to 0, up again.
	want := []uint8{1, 2, 3, 4, 5, 4, 3, 2, 1, 0, 1, 2}
	wantStep := []int8{1, 1, 1, 1, -1, -1, -1, -1, -1, 1, 1, 1}

	for i := range want {
		for j := 0; j < RampEvery-1; j++ {
			g.Tick()
		}
		before := cell.Target()
		g.Tick()
		got := cell.Target()
		if got != want[i] {
			t.Fatalf("ramp step %d: target %d, want %d (was %d)", i, got, want[i], before)
		}
		if g.Step() != wantStep[i] {
			t.Errorf("ramp step %d: step %d, want %d", i, g.Step(), wantStep[i])
		}
	}
}

func TestBreathingStepFlipsOnlyAtBounds(t *testing.T) {
	var cell Cell
	cell.Breathe()
	g := NewGenerator(&cell, &recordPin{})

	prev := g.Step()
	for i := 0; i < RampEvery*40; i++ {
		g.Tick()
		target := cell.Target()
		if target > Period {
			t.Fatalf("tick %d: target %d out of range", i, target)
		}
		if g.Step() != prev {
			if target != 0 && target != Period {
				t.Fatalf("tick %d: step flipped at target %d", i, target)
			}
			prev = g.Step()
		}
	}
}

func TestRampInertWhenProgrammed(t *testing.T) {
	var cell Cell
	cell.Program(3)
	g := NewGenerator(&cell, &recordPin{})

	for i := 0; i < RampEvery*5; i++ {
		g.Tick()
	}
	if cell.Target() != 3 {
		t.Errorf("target changed while not breathing: got %d, want 3", cell.Target())
	}
}

func TestRampRestartsFromZero(t *testing.T) {
	var cell Cell
	cell.Breathe()
	g := NewGenerator(&cell, &recordPin{})
	for i := 0; i < RampEvery*7; i++ {
		g.Tick()
	}
	if g.Step() != -1 {
		t.Fatalf("expected falling ramp, got step %d", g.Step())
	}

	cell.Program(2)
	g.Tick()
	cell.Breathe()
	for i := 0; i < RampEvery; i++ {
		g.Tick()
	}
	if cell.Target() != 1 || g.Step() != 1 {
		t.Errorf("after restart: target %d step %d, want 1 and 1", cell.Target(), g.Step())
	}
}

func TestControlStoreWinsOverRamp(t *testing.T) {
	var cell Cell
	cell.Breathe()
	old := cell.v.Load()

	cell.Program(0)
	if cell.advance(old, 3) {
		t.Fatal("ramp advance succeeded after control-loop store")
	}
	target, breathing := cell.Load()
	if target != 0 || breathing {
		t.Errorf("got target %d breathing %v, want 0 false", target, breathing)
	}
}

func TestProgramClamps(t *testing.T) {
	var cell Cell
	cell.Program(200)
	if cell.Target() != Period {
		t.Errorf("got %d, want %d", cell.Target(), Period)
	}
}

func TestGeneratorRun(t *testing.T) {
	var cell Cell
	cell.Program(Period)
	pin := &recordPin{}
	g := NewGenerator(&cell, pin)

	tick := make(chan time.Time)
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		g.Run(ctx, tick)
	}()

	for i := 0; i < 3; i++ {
		tick <- time.Time{}
	}
	cancel()
	wg.Wait()

	if !pin.on {
		t.Error("expected pin on after ticks")
	}
}
