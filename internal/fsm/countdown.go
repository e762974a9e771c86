package fsm

import (
	"time"

	"github.com/sweeney/countdown-timer/internal/logic"
)

func (c *Controller) enterCountdown() {
	c.setLED(&c.led0, false)
	c.setLED(&c.led1, true)
	c.session.Paused = false
	c.session.Display = logic.DefaultDisplayMode()
	c.session.elapsed = 0
	c.session.ID = c.newID()
	c.counts.Started++
	c.pb3.Disarm()
	c.con.Discard()
	c.con.Print(msgCountdownHelp)
	c.log.Infow("countdown started", "session", c.session.ID, "remaining", c.session.Remaining.String())
	c.countdownInited = true
}

// stepCountdown runs one control tick of the countdown. The remaining time is
// decremented every ticksPerSecond ticks unless paused.
func (c *Controller) stepCountdown(now time.Time) {
	if !c.countdownInited {
		c.enterCountdown()
		return
	}

	switch c.pb3.Sample(c.readButtons().PB3) {
	case logic.GestureLongPress:
		c.session.Remaining = logic.Duration{}
		c.con.Print(msgAbort)
		c.counts.Aborted++
		c.log.Infow("countdown aborted", "session", c.session.ID)
		c.emit(now, logic.EventAborted)
		c.transition(logic.StateDone, now)
		return
	case logic.GestureShortClick:
		c.session.Paused = !c.session.Paused
		if c.session.Paused {
			c.con.Print(msgPaused)
			c.emit(now, logic.EventPaused)
		} else {
			c.con.Print(msgResumed)
			c.emit(now, logic.EventResumed)
		}
	}

	if ch, ok := c.con.Poll(); ok {
		switch ch {
		case 'i':
			c.session.Display.ToggleExtended()
		case 'b':
			c.session.Display.ToggleBlink()
			if c.session.Display.BlinkIndicator {
				c.con.Print(msgBlinkMode)
			} else {
				c.con.Print(msgSolidMode)
			}
		}
	}

	c.sampleAnalog()
	c.hw.Duty.Program(c.session.Display.Target(c.session.Duty))

	c.session.elapsed++
	if c.session.elapsed < ticksPerSecond {
		return
	}
	c.session.elapsed = 0

	if !c.session.Paused && !c.session.Remaining.Decrement() {
		c.setLED(&c.led1, !c.led1.on)
		if c.session.Display.BlinkIndicator {
			c.session.Display.BlinkPhase = !c.session.Display.BlinkPhase
		}
	}

	c.con.Print(c.statusLine()...)
	c.emit(now, logic.EventTick)

	if !c.session.Paused && c.session.Remaining.IsZero() {
		c.counts.Completed++
		c.log.Infow("countdown completed", "session", c.session.ID)
		c.emit(now, logic.EventCompleted)
		c.transition(logic.StateDone, now)
	}
}
