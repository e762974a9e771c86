package fsm

import (
	"context"
	"time"

	"github.com/sweeney/countdown-timer/internal/logic"
)

// stepTimeEntry prompts for a duration, then waits for PB2+PB3: a click starts
// the countdown, a long press discards the entry and prompts again.
func (c *Controller) stepTimeEntry(ctx context.Context, now time.Time) error {
	if c.phase == entryPrompt {
		c.hw.Duty.Program(0)
		c.setLED(&c.led0, false)
		c.setLED(&c.led1, false)
		c.con.Discard()
		c.con.Print(msgEntryPrompt)
		if c.beforeRead != nil {
			c.beforeRead(c.Status())
		}

		line, err := c.con.ReadLine(ctx)
		if err != nil {
			return err
		}
		c.session.Remaining = logic.ParseEntry(line)
		c.con.Print(msgTimeSet)
		c.log.Infow("time set", "input", line, "remaining", c.session.Remaining.String())
		c.emit(now, logic.EventTimeSet)

		// PB2+PB3 may already be held; they must be released first.
		c.combo.Disarm()
		c.phase = entryCombo
		return nil
	}

	b := c.readButtons()
	switch c.combo.Sample(b.PB2 && b.PB3) {
	case logic.GestureLongPress:
		c.session.Remaining = logic.Duration{}
		c.con.Print(msgComboReset)
		c.emit(now, logic.EventTimeReset)
		c.phase = entryPrompt
	case logic.GestureShortClick:
		c.con.Print(msgStarting)
		c.transition(logic.StateCountdown, now)
	}
	return nil
}
