package fsm

import (
	"time"

	"github.com/sweeney/countdown-timer/internal/logic"
)

// stepDone alternates LED0 and LED1 for doneDurationTicks ticks, then returns
// to Waiting with a fresh session.
func (c *Controller) stepDone(now time.Time) {
	if !c.doneShown {
		c.con.Print(msgDone)
		c.setLED(&c.led0, true)
		c.setLED(&c.led1, false)
		c.session.Display.BlinkIndicator = false
		c.doneShown = true
	}

	c.setLED(&c.led0, !c.led0.on)
	c.setLED(&c.led1, !c.led0.on)
	c.sampleAnalog()
	c.hw.Duty.Program(c.session.Display.Target(c.session.Duty))

	c.doneTicks++
	if c.doneTicks < doneDurationTicks {
		return
	}

	c.setLED(&c.led0, false)
	c.setLED(&c.led1, false)
	c.session.reset()
	c.transition(logic.StateWaiting, now)
}
