package fsm

import (
	"time"

	"github.com/sweeney/countdown-timer/internal/logic"
)

// stepWaiting idles with the indicator breathing until PB1 is pressed and
// released.
func (c *Controller) stepWaiting(now time.Time) {
	if !c.bannerPrinted {
		c.con.Print(msgBanner)
		c.bannerPrinted = true
	}
	if !c.promptShown {
		c.setLED(&c.led0, false)
		c.setLED(&c.led1, false)
		c.con.Print(msgWaitingPrompt)
		c.promptShown = true
	}

	switch c.pb1.Sample(c.readButtons().PB1) {
	case logic.PressAccepted:
		c.con.Print(msgPB1Detected)
	case logic.PressReleased:
		c.transition(logic.StateTimeEntry, now)
	}
}
