// Package fsm implements the timer's state machine. The controller is driven
// one tick at a time by a single dispatch loop; Period tells the loop how long
// to wait before the next tick.
package fsm

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sweeney/countdown-timer/internal/gpio"
	"github.com/sweeney/countdown-timer/internal/logger"
	"github.com/sweeney/countdown-timer/internal/logic"
	"github.com/sweeney/countdown-timer/internal/pwm"
)

// Tick periods per state. Gesture thresholds below are counted in these ticks.
const (
	WaitingTick   = 10 * time.Millisecond
	TimeEntryTick = 20 * time.Millisecond
	CountdownTick = 100 * time.Millisecond
	DoneTick      = 100 * time.Millisecond
)

const (
	pb1SettleTicks      = 5  // 50 ms at WaitingTick
	comboLongPressTicks = 50 // 1 s at TimeEntryTick
	pb3LongPressTicks   = 12 // 1.2 s at CountdownTick
	ticksPerSecond      = 10 // at CountdownTick
	doneDurationTicks   = 50 // 5 s at DoneTick
)

// Console is the text channel used by the controller.
type Console interface {
	Print(parts ...string)
	Poll() (byte, bool)
	Discard()
	ReadLine(ctx context.Context) (string, error)
}

// Buttons reads the push buttons.
type Buttons interface {
	Read() (gpio.Sample, error)
}

// Hardware bundles the collaborators the controller drives.
type Hardware struct {
	Buttons Buttons
	Analog  gpio.Analog
	LED0    gpio.Output
	LED1    gpio.Output
	// Duty is the indicator's shared duty cell, read by the PWM generator.
	Duty *pwm.Cell
}

type entryPhase int

const (
	entryPrompt entryPhase = iota
	entryCombo
)

// Session is the per-countdown context owned by the controller.
type Session struct {
	ID        string
	Remaining logic.Duration
	Paused    bool
	Display   logic.DisplayMode
	ADC       uint16
	Duty      uint8 // brightness from the pot, before blink gating

	elapsed uint16 // control ticks since the last whole second
}

func (s *Session) reset() {
	*s = Session{Display: logic.DefaultDisplayMode()}
}

// Status is a point-in-time view of the controller for status consumers.
type Status struct {
	State     logic.TimerState
	SessionID string
	Remaining logic.Duration
	Paused    bool
	Display   logic.DisplayMode
	ADC       uint16
	Duty      uint8
	Target    uint8
	Counts    logic.SessionCounts
}

// led remembers the last level written so unchanged levels are not rewritten.
// A failed write leaves known unset and the next call retries.
type led struct {
	out   gpio.Output
	on    bool
	known bool
}

// Controller is the timer FSM.
type Controller struct {
	hw    Hardware
	con   Console
	log   *logger.Logger
	newID func() string
	// beforeRead sees the status just before Step blocks on a line read.
	beforeRead func(Status)

	state   logic.TimerState
	session Session
	counts  logic.SessionCounts

	bannerPrinted   bool
	promptShown     bool
	phase           entryPhase
	countdownInited bool
	doneShown       bool
	doneTicks       uint16

	pb1   *logic.Debouncer
	combo *logic.HoldCounter
	pb3   *logic.HoldCounter

	led0, led1 led

	events []logic.Event
}

// Option configures a Controller.
type Option func(*Controller)

// WithIDGenerator replaces the session ID generator.
func WithIDGenerator(f func() string) Option {
	return func(c *Controller) { c.newID = f }
}

// WithBeforeRead registers f to receive the controller status right before
// Step blocks waiting for a time entry line.
func WithBeforeRead(f func(Status)) Option {
	return func(c *Controller) { c.beforeRead = f }
}

// New creates a controller in the Waiting state with the indicator breathing.
func New(hw Hardware, con Console, log *logger.Logger, opts ...Option) *Controller {
	c := &Controller{
		hw:    hw,
		con:   con,
		log:   log,
		newID: uuid.NewString,
		state: logic.StateWaiting,
		pb1:   logic.NewDebouncer(pb1SettleTicks),
		combo: logic.NewHoldCounter(comboLongPressTicks),
		pb3:   logic.NewHoldCounter(pb3LongPressTicks),
		led0:  led{out: hw.LED0},
		led1:  led{out: hw.LED1},
	}
	for _, o := range opts {
		o(c)
	}
	c.session.reset()
	c.hw.Duty.Breathe()
	return c
}

// State returns the current FSM state.
func (c *Controller) State() logic.TimerState {
	return c.state
}

// Period returns the tick period of the current state.
func (c *Controller) Period() time.Duration {
	switch c.state {
	case logic.StateTimeEntry:
		return TimeEntryTick
	case logic.StateCountdown:
		return CountdownTick
	case logic.StateDone:
		return DoneTick
	default:
		return WaitingTick
	}
}

// Status returns a snapshot for status consumers.
func (c *Controller) Status() Status {
	return Status{
		State:     c.state,
		SessionID: c.session.ID,
		Remaining: c.session.Remaining,
		Paused:    c.session.Paused,
		Display:   c.session.Display,
		ADC:       c.session.ADC,
		Duty:      c.session.Duty,
		Target:    c.hw.Duty.Target(),
		Counts:    c.counts,
	}
}

// Counts returns the session counters.
func (c *Controller) Counts() logic.SessionCounts {
	return c.counts
}

// Step runs one tick of the current state and returns the events it produced.
// It blocks only while reading a time entry line; the returned error is
// non-nil only when ctx ends during that read.
func (c *Controller) Step(ctx context.Context, now time.Time) ([]logic.Event, error) {
	c.events = nil

	var err error
	switch c.state {
	case logic.StateWaiting:
		c.stepWaiting(now)
	case logic.StateTimeEntry:
		err = c.stepTimeEntry(ctx, now)
	case logic.StateCountdown:
		c.stepCountdown(now)
	case logic.StateDone:
		c.stepDone(now)
	}
	return c.events, err
}

// transition runs the exit actions of the current state and switches to next.
// Every per-state "already initialised" flag is cleared here and nowhere else.
func (c *Controller) transition(next logic.TimerState, now time.Time) {
	from := c.state
	switch from {
	case logic.StateWaiting:
		c.promptShown = false
		c.pb1.Reset()
	case logic.StateTimeEntry:
		c.phase = entryPrompt
		c.combo.Disarm()
	case logic.StateCountdown:
		c.countdownInited = false
		c.pb3.Disarm()
	case logic.StateDone:
		c.doneShown = false
		c.doneTicks = 0
	}

	c.state = next
	if next == logic.StateWaiting {
		c.hw.Duty.Breathe()
	}

	c.log.Infow("state change", "from", from, "to", next, "session", c.session.ID)
	c.events = append(c.events, logic.Event{
		Timestamp: now,
		Type:      logic.EventStateChange,
		From:      from,
		State:     next,
		Remaining: c.session.Remaining,
		Paused:    c.session.Paused,
		SessionID: c.session.ID,
	})
}

func (c *Controller) emit(now time.Time, t logic.EventType) {
	c.events = append(c.events, logic.Event{
		Timestamp: now,
		Type:      t,
		State:     c.state,
		Remaining: c.session.Remaining,
		Paused:    c.session.Paused,
		SessionID: c.session.ID,
	})
}

// readButtons samples the buttons. A failed read counts as all released.
func (c *Controller) readButtons() gpio.Sample {
	s, err := c.hw.Buttons.Read()
	if err != nil {
		c.log.Warnw("button read failed", "err", err)
		return gpio.Sample{}
	}
	return s
}

// sampleAnalog refreshes the pot reading and derived brightness. A failed
// read keeps the previous value.
func (c *Controller) sampleAnalog() {
	v, err := c.hw.Analog.ReadAnalog()
	if err != nil {
		c.log.Warnw("adc read failed", "err", err)
	} else {
		c.session.ADC = logic.Clamp(v, 0, logic.ADCMax)
	}
	c.session.Duty = logic.DutyFromADC(c.session.ADC, pwm.Period)
}

func (c *Controller) setLED(l *led, on bool) {
	if l.known && l.on == on {
		return
	}
	l.on = on
	if l.out == nil {
		return
	}
	if err := l.out.Set(on); err != nil {
		c.log.Warnw("led write failed", "err", err)
		l.known = false
		return
	}
	l.known = true
}

func (c *Controller) statusLine() []string {
	remaining := c.session.Remaining.String()
	if !c.session.Display.ExtendedInfo {
		return []string{msgTimeRemaining, remaining}
	}
	return []string{
		msgExtendedHeader,
		msgTimeRemaining, remaining,
		" | ADC = ", strconv.Itoa(int(c.session.ADC)),
		" | LED2 dutyTicks = ", strconv.Itoa(int(c.session.Duty)),
		" | LED2 mode = ", c.session.Display.IndicatorName(),
	}
}
