// Package logic contains pure business logic for the countdown timer.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// TimerState is the state of the timer FSM.
type TimerState string

const (
	StateWaiting   TimerState = "WAITING"
	StateTimeEntry TimerState = "TIME_ENTRY"
	StateCountdown TimerState = "COUNTDOWN"
	StateDone      TimerState = "DONE"
)

// Gesture is the classification of a completed press.
type Gesture int

const (
	GestureIdle Gesture = iota
	GestureShortClick
	GestureLongPress
)

func (g Gesture) String() string {
	switch g {
	case GestureShortClick:
		return "SHORT_CLICK"
	case GestureLongPress:
		return "LONG_PRESS"
	default:
		return "IDLE"
	}
}

// EventType identifies a timer event to be published.
type EventType string

const (
	EventStateChange EventType = "STATE_CHANGE"
	EventTimeSet     EventType = "TIME_SET"
	EventTimeReset   EventType = "TIME_RESET"
	EventPaused      EventType = "PAUSED"
	EventResumed     EventType = "RESUMED"
	EventTick        EventType = "TICK"
	EventAborted     EventType = "ABORTED"
	EventCompleted   EventType = "COMPLETED"
)

// Event is emitted by the controller for publishing.
type Event struct {
	Timestamp time.Time
	Type      EventType
	From      TimerState // set for STATE_CHANGE only
	State     TimerState
	Remaining Duration
	Paused    bool
	SessionID string
}

// SessionCounts tracks countdown sessions since startup.
type SessionCounts struct {
	Started   int
	Completed int
	Aborted   int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    SessionCounts
}
