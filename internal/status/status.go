// Package status provides a thread-safe status tracker for the countdown-timer
// daemon. It is written by the control loop and read by HTTP handlers.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/countdown-timer/internal/fsm"
	"github.com/sweeney/countdown-timer/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PWMTickUs   int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	Simulate    bool
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	State         logic.TimerState
	Remaining     logic.Duration
	Paused        bool
	SessionID     string
	ADC           uint16
	Duty          uint8
	Target        uint8
	Display       logic.DisplayMode
	Counts        logic.SessionCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			State:     logic.StateWaiting,
			Display:   logic.DefaultDisplayMode(),
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update copies the controller status. Called from the control loop after
// every tick.
func (t *Tracker) Update(st fsm.Status) {
	t.mu.Lock()
	t.snap.State = st.State
	t.snap.Remaining = st.Remaining
	t.snap.Paused = st.Paused
	t.snap.SessionID = st.SessionID
	t.snap.ADC = st.ADC
	t.snap.Duty = st.Duty
	t.snap.Target = st.Target
	t.snap.Display = st.Display
	t.snap.Counts = st.Counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
