package logic

import "time"

// Heartbeat decides when a periodic liveness event is due.
type Heartbeat struct {
	startTime     time.Time
	lastHeartbeat time.Time
}

// NewHeartbeat creates a Heartbeat. The startTime is used for calculating uptime.
func NewHeartbeat(startTime time.Time) *Heartbeat {
	return &Heartbeat{
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Check returns heartbeat data if the interval has elapsed since the last
// heartbeat (or startup). Returns nil if the interval has not elapsed, or if
// interval is <= 0 (disabled).
func (h *Heartbeat) Check(now time.Time, interval time.Duration, counts SessionCounts) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(h.lastHeartbeat) < interval {
		return nil
	}

	h.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(h.startTime),
		Counts:    counts,
	}
}
