// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/countdown-timer/internal/logic"
)

// Topic is the MQTT topic for timer events.
const Topic = "appliance/timer/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "appliance/timer/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a timer event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Timer TimerPayload `json:"timer"`
}

// TimerPayload contains the timer event details.
type TimerPayload struct {
	Timestamp        string `json:"timestamp"`
	Event            string `json:"event"`
	State            string `json:"state"`
	From             string `json:"from,omitempty"`
	Remaining        string `json:"remaining"`
	RemainingSeconds int    `json:"remaining_seconds"`
	Paused           bool   `json:"paused"`
	Session          string `json:"session,omitempty"`
}

// FormatPayload creates the JSON payload for a timer event.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Timer: TimerPayload{
			Timestamp:        event.Timestamp.UTC().Format(time.RFC3339),
			Event:            string(event.Type),
			State:            string(event.State),
			From:             string(event.From),
			Remaining:        event.Remaining.String(),
			RemainingSeconds: int(event.Remaining.Minutes)*60 + int(event.Remaining.Seconds),
			Paused:           event.Paused,
			Session:          event.SessionID,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// NopPublisher drops everything. It stands in when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(logic.Event) error       { return nil }
func (NopPublisher) PublishSystem(SystemEvent) error { return nil }
func (NopPublisher) Close() error                    { return nil }
func (NopPublisher) IsConnected() bool               { return false }
