package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event            string        `json:"event,omitempty"`
	Reason           string        `json:"reason,omitempty"`
	State            string        `json:"state"`
	Remaining        string        `json:"remaining"`
	RemainingSeconds int           `json:"remaining_seconds"`
	Paused           bool          `json:"paused"`
	Session          string        `json:"session,omitempty"`
	Indicator        IndicatorJSON `json:"indicator"`
	UptimeSeconds    int64         `json:"uptime_seconds"`
	StartTime        string        `json:"start_time"`
	Timestamp        string        `json:"timestamp"`
	MQTT             MQTTStatus    `json:"mqtt"`
	Counts           CountsJSON    `json:"session_counts"`
	Network          *NetworkJSON  `json:"network,omitempty"`
	Config           ConfigJSON    `json:"config"`
}

// IndicatorJSON describes the LED2 indicator and console display mode.
type IndicatorJSON struct {
	ADC          uint16 `json:"adc"`
	DutyTicks    uint8  `json:"duty_ticks"`
	Target       uint8  `json:"target"`
	Mode         string `json:"mode"`
	ExtendedInfo bool   `json:"extended_info"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of session counts.
type CountsJSON struct {
	Started   int `json:"started"`
	Completed int `json:"completed"`
	Aborted   int `json:"aborted"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PWMTickUs   int64  `json:"pwm_tick_us"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	Simulate    bool   `json:"simulate"`
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.State)
	if state == "" {
		state = "UNKNOWN"
	}

	return StatusInner{
		State:            state,
		Remaining:        snap.Remaining.String(),
		RemainingSeconds: int(snap.Remaining.Minutes)*60 + int(snap.Remaining.Seconds),
		Paused:           snap.Paused,
		Session:          snap.SessionID,
		Indicator: IndicatorJSON{
			ADC:          snap.ADC,
			DutyTicks:    snap.Duty,
			Target:       snap.Target,
			Mode:         snap.Display.IndicatorName(),
			ExtendedInfo: snap.Display.ExtendedInfo,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Started:   snap.Counts.Started,
			Completed: snap.Counts.Completed,
			Aborted:   snap.Counts.Aborted,
		},
		Config: ConfigJSON{
			PWMTickUs:   snap.Config.PWMTickUs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			Simulate:    snap.Config.Simulate,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// Build returns the JSON document for snap without event or reason.
func Build(snap Snapshot) StatusJSON {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)
	return StatusJSON{Status: inner}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(Build(snap), "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
