package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/countdown-timer/internal/logic"
)

func TestFormatPayload(t *testing.T) {
	event := logic.Event{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Type:      logic.EventTick,
		State:     logic.StateCountdown,
		Remaining: logic.Duration{Minutes: 1, Seconds: 29},
		SessionID: "abc",
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"timer":{"timestamp":"2026-02-02T22:18:12Z","event":"TICK","state":"COUNTDOWN","remaining":"01:29","remaining_seconds":89,"paused":false,"session":"abc"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatPayloadStateChange(t *testing.T) {
	event := logic.Event{
		Timestamp: time.Now(),
		Type:      logic.EventStateChange,
		From:      logic.StateCountdown,
		State:     logic.StateDone,
		Paused:    true,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Timer.From != "COUNTDOWN" || parsed.Timer.State != "DONE" {
		t.Errorf("got from=%s state=%s", parsed.Timer.From, parsed.Timer.State)
	}
	if !parsed.Timer.Paused {
		t.Error("paused should be true")
	}
	if parsed.Timer.Remaining != "00:00" || parsed.Timer.RemainingSeconds != 0 {
		t.Errorf("remaining: got %s (%d)", parsed.Timer.Remaining, parsed.Timer.RemainingSeconds)
	}
}

func TestFormatPayloadOmitsEmptyFromAndSession(t *testing.T) {
	payload, err := FormatPayload(logic.Event{Type: logic.EventTimeSet, State: logic.StateTimeEntry})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed map[string]map[string]interface{}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := parsed["timer"]["from"]; ok {
		t.Error("from should be omitted")
	}
	if _, ok := parsed["timer"]["session"]; ok {
		t.Error("session should be omitted")
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	event := logic.Event{
		Timestamp: time.Date(2026, 2, 3, 0, 30, 0, 0, loc),
		Type:      logic.EventCompleted,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Timer.Timestamp != "2026-02-02T22:30:00Z" {
		t.Errorf("expected UTC timestamp, got %s", parsed.Timer.Timestamp)
	}
}

func TestTopics(t *testing.T) {
	if Topic != "appliance/timer/events" {
		t.Errorf("unexpected topic: %s", Topic)
	}
	if TopicSystem != "appliance/timer/system" {
		t.Errorf("unexpected system topic: %s", TopicSystem)
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-10T08:30:00Z","event":"SHUTDOWN","reason":"MQTT_DISCONNECT"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatSystemPayloadOmitsReason(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC),
		Event:     "RECONNECTED",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-10T14:30:00Z","event":"RECONNECTED"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("raw payload should pass through, got %s", payload)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()

	if err := f.Publish(logic.Event{Timestamp: time.Now(), Type: logic.EventPaused}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "STARTUP", Retained: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Events) != 1 || f.Events[0].Type != logic.EventPaused {
		t.Errorf("events: got %+v", f.Events)
	}
	if len(f.Payloads) != 1 || len(f.SystemPayloads) != 1 {
		t.Errorf("payloads: got %d/%d", len(f.Payloads), len(f.SystemPayloads))
	}
	if !f.SystemEvents[0].Retained {
		t.Error("retained flag should be recorded")
	}
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("boom")
	f.PublishSystemError = errors.New("bang")

	if err := f.Publish(logic.Event{}); err == nil {
		t.Error("expected publish error")
	}
	if err := f.PublishSystem(SystemEvent{}); err == nil {
		t.Error("expected publish system error")
	}
	if len(f.Events) != 0 || len(f.SystemEvents) != 0 {
		t.Error("failed publishes should not be recorded")
	}
}

func TestFakePublisherEventHelpers(t *testing.T) {
	f := NewFakePublisher()
	f.Publish(logic.Event{Type: logic.EventStateChange, From: logic.StateWaiting, State: logic.StateTimeEntry})
	f.Publish(logic.Event{Type: logic.EventTick, State: logic.StateCountdown})
	f.Publish(logic.Event{Type: logic.EventTick, State: logic.StateCountdown})
	f.Publish(logic.Event{Type: logic.EventStateChange, From: logic.StateCountdown, State: logic.StateDone})

	types := f.Types()
	if len(types) != 4 || types[0] != logic.EventStateChange || types[1] != logic.EventTick {
		t.Errorf("Types: got %v", types)
	}
	if got := f.Count(logic.EventTick); got != 2 {
		t.Errorf("Count(TICK): got %d, want 2", got)
	}
	if got := f.Count(logic.EventAborted); got != 0 {
		t.Errorf("Count(ABORTED): got %d, want 0", got)
	}
	tr := f.Transitions()
	if len(tr) != 2 || tr[0] != "WAITING->TIME_ENTRY" || tr[1] != "COUNTDOWN->DONE" {
		t.Errorf("Transitions: got %v", tr)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.Publish(logic.Event{}); err != nil {
		t.Error(err)
	}
	if err := p.PublishSystem(SystemEvent{}); err != nil {
		t.Error(err)
	}
	if (NopPublisher{}).IsConnected() {
		t.Error("nop publisher is never connected")
	}
}
