package mqtt

import (
	"github.com/sweeney/countdown-timer/internal/logic"
)

// FakePublisher records timer and lifecycle messages in memory, formatted
// exactly as RealPublisher would send them.
type FakePublisher struct {
	Events   []logic.Event
	Payloads [][]byte

	SystemEvents   []SystemEvent
	SystemPayloads [][]byte

	// PublishError and PublishSystemError fail the matching call without
	// recording anything.
	PublishError       error
	PublishSystemError error

	Closed    bool
	Connected bool
}

// NewFakePublisher returns an empty, disconnected FakePublisher.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records a timer event and its payload.
func (f *FakePublisher) Publish(event logic.Event) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishSystem records a lifecycle event and its payload.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Types returns the types of the recorded timer events in publish order.
func (f *FakePublisher) Types() []logic.EventType {
	out := make([]logic.EventType, 0, len(f.Events))
	for _, e := range f.Events {
		out = append(out, e.Type)
	}
	return out
}

// Count returns how many timer events of type typ were recorded.
func (f *FakePublisher) Count(typ logic.EventType) int {
	n := 0
	for _, e := range f.Events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

// Transitions returns the recorded STATE_CHANGE events as from->to pairs.
func (f *FakePublisher) Transitions() []string {
	var out []string
	for _, e := range f.Events {
		if e.Type == logic.EventStateChange {
			out = append(out, string(e.From)+"->"+string(e.State))
		}
	}
	return out
}
