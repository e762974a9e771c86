package gpio

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownButton is returned by SetButton for names other than pb1, pb2 and pb3.
var ErrUnknownButton = errors.New("unknown button")

// Panel is a virtual front panel used in simulation mode. Buttons are set by
// name from the web API and read by the control loop. Safe for concurrent use.
type Panel struct {
	mu      sync.Mutex
	buttons Sample
	*FakeAnalog
}

// NewPanel creates a Panel with all buttons released and the pot at value.
func NewPanel(value uint16) *Panel {
	return &Panel{FakeAnalog: NewFakeAnalog(value)}
}

// Read returns the current button states.
func (p *Panel) Read() (Sample, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buttons, nil
}

// Close is a no-op.
func (p *Panel) Close() error {
	return nil
}

// SetButton presses or releases the named button ("pb1", "pb2" or "pb3").
func (p *Panel) SetButton(name string, pressed bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch name {
	case "pb1":
		p.buttons.PB1 = pressed
	case "pb2":
		p.buttons.PB2 = pressed
	case "pb3":
		p.buttons.PB3 = pressed
	default:
		return fmt.Errorf("%w %q", ErrUnknownButton, name)
	}
	return nil
}
