// Package gpio provides button, LED and potentiometer access with hardware abstraction.
// The real implementation uses Linux GPIO character device and IIO sysfs.
// The fake implementations allow testing without hardware.
package gpio

// Sample is a single reading of the three push buttons in logical form.
type Sample struct {
	PB1 bool // true = pressed
	PB2 bool
	PB3 bool
}

// Reader reads button states.
type Reader interface {
	// Read returns the logical button states.
	// The raw lines are pulled up and active low: raw 0 = pressed.
	Read() (Sample, error)

	// Close releases GPIO resources.
	Close() error
}

// Output drives a single digital output such as an LED.
type Output interface {
	Set(on bool) error
}

// Analog reads the potentiometer channel.
type Analog interface {
	// ReadAnalog blocks for one conversion and returns a value in [0, 1023].
	ReadAnalog() (uint16, error)
}

// Pin definitions (BCM numbering)
const (
	DefaultPinPB1  = 17
	DefaultPinPB2  = 27
	DefaultPinPB3  = 22
	DefaultPinLED0 = 5
	DefaultPinLED1 = 6
	DefaultPinLED2 = 13
)

// Pins selects the lines used by the appliance.
type Pins struct {
	PB1, PB2, PB3    int
	LED0, LED1, LED2 int
}

// DefaultPins returns the default wiring.
func DefaultPins() Pins {
	return Pins{
		PB1:  DefaultPinPB1,
		PB2:  DefaultPinPB2,
		PB3:  DefaultPinPB3,
		LED0: DefaultPinLED0,
		LED1: DefaultPinLED1,
		LED2: DefaultPinLED2,
	}
}

// inverted converts a raw pulled-up line value to its logical pressed state.
func inverted(raw int) bool {
	return raw == 0
}
