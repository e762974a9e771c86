package logic

import "golang.org/x/exp/constraints"

// ADCMax is the largest value returned by the 10-bit analog channel.
const ADCMax = 1023

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DutyFromADC maps a 10-bit reading onto [0, period] duty ticks.
func DutyFromADC(adc uint16, period uint8) uint8 {
	duty := uint32(adc) * uint32(period) / ADCMax
	return uint8(Clamp(duty, 0, uint32(period)))
}

// DisplayMode holds the console and indicator presentation flags.
type DisplayMode struct {
	ExtendedInfo   bool
	BlinkIndicator bool
	BlinkPhase     bool
}

// DefaultDisplayMode is the mode a countdown session starts in.
func DefaultDisplayMode() DisplayMode {
	return DisplayMode{BlinkIndicator: true, BlinkPhase: true}
}

// ToggleExtended flips extended status output.
func (m *DisplayMode) ToggleExtended() {
	m.ExtendedInfo = !m.ExtendedInfo
}

// ToggleBlink flips between blinking and solid indicator.
func (m *DisplayMode) ToggleBlink() {
	m.BlinkIndicator = !m.BlinkIndicator
}

// IndicatorName is the console label of the indicator mode.
func (m DisplayMode) IndicatorName() string {
	if m.BlinkIndicator {
		return "BLINK"
	}
	return "SOLID"
}

// Target returns the duty target for a brightness, honouring blink mode and phase.
func (m DisplayMode) Target(duty uint8) uint8 {
	if m.BlinkIndicator && !m.BlinkPhase {
		return 0
	}
	return duty
}
