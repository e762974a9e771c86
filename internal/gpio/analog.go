package gpio

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// AnalogMax is the full-scale value of the potentiometer channel.
const AnalogMax = 1023

// DefaultIIOPath is the raw channel of the first IIO ADC.
const DefaultIIOPath = "/sys/bus/iio/devices/iio:device0/in_voltage0_raw"

// IIOAnalog reads the potentiometer through a Linux IIO sysfs raw attribute.
// Readings wider than 10 bits are scaled down by Shift.
type IIOAnalog struct {
	Path  string
	Shift uint
}

// NewIIOAnalog creates an IIOAnalog for path, scaling from bits resolution to 10 bits.
func NewIIOAnalog(path string, bits uint) (*IIOAnalog, error) {
	if bits < 10 || bits > 16 {
		return nil, fmt.Errorf("adc resolution %d bits: must be 10..16", bits)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open adc channel: %w", err)
	}
	return &IIOAnalog{Path: path, Shift: bits - 10}, nil
}

// ReadAnalog performs one conversion by reading the raw attribute.
func (a *IIOAnalog) ReadAnalog() (uint16, error) {
	b, err := os.ReadFile(a.Path)
	if err != nil {
		return 0, fmt.Errorf("read adc: %w", err)
	}
	return parseRaw(string(b), a.Shift)
}

func parseRaw(s string, shift uint) (uint16, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse adc value %q: %w", strings.TrimSpace(s), err)
	}
	if v < 0 {
		v = 0
	}
	v >>= shift
	if v > AnalogMax {
		v = AnalogMax
	}
	return uint16(v), nil
}
