//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

const consumer = "countdown-timer"

// RealReader reads the buttons from actual hardware using Linux GPIO character device.
type RealReader struct {
	chip    *gpiocdev.Chip
	buttons *gpiocdev.Lines
	vals    []int
}

// NewRealReader creates a button reader on the given chip (e.g. "gpiochip0").
func NewRealReader(chipName string, pins Pins) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// Buttons short the line to ground, so request internal pull-ups.
	offsets := []int{pins.PB1, pins.PB2, pins.PB3}
	lines, err := chip.RequestLines(offsets, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pins %v: %w", offsets, err)
	}

	return &RealReader{
		chip:    chip,
		buttons: lines,
		vals:    make([]int, len(offsets)),
	}, nil
}

// Read returns the logical button states.
// Inverts raw GPIO: raw 0 = pressed, raw 1 = released.
func (r *RealReader) Read() (Sample, error) {
	if err := r.buttons.Values(r.vals); err != nil {
		return Sample{}, fmt.Errorf("read button pins: %w", err)
	}
	return Sample{
		PB1: inverted(r.vals[0]),
		PB2: inverted(r.vals[1]),
		PB3: inverted(r.vals[2]),
	}, nil
}

// Close releases GPIO resources.
func (r *RealReader) Close() error {
	var errs []error
	if r.buttons != nil {
		if err := r.buttons.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pins: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealOutput drives one LED line.
type RealOutput struct {
	line *gpiocdev.Line
}

// NewRealOutput requests offset on chipName as an output, initially off.
func NewRealOutput(chipName string, offset int) (*RealOutput, error) {
	line, err := gpiocdev.RequestLine(chipName, offset, gpiocdev.AsOutput(0), gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", offset, err)
	}
	return &RealOutput{line: line}, nil
}

// Set drives the line high when on.
func (o *RealOutput) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := o.line.SetValue(v); err != nil {
		return fmt.Errorf("set output: %w", err)
	}
	return nil
}

// Close turns the LED off and releases the line. Reconfiguring to input
// leaves the pin in its boot default state.
func (o *RealOutput) Close() error {
	var errs []error
	if err := o.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("clear output: %w", err))
	}
	if err := o.line.Reconfigure(gpiocdev.AsInput); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure output: %w", err))
	}
	if err := o.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close output: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
