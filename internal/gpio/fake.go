package gpio

import (
	"errors"
	"sync"
)

// FakeReader is a test double that returns scripted button values.
type FakeReader struct {
	// Samples contains scripted values to return.
	// Each call to Read() consumes the next sample.
	Samples []Sample

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Sample) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (Sample, error) {
	if f.ReadError != nil {
		return Sample{}, f.ReadError
	}

	if len(f.Samples) == 0 {
		return Sample{}, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Append adds samples to the end of the script.
func (f *FakeReader) Append(samples ...Sample) {
	f.Samples = append(f.Samples, samples...)
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}

// FakeOutput records the level written to it. Safe for concurrent use.
type FakeOutput struct {
	mu     sync.Mutex
	on     bool
	writes int

	// SetError, if set, will be returned by Set.
	SetError error
}

// Set records the level.
func (f *FakeOutput) Set(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	f.on = on
	f.writes++
	return nil
}

// On returns the last level written.
func (f *FakeOutput) On() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on
}

// Writes returns the number of successful writes.
func (f *FakeOutput) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

// FakeAnalog returns a settable potentiometer value. Safe for concurrent use.
type FakeAnalog struct {
	mu    sync.Mutex
	value uint16

	// ReadError, if set, will be returned by ReadAnalog.
	ReadError error
}

// NewFakeAnalog creates a FakeAnalog returning value.
func NewFakeAnalog(value uint16) *FakeAnalog {
	return &FakeAnalog{value: value}
}

// ReadAnalog returns the current value.
func (f *FakeAnalog) ReadAnalog() (uint16, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	return f.value, nil
}

// SetValue changes the value returned by later reads, clamped to 10 bits.
func (f *FakeAnalog) SetValue(v uint16) {
	if v > AnalogMax {
		v = AnalogMax
	}
	f.mu.Lock()
	f.value = v
	f.mu.Unlock()
}
