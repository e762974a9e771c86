package logic

import "fmt"

// DefaultDuration is used when a time entry does not carry 2, 3 or 4 digits.
var DefaultDuration = Duration{Minutes: 0, Seconds: 10}

// Duration is the remaining countdown time. Seconds is always in [0, 59].
type Duration struct {
	Minutes uint16
	Seconds uint16
}

// IsZero reports whether both fields are zero.
func (d Duration) IsZero() bool {
	return d.Minutes == 0 && d.Seconds == 0
}

// Decrement removes one second, borrowing a minute when seconds are zero.
// Decrementing 00:00 leaves the value unchanged and returns done = true.
func (d *Duration) Decrement() (done bool) {
	if d.IsZero() {
		return true
	}
	if d.Seconds == 0 {
		d.Minutes--
		d.Seconds = 59
		return false
	}
	d.Seconds--
	return false
}

// String formats the duration as zero-padded MM:SS.
func (d Duration) String() string {
	return fmt.Sprintf("%02d:%02d", d.Minutes, d.Seconds)
}

// maxEntryDigits is the number of digits read from a time entry line.
const maxEntryDigits = 4

// ParseEntry extracts up to four decimal digits from line and interprets them
// as MMSS, MSS or SS. Any other digit count yields DefaultDuration. Seconds
// above 59 are clamped to 59 without carrying into minutes.
func ParseEntry(line string) Duration {
	var digits [maxEntryDigits]uint16
	n := 0
	for i := 0; i < len(line) && n < maxEntryDigits; i++ {
		c := line[i]
		if c >= '0' && c <= '9' {
			digits[n] = uint16(c - '0')
			n++
		}
	}

	var d Duration
	switch n {
	case 4:
		d.Minutes = digits[0]*10 + digits[1]
		d.Seconds = digits[2]*10 + digits[3]
	case 3:
		d.Minutes = digits[0]
		d.Seconds = digits[1]*10 + digits[2]
	case 2:
		d.Seconds = digits[0]*10 + digits[1]
	default:
		return DefaultDuration
	}
	d.Seconds = Clamp(d.Seconds, 0, 59)
	return d
}
