// Package console provides the appliance's text console: a mutex-guarded
// output stream, a single pending-character command slot and a blocking
// line reader with echo.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// rxCapacity bounds the receive buffer; bytes arriving while it is full are dropped.
const rxCapacity = 64

// Interrupt is the byte a raw-mode terminal sends for Ctrl-C.
const Interrupt = 0x03

// LineLength is the size of the time entry buffer including its terminator,
// so at most LineLength-1 characters are kept.
const LineLength = 8

// Console is the appliance's text channel. Output is serialized by a mutex;
// every Print takes the lock once, writes, and releases it.
type Console struct {
	mu   sync.Mutex
	out  io.Writer
	echo bool

	rx chan byte

	onInterrupt func()
}

// New creates a Console writing to out. When echo is set, characters read by
// ReadLine are written back as they are received.
func New(out io.Writer, echo bool) *Console {
	return &Console{
		out:  out,
		echo: echo,
		rx:   make(chan byte, rxCapacity),
	}
}

// Print writes all parts as one uninterrupted block.
// Write errors are dropped; the console has no one to report them to.
func (c *Console) Print(parts ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range parts {
		io.WriteString(c.out, p)
	}
}

// Printf formats and writes as one block.
func (c *Console) Printf(format string, args ...any) {
	c.Print(fmt.Sprintf(format, args...))
}

// OnInterrupt registers f to be called by Listen when Ctrl-C arrives. Must be
// called before Listen.
func (c *Console) OnInterrupt(f func()) {
	c.onInterrupt = f
}

// Listen copies bytes from r into the receive buffer until r fails.
// It is the console's receive interrupt: it never waits for a consumer.
// Ctrl-C is handed to the OnInterrupt callback instead of being buffered.
func (c *Console) Listen(r io.Reader) error {
	br := bufio.NewReader(r)
	for {
		b, err := br.ReadByte()
		if err != nil {
			return err
		}
		if b == Interrupt && c.onInterrupt != nil {
			c.onInterrupt()
			continue
		}
		c.Receive(b)
	}
}

// Receive buffers one received byte, dropping it if the buffer is full.
func (c *Console) Receive(b byte) {
	select {
	case c.rx <- b:
	default:
	}
}

// Poll returns the pending command character, if any. Only the most recent
// character is kept; anything received before it is discarded. Line endings
// are never commands, so "i\r\n" from a line-buffered terminal yields 'i'.
func (c *Console) Poll() (byte, bool) {
	var (
		last byte
		ok   bool
	)
	for {
		select {
		case b := <-c.rx:
			if b == '\r' || b == '\n' {
				continue
			}
			last, ok = b, true
		default:
			return last, ok
		}
	}
}

// Discard drops everything received so far.
func (c *Console) Discard() {
	c.Poll()
}

// ReadLine blocks until a carriage return or newline is received and returns
// the characters before it. Callers Discard stale input before prompting.
// At most LineLength-1 characters are kept; extra characters are echoed but
// dropped. Backspace removes the last kept character.
func (c *Console) ReadLine(ctx context.Context) (string, error) {
	var sb strings.Builder
	for {
		var b byte
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case b = <-c.rx:
		}

		switch b {
		case '\r', '\n':
			return sb.String(), nil
		case '\b', 0x7f:
			if sb.Len() > 0 {
				s := sb.String()
				sb.Reset()
				sb.WriteString(s[:len(s)-1])
				c.echoBytes("\b \b")
			}
			continue
		}

		if sb.Len() < LineLength-1 {
			sb.WriteByte(b)
		}
		c.echoBytes(string(b))
	}
}

func (c *Console) echoBytes(s string) {
	if c.echo {
		c.Print(s)
	}
}
