// internal/protocol/timing.go
package protocol

import "time"

// Timing holds the fixed delays of the reset handshake and the command
// exchange. The device has no flow control or length framing, so these
// values were chosen empirically to exceed its processing latency.
type Timing struct {
	// ResetPreDelay is waited before the reset line is asserted.
	ResetPreDelay time.Duration
	// ResetPulse is how long the reset line is held.
	ResetPulse time.Duration
	// ResetSettle is waited after release before looking for the prompt.
	ResetSettle time.Duration
	// BootWait bounds the total time spent waiting for the boot prompt.
	BootWait time.Duration
	// PreCommand is waited before a command is written.
	PreCommand time.Duration
	// PostCommand is waited after a command is written, before draining.
	PostCommand time.Duration
	// ReadTimeout is the per-read timeout of the transport.
	ReadTimeout time.Duration
}

// Default timings for the Boros sensor family.
const (
	DefaultResetPreDelay = 500 * time.Millisecond
	DefaultResetPulse    = 100 * time.Millisecond
	DefaultResetSettle   = 1500 * time.Millisecond
	DefaultBootWait      = 10 * time.Second
	DefaultPreCommand    = 100 * time.Millisecond
	DefaultPostCommand   = 500 * time.Millisecond
	DefaultReadTimeout   = 2 * time.Second
)

// DefaultTiming returns the timings the sensor firmware was tuned for.
func DefaultTiming() Timing {
	return Timing{
		ResetPreDelay: DefaultResetPreDelay,
		ResetPulse:    DefaultResetPulse,
		ResetSettle:   DefaultResetSettle,
		BootWait:      DefaultBootWait,
		PreCommand:    DefaultPreCommand,
		PostCommand:   DefaultPostCommand,
		ReadTimeout:   DefaultReadTimeout,
	}
}
