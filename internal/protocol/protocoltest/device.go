// Package protocoltest provides a scripted in-memory device for testing code
// that drives a protocol.Port.
package protocoltest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"device-configurator/internal/protocol"
)

// ErrClosed is returned by I/O on a closed device.
var ErrClosed = errors.New("protocoltest: device closed")

// Device emulates a prompt-driven sensor on the far end of a serial link.
// Replies are queued when a command is written and handed out by Read in
// chunks, which returns nothing once the queue is empty.
type Device struct {
	mu sync.Mutex

	name    string
	boot    string
	replies map[string]string
	raw     map[string]string
	// Fallback answers commands without a scripted reply.
	Fallback func(cmd string) string
	// WriteErr fails the write of matching commands.
	WriteErr func(cmd string) error
	// ReadErr, when set, is returned by every Read.
	ReadErr error

	pending []byte
	writes  []string
	dtr     []bool
	open    bool
	stats   protocol.TransportStats
}

// NewDevice creates a device that prints boot after a reset pulse. A boot
// text without a trailing prompt models a device that never gets ready.
func NewDevice(name, boot string) *Device {
	return &Device{
		name:    name,
		boot:    boot,
		replies: make(map[string]string),
		raw:     make(map[string]string),
		open:    true,
	}
}

// On scripts the reply body of cmd. The device echoes the command and ends
// the reply with its prompt.
func (d *Device) On(cmd, body string) *Device {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.replies[cmd] = body
	return d
}

// OnRaw scripts the exact bytes returned for cmd.
func (d *Device) OnRaw(cmd, raw string) *Device {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.raw[cmd] = raw
	return d
}

// Writes returns the commands written so far, without line terminators.
func (d *Device) Writes() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.writes))
	copy(out, d.writes)
	return out
}

// DTR returns the sequence of DTR levels set.
func (d *Device) DTR() []bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]bool, len(d.dtr))
	copy(out, d.dtr)
	return out
}

// Stats reports the traffic seen so far.
func (d *Device) Stats() protocol.TransportStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	stats := d.stats
	stats.IsConnected = d.open
	return stats
}

func (d *Device) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = true
	return nil
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
	return nil
}

func (d *Device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *Device) PortName() string {
	return d.name
}

func (d *Device) Write(ctx context.Context, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return ErrClosed
	}

	cmd := strings.TrimRight(string(data), "\r\n")
	d.writes = append(d.writes, cmd)
	d.stats.BytesWritten += int64(len(data))
	d.stats.OperationCount++

	if d.WriteErr != nil {
		if err := d.WriteErr(cmd); err != nil {
			return err
		}
	}

	if raw, ok := d.raw[cmd]; ok {
		d.pending = append(d.pending, raw...)
		return nil
	}

	body, ok := d.replies[cmd]
	if !ok {
		if d.Fallback == nil {
			body = "ERR"
		} else {
			body = d.Fallback(cmd)
		}
	}

	reply := cmd + "\r\n"
	if body != "" {
		reply += strings.ReplaceAll(body, "\n", "\r\n") + "\r\n"
	}
	reply += ">"
	d.pending = append(d.pending, reply...)
	return nil
}

func (d *Device) Read(ctx context.Context, maxBytes int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return nil, ErrClosed
	}
	if d.ReadErr != nil {
		d.stats.ErrorCount++
		return nil, d.ReadErr
	}

	n := len(d.pending)
	if n > maxBytes {
		n = maxBytes
	}
	out := make([]byte, n)
	copy(out, d.pending[:n])
	d.pending = d.pending[n:]
	d.stats.BytesRead += int64(n)
	d.stats.OperationCount++
	return out, nil
}

// SetDTR records the level; releasing the line after asserting it reboots
// the device, which discards pending output and prints the boot text.
func (d *Device) SetDTR(dtr bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return ErrClosed
	}

	if !dtr && len(d.dtr) > 0 && d.dtr[len(d.dtr)-1] {
		d.pending = append([]byte(nil), d.boot...)
	}
	d.dtr = append(d.dtr, dtr)
	return nil
}

func (d *Device) SetReadTimeout(timeout time.Duration) error {
	return nil
}
