// internal/protocol/channel.go
package protocol

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"device-configurator/internal/metrics"
	"device-configurator/internal/model"
)

const (
	// PromptByte ends every command turn of the device.
	PromptByte = '>'
	// SuccessLine marks a command the device accepted.
	SuccessLine = "[OK]"

	readChunkSize    = 256
	maxResponseBytes = 64 * 1024
)

// Response is the framed reply to one command. Lines keep the success
// sentinel; the echo and the prompt line are stripped.
type Response struct {
	OK    bool     `json:"ok"`
	Lines []string `json:"lines"`
}

// CommandSender issues one framed command.
type CommandSender interface {
	SendCommand(ctx context.Context, cmd string) (*Response, error)
}

// CommandChannel frames synchronous command/response exchanges on a
// LineTransport using the device prompt.
//
// The prompt latch is plain mutable state: a channel has a single owner and
// must not be used from several goroutines at once.
type CommandChannel struct {
	transport  LineTransport
	timing     Timing
	logger     *zap.Logger
	promptSeen bool
}

// NewCommandChannel creates a channel over transport.
func NewCommandChannel(transport LineTransport, timing Timing, logger *zap.Logger) *CommandChannel {
	return &CommandChannel{
		transport: transport,
		timing:    timing,
		logger:    logger.With(zap.String("component", "command-channel")),
	}
}

// IsReady reports whether a prompt was seen since the last exchange.
func (c *CommandChannel) IsReady() bool {
	return c.promptSeen
}

// Connect resets the device through the DTR line and waits for its boot
// prompt. A device that never prompts yields false without an error; an
// error is only returned for transport failures.
func (c *CommandChannel) Connect(ctx context.Context) (bool, error) {
	c.promptSeen = false

	if err := c.transport.SetReadTimeout(c.timing.ReadTimeout); err != nil {
		c.logger.Warn("Failed to set read timeout", zap.Error(err))
	}

	if err := sleep(ctx, c.timing.ResetPreDelay); err != nil {
		return false, err
	}
	if err := c.transport.SetDTR(true); err != nil {
		c.logger.Warn("Failed to assert reset line", zap.Error(err))
	}
	if err := sleep(ctx, c.timing.ResetPulse); err != nil {
		return false, err
	}
	if err := c.transport.SetDTR(false); err != nil {
		c.logger.Warn("Failed to release reset line", zap.Error(err))
	}
	if err := sleep(ctx, c.timing.ResetSettle); err != nil {
		return false, err
	}

	return c.waitPrompt(ctx)
}

// waitPrompt reads boot output until a line starts with the prompt byte.
// It gives up when the line goes quiet or BootWait elapses.
func (c *CommandChannel) waitPrompt(ctx context.Context) (bool, error) {
	marker := []byte{'\n', PromptByte}
	deadline := time.Now().Add(c.timing.BootWait)

	var boot []byte
	for {
		chunk, err := c.transport.Read(ctx, readChunkSize)
		if err != nil {
			return false, fmt.Errorf("%w: waiting for prompt: %v", model.ErrTransport, err)
		}
		if len(chunk) == 0 {
			c.logger.Info("Device went quiet without a prompt", zap.Int("boot_bytes", len(boot)))
			return false, nil
		}

		boot = append(boot, chunk...)
		if bytes.Contains(boot, marker) {
			c.promptSeen = true
			c.logger.Info("Device prompt detected", zap.Int("boot_bytes", len(boot)))
			return true, nil
		}

		if len(boot) > maxResponseBytes || time.Now().After(deadline) {
			c.logger.Warn("Boot output did not end with a prompt", zap.Int("boot_bytes", len(boot)))
			return false, nil
		}
	}
}

// SendCommand writes cmd and collects the device reply. It fails with
// ErrNotConnected, without touching the transport, unless a prompt was seen
// since the previous exchange.
//
// The reply is whatever arrived before the line went quiet: a device that
// is still transmitting when the read timeout expires yields a truncated
// response and no prompt, which leaves the channel not ready.
func (c *CommandChannel) SendCommand(ctx context.Context, cmd string) (*Response, error) {
	if !c.promptSeen {
		return nil, fmt.Errorf("%w: no prompt before %q", model.ErrNotConnected, cmd)
	}

	start := time.Now()
	resp, err := c.exchange(ctx, cmd)
	metrics.ObserveCommand(cmd, resp != nil && resp.OK, err, time.Since(start))
	return resp, err
}

func (c *CommandChannel) exchange(ctx context.Context, cmd string) (*Response, error) {
	if err := sleep(ctx, c.timing.PreCommand); err != nil {
		return nil, err
	}

	c.promptSeen = false
	if err := c.transport.Write(ctx, []byte(cmd+"\n")); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrTransport, err)
	}

	// Once the command is on the wire the reply may still be in flight, so
	// an abort from here on leaves the line in an unknown state.
	if err := sleep(ctx, c.timing.PostCommand); err != nil {
		return nil, fmt.Errorf("%w: aborted after %q: %w", model.ErrTransport, cmd, err)
	}

	raw, err := c.drain(ctx)
	if err != nil {
		return nil, err
	}

	lines, promptSeen := frameLines(raw, cmd)
	c.promptSeen = promptSeen

	resp := &Response{Lines: lines}
	for _, line := range lines {
		if line == SuccessLine {
			resp.OK = true
			break
		}
	}

	c.logger.Debug("Command exchanged",
		zap.String("command", cmd),
		zap.Bool("ok", resp.OK),
		zap.Bool("prompt", promptSeen),
		zap.Strings("lines", lines),
	)
	return resp, nil
}

// drain reads until the transport returns no data.
func (c *CommandChannel) drain(ctx context.Context) ([]byte, error) {
	var buf []byte
	for len(buf) < maxResponseBytes {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: reply aborted: %w", model.ErrTransport, err)
		}
		chunk, err := c.transport.Read(ctx, readChunkSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrTransport, err)
		}
		if len(chunk) == 0 {
			break
		}
		buf = append(buf, chunk...)
	}
	return buf, nil
}

// frameLines splits a raw reply into trimmed, non-empty lines. The first
// echo of cmd and the first prompt line are removed; the second result
// reports whether the prompt was present.
func frameLines(raw []byte, cmd string) ([]string, bool) {
	prompt := string(PromptByte)
	echoSeen, promptSeen := false, false

	lines := make([]string, 0, 8)
	for _, part := range strings.Split(string(raw), "\n") {
		line := strings.TrimSpace(part)
		switch {
		case line == "":
			continue
		case line == cmd && !echoSeen:
			echoSeen = true
			continue
		case line == prompt && !promptSeen:
			promptSeen = true
			continue
		}
		lines = append(lines, line)
	}
	return lines, promptSeen
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
