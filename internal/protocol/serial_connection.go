// internal/protocol/serial_connection.go
package protocol

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

// SerialConnection implements Port for serial links
type SerialConnection struct {
	config *SerialConfig
	port   serial.Port
	logger *zap.Logger
	mutex  sync.RWMutex
	isOpen bool
	stats  *TransportStats

	// inflight holds the result of a port read abandoned by a cancelled
	// caller. The next Read collects it instead of starting another one.
	inflight chan readResult
}

type readResult struct {
	data []byte
	err  error
}

// NewSerialConnection creates a new serial connection
func NewSerialConnection(config *SerialConfig, logger *zap.Logger) *SerialConnection {
	return &SerialConnection{
		config: config,
		logger: logger.With(
			zap.String("protocol", "serial"),
			zap.String("port", config.Port),
		),
		stats: &TransportStats{},
	}
}

// Open opens the serial connection
func (sc *SerialConnection) Open(ctx context.Context) error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if sc.isOpen {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	sc.logger.Info("Opening serial port",
		zap.Int("baud_rate", sc.config.BaudRate),
	)

	mode := &serial.Mode{
		BaudRate: sc.config.BaudRate,
		DataBits: sc.config.DataBits,
		StopBits: stopBits(sc.config.StopBits),
		Parity:   parity(sc.config.Parity),
	}

	port, err := serial.Open(sc.config.Port, mode)
	if err != nil {
		sc.logger.Error("Failed to open serial port", zap.Error(err))
		return fmt.Errorf("failed to open serial port: %w", err)
	}

	if err := port.SetReadTimeout(sc.config.Timeout); err != nil {
		port.Close()
		return fmt.Errorf("failed to set read timeout: %w", err)
	}

	sc.port = port
	sc.isOpen = true
	sc.stats.IsConnected = true
	sc.stats.LastActivity = time.Now()

	sc.logger.Info("Serial port opened successfully")
	return nil
}

// Close closes the serial connection
func (sc *SerialConnection) Close() error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if !sc.isOpen || sc.port == nil {
		return nil
	}

	if err := sc.port.Close(); err != nil {
		sc.logger.Error("Failed to close serial port", zap.Error(err))
		return fmt.Errorf("failed to close serial port: %w", err)
	}

	sc.port = nil
	sc.isOpen = false
	sc.inflight = nil
	sc.stats.IsConnected = false

	sc.logger.Info("Serial port closed successfully")
	return nil
}

// IsOpen returns whether the connection is open
func (sc *SerialConnection) IsOpen() bool {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.isOpen && sc.port != nil
}

// PortName returns the device path of the port
func (sc *SerialConnection) PortName() string {
	return sc.config.Port
}

// Write writes data to the serial port
func (sc *SerialConnection) Write(ctx context.Context, data []byte) error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if !sc.isOpen || sc.port == nil {
		return fmt.Errorf("serial port not open")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	startTime := time.Now()
	n, err := sc.port.Write(data)
	if err != nil {
		sc.stats.ErrorCount++
		sc.logger.Error("Serial write failed", zap.Error(err))
		return fmt.Errorf("failed to write to serial port: %w", err)
	}

	if n != len(data) {
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}

	sc.stats.BytesWritten += int64(len(data))
	sc.stats.OperationCount++
	sc.stats.LastActivity = time.Now()
	sc.updateAverageLatency(time.Since(startTime))

	sc.logger.Debug("Serial write completed",
		zap.Int("bytes", len(data)),
		zap.ByteString("data", data),
	)
	return nil
}

// Read reads whatever arrives before the read timeout expires. An empty
// result means the line stayed quiet. At most one port read runs at a time:
// a read left behind by a cancelled call is resumed by the next one, so
// maxBytes may not apply to its result.
func (sc *SerialConnection) Read(ctx context.Context, maxBytes int) ([]byte, error) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if !sc.isOpen || sc.port == nil {
		return nil, fmt.Errorf("serial port not open")
	}

	if sc.inflight == nil {
		sc.inflight = startRead(sc.port, maxBytes)
	}

	select {
	case result := <-sc.inflight:
		sc.inflight = nil
		if result.err != nil {
			sc.stats.ErrorCount++
			return nil, result.err
		}

		sc.stats.BytesRead += int64(len(result.data))
		sc.stats.OperationCount++
		sc.stats.LastActivity = time.Now()

		return result.data, nil

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func startRead(port serial.Port, maxBytes int) chan readResult {
	done := make(chan readResult, 1)
	go func() {
		buffer := make([]byte, maxBytes)
		n, err := port.Read(buffer)

		var result readResult
		if err != nil && err != io.EOF {
			result.err = fmt.Errorf("failed to read from serial port: %w", err)
		} else {
			result.data = buffer[:n]
		}
		done <- result
	}()
	return done
}

// SetDTR drives the DTR line, which resets the sensor board
func (sc *SerialConnection) SetDTR(dtr bool) error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if !sc.isOpen || sc.port == nil {
		return fmt.Errorf("serial port not open")
	}

	if err := sc.port.SetDTR(dtr); err != nil {
		sc.stats.ErrorCount++
		return fmt.Errorf("failed to set DTR: %w", err)
	}

	sc.logger.Debug("DTR changed", zap.Bool("dtr", dtr))
	return nil
}

// SetReadTimeout changes the read timeout of the open port
func (sc *SerialConnection) SetReadTimeout(timeout time.Duration) error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	sc.config.Timeout = timeout
	if !sc.isOpen || sc.port == nil {
		return nil
	}

	if err := sc.port.SetReadTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set read timeout: %w", err)
	}
	return nil
}

// Stats returns a copy of the link statistics
func (sc *SerialConnection) Stats() TransportStats {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return *sc.stats
}

// updateAverageLatency updates the running average latency
func (sc *SerialConnection) updateAverageLatency(newLatency time.Duration) {
	if sc.stats.AverageLatency == 0 {
		sc.stats.AverageLatency = newLatency
	} else {
		sc.stats.AverageLatency = (sc.stats.AverageLatency + newLatency) / 2
	}
}

func parity(name string) serial.Parity {
	switch name {
	case "odd":
		return serial.OddParity
	case "even":
		return serial.EvenParity
	case "mark":
		return serial.MarkParity
	case "space":
		return serial.SpaceParity
	default:
		return serial.NoParity
	}
}

func stopBits(n int) serial.StopBits {
	if n == 2 {
		return serial.TwoStopBits
	}
	return serial.OneStopBit
}
