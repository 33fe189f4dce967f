// internal/protocol/protocol.go
package protocol

import (
	"context"
	"time"
)

// LineTransport is the raw byte link to a device. It has no protocol
// knowledge: Read returns whatever arrived before the read timeout, which
// may be nothing.
type LineTransport interface {
	Write(ctx context.Context, data []byte) error
	Read(ctx context.Context, maxBytes int) ([]byte, error)

	// SetDTR drives the control line wired to the device reset.
	SetDTR(dtr bool) error
	SetReadTimeout(timeout time.Duration) error
}

// Port is a LineTransport with a connection lifecycle.
type Port interface {
	LineTransport

	Open(ctx context.Context) error
	Close() error
	IsOpen() bool
	PortName() string
}

// StatsReporter is implemented by ports that keep link statistics.
type StatsReporter interface {
	Stats() TransportStats
}

// TransportStats provides link-level statistics
type TransportStats struct {
	BytesWritten   int64         `json:"bytes_written"`
	BytesRead      int64         `json:"bytes_read"`
	OperationCount int64         `json:"operation_count"`
	ErrorCount     int64         `json:"error_count"`
	LastActivity   time.Time     `json:"last_activity"`
	AverageLatency time.Duration `json:"average_latency"`
	IsConnected    bool          `json:"is_connected"`
}
