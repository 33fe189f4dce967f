// internal/discovery/serial/scanner.go
package serial

import (
	"context"
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"device-configurator/internal/discovery"
)

// ScannerType is the type name of the serial scanner
const ScannerType = "serial"

// listPorts is replaced in tests
var listPorts = enumerator.GetDetailedPortsList

// Scanner lists the serial ports of the host
type Scanner struct {
	logger *zap.Logger
}

// NewScanner creates a new serial scanner
func NewScanner(logger *zap.Logger) *Scanner {
	return &Scanner{
		logger: logger.With(zap.String("scanner", ScannerType)),
	}
}

// GetScannerType returns scanner type
func (s *Scanner) GetScannerType() string {
	return ScannerType
}

// IsAvailable checks if serial scanning is available
func (s *Scanner) IsAvailable() bool {
	return true
}

// Scan enumerates serial ports with their USB details when known
func (s *Scanner) Scan(ctx context.Context) ([]*discovery.DiscoveredPort, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	details, err := listPorts()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	ports := make([]*discovery.DiscoveredPort, 0, len(details))
	for _, d := range details {
		port := &discovery.DiscoveredPort{
			Name:        d.Name,
			Type:        ScannerType,
			IsUSB:       d.IsUSB,
			Description: Describe(d),
		}
		if d.IsUSB {
			port.VendorID = strings.ToUpper(d.VID)
			port.ProductID = strings.ToUpper(d.PID)
			port.SerialNumber = d.SerialNumber
			port.Product = d.Product
			port.Vendor = LookupVendor(d.VID)
		}
		ports = append(ports, port)

		s.logger.Debug("Serial port found",
			zap.String("port", d.Name),
			zap.Bool("usb", d.IsUSB),
			zap.String("vid", d.VID),
			zap.String("pid", d.PID),
		)
	}
	return ports, nil
}

// Describe renders the port interface the way the port selector shows it
func Describe(d *enumerator.PortDetails) string {
	if d == nil || !d.IsUSB {
		return "Unknown interface"
	}
	return fmt.Sprintf("USB Vendor:%s,Product:%s", strings.ToUpper(d.VID), strings.ToUpper(d.PID))
}
