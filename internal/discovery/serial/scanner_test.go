package serial

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"
)

func stubPorts(t *testing.T, ports []*enumerator.PortDetails, err error) {
	t.Helper()
	orig := listPorts
	listPorts = func() ([]*enumerator.PortDetails, error) { return ports, err }
	t.Cleanup(func() { listPorts = orig })
}

func TestScanReportsUSBDetails(t *testing.T) {
	stubPorts(t, []*enumerator.PortDetails{
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001", SerialNumber: "A123", Product: "FT232R"},
		{Name: "/dev/ttyS0"},
	}, nil)

	ports, err := NewScanner(zap.NewNop()).Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, ports, 2)

	usb := ports[0]
	assert.Equal(t, "/dev/ttyUSB0", usb.Name)
	assert.True(t, usb.IsUSB)
	assert.Equal(t, "FTDI", usb.Vendor)
	assert.Equal(t, "6001", usb.ProductID)
	assert.Equal(t, "USB Vendor:0403,Product:6001", usb.Description)

	plain := ports[1]
	assert.False(t, plain.IsUSB)
	assert.Empty(t, plain.VendorID)
	assert.Equal(t, "Unknown interface", plain.Description)
}

func TestScanEnumeratorFailure(t *testing.T) {
	stubPorts(t, nil, errors.New("no sysfs"))

	_, err := NewScanner(zap.NewNop()).Scan(context.Background())
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "USB Vendor:10C4,Product:EA60", Describe(&enumerator.PortDetails{IsUSB: true, VID: "10c4", PID: "ea60"}))
	assert.Equal(t, "Unknown interface", Describe(nil))
}

func TestLookupVendor(t *testing.T) {
	assert.Equal(t, "Silicon Labs", LookupVendor("10c4"))
	assert.Empty(t, LookupVendor("FFFF"))
}
