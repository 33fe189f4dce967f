// internal/discovery/serial/vendors.go
package serial

import "strings"

// knownVendors maps USB vendor ids of common USB-to-serial bridges and
// microcontroller boards to their vendor names
var knownVendors = map[string]string{
	"0403": "FTDI",
	"067B": "Prolific Technology",
	"10C4": "Silicon Labs",
	"1A86": "QinHeng Electronics (WCH)",
	"2341": "Arduino",
	"2A03": "Arduino",
	"239A": "Adafruit",
	"0483": "STMicroelectronics",
	"303A": "Espressif Systems",
	"2E8A": "Raspberry Pi",
	"1366": "SEGGER",
	"0D28": "ARM DAPLink",
}

// LookupVendor returns the vendor name for a USB vendor id, or "" when the
// vendor is not known
func LookupVendor(vid string) string {
	return knownVendors[strings.ToUpper(vid)]
}
