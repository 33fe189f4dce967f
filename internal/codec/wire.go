// internal/codec/wire.go
package codec

import (
	"regexp"

	"device-configurator/internal/model"
)

// configLinePattern matches "[<id>]<junk>:<value>" lines of a show reply.
var configLinePattern = regexp.MustCompile(`^\[(.+)\].*:(.+)`)

// ParseConfigLine extracts the id and wire value of a configuration line.
// Lines that do not match are reported with ok=false.
func ParseConfigLine(line string) (id, value string, ok bool) {
	m := configLinePattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// ParseConfigLines collects the (id, value) pairs of a show reply in order.
func ParseConfigLines(lines []string) []Pair {
	pairs := make([]Pair, 0, len(lines))
	for _, line := range lines {
		if id, value, ok := ParseConfigLine(line); ok {
			pairs = append(pairs, Pair{ID: id, Value: value})
		}
	}
	return pairs
}

// Pair is an (id, wire value) tuple read from the device.
type Pair struct {
	ID    string
	Value string
}

// FormatCommand builds the "<id> <wire-value>" write command for item.
func FormatCommand(item model.ConfigItem) string {
	return item.ID() + " " + item.Encode()
}
