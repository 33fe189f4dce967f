package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseConfigLine(t *testing.T) {
	id, value, ok := ParseConfigLine("[id] Device ID:42")
	assert.True(t, ok)
	assert.Equal(t, "id", id)
	assert.Equal(t, "42", value)

	id, value, ok = ParseConfigLine("[key]Network key (lsb):AABBCC")
	assert.True(t, ok)
	assert.Equal(t, "key", id)
	assert.Equal(t, "AABBCC", value)

	for _, line := range []string{"[OK]", "Device ID:42", "[id] Device ID:", ""} {
		_, _, ok := ParseConfigLine(line)
		assert.False(t, ok, line)
	}
}

func TestParseConfigLinesKeepsOrder(t *testing.T) {
	pairs := ParseConfigLines([]string{
		"[cha] Channel:76",
		"garbage",
		"[led] LED:1",
		"[OK]",
	})

	assert.Equal(t, []Pair{{ID: "cha", Value: "76"}, {ID: "led", Value: "1"}}, pairs)
}

func TestFormatCommand(t *testing.T) {
	assert.Equal(t, "cha 76", FormatCommand(NewIntItem("cha", "Channel", 76, 1, 126)))
	assert.Equal(t, "key CCBBAA", FormatCommand(NewHexItem("key", "Key", "AABBCC", 16, true)))
	assert.Equal(t, "tpl hello world", FormatCommand(NewTextItem("tpl", "Template", "hello world", 32)))
}
