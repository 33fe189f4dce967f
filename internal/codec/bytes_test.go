package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReverseByteGroups(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"AB", "AB"},
		{"AABBCCDDEE", "EEDDCCBBAA"},
		{"0102", "0201"},
		{"ABC", "ABC"},
		{"AABBC", "BBAAC"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ReverseByteGroups(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, ReverseByteGroups(got))
		})
	}
}

func TestIsHex(t *testing.T) {
	assert.True(t, IsHex("00ff"))
	assert.True(t, IsHex("AbCd"))

	assert.False(t, IsHex(""))
	assert.False(t, IsHex("ABC"))
	assert.False(t, IsHex("GG"))
	assert.False(t, IsHex("0x00"))
	assert.False(t, IsHex("AA BB"))
}
