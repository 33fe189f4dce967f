// internal/codec/bytes.go
package codec

import "strings"

// ReverseByteGroups swaps the byte order of a hex string: the input is cut
// into 2-character groups from the left and the group order is reversed.
// An unpaired trailing character stays at the end, so the function is its
// own inverse for any input.
func ReverseByteGroups(s string) string {
	n := len(s) / 2
	var b strings.Builder
	b.Grow(len(s))
	for i := n - 1; i >= 0; i-- {
		b.WriteString(s[2*i : 2*i+2])
	}
	if len(s)%2 == 1 {
		b.WriteByte(s[len(s)-1])
	}
	return b.String()
}

// IsHex reports whether s is a non-empty, even-length string of hex digits.
func IsHex(s string) bool {
	if s == "" || len(s)%2 != 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return false
		}
	}
	return true
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
