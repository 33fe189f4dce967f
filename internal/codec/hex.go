// internal/codec/hex.go
package codec

import (
	"fmt"

	"device-configurator/internal/model"
)

// HexItem holds a string of hex digit pairs of at most maxLen bytes. When
// lsb is set the device stores the bytes least-significant first, so the
// byte order is swapped between the display and the wire.
type HexItem struct {
	id      string
	caption string
	value   string
	maxLen  int
	lsb     bool
}

// NewHexItem creates a hex item. value is in display order.
func NewHexItem(id, caption, value string, maxLen int, lsb bool) *HexItem {
	return &HexItem{id: id, caption: caption, value: value, maxLen: maxLen, lsb: lsb}
}

func (h *HexItem) ID() string           { return h.id }
func (h *HexItem) Caption() string      { return h.caption }
func (h *HexItem) Kind() model.ItemKind { return model.ItemKindHex }
func (h *HexItem) Value() any           { return h.value }
func (h *HexItem) Hex() string          { return h.value }
func (h *HexItem) MaxLen() int          { return h.maxLen }
func (h *HexItem) LSB() bool            { return h.lsb }

func (h *HexItem) Validate() error {
	if !IsHex(h.value) {
		return fmt.Errorf("%w: %q is not an even-length hex string", model.ErrValidation, h.value)
	}
	if len(h.value)/2 > h.maxLen {
		return fmt.Errorf("%w: %d bytes exceeds maximum of %d", model.ErrValidation, len(h.value)/2, h.maxLen)
	}
	return nil
}

func (h *HexItem) Decode(wire string) {
	if h.lsb {
		h.value = ReverseByteGroups(wire)
		return
	}
	h.value = wire
}

func (h *HexItem) Encode() string {
	if h.lsb {
		return ReverseByteGroups(h.value)
	}
	return h.value
}

func (h *HexItem) SetValue(v any) error {
	s, err := asString(v)
	if err != nil {
		return err
	}
	h.value = s
	return nil
}

func (h *HexItem) View() model.ItemView {
	return model.ItemView{
		ID:      h.id,
		Caption: h.caption,
		Kind:    model.ItemKindHex,
		Value:   h.value,
		MaxLen:  h.maxLen,
		LSB:     h.lsb,
	}
}

func (h *HexItem) Clone() model.ConfigItem {
	c := *h
	return &c
}
