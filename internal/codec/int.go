// internal/codec/int.go
package codec

import (
	"strconv"

	"device-configurator/internal/model"
)

// IntItem is a signed integer field with an inclusive [min, max] bound.
// The bound is advisory: values are sent to the device unchecked.
type IntItem struct {
	id      string
	caption string
	value   int
	vmin    int
	vmax    int
}

// NewIntItem creates an integer item.
func NewIntItem(id, caption string, value, vmin, vmax int) *IntItem {
	return &IntItem{id: id, caption: caption, value: value, vmin: vmin, vmax: vmax}
}

func (i *IntItem) ID() string           { return i.id }
func (i *IntItem) Caption() string      { return i.caption }
func (i *IntItem) Kind() model.ItemKind { return model.ItemKindInt }
func (i *IntItem) Value() any           { return i.value }
func (i *IntItem) Int() int             { return i.value }
func (i *IntItem) Bounds() (int, int)   { return i.vmin, i.vmax }

// InRange reports whether the value lies within the declared bound.
func (i *IntItem) InRange() bool {
	return i.value >= i.vmin && i.value <= i.vmax
}

// Validate always succeeds; out-of-range integers are passed through.
func (i *IntItem) Validate() error {
	return nil
}

// Decode keeps the previous value when the wire text is not an integer.
func (i *IntItem) Decode(wire string) {
	if v, err := strconv.Atoi(wire); err == nil {
		i.value = v
	}
}

func (i *IntItem) Encode() string {
	return strconv.Itoa(i.value)
}

func (i *IntItem) SetValue(v any) error {
	n, err := asInt(v)
	if err != nil {
		return err
	}
	i.value = n
	return nil
}

func (i *IntItem) View() model.ItemView {
	vmin, vmax := i.vmin, i.vmax
	return model.ItemView{
		ID:      i.id,
		Caption: i.caption,
		Kind:    model.ItemKindInt,
		Value:   i.value,
		Min:     &vmin,
		Max:     &vmax,
	}
}

func (i *IntItem) Clone() model.ConfigItem {
	c := *i
	return &c
}
