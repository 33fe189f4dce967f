// internal/codec/check.go
package codec

import "device-configurator/internal/model"

// CheckItem is a boolean flag sent as "1" or "0".
type CheckItem struct {
	id      string
	caption string
	value   bool
}

// NewCheckItem creates a boolean item.
func NewCheckItem(id, caption string, value bool) *CheckItem {
	return &CheckItem{id: id, caption: caption, value: value}
}

func (b *CheckItem) ID() string           { return b.id }
func (b *CheckItem) Caption() string      { return b.caption }
func (b *CheckItem) Kind() model.ItemKind { return model.ItemKindCheck }
func (b *CheckItem) Value() any           { return b.value }
func (b *CheckItem) Checked() bool        { return b.value }
func (b *CheckItem) Validate() error      { return nil }

func (b *CheckItem) Decode(wire string) {
	b.value = wire == "1"
}

func (b *CheckItem) Encode() string {
	if b.value {
		return "1"
	}
	return "0"
}

func (b *CheckItem) SetValue(v any) error {
	checked, err := asBool(v)
	if err != nil {
		return err
	}
	b.value = checked
	return nil
}

func (b *CheckItem) View() model.ItemView {
	return model.ItemView{
		ID:      b.id,
		Caption: b.caption,
		Kind:    model.ItemKindCheck,
		Value:   b.value,
	}
}

func (b *CheckItem) Clone() model.ConfigItem {
	c := *b
	return &c
}
