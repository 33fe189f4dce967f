// internal/codec/choice.go
package codec

import (
	"fmt"
	"strconv"

	"device-configurator/internal/model"
)

// ChoiceItem selects one entry of an ordered option list. The display value
// is the selected index; the wire carries the option's underlying value.
type ChoiceItem struct {
	id       string
	caption  string
	selected int
	def      int
	options  []model.ChoiceOption
}

// NewChoiceItem creates a choice item whose configured index is both the
// initial selection and the fallback for unknown wire values.
func NewChoiceItem(id, caption string, index int, options []model.ChoiceOption) *ChoiceItem {
	opts := make([]model.ChoiceOption, len(options))
	copy(opts, options)
	return &ChoiceItem{id: id, caption: caption, selected: index, def: index, options: opts}
}

func (c *ChoiceItem) ID() string                    { return c.id }
func (c *ChoiceItem) Caption() string               { return c.caption }
func (c *ChoiceItem) Kind() model.ItemKind          { return model.ItemKindChoice }
func (c *ChoiceItem) Value() any                    { return c.selected }
func (c *ChoiceItem) Selected() int                 { return c.selected }
func (c *ChoiceItem) DefaultIndex() int             { return c.def }
func (c *ChoiceItem) Options() []model.ChoiceOption { return c.options }

func (c *ChoiceItem) Validate() error {
	if c.selected < 0 || c.selected >= len(c.options) {
		return fmt.Errorf("%w: no option selected", model.ErrValidation)
	}
	return nil
}

// Decode selects the option whose underlying value matches the wire value,
// falling back to the configured default index.
func (c *ChoiceItem) Decode(wire string) {
	c.selected = c.def
	v, err := strconv.Atoi(wire)
	if err != nil {
		return
	}
	for i, o := range c.options {
		if o.Value == v {
			c.selected = i
			return
		}
	}
}

// Encode returns the underlying value of the selected option.
func (c *ChoiceItem) Encode() string {
	if c.selected < 0 || c.selected >= len(c.options) {
		return ""
	}
	return strconv.Itoa(c.options[c.selected].Value)
}

// SetValue selects an option by index.
func (c *ChoiceItem) SetValue(v any) error {
	idx, err := asInt(v)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(c.options) {
		return fmt.Errorf("%w: option index %d out of range", model.ErrValidation, idx)
	}
	c.selected = idx
	return nil
}

func (c *ChoiceItem) View() model.ItemView {
	return model.ItemView{
		ID:      c.id,
		Caption: c.caption,
		Kind:    model.ItemKindChoice,
		Value:   c.selected,
		Options: c.options,
	}
}

func (c *ChoiceItem) Clone() model.ConfigItem {
	cp := *c
	cp.options = make([]model.ChoiceOption, len(c.options))
	copy(cp.options, c.options)
	return &cp
}
