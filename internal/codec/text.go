// internal/codec/text.go
package codec

import (
	"fmt"
	"unicode/utf8"

	"device-configurator/internal/model"
)

// TextItem is a free text field of at most maxLen characters.
type TextItem struct {
	id      string
	caption string
	value   string
	maxLen  int
}

// NewTextItem creates a text item.
func NewTextItem(id, caption, value string, maxLen int) *TextItem {
	return &TextItem{id: id, caption: caption, value: value, maxLen: maxLen}
}

func (t *TextItem) ID() string           { return t.id }
func (t *TextItem) Caption() string      { return t.caption }
func (t *TextItem) Kind() model.ItemKind { return model.ItemKindText }
func (t *TextItem) Value() any           { return t.value }
func (t *TextItem) Text() string         { return t.value }
func (t *TextItem) MaxLen() int          { return t.maxLen }

func (t *TextItem) Validate() error {
	if n := utf8.RuneCountInString(t.value); n > t.maxLen {
		return fmt.Errorf("%w: %d characters exceeds maximum of %d", model.ErrValidation, n, t.maxLen)
	}
	return nil
}

func (t *TextItem) Decode(wire string) {
	t.value = wire
}

func (t *TextItem) Encode() string {
	return t.value
}

func (t *TextItem) SetValue(v any) error {
	s, err := asString(v)
	if err != nil {
		return err
	}
	t.value = s
	return nil
}

func (t *TextItem) View() model.ItemView {
	return model.ItemView{
		ID:      t.id,
		Caption: t.caption,
		Kind:    model.ItemKindText,
		Value:   t.value,
		MaxLen:  t.maxLen,
	}
}

func (t *TextItem) Clone() model.ConfigItem {
	c := *t
	return &c
}
