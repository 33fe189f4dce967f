// internal/codec/yaml.go
package codec

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"device-configurator/internal/model"
)

// ItemNode decodes one entry of a specification item list. Entries are
// single-key mappings naming the kind, e.g.
//
//	- Int: { id: cha, caption: Channel, val: 76, vmin: 1, vmax: 126 }
type ItemNode struct {
	Item model.ConfigItem
}

type intSpec struct {
	ID      string `yaml:"id"`
	Caption string `yaml:"caption"`
	Val     int    `yaml:"val"`
	VMin    int    `yaml:"vmin"`
	VMax    int    `yaml:"vmax"`
}

type hexSpec struct {
	ID      string `yaml:"id"`
	Caption string `yaml:"caption"`
	Val     string `yaml:"val"`
	MaxLen  int    `yaml:"maxlen"`
	LSB     bool   `yaml:"lsb"`
}

type textSpec struct {
	ID      string `yaml:"id"`
	Caption string `yaml:"caption"`
	Val     string `yaml:"val"`
	MaxLen  int    `yaml:"maxlen"`
}

type choiceSpec struct {
	ID      string               `yaml:"id"`
	Caption string               `yaml:"caption"`
	Val     int                  `yaml:"val"`
	Values  []model.ChoiceOption `yaml:"values"`
}

type checkSpec struct {
	ID      string `yaml:"id"`
	Caption string `yaml:"caption"`
	Val     bool   `yaml:"val"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *ItemNode) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode || len(value.Content) != 2 {
		return fmt.Errorf("line %d: item must be a single-key mapping naming its kind", value.Line)
	}

	kind, body := value.Content[0].Value, value.Content[1]
	switch kind {
	case "Int":
		var s intSpec
		if err := body.Decode(&s); err != nil {
			return fmt.Errorf("line %d: %w", body.Line, err)
		}
		n.Item = NewIntItem(s.ID, s.Caption, s.Val, s.VMin, s.VMax)
	case "Hex":
		var s hexSpec
		if err := body.Decode(&s); err != nil {
			return fmt.Errorf("line %d: %w", body.Line, err)
		}
		n.Item = NewHexItem(s.ID, s.Caption, s.Val, s.MaxLen, s.LSB)
	case "Text":
		var s textSpec
		if err := body.Decode(&s); err != nil {
			return fmt.Errorf("line %d: %w", body.Line, err)
		}
		n.Item = NewTextItem(s.ID, s.Caption, s.Val, s.MaxLen)
	case "Choice":
		var s choiceSpec
		if err := body.Decode(&s); err != nil {
			return fmt.Errorf("line %d: %w", body.Line, err)
		}
		if s.Val < 0 || s.Val >= len(s.Values) {
			return fmt.Errorf("line %d: choice %q default index %d out of range", body.Line, s.ID, s.Val)
		}
		n.Item = NewChoiceItem(s.ID, s.Caption, s.Val, s.Values)
	case "Check":
		var s checkSpec
		if err := body.Decode(&s); err != nil {
			return fmt.Errorf("line %d: %w", body.Line, err)
		}
		n.Item = NewCheckItem(s.ID, s.Caption, s.Val)
	default:
		return fmt.Errorf("line %d: unknown item kind %q", value.Line, kind)
	}

	if n.Item.ID() == "" {
		return fmt.Errorf("line %d: %s item without id", value.Line, kind)
	}
	return nil
}
