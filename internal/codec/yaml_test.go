package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"device-configurator/internal/model"
)

func TestItemNodeDecodesEveryKind(t *testing.T) {
	doc := `
- Int: { id: cha, caption: Channel, val: 76, vmin: 1, vmax: 126 }
- Hex: { id: key, caption: Key, val: "00112233", maxlen: 16, lsb: true }
- Text: { id: tpl, caption: Template, val: "", maxlen: 32 }
- Choice:
    id: rat
    caption: Rate
    val: 1
    values:
      - { val: 0, desc: "Off" }
      - { val: 5, desc: "Slow" }
- Check: { id: led, caption: LED, val: true }
`
	var nodes []ItemNode
	require.NoError(t, yaml.Unmarshal([]byte(doc), &nodes))
	require.Len(t, nodes, 5)

	kinds := make([]model.ItemKind, len(nodes))
	for i, n := range nodes {
		kinds[i] = n.Item.Kind()
	}
	assert.Equal(t, []model.ItemKind{
		model.ItemKindInt, model.ItemKindHex, model.ItemKindText, model.ItemKindChoice, model.ItemKindCheck,
	}, kinds)

	hex := nodes[1].Item.(*HexItem)
	assert.True(t, hex.LSB())
	assert.Equal(t, 16, hex.MaxLen())

	choice := nodes[3].Item.(*ChoiceItem)
	assert.Equal(t, 1, choice.DefaultIndex())
	assert.Equal(t, "5", choice.Encode())
	assert.Equal(t, "Slow", choice.Options()[1].Description)
}

func TestItemNodeRejectsBadEntries(t *testing.T) {
	docs := map[string]string{
		"unknown kind":     `- Slider: { id: x }`,
		"missing id":       `- Int: { caption: Channel }`,
		"two keys":         `- { Int: { id: a }, Check: { id: b } }`,
		"choice out range": `- Choice: { id: rat, val: 2, values: [ { val: 0, desc: a } ] }`,
		"scalar":           `- just text`,
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			var nodes []ItemNode
			assert.Error(t, yaml.Unmarshal([]byte(doc), &nodes))
		})
	}
}
