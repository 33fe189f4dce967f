package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"device-configurator/internal/model"
)

func TestIntItem(t *testing.T) {
	item := NewIntItem("cha", "Channel", 76, 1, 126)

	assert.Equal(t, "76", item.Encode())
	assert.NoError(t, item.Validate())

	item.Decode("12")
	assert.Equal(t, 12, item.Int())

	item.Decode("twelve")
	assert.Equal(t, 12, item.Int(), "undecodable wire text keeps the previous value")

	require.NoError(t, item.SetValue(500))
	assert.False(t, item.InRange())
	assert.NoError(t, item.Validate(), "out of range values are still sent")
	assert.Equal(t, "500", item.Encode())

	require.NoError(t, item.SetValue(-3.0))
	assert.Equal(t, "-3", item.Encode())

	require.NoError(t, item.SetValue(json.Number("8")))
	assert.Equal(t, 8, item.Int())

	assert.ErrorIs(t, item.SetValue(1.5), model.ErrValidation)
	assert.ErrorIs(t, item.SetValue("abc"), model.ErrValidation)

	view := item.View()
	require.NotNil(t, view.Min)
	require.NotNil(t, view.Max)
	assert.Equal(t, 1, *view.Min)
	assert.Equal(t, 126, *view.Max)
}

func TestHexItemLSBRoundTrip(t *testing.T) {
	item := NewHexItem("key", "Key", "", 16, true)

	item.Decode("AABBCCDDEE")
	assert.Equal(t, "EEDDCCBBAA", item.Hex())
	assert.Equal(t, "AABBCCDDEE", item.Encode())
	assert.NoError(t, item.Validate())
}

func TestHexItemMSBPassesThrough(t *testing.T) {
	item := NewHexItem("net", "Network", "", 4, false)

	item.Decode("0102")
	assert.Equal(t, "0102", item.Hex())
	assert.Equal(t, "0102", item.Encode())
}

func TestHexItemValidate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		ok    bool
	}{
		{"valid", "A1B2", true},
		{"at limit", "00112233", true},
		{"empty", "", false},
		{"odd length", "ABC", false},
		{"not hex", "ZZ", false},
		{"too long", "0011223344", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := NewHexItem("net", "Network", tt.value, 4, false)
			err := item.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, model.ErrValidation)
			}
		})
	}
}

func TestTextItemCountsCharacters(t *testing.T) {
	item := NewTextItem("tpl", "Template", "", 4)

	require.NoError(t, item.SetValue("çğüş"))
	assert.NoError(t, item.Validate())

	require.NoError(t, item.SetValue("hello"))
	assert.ErrorIs(t, item.Validate(), model.ErrValidation)

	item.Decode("ab:cd")
	assert.Equal(t, "ab:cd", item.Encode())
}

func TestChoiceItem(t *testing.T) {
	options := []model.ChoiceOption{
		{Value: 0, Description: "Off"},
		{Value: 5, Description: "Slow"},
		{Value: 20, Description: "Fast"},
	}
	item := NewChoiceItem("rat", "Rate", 1, options)

	assert.Equal(t, "5", item.Encode(), "the wire carries the option value, not its index")

	item.Decode("20")
	assert.Equal(t, 2, item.Selected())
	assert.Equal(t, "20", item.Encode())

	item.Decode("7")
	assert.Equal(t, 1, item.Selected(), "unknown values fall back to the default index")

	item.Decode("x")
	assert.Equal(t, 1, item.Selected())

	require.NoError(t, item.SetValue(0))
	assert.Equal(t, "0", item.Encode())

	assert.ErrorIs(t, item.SetValue(3), model.ErrValidation)
	assert.Equal(t, 0, item.Selected())
}

func TestChoiceItemCloneIsIndependent(t *testing.T) {
	item := NewChoiceItem("rat", "Rate", 0, []model.ChoiceOption{{Value: 1}, {Value: 2}})
	clone := item.Clone().(*ChoiceItem)

	require.NoError(t, clone.SetValue(1))
	clone.Options()[0].Description = "changed"

	assert.Equal(t, 0, item.Selected())
	assert.Empty(t, item.Options()[0].Description)
}

func TestCheckItem(t *testing.T) {
	item := NewCheckItem("led", "LED", false)
	assert.Equal(t, "0", item.Encode())

	item.Decode("1")
	assert.True(t, item.Checked())
	assert.Equal(t, "1", item.Encode())

	item.Decode("yes")
	assert.False(t, item.Checked())

	require.NoError(t, item.SetValue("true"))
	assert.True(t, item.Checked())
	assert.ErrorIs(t, item.SetValue(1), model.ErrValidation)
}
