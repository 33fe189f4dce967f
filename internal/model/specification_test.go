package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"device-configurator/internal/codec"
	"device-configurator/internal/model"
)

func newSpec() *model.DeviceSpecification {
	return &model.DeviceSpecification{
		Signature: model.DeviceIdentity{Product: "BM", Model: "24M", Version: 4},
		Title:     "test sensor",
		Sections: []model.Section{
			{Name: "General", Items: []model.ConfigItem{
				codec.NewIntItem("id", "Device ID", 1, 0, 65535),
				codec.NewCheckItem("led", "LED", false),
			}},
			{Name: "Radio", Items: []model.ConfigItem{
				codec.NewIntItem("cha", "Channel", 76, 1, 126),
				codec.NewIntItem("id", "Shadowed", 9, 0, 9),
			}},
		},
	}
}

func TestSpecSetResolve(t *testing.T) {
	set := model.NewSpecSet([]*model.DeviceSpecification{newSpec()})

	idx, ok := set.Resolve(model.DeviceIdentity{Product: "BM", Model: "24M", Version: 4})
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = set.Resolve(model.DeviceIdentity{Product: "BM", Model: "24M", Version: 3})
	assert.False(t, ok)
	assert.Equal(t, -1, idx)

	assert.Equal(t, 1, set.Len())
	assert.Equal(t, []model.DeviceIdentity{{Product: "BM", Model: "24M", Version: 4}}, set.Signatures())
}

func TestSpecificationFindReturnsFirstMatch(t *testing.T) {
	spec := newSpec()

	item, section, ok := spec.Find("id")
	require.True(t, ok)
	assert.Equal(t, "Device ID", item.Caption())
	assert.Equal(t, "General", section.Name)

	_, _, ok = spec.Find("nope")
	assert.False(t, ok)
}

func TestSpecificationCloneIsIndependent(t *testing.T) {
	spec := newSpec()
	clone := spec.Clone()

	item, _, _ := clone.Find("cha")
	require.NoError(t, item.SetValue(12))

	orig, _, _ := spec.Find("cha")
	assert.Equal(t, 76, orig.Value())
	assert.Equal(t, 12, item.Value())
	assert.Equal(t, spec.Signature, clone.Signature)
}

func TestConfigSnapshotCapturesWireValues(t *testing.T) {
	spec := newSpec()
	snap := model.NewConfigSnapshot(model.SnapshotKindRead, "/dev/ttyUSB0", spec)

	assert.Equal(t, model.SnapshotKindRead, snap.Kind)
	assert.Equal(t, "BM", snap.Product)
	assert.Equal(t, 4, snap.Version)
	assert.Equal(t, "76", snap.Values["cha"])
	assert.Equal(t, "0", snap.Values["led"])
	assert.NotEmpty(t, snap.ID.String())
}
