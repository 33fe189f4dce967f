package protocol_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"device-configurator/internal/model"
	"device-configurator/internal/protocol"
	"device-configurator/internal/protocol/protocoltest"
)

func TestParseSignature(t *testing.T) {
	tests := []struct {
		name string
		line string
		want model.DeviceIdentity
	}{
		{"plain", "[BM<24M>V4]", model.DeviceIdentity{Product: "BM", Model: "24M", Version: 4}},
		{"with junk", "Boros firmware [BM<24M>V4] build 17", model.DeviceIdentity{Product: "BM", Model: "24M", Version: 4}},
		{"multi digit version", "x[AB<C>V12]y", model.DeviceIdentity{Product: "AB", Model: "C", Version: 12}},
		{"version overflow falls back", "[BM<24M>V99999999999999999999]", model.DeviceIdentity{Product: "BM", Model: "24M", Version: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := protocol.ParseSignature(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSignatureRejectsUnknownLines(t *testing.T) {
	for _, line := range []string{"", "[OK]", "BM<24M>V4", "[BM 24M V4]", "[BM<24M>Vx]"} {
		_, err := protocol.ParseSignature(line)
		assert.ErrorIs(t, err, model.ErrProtocol, line)
	}
}

func TestQueryIdentity(t *testing.T) {
	dev := protocoltest.NewDevice("fake0", bootText).On("ver", "Boros [BM<24M>V4]\n[OK]")
	ch := connected(t, dev)

	id, err := protocol.QueryIdentity(context.Background(), ch)
	require.NoError(t, err)
	assert.Equal(t, model.DeviceIdentity{Product: "BM", Model: "24M", Version: 4}, id)
	assert.Equal(t, []string{"ver"}, dev.Writes())
}

func TestQueryIdentityFailsWithoutSentinel(t *testing.T) {
	dev := protocoltest.NewDevice("fake0", bootText).On("ver", "Boros [BM<24M>V4]")
	ch := connected(t, dev)

	_, err := protocol.QueryIdentity(context.Background(), ch)
	assert.ErrorIs(t, err, model.ErrProtocol)
}

func TestQueryIdentityFailsOnGarbage(t *testing.T) {
	dev := protocoltest.NewDevice("fake0", bootText).On("ver", "hello\n[OK]")
	ch := connected(t, dev)

	_, err := protocol.QueryIdentity(context.Background(), ch)
	assert.ErrorIs(t, err, model.ErrProtocol)
}
