package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"device-configurator/internal/catalog"
	"device-configurator/internal/model"
	"device-configurator/internal/protocol"
	"device-configurator/internal/protocol/protocoltest"
	"device-configurator/internal/repository"
)

const testCatalog = `
spec:
  - signature: { product: BM, model: 24M, version: 4 }
    title: Test sensor
    sections:
      - name: General
        items:
          - Int:   { id: a, caption: Alpha, val: 1, vmin: 0, vmax: 9 }
          - Hex:   { id: b, caption: Beta, val: "AABB", maxlen: 2, lsb: true }
          - Check: { id: c, caption: Gamma, val: false }
      - name: Radio
        items:
          - Choice: { id: rate, caption: Rate, val: 1, values: [ { val: 0, desc: Slow }, { val: 5, desc: Fast } ] }
`

const (
	testBoot      = "Boros Met\r\n>"
	testSignature = "Boros [BM<24M>V4]\n[OK]"
)

var testTiming = protocol.Timing{BootWait: time.Second}

func testSpecs(t *testing.T) *model.SpecSet {
	t.Helper()
	specs, err := catalog.Parse([]byte(testCatalog))
	require.NoError(t, err)
	return specs
}

func newTestDevice() *protocoltest.Device {
	dev := protocoltest.NewDevice("/dev/ttyFAKE0", testBoot).
		On("ver", testSignature).
		On("show", "[a] Alpha:7\n[b] Beta:DDCC\n[c] Gamma:1\n[rate] Rate:0\n[zz] Unknown:3\n[OK]")
	dev.Fallback = func(cmd string) string { return "[OK]" }
	return dev
}

type statusLog struct {
	entries []Status
}

func (l *statusLog) record(st Status) {
	l.entries = append(l.entries, st)
}

func (l *statusLog) messages() []string {
	out := make([]string, len(l.entries))
	for i, st := range l.entries {
		out[i] = st.Message
	}
	return out
}

func newTestSession(t *testing.T, dev *protocoltest.Device, opts ...SessionOption) *ConfigSession {
	t.Helper()
	channel := protocol.NewCommandChannel(dev, testTiming, zap.NewNop())
	return NewConfigSession(channel, testSpecs(t), dev.PortName(), zap.NewNop(), opts...)
}

func connectedSession(t *testing.T, dev *protocoltest.Device, opts ...SessionOption) *ConfigSession {
	t.Helper()
	s := newTestSession(t, dev, opts...)
	require.NoError(t, s.Connect(context.Background()))
	return s
}

func value(t *testing.T, s *ConfigSession, id string) any {
	t.Helper()
	item, _, ok := s.Specification().Find(id)
	require.True(t, ok, id)
	return item.Value()
}

func TestConnectSelectsSpecification(t *testing.T) {
	log := &statusLog{}
	dev := newTestDevice()
	s := newTestSession(t, dev, WithStatus(log.record))

	require.NoError(t, s.Connect(context.Background()))

	assert.Equal(t, model.DeviceIdentity{Product: "BM", Model: "24M", Version: 4}, s.Identity())
	require.NotNil(t, s.Specification())
	assert.Equal(t, "Test sensor", s.Specification().Title)
	assert.Equal(t, []string{"ver"}, dev.Writes())
	assert.Equal(t, []string{StatusConnecting, "Test sensor"}, log.messages())
}

func TestConnectWorksOnPrivateCopy(t *testing.T) {
	specs := testSpecs(t)
	dev := newTestDevice()
	channel := protocol.NewCommandChannel(dev, testTiming, zap.NewNop())
	s := NewConfigSession(channel, specs, dev.PortName(), zap.NewNop())
	require.NoError(t, s.Connect(context.Background()))

	require.NoError(t, s.SetValues(map[string]any{"a": 3}))

	shared, _, _ := specs.At(0).Find("a")
	assert.Equal(t, 1, shared.Value())
}

func TestConnectWithoutPrompt(t *testing.T) {
	log := &statusLog{}
	dev := protocoltest.NewDevice("/dev/ttyFAKE0", "silence")
	s := newTestSession(t, dev, WithStatus(log.record))

	err := s.Connect(context.Background())
	assert.ErrorIs(t, err, model.ErrNotConnected)
	assert.Nil(t, s.Specification())
	assert.Empty(t, dev.Writes())
	assert.Equal(t, StatusNoPrompt, log.entries[len(log.entries)-1].Message)
}

func TestConnectUnknownDevice(t *testing.T) {
	log := &statusLog{}
	dev := newTestDevice().On("ver", "[XX<1>V9]\n[OK]")
	s := newTestSession(t, dev, WithStatus(log.record))

	err := s.Connect(context.Background())
	assert.ErrorIs(t, err, model.ErrUnknownDevice)
	assert.Nil(t, s.Specification())

	last := log.entries[len(log.entries)-1]
	assert.Equal(t, StatusUnknownDevice, last.Message)
	assert.False(t, last.OK)
}

func TestConnectWithBadSignature(t *testing.T) {
	log := &statusLog{}
	dev := newTestDevice().On("ver", "who am i\n[OK]")
	s := newTestSession(t, dev, WithStatus(log.record))

	assert.ErrorIs(t, s.Connect(context.Background()), model.ErrProtocol)
	assert.Nil(t, s.Specification())

	last := log.entries[len(log.entries)-1]
	assert.Equal(t, StatusNoSignature, last.Message)
	assert.False(t, last.OK)
}

func TestOperationsRequireConnect(t *testing.T) {
	dev := newTestDevice()
	s := newTestSession(t, dev)
	ctx := context.Background()

	assert.ErrorIs(t, s.ReadAll(ctx), model.ErrNotConnected)
	assert.ErrorIs(t, s.WriteAll(ctx), model.ErrNotConnected)
	assert.ErrorIs(t, s.FactoryReset(ctx), model.ErrNotConnected)
	assert.ErrorIs(t, s.SetValues(map[string]any{"a": 1}), model.ErrNotConnected)
	assert.Nil(t, s.Items())
	assert.Empty(t, dev.Writes())
}

func TestReadAllDecodesKnownItems(t *testing.T) {
	history := repository.NewMemorySnapshotRepository(10)
	dev := newTestDevice()
	s := connectedSession(t, dev, WithHistory(history))

	require.NoError(t, s.ReadAll(context.Background()))

	assert.Equal(t, 7, value(t, s, "a"))
	assert.Equal(t, "CCDD", value(t, s, "b"))
	assert.Equal(t, true, value(t, s, "c"))
	assert.Equal(t, 0, value(t, s, "rate"))
	assert.Equal(t, []string{"ver", "show"}, dev.Writes())

	snaps, err := history.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, model.SnapshotKindRead, snaps[0].Kind)
	assert.Equal(t, "DDCC", snaps[0].Values["b"])
	assert.Equal(t, "/dev/ttyFAKE0", snaps[0].Port)
}

func TestReadAllToleratesMissingSentinel(t *testing.T) {
	dev := newTestDevice().On("show", "[a] Alpha:4")
	s := connectedSession(t, dev)

	require.NoError(t, s.ReadAll(context.Background()))
	assert.Equal(t, 4, value(t, s, "a"))
}

func TestReadAllTransportFailure(t *testing.T) {
	dev := newTestDevice()
	dev.WriteErr = func(cmd string) error {
		if cmd == ShowCommand {
			return errors.New("unplugged")
		}
		return nil
	}
	log := &statusLog{}
	s := connectedSession(t, dev, WithStatus(log.record))

	assert.ErrorIs(t, s.ReadAll(context.Background()), model.ErrTransport)
	assert.Equal(t, StatusReadFailed, log.entries[len(log.entries)-1].Message)
}

func TestWriteAllSendsEveryItemInOrder(t *testing.T) {
	history := repository.NewMemorySnapshotRepository(10)
	dev := newTestDevice()
	s := connectedSession(t, dev, WithHistory(history))

	require.NoError(t, s.WriteAll(context.Background()))

	assert.Equal(t, []string{"ver", "a 1", "b BBAA", "c 0", "rate 5"}, dev.Writes())

	snaps, err := history.List(context.Background(), &repository.SnapshotFilter{Kind: model.SnapshotKindWrite})
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestWriteAllStopsAtFirstInvalidItem(t *testing.T) {
	log := &statusLog{}
	dev := newTestDevice()
	s := connectedSession(t, dev, WithStatus(log.record))
	require.NoError(t, s.SetValues(map[string]any{"b": "ABC"}))

	err := s.WriteAll(context.Background())

	var fieldErr *model.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "b", fieldErr.ID)
	assert.Equal(t, "Beta", fieldErr.Caption)
	assert.Equal(t, "General", fieldErr.Section)
	assert.ErrorIs(t, err, model.ErrValidation)

	assert.Equal(t, []string{"ver", "a 1"}, dev.Writes(), "items after the invalid one are not attempted")

	last := log.entries[len(log.entries)-1]
	assert.Equal(t, StatusInvalidFields, last.Message)
	assert.Same(t, fieldErr, last.Field)
}

func TestWriteAllStopsAtTransportFailure(t *testing.T) {
	dev := newTestDevice()
	dev.WriteErr = func(cmd string) error {
		if strings.HasPrefix(cmd, "c ") {
			return errors.New("unplugged")
		}
		return nil
	}
	s := connectedSession(t, dev)

	err := s.WriteAll(context.Background())

	var fieldErr *model.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "c", fieldErr.ID)
	assert.ErrorIs(t, err, model.ErrTransport)
	assert.Equal(t, []string{"ver", "a 1", "b BBAA", "c 0"}, dev.Writes())
}

func TestWriteAllContinuesPastRejectedCommand(t *testing.T) {
	dev := newTestDevice().On("a 1", "ERR")
	s := connectedSession(t, dev)

	require.NoError(t, s.WriteAll(context.Background()))
	assert.Equal(t, []string{"ver", "a 1", "b BBAA", "c 0", "rate 5"}, dev.Writes())
}

func TestFactoryResetReadsDefaultsBack(t *testing.T) {
	history := repository.NewMemorySnapshotRepository(10)
	log := &statusLog{}
	dev := newTestDevice().On("fac", "[OK]")
	s := connectedSession(t, dev, WithHistory(history), WithStatus(log.record))

	require.NoError(t, s.FactoryReset(context.Background()))

	assert.Equal(t, []string{"ver", "fac", "show"}, dev.Writes())
	assert.Equal(t, 7, value(t, s, "a"))
	assert.Contains(t, log.messages(), StatusFactoryDone)

	snaps, err := history.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, model.SnapshotKindFactoryReset, snaps[0].Kind)
	assert.Equal(t, model.SnapshotKindRead, snaps[1].Kind)
}

func TestFactoryResetRejected(t *testing.T) {
	log := &statusLog{}
	dev := newTestDevice().On("fac", "ERR")
	s := connectedSession(t, dev, WithStatus(log.record))

	err := s.FactoryReset(context.Background())
	assert.ErrorIs(t, err, model.ErrProtocol)
	assert.Equal(t, []string{"ver", "fac"}, dev.Writes())
	assert.Equal(t, StatusFactoryFailed, log.entries[len(log.entries)-1].Message)
}

func TestSetValuesIsAtomic(t *testing.T) {
	s := connectedSession(t, newTestDevice())

	err := s.SetValues(map[string]any{"a": 5, "b": 42})
	var fieldErr *model.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "b", fieldErr.ID)
	assert.Equal(t, 1, value(t, s, "a"))

	err = s.SetValues(map[string]any{"a": 5, "nope": 1})
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Equal(t, 1, value(t, s, "a"))

	require.NoError(t, s.SetValues(map[string]any{"a": 5, "c": true, "rate": 0}))
	assert.Equal(t, 5, value(t, s, "a"))
	assert.Equal(t, true, value(t, s, "c"))
	assert.Equal(t, 0, value(t, s, "rate"))
}

func TestItemsRendersSections(t *testing.T) {
	s := connectedSession(t, newTestDevice())

	sections := s.Items()
	require.Len(t, sections, 2)
	assert.Equal(t, "General", sections[0].Name)
	require.Len(t, sections[0].Items, 3)
	assert.Equal(t, model.ItemKindHex, sections[0].Items[1].Kind)
	assert.Len(t, sections[1].Items[0].Options, 2)
}
