// internal/service/session.go
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"device-configurator/internal/codec"
	"device-configurator/internal/metrics"
	"device-configurator/internal/model"
	"device-configurator/internal/protocol"
	"device-configurator/internal/repository"
	"device-configurator/internal/utils"
)

// Device commands used by the session besides the signature query.
const (
	ShowCommand         = "show"
	FactoryResetCommand = "fac"
)

// Status messages reported to collaborators.
const (
	StatusConnecting    = "Connecting to device..."
	StatusNoPrompt      = "Device did not answer"
	StatusNoSignature   = "Couldn't retrieve a valid signature"
	StatusUnknownDevice = "Unknown device"
	StatusReading       = "Reading config..."
	StatusReadDone      = "Config read from device!"
	StatusReadFailed    = "Failed to read configuration from device"
	StatusWriting       = "Writing configuration.."
	StatusWriteDone     = "Config written to device!"
	StatusInvalidFields = "Invalid fields"
	StatusWriteFailed   = "Error writing configuration"
	StatusFactoryDone   = "Factory settings done"
	StatusFactoryFailed = "Factory settings failed."
)

// Session operations, used for status events, logs and metrics.
const (
	OperationConnect      = "connect"
	OperationRead         = "read"
	OperationWrite        = "write"
	OperationFactoryReset = "factory_reset"
)

// DeviceChannel is the command channel a session drives: the reset
// handshake plus framed commands.
type DeviceChannel interface {
	protocol.CommandSender
	Connect(ctx context.Context) (bool, error)
}

// Status is a human-readable progress report of a session operation.
type Status struct {
	Operation string            `json:"operation"`
	Message   string            `json:"message"`
	OK        bool              `json:"ok"`
	Error     string            `json:"error,omitempty"`
	Field     *model.FieldError `json:"-"`
}

// StatusFunc receives session status reports.
type StatusFunc func(Status)

// SessionOption configures a ConfigSession.
type SessionOption func(*ConfigSession)

// WithStatus installs a status receiver.
func WithStatus(fn StatusFunc) SessionOption {
	return func(s *ConfigSession) { s.status = fn }
}

// WithHistory records a snapshot after every successful read, write and
// factory reset.
func WithHistory(repo repository.SnapshotRepository) SessionOption {
	return func(s *ConfigSession) { s.history = repo }
}

// ConfigSession binds one command channel to the specification selected
// for the attached device. Like the channel underneath it, a session has a
// single owner; SessionManager serializes shared access.
type ConfigSession struct {
	channel  DeviceChannel
	specs    *model.SpecSet
	port     string
	identity model.DeviceIdentity
	spec     *model.DeviceSpecification
	history  repository.SnapshotRepository
	status   StatusFunc
	logger   *utils.DeviceLogger
}

// NewConfigSession creates a session over channel. The specification set is
// shared read-only; the session edits a private copy of the selected entry.
func NewConfigSession(channel DeviceChannel, specs *model.SpecSet, port string, logger *zap.Logger, opts ...SessionOption) *ConfigSession {
	s := &ConfigSession{
		channel: channel,
		specs:   specs,
		port:    port,
		logger:  utils.NewDeviceLogger(logger, port),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect resets the device, reads its signature and selects the matching
// specification. A device without prompt yields ErrNotConnected, a
// signature with no specification ErrUnknownDevice.
func (s *ConfigSession) Connect(ctx context.Context) (err error) {
	defer func() { metrics.ObserveSession(OperationConnect, err) }()

	s.report(OperationConnect, StatusConnecting, true, nil)
	s.spec = nil

	ready, err := s.channel.Connect(ctx)
	if err != nil {
		s.logger.LogConnection("reset", false, err)
		s.report(OperationConnect, StatusNoPrompt, false, err)
		return err
	}
	if !ready {
		err = fmt.Errorf("%w: no prompt after reset on %s", model.ErrNotConnected, s.port)
		s.logger.LogConnection("reset", false, err)
		s.report(OperationConnect, StatusNoPrompt, false, err)
		return err
	}

	identity, err := protocol.QueryIdentity(ctx, s.channel)
	if err != nil {
		s.logger.LogConnection("signature", false, err)
		s.report(OperationConnect, StatusNoSignature, false, err)
		return err
	}

	index, ok := s.specs.Resolve(identity)
	if !ok {
		err = fmt.Errorf("%w: %s", model.ErrUnknownDevice, identity)
		s.logger.LogConnection("resolve", false, err)
		s.report(OperationConnect, StatusUnknownDevice, false, err)
		return err
	}

	s.identity = identity
	s.spec = s.specs.At(index).Clone()
	s.logger = s.logger.Identified(identity.Product, identity.Model, identity.Version)
	s.logger.LogConnection("resolve", true, nil)
	s.report(OperationConnect, s.spec.Title, true, nil)
	return nil
}

// Identity returns the signature of the attached device.
func (s *ConfigSession) Identity() model.DeviceIdentity {
	return s.identity
}

// Port returns the port the session was opened on.
func (s *ConfigSession) Port() string {
	return s.port
}

// Specification returns the session's working copy, nil before Connect.
func (s *ConfigSession) Specification() *model.DeviceSpecification {
	return s.spec
}

// ReadAll queries the device configuration and decodes every recognized
// line into the item with the same id. Lines that do not parse and ids
// without an item are skipped.
func (s *ConfigSession) ReadAll(ctx context.Context) (err error) {
	defer func() { metrics.ObserveSession(OperationRead, err) }()

	if s.spec == nil {
		return fmt.Errorf("%w: no device specification selected", model.ErrNotConnected)
	}

	s.report(OperationRead, StatusReading, true, nil)

	resp, err := s.channel.SendCommand(ctx, ShowCommand)
	if err != nil {
		s.logger.LogCommand(ShowCommand, false, err)
		s.report(OperationRead, StatusReadFailed, false, err)
		return err
	}
	if !resp.OK {
		s.logger.Warn("Configuration listing not acknowledged", zap.Int("lines", len(resp.Lines)))
	}

	applied := s.apply(codec.ParseConfigLines(resp.Lines))
	s.logger.Info("Configuration read",
		zap.Int("lines", len(resp.Lines)),
		zap.Int("applied", applied),
	)

	s.record(ctx, model.SnapshotKindRead)
	s.report(OperationRead, StatusReadDone, true, nil)
	return nil
}

func (s *ConfigSession) apply(pairs []codec.Pair) int {
	applied := 0
	for _, p := range pairs {
		item, _, ok := s.spec.Find(p.ID)
		if !ok {
			s.logger.Debug("Ignoring unknown configuration id", zap.String("id", p.ID))
			continue
		}
		item.Decode(p.Value)
		applied++
	}
	return applied
}

// WriteAll validates and sends every item in section then item order. The
// first item that fails validation or cannot be sent stops the write and
// is returned as a *model.FieldError; items before it stay written.
func (s *ConfigSession) WriteAll(ctx context.Context) (err error) {
	defer func() { metrics.ObserveSession(OperationWrite, err) }()

	if s.spec == nil {
		return fmt.Errorf("%w: no device specification selected", model.ErrNotConnected)
	}

	s.report(OperationWrite, StatusWriting, true, nil)

	for _, section := range s.spec.Sections {
		for _, item := range section.Items {
			if err := item.Validate(); err != nil {
				fieldErr := newFieldError(section.Name, item, err)
				s.logger.Warn("Invalid configuration field", zap.String("id", item.ID()), zap.Error(err))
				s.reportField(OperationWrite, StatusInvalidFields, fieldErr)
				return fieldErr
			}

			cmd := codec.FormatCommand(item)
			resp, err := s.channel.SendCommand(ctx, cmd)
			if err != nil {
				fieldErr := newFieldError(section.Name, item, err)
				s.logger.LogCommand(cmd, false, err)
				s.reportField(OperationWrite, StatusWriteFailed, fieldErr)
				return fieldErr
			}
			s.logger.LogCommand(cmd, resp.OK, nil)
		}
	}

	s.record(ctx, model.SnapshotKindWrite)
	s.report(OperationWrite, StatusWriteDone, true, nil)
	return nil
}

// FactoryReset restores the device defaults and reads them back.
func (s *ConfigSession) FactoryReset(ctx context.Context) (err error) {
	defer func() { metrics.ObserveSession(OperationFactoryReset, err) }()

	if s.spec == nil {
		return fmt.Errorf("%w: no device specification selected", model.ErrNotConnected)
	}

	resp, err := s.channel.SendCommand(ctx, FactoryResetCommand)
	if err == nil && !resp.OK {
		err = fmt.Errorf("%w: factory reset not acknowledged", model.ErrProtocol)
	}
	if err != nil {
		s.logger.LogCommand(FactoryResetCommand, false, err)
		s.report(OperationFactoryReset, StatusFactoryFailed, false, err)
		return err
	}
	s.logger.LogCommand(FactoryResetCommand, true, nil)
	s.report(OperationFactoryReset, StatusFactoryDone, true, nil)

	if err := s.ReadAll(ctx); err != nil {
		return err
	}
	s.record(ctx, model.SnapshotKindFactoryReset)
	return nil
}

// SetValues applies edited display values keyed by item id. Either every
// value is applied or none is.
func (s *ConfigSession) SetValues(values map[string]any) error {
	if s.spec == nil {
		return fmt.Errorf("%w: no device specification selected", model.ErrNotConnected)
	}

	working := s.spec.Clone()
	for id, v := range values {
		item, section, ok := working.Find(id)
		if !ok {
			return fmt.Errorf("%w: unknown field %q", model.ErrValidation, id)
		}
		if err := item.SetValue(v); err != nil {
			return newFieldError(section.Name, item, err)
		}
	}
	s.spec = working
	return nil
}

// Items returns the display rendering of every item grouped by section.
func (s *ConfigSession) Items() []SectionView {
	if s.spec == nil {
		return nil
	}
	out := make([]SectionView, len(s.spec.Sections))
	for i, section := range s.spec.Sections {
		items := make([]model.ItemView, len(section.Items))
		for j, item := range section.Items {
			items[j] = item.View()
		}
		out[i] = SectionView{Name: section.Name, Help: section.Help, Items: items}
	}
	return out
}

// SectionView is a section with its rendered items.
type SectionView struct {
	Name  string           `json:"name"`
	Help  string           `json:"help"`
	Items []model.ItemView `json:"items"`
}

func (s *ConfigSession) record(ctx context.Context, kind model.SnapshotKind) {
	if s.history == nil {
		return
	}
	snapshot := model.NewConfigSnapshot(kind, s.port, s.spec)
	if err := s.history.Save(ctx, snapshot); err != nil {
		s.logger.Warn("Failed to record configuration snapshot",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}

func (s *ConfigSession) report(operation, message string, ok bool, err error) {
	if s.status == nil {
		return
	}
	st := Status{Operation: operation, Message: message, OK: ok}
	if err != nil {
		st.Error = err.Error()
	}
	s.status(st)
}

func (s *ConfigSession) reportField(operation, message string, fieldErr *model.FieldError) {
	if s.status == nil {
		return
	}
	s.status(Status{
		Operation: operation,
		Message:   message,
		Error:     fieldErr.Error(),
		Field:     fieldErr,
	})
}

func newFieldError(section string, item model.ConfigItem, err error) *model.FieldError {
	return &model.FieldError{
		Section: section,
		Caption: item.Caption(),
		ID:      item.ID(),
		Err:     err,
	}
}

// NewOperationID returns an id correlating the log lines of one operation.
func NewOperationID() string {
	return uuid.NewString()
}
