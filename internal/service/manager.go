// internal/service/manager.go
package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"device-configurator/internal/config"
	"device-configurator/internal/model"
	"device-configurator/internal/protocol"
	"device-configurator/internal/repository"
	"device-configurator/internal/utils"
)

// Dialer opens the named port, or the configured default when name is empty.
type Dialer func(ctx context.Context, name string) (protocol.Port, error)

// SerialDialer opens serial ports with the configured line settings.
func SerialDialer(cfg *config.Config, logger *zap.Logger) Dialer {
	return func(ctx context.Context, name string) (protocol.Port, error) {
		serialCfg := cfg.SerialFor(name)
		if serialCfg.Port == "" {
			return nil, fmt.Errorf("%w: no serial port selected", model.ErrNotConnected)
		}

		conn := protocol.NewSerialConnection(&serialCfg, logger)
		if err := conn.Open(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrTransport, err)
		}
		return conn, nil
	}
}

// SessionInfo describes the attached device and its configuration.
type SessionInfo struct {
	Port     string               `json:"port"`
	Identity model.DeviceIdentity `json:"identity"`
	Title    string               `json:"title"`
	Sections []SectionView        `json:"sections"`
}

// SessionManager owns the open port and its configuration session, and
// serializes every use of them. It is the only shared entry point for the
// HTTP handlers and the console.
type SessionManager struct {
	mutex   sync.Mutex
	specs   *model.SpecSet
	dial    Dialer
	timing  protocol.Timing
	history repository.SnapshotRepository
	status  StatusFunc
	logger  *zap.Logger

	port    protocol.Port
	session *ConfigSession
}

// NewSessionManager creates a manager without an attached device.
func NewSessionManager(specs *model.SpecSet, dial Dialer, timing protocol.Timing, history repository.SnapshotRepository, status StatusFunc, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		specs:   specs,
		dial:    dial,
		timing:  timing,
		history: history,
		status:  status,
		logger:  logger.With(zap.String("component", "session-manager")),
	}
}

// Connect opens name, identifies the device and reads its configuration.
// Any previously attached device is released first.
func (m *SessionManager) Connect(ctx context.Context, name string) (*SessionInfo, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	op := utils.NewOperationLogger(m.logger, OperationConnect, NewOperationID())
	op.Start(zap.String("port", name))

	m.release()

	port, err := m.dial(ctx, name)
	if err != nil {
		op.Error(err)
		return nil, err
	}

	channel := protocol.NewCommandChannel(port, m.timing, m.logger)
	opts := []SessionOption{WithStatus(m.status)}
	if m.history != nil {
		opts = append(opts, WithHistory(m.history))
	}
	session := NewConfigSession(channel, m.specs, port.PortName(), m.logger, opts...)

	if err := session.Connect(ctx); err != nil {
		port.Close()
		op.Error(err)
		return nil, err
	}

	m.port = port
	m.session = session

	if err := session.ReadAll(ctx); err != nil {
		op.Error(err)
		return m.info(), err
	}

	op.Success(zap.String("signature", session.Identity().String()))
	return m.info(), nil
}

// Do runs fn with exclusive access to the attached session.
func (m *SessionManager) Do(fn func(*ConfigSession) error) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.session == nil {
		return fmt.Errorf("%w: no device attached", model.ErrNotConnected)
	}
	return fn(m.session)
}

// Info describes the attached session.
func (m *SessionManager) Info() (*SessionInfo, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.session == nil {
		return nil, fmt.Errorf("%w: no device attached", model.ErrNotConnected)
	}
	return m.info(), nil
}

// TransportStats returns the link statistics of the attached port. The
// second result is false when no port is attached or it keeps no statistics.
func (m *SessionManager) TransportStats() (protocol.TransportStats, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	reporter, ok := m.port.(protocol.StatsReporter)
	if !ok {
		return protocol.TransportStats{}, false
	}
	return reporter.Stats(), true
}

// Connected reports whether a device is attached.
func (m *SessionManager) Connected() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.session != nil
}

// Close releases the attached device.
func (m *SessionManager) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.release()
}

func (m *SessionManager) info() *SessionInfo {
	spec := m.session.Specification()
	return &SessionInfo{
		Port:     m.session.Port(),
		Identity: m.session.Identity(),
		Title:    spec.Title,
		Sections: m.session.Items(),
	}
}

func (m *SessionManager) release() error {
	m.session = nil
	if m.port == nil {
		return nil
	}
	err := m.port.Close()
	m.port = nil
	return err
}
