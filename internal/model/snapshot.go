// internal/model/snapshot.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// SnapshotKind tells which session operation produced a snapshot.
type SnapshotKind string

const (
	SnapshotKindRead         SnapshotKind = "READ"
	SnapshotKindWrite        SnapshotKind = "WRITE"
	SnapshotKindFactoryReset SnapshotKind = "FACTORY_RESET"
)

// ConfigSnapshot records the wire values of a device configuration at the
// time it was read from or written to the device.
type ConfigSnapshot struct {
	ID        uuid.UUID         `json:"id" db:"id"`
	Kind      SnapshotKind      `json:"kind" db:"kind"`
	Port      string            `json:"port" db:"port"`
	Product   string            `json:"product" db:"product"`
	Model     string            `json:"model" db:"model"`
	Version   int               `json:"version" db:"version"`
	Values    map[string]string `json:"values" db:"values"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}

// NewConfigSnapshot captures the current values of spec.
func NewConfigSnapshot(kind SnapshotKind, port string, spec *DeviceSpecification) *ConfigSnapshot {
	return &ConfigSnapshot{
		ID:        uuid.New(),
		Kind:      kind,
		Port:      port,
		Product:   spec.Signature.Product,
		Model:     spec.Signature.Model,
		Version:   spec.Signature.Version,
		Values:    spec.WireValues(),
		CreatedAt: time.Now(),
	}
}
