// internal/repository/interfaces.go
package repository

import (
	"context"

	"device-configurator/internal/model"
)

// SnapshotRepository stores the history of configurations read from and
// written to devices
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot *model.ConfigSnapshot) error
	List(ctx context.Context, filter *SnapshotFilter) ([]*model.ConfigSnapshot, error)
}

// SnapshotFilter narrows a snapshot listing
type SnapshotFilter struct {
	Product string
	Model   string
	Kind    model.SnapshotKind
	Limit   int
}

// DefaultSnapshotLimit caps listings without an explicit limit
const DefaultSnapshotLimit = 50
