// internal/repository/snapshot_repository.go
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"device-configurator/internal/database"
	"device-configurator/internal/model"
)

// snapshotRepository implements SnapshotRepository on postgres
type snapshotRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewSnapshotRepository creates a postgres-backed snapshot repository
func NewSnapshotRepository(db *database.DB, logger *zap.Logger) SnapshotRepository {
	return &snapshotRepository{
		db:     db,
		logger: logger,
	}
}

// Save inserts a snapshot
func (r *snapshotRepository) Save(ctx context.Context, snapshot *model.ConfigSnapshot) error {
	values, err := json.Marshal(snapshot.Values)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot values: %w", err)
	}

	query := `
		INSERT INTO config_snapshots (
			id, kind, port, product, model, version, values, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.ExecContext(ctx, query,
		snapshot.ID, snapshot.Kind, snapshot.Port, snapshot.Product,
		snapshot.Model, snapshot.Version, values, snapshot.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to save config snapshot", zap.Error(err))
		return fmt.Errorf("failed to save config snapshot: %w", err)
	}

	return nil
}

// List returns snapshots newest first
func (r *snapshotRepository) List(ctx context.Context, filter *SnapshotFilter) ([]*model.ConfigSnapshot, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter == nil {
		filter = &SnapshotFilter{}
	}
	if filter.Product != "" {
		args = append(args, filter.Product)
		where = append(where, fmt.Sprintf("product = $%d", len(args)))
	}
	if filter.Model != "" {
		args = append(args, filter.Model)
		where = append(where, fmt.Sprintf("model = $%d", len(args)))
	}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultSnapshotLimit
	}
	args = append(args, limit)

	query := `
		SELECT id, kind, port, product, model, version, values, created_at
		FROM config_snapshots
	`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list config snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []*model.ConfigSnapshot{}
	for rows.Next() {
		snapshot := &model.ConfigSnapshot{}
		var values []byte
		err := rows.Scan(
			&snapshot.ID, &snapshot.Kind, &snapshot.Port, &snapshot.Product,
			&snapshot.Model, &snapshot.Version, &values, &snapshot.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan config snapshot", zap.Error(err))
			continue
		}
		if err := json.Unmarshal(values, &snapshot.Values); err != nil {
			r.logger.Error("Failed to decode config snapshot values", zap.Error(err))
			continue
		}
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate config snapshots: %w", err)
	}

	return snapshots, nil
}
