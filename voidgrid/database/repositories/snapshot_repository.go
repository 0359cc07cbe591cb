package repositories

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/voidlabs/voidgrid/voidgrid/database/models"
)

type SnapshotRepository interface {
	ListBySeason(ctx context.Context, seasonID int64) ([]*models.SeasonSnapshot, error)
	TopByWeight(ctx context.Context, seasonID int64, limit int) ([]*models.SeasonSnapshot, error)
}

type snapshotRepository struct {
	db *bun.DB
}

func NewSnapshotRepository(db *bun.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) ListBySeason(ctx context.Context, seasonID int64) ([]*models.SeasonSnapshot, error) {
	var snapshots []*models.SeasonSnapshot
	err := r.db.NewSelect().
		Model(&snapshots).
		Where("season_id = ?", seasonID).
		Order("airdrop_weight DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *snapshotRepository) TopByWeight(ctx context.Context, seasonID int64, limit int) ([]*models.SeasonSnapshot, error) {
	var snapshots []*models.SeasonSnapshot
	err := r.db.NewSelect().
		Model(&snapshots).
		Where("season_id = ?", seasonID).
		Order("airdrop_weight DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}
