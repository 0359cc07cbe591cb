package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"github.com/voidlabs/voidgrid/voidgrid/database/models"
)

type SeasonStateRepository interface {
	Get(ctx context.Context, address string, seasonID int64) (*models.SeasonState, error)
	GetOrCreate(ctx context.Context, address string, seasonID int64, day string) (*models.SeasonState, error)
	Update(ctx context.Context, state *models.SeasonState) error
	// ApplyBurn persists the outcome of one burn atomically: the season
	// state row and the lifetime row move together or not at all.
	ApplyBurn(ctx context.Context, state *models.SeasonState, lifetime *models.LifetimeState) error
}

type seasonStateRepository struct {
	db *bun.DB
}

func NewSeasonStateRepository(db *bun.DB) SeasonStateRepository {
	return &seasonStateRepository{db: db}
}

func (r *seasonStateRepository) Get(ctx context.Context, address string, seasonID int64) (*models.SeasonState, error) {
	state := new(models.SeasonState)
	err := r.db.NewSelect().
		Model(state).
		Where("address = ? AND season_id = ?", address, seasonID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (r *seasonStateRepository) GetOrCreate(ctx context.Context, address string, seasonID int64, day string) (*models.SeasonState, error) {
	state, err := r.Get(ctx, address, seasonID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	state = &models.SeasonState{
		Address:       address,
		SeasonID:      seasonID,
		DailyResetDay: day,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	_, err = r.db.NewInsert().
		Model(state).
		On("CONFLICT (address, season_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, address, seasonID)
}

func (r *seasonStateRepository) Update(ctx context.Context, state *models.SeasonState) error {
	state.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(state).
		WherePK().
		Exec(ctx)
	return err
}

func (r *seasonStateRepository) ApplyBurn(ctx context.Context, state *models.SeasonState, lifetime *models.LifetimeState) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		state.UpdatedAt = time.Now()
		if _, err := tx.NewUpdate().
			Model(state).
			WherePK().
			Exec(ctx); err != nil {
			return err
		}

		lifetime.UpdatedAt = time.Now()
		_, err := tx.NewUpdate().
			Model(lifetime).
			WherePK().
			Exec(ctx)
		return err
	})
}
