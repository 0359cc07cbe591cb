package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"github.com/voidlabs/voidgrid/voidgrid/database/models"
)

type LifetimeStateRepository interface {
	Get(ctx context.Context, address string) (*models.LifetimeState, error)
	GetOrCreate(ctx context.Context, address string) (*models.LifetimeState, error)
	Update(ctx context.Context, state *models.LifetimeState) error
}

type lifetimeStateRepository struct {
	db *bun.DB
}

func NewLifetimeStateRepository(db *bun.DB) LifetimeStateRepository {
	return &lifetimeStateRepository{db: db}
}

func (r *lifetimeStateRepository) Get(ctx context.Context, address string) (*models.LifetimeState, error) {
	state := new(models.LifetimeState)
	err := r.db.NewSelect().
		Model(state).
		Where("address = ?", address).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (r *lifetimeStateRepository) GetOrCreate(ctx context.Context, address string) (*models.LifetimeState, error) {
	state, err := r.Get(ctx, address)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	state = &models.LifetimeState{
		Address:   address,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	_, err = r.db.NewInsert().
		Model(state).
		On("CONFLICT (address) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, address)
}

func (r *lifetimeStateRepository) Update(ctx context.Context, state *models.LifetimeState) error {
	state.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(state).
		WherePK().
		Exec(ctx)
	return err
}
