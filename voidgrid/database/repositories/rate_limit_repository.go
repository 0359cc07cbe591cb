package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"github.com/voidlabs/voidgrid/voidgrid/database/models"
)

type RateLimitRepository interface {
	GetOrCreate(ctx context.Context, address, channel, day string) (*models.RateLimitWindow, error)
	Update(ctx context.Context, window *models.RateLimitWindow) error
	// ApplyMessage persists the outcome of one allowed message atomically:
	// the window count and the account's score credit move together or not
	// at all.
	ApplyMessage(ctx context.Context, window *models.RateLimitWindow, account *models.Account) error
	// PruneBefore garbage-collects windows for days strictly before day.
	PruneBefore(ctx context.Context, day string) (int64, error)
}

type rateLimitRepository struct {
	db *bun.DB
}

func NewRateLimitRepository(db *bun.DB) RateLimitRepository {
	return &rateLimitRepository{db: db}
}

func (r *rateLimitRepository) GetOrCreate(ctx context.Context, address, channel, day string) (*models.RateLimitWindow, error) {
	window := new(models.RateLimitWindow)
	err := r.db.NewSelect().
		Model(window).
		Where("address = ? AND channel = ? AND day = ?", address, channel, day).
		Scan(ctx)
	if err == nil {
		return window, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	window = &models.RateLimitWindow{
		Address:   address,
		Channel:   channel,
		Day:       day,
		UpdatedAt: time.Now(),
	}
	_, err = r.db.NewInsert().
		Model(window).
		On("CONFLICT (address, channel, day) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	err = r.db.NewSelect().
		Model(window).
		Where("address = ? AND channel = ? AND day = ?", address, channel, day).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return window, nil
}

func (r *rateLimitRepository) Update(ctx context.Context, window *models.RateLimitWindow) error {
	window.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(window).
		WherePK().
		Exec(ctx)
	return err
}

func (r *rateLimitRepository) ApplyMessage(ctx context.Context, window *models.RateLimitWindow, account *models.Account) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		window.UpdatedAt = time.Now()
		if _, err := tx.NewUpdate().
			Model(window).
			WherePK().
			Exec(ctx); err != nil {
			return err
		}

		account.UpdatedAt = time.Now()
		_, err := tx.NewUpdate().
			Model(account).
			WherePK().
			Exec(ctx)
		return err
	})
}

func (r *rateLimitRepository) PruneBefore(ctx context.Context, day string) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*models.RateLimitWindow)(nil)).
		Where("day < ?", day).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
