package repositories

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"github.com/voidlabs/voidgrid/voidgrid/database/models"
)

type SeasonRepository interface {
	GetActive(ctx context.Context) (*models.Season, error)
	GetByID(ctx context.Context, id int64) (*models.Season, error)
	// Bootstrap inserts the very first season if none exists and returns
	// the active one.
	Bootstrap(ctx context.Context, season *models.Season) (*models.Season, error)
	// Rotate ends the expired season and activates its successor in one
	// transaction: deactivate, snapshot final standings, conditional insert
	// of the new row. Safe to call concurrently; exactly one caller's
	// insert wins and everyone reads back the same new season.
	Rotate(ctx context.Context, expired *models.Season, next *models.Season) (*models.Season, error)
}

type seasonRepository struct {
	db *bun.DB
}

func NewSeasonRepository(db *bun.DB) SeasonRepository {
	return &seasonRepository{db: db}
}

func (r *seasonRepository) GetActive(ctx context.Context) (*models.Season, error) {
	season := new(models.Season)
	err := r.db.NewSelect().
		Model(season).
		Where("active = TRUE").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return season, nil
}

func (r *seasonRepository) GetByID(ctx context.Context, id int64) (*models.Season, error) {
	season := new(models.Season)
	err := r.db.NewSelect().
		Model(season).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return season, nil
}

func (r *seasonRepository) Bootstrap(ctx context.Context, season *models.Season) (*models.Season, error) {
	_, err := r.db.NewInsert().
		Model(season).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return r.GetActive(ctx)
}

func (r *seasonRepository) Rotate(ctx context.Context, expired *models.Season, next *models.Season) (*models.Season, error) {
	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Season)(nil)).
			Set("active = FALSE").
			Set("status = ?", models.SeasonStatusEnded).
			Where("id = ? AND active = TRUE", expired.ID).
			Exec(ctx)
		if err != nil {
			return err
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			// Another caller already rotated; nothing left to do here.
			return nil
		}

		// Freeze final standings for the airdrop distribution before the
		// successor goes live.
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO season_snapshots (season_id, address, xp_earned, airdrop_weight, captured_at)
			SELECT season_id, address, xp_earned, airdrop_weight, ?
			FROM season_states
			WHERE season_id = ?
			ON CONFLICT (season_id, address) DO NOTHING
		`, time.Now().UTC(), expired.ID); err != nil {
			return err
		}

		_, err = tx.NewInsert().
			Model(next).
			On("CONFLICT DO NOTHING").
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	season, err := r.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("Season rotated",
		slog.String("type", "season"),
		slog.Int64("ended", expired.ID),
		slog.Int64("active", season.ID))

	return season, nil
}
