package repositories

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"github.com/voidlabs/voidgrid/voidgrid/database/models"
)

type AccountRepository interface {
	GetByAddress(ctx context.Context, address string) (*models.Account, error)
	// GetOrCreate returns the account for address, creating it on first
	// contact. An unknown address is never an error.
	GetOrCreate(ctx context.Context, address string, now time.Time) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	UpdateHoldings(ctx context.Context, address string, holdings float64) error
	GetAccountCount(ctx context.Context) (int, error)
}

type accountRepository struct {
	db *bun.DB
}

func NewAccountRepository(db *bun.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) GetByAddress(ctx context.Context, address string) (*models.Account, error) {
	account := new(models.Account)
	err := r.db.NewSelect().
		Model(account).
		Where("address = ?", address).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *accountRepository) GetOrCreate(ctx context.Context, address string, now time.Time) (*models.Account, error) {
	account, err := r.GetByAddress(ctx, address)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	account = &models.Account{
		Address:         address,
		LastScoreUpdate: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	_, err = r.db.NewInsert().
		Model(account).
		On("CONFLICT (address) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	slog.Debug("Account created",
		slog.String("type", "db"),
		slog.String("address", address))

	// A concurrent creator may have won the conflict; read back the row
	// either way so callers always see the persisted state.
	return r.GetByAddress(ctx, address)
}

func (r *accountRepository) Update(ctx context.Context, account *models.Account) error {
	account.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(account).
		WherePK().
		Exec(ctx)
	return err
}

func (r *accountRepository) UpdateHoldings(ctx context.Context, address string, holdings float64) error {
	_, err := r.db.NewUpdate().
		Model((*models.Account)(nil)).
		Set("void_holdings = ?", holdings).
		Set("updated_at = ?", time.Now()).
		Where("address = ?", address).
		Exec(ctx)
	return err
}

func (r *accountRepository) GetAccountCount(ctx context.Context) (int, error) {
	return r.db.NewSelect().
		Model((*models.Account)(nil)).
		Count(ctx)
}
