package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/voidlabs/voidgrid/voidgrid/database/models"
)

// Importer copies accounts out of the retired service's Mongo database into
// Postgres. Re-running is safe: existing addresses are left untouched.
type Importer struct {
	db         *bun.DB
	mongoDB    *mongo.Database
	batchSize  int
	xpPerLevel int64
	collName   string
	stats      ImportStats
	// Optional: use pgx CopyFrom for fastest bulk inserts
	useCopy bool
	pool    *pgxpool.Pool
}

func NewImporter(db *bun.DB, xpPerLevel int64) *Importer {
	return &Importer{
		db:         db,
		batchSize:  1000,
		xpPerLevel: xpPerLevel,
		collName:   "accounts",
		stats: ImportStats{
			Tables:    make(map[string]*TableStats),
			StartTime: time.Now(),
		},
	}
}

// UseMongo enables direct-from-Mongo import mode.
func (m *Importer) UseMongo(client *mongo.Client, dbName string) {
	m.mongoDB = client.Database(dbName)
}

// SetBatchSize overrides the default batch size for inserts.
func (m *Importer) SetBatchSize(size int) {
	if size > 0 {
		m.batchSize = size
	}
}

// SetCollectionName overrides the source collection name.
func (m *Importer) SetCollectionName(name string) {
	if name != "" {
		m.collName = name
	}
}

// SetUseCopy enables COPY FROM mode using pgx (fast path).
func (m *Importer) SetUseCopy(v bool) { m.useCopy = v }

// UsePool sets the pgx pool for COPY operations.
func (m *Importer) UsePool(pool *pgxpool.Pool) { m.pool = pool }

// Run imports every legacy account. Decoding failures skip the document and
// keep going; the skipped count surfaces in the final stats.
func (m *Importer) Run(ctx context.Context) error {
	if m.mongoDB == nil {
		return fmt.Errorf("mongoDB not configured; call UseMongo first")
	}

	col := m.mongoDB.Collection(m.collName)
	cur, err := col.Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", m.collName, err)
	}
	defer cur.Close(ctx)

	stats := &TableStats{}
	m.stats.Tables["accounts"] = stats

	var accounts []*models.Account
	var lifetimes []*models.LifetimeState
	for cur.Next(ctx) {
		var la LegacyAccount
		if err := cur.Decode(&la); err != nil {
			stats.Skipped++
			continue
		}
		if la.Address == "" {
			stats.Skipped++
			continue
		}
		stats.Read++

		account, lifetime := m.convert(la)
		accounts = append(accounts, account)
		lifetimes = append(lifetimes, lifetime)

		if len(accounts) >= m.batchSize {
			if err := m.flush(ctx, accounts, lifetimes, stats); err != nil {
				return err
			}
			accounts = accounts[:0]
			lifetimes = lifetimes[:0]
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}
	if len(accounts) > 0 {
		if err := m.flush(ctx, accounts, lifetimes, stats); err != nil {
			return err
		}
	}

	slog.Info("Legacy account import completed",
		slog.String("type", "db"),
		slog.Int("read", stats.Read),
		slog.Int("inserted", stats.Inserted),
		slog.Int("skipped", stats.Skipped),
		slog.Duration("took", time.Since(m.stats.StartTime)))
	return nil
}

func (m *Importer) convert(la LegacyAccount) (*models.Account, *models.LifetimeState) {
	now := time.Now().UTC()
	createdAt := la.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	lastUpdate := la.LastUpdate
	if lastUpdate.IsZero() {
		lastUpdate = createdAt
	}

	account := &models.Account{
		Address:         la.Address,
		CurrentScore:    la.Rep,
		LifetimeScore:   la.LifetimeRep,
		VoidHoldings:    la.Holdings,
		LastScoreUpdate: lastUpdate,
		CreatedAt:       createdAt,
		UpdatedAt:       now,
	}
	if account.LifetimeScore < account.CurrentScore {
		account.LifetimeScore = account.CurrentScore
	}

	lifetime := &models.LifetimeState{
		Address:       la.Address,
		TotalXPEarned: int64(la.XPTotal),
		CreatedAt:     createdAt,
		UpdatedAt:     now,
	}
	lifetime.RecomputeLevel(m.xpPerLevel)

	return account, lifetime
}

func (m *Importer) flush(ctx context.Context, accounts []*models.Account, lifetimes []*models.LifetimeState, stats *TableStats) error {
	if m.useCopy && m.pool != nil {
		if err := m.copyAccounts(ctx, accounts); err == nil {
			stats.Inserted += len(accounts)
			return m.insertLifetimes(ctx, lifetimes)
		}
		// COPY aborts the whole batch on conflict; fall through to upsert.
	}

	res, err := m.db.NewInsert().
		Model(&accounts).
		On("CONFLICT (address) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert accounts batch: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		stats.Inserted += int(n)
	}

	return m.insertLifetimes(ctx, lifetimes)
}

func (m *Importer) insertLifetimes(ctx context.Context, lifetimes []*models.LifetimeState) error {
	_, err := m.db.NewInsert().
		Model(&lifetimes).
		On("CONFLICT (address) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert lifetime batch: %w", err)
	}
	return nil
}

func (m *Importer) copyAccounts(ctx context.Context, accounts []*models.Account) error {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	rows := make([][]any, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, []any{a.Address, a.CurrentScore, a.LifetimeScore, a.VoidHoldings, a.LastScoreUpdate, a.CreatedAt, a.UpdatedAt})
	}
	cols := []string{"address", "current_score", "lifetime_score", "void_holdings", "last_score_update", "created_at", "updated_at"}
	_, err = conn.Conn().CopyFrom(ctx, pgx.Identifier{"accounts"}, cols, pgx.CopyFromRows(rows))
	return err
}
