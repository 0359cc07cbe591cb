package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voidlabs/voidgrid/api"
	"github.com/voidlabs/voidgrid/voidgrid"
	"github.com/voidlabs/voidgrid/voidgrid/burn"
	"github.com/voidlabs/voidgrid/voidgrid/database"
	"github.com/voidlabs/voidgrid/voidgrid/database/models"
	"github.com/voidlabs/voidgrid/voidgrid/database/repositories"
	"github.com/voidlabs/voidgrid/voidgrid/engine"
	"github.com/voidlabs/voidgrid/voidgrid/leaderboard"
	"github.com/voidlabs/voidgrid/voidgrid/logger"
	"github.com/voidlabs/voidgrid/voidgrid/migration"
	"github.com/voidlabs/voidgrid/voidgrid/multiplier"
	"github.com/voidlabs/voidgrid/voidgrid/ratelimit"
	"github.com/voidlabs/voidgrid/voidgrid/score"
	"github.com/voidlabs/voidgrid/voidgrid/season"
	"github.com/voidlabs/voidgrid/voidgrid/services"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	path := flag.String("config", "config.toml", "path to config")
	importLegacy := flag.Bool("import-legacy", false, "import accounts from the legacy Mongo database and exit")
	flag.Parse()

	cfg, err := voidgrid.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Log.AddSource)

	slog.Info("Starting voidgrid progression engine",
		slog.String("version", version),
		slog.String("commit", commit))

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dbConfig := database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	}
	db, err := database.New(ctx, dbConfig)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema", slog.Any("error", err))
		os.Exit(-1)
	}

	if *importLegacy {
		if err := runLegacyImport(ctx, cfg, db); err != nil {
			slog.Error("Legacy import failed", slog.Any("error", err))
			os.Exit(-1)
		}
		return
	}

	// Repositories
	accountRepo := repositories.NewAccountRepository(db.BunDB())
	seasonRepo := repositories.NewSeasonRepository(db.BunDB())
	stateRepo := repositories.NewSeasonStateRepository(db.BunDB())
	lifetimeRepo := repositories.NewLifetimeStateRepository(db.BunDB())
	windowRepo := repositories.NewRateLimitRepository(db.BunDB())
	snapshotRepo := repositories.NewSnapshotRepository(db.BunDB())

	// Engines
	scores := score.NewEngine(cfg.Engine.Score, cfg.Engine.Tiers)
	limiter := ratelimit.NewLimiter(cfg.Engine.RateLimit, scores, nil)
	burns := burn.NewEngine(cfg.Engine.Burn, cfg.Engine.Score.XPPerLevel, multiplier.NeutralStack())
	seasons := season.NewManager(seasonRepo, cfg.Engine.Season)

	eng := engine.New(cfg.Engine, engine.Deps{
		Accounts:  accountRepo,
		States:    stateRepo,
		Lifetimes: lifetimeRepo,
		Windows:   windowRepo,
		Seasons:   seasons,
		Scores:    scores,
		Limiter:   limiter,
		Burns:     burns,
	})

	// Optional live airdrop leaderboard
	var board *leaderboard.Board
	if cfg.Redis.Enabled {
		board, err = leaderboard.New(cfg.Redis)
		if err != nil {
			slog.Error("Redis connection failed", slog.Any("error", err))
			os.Exit(-1)
		}
		defer board.Close()
		eng.SetBoard(board)
		slog.Info("Airdrop leaderboard enabled", slog.String("addr", cfg.Redis.Addr))
	}

	// Optional season archive export to Spaces on every rollover
	if cfg.Spaces.Enabled {
		spaces, err := services.NewSpacesService(ctx, cfg.Spaces)
		if err != nil {
			slog.Error("Spaces setup failed", slog.Any("error", err))
			os.Exit(-1)
		}
		exporter := services.NewSnapshotExporter(snapshotRepo, spaces)
		seasons.OnRollover(func(ctx context.Context, ended, next *models.Season) {
			if err := exporter.ExportSeason(ctx, ended.ID); err != nil {
				slog.Error("Season archive export failed",
					slog.Int64("season_id", ended.ID),
					slog.Any("error", err))
			}
		})
		slog.Info("Season archive export enabled", slog.String("bucket", spaces.GetBucket()))
	}

	// Daily rate-window GC
	gcCtx, gcCancel := context.WithCancel(context.Background())
	defer gcCancel()
	go func() {
		ticker := time.NewTicker(6 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				if n, err := eng.PruneRateWindows(ctx, time.Now().UTC()); err != nil {
					slog.Error("Rate window prune failed", slog.Any("error", err))
				} else if n > 0 {
					slog.Info("Pruned stale rate windows", slog.Int64("rows", n))
				}
				cancel()
			case <-gcCtx.Done():
				return
			}
		}
	}()

	server := api.NewServer(cfg.API, eng, db, board, snapshotRepo)
	go func() {
		if err := server.Listen(); err != nil {
			slog.Error("HTTP server stopped", slog.Any("error", err))
			os.Exit(-1)
		}
	}()

	slog.Info("voidgrid is now running. Press CTRL-C to exit.",
		slog.String("addr", cfg.API.Host),
		slog.Int("port", cfg.API.Port))
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-s

	slog.Info("Shutting down...")
	if err := server.Shutdown(); err != nil {
		slog.Error("HTTP shutdown failed", slog.Any("error", err))
	}
}

func runLegacyImport(ctx context.Context, cfg *voidgrid.Config, db *database.DB) error {
	slog.Info("Starting legacy account import",
		slog.String("database", cfg.Legacy.Database))

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Legacy.URI))
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	importer := migration.NewImporter(db.BunDB(), cfg.Engine.Score.XPPerLevel)
	importer.UseMongo(client, cfg.Legacy.Database)
	importer.UsePool(db.GetPool())
	importer.SetUseCopy(true)
	return importer.Run(ctx)
}
