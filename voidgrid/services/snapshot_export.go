package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/voidlabs/voidgrid/voidgrid/database/models"
	"github.com/voidlabs/voidgrid/voidgrid/database/repositories"
)

const exportTopSize = 100

// SnapshotExporter archives a finished season's frozen airdrop snapshot to
// object storage: the full per-address dump plus a top-N leaderboard cut.
type SnapshotExporter struct {
	snapshots repositories.SnapshotRepository
	spaces    *SpacesService
}

func NewSnapshotExporter(snapshots repositories.SnapshotRepository, spaces *SpacesService) *SnapshotExporter {
	return &SnapshotExporter{snapshots: snapshots, spaces: spaces}
}

type seasonArchive struct {
	SeasonID   int64                    `json:"season_id"`
	ExportedAt time.Time                `json:"exported_at"`
	Entries    []*models.SeasonSnapshot `json:"entries"`
}

// ExportSeason uploads both archive objects concurrently. Errors are returned
// rather than swallowed so the caller can retry a failed export.
func (e *SnapshotExporter) ExportSeason(ctx context.Context, seasonID int64) error {
	full, err := e.snapshots.ListBySeason(ctx, seasonID)
	if err != nil {
		return fmt.Errorf("failed to load season %d snapshot: %w", seasonID, err)
	}
	top, err := e.snapshots.TopByWeight(ctx, seasonID, exportTopSize)
	if err != nil {
		return fmt.Errorf("failed to load season %d leaderboard: %w", seasonID, err)
	}

	now := time.Now().UTC()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		body, err := json.Marshal(seasonArchive{SeasonID: seasonID, ExportedAt: now, Entries: full})
		if err != nil {
			return err
		}
		return e.spaces.PutJSON(gctx, e.key(seasonID, "full.json"), body)
	})
	g.Go(func() error {
		body, err := json.Marshal(seasonArchive{SeasonID: seasonID, ExportedAt: now, Entries: top})
		if err != nil {
			return err
		}
		return e.spaces.PutJSON(gctx, e.key(seasonID, "top.json"), body)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("Season archive exported",
		slog.String("type", "season"),
		slog.Int64("season_id", seasonID),
		slog.Int("entries", len(full)))
	return nil
}

func (e *SnapshotExporter) key(seasonID int64, name string) string {
	return fmt.Sprintf("%s/season-%d/%s", e.spaces.SnapshotRoot, seasonID, name)
}
