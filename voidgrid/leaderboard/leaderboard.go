// Package leaderboard keeps per-season airdrop-weight standings in redis
// sorted sets so HUD queries never touch the ledger.
package leaderboard

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/voidlabs/voidgrid/voidgrid"
)

// Entry is one account's position on a season's board.
type Entry struct {
	Address string  `json:"address"`
	Weight  float64 `json:"weight"`
	Rank    int64   `json:"rank"`
}

type Board struct {
	client *redis.Client
}

func New(cfg voidgrid.RedisConfig) (*Board, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Board{client: client}, nil
}

func seasonKey(seasonID int64) string {
	return fmt.Sprintf("airdrop:season:%d", seasonID)
}

// AddWeight credits weight to the address on the season's board.
func (b *Board) AddWeight(ctx context.Context, seasonID int64, address string, weight float64) error {
	return b.client.ZIncrBy(ctx, seasonKey(seasonID), weight, address).Err()
}

// Top returns the highest-weighted accounts for the season.
func (b *Board) Top(ctx context.Context, seasonID int64, limit int64) ([]Entry, error) {
	zs, err := b.client.ZRevRangeWithScores(ctx, seasonKey(seasonID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	entries := make([]Entry, 0, len(zs))
	for i, z := range zs {
		addr, _ := z.Member.(string)
		entries = append(entries, Entry{
			Address: addr,
			Weight:  z.Score,
			Rank:    int64(i + 1),
		})
	}
	return entries, nil
}

// Rank returns the address's 1-based rank, or 0 when unranked.
func (b *Board) Rank(ctx context.Context, seasonID int64, address string) (int64, error) {
	rank, err := b.client.ZRevRank(ctx, seasonKey(seasonID), address).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rank + 1, nil
}

// Reset drops the board for an ended season; the durable snapshot rows are
// the source of truth from then on.
func (b *Board) Reset(ctx context.Context, seasonID int64) error {
	return b.client.Del(ctx, seasonKey(seasonID)).Err()
}

func (b *Board) Close() error {
	return b.client.Close()
}
