package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/voidlabs/voidgrid/voidgrid"
	"github.com/voidlabs/voidgrid/voidgrid/database/models"
	"github.com/voidlabs/voidgrid/voidgrid/logger"
)

type messageRequest struct {
	Address string `json:"address"`
	Channel string `json:"channel"`
}

type burnRequest struct {
	Address  string  `json:"address"`
	SeasonID int64   `json:"season_id"`
	Amount   float64 `json:"amount"`
}

type holdingsRequest struct {
	Holdings float64 `json:"holdings"`
}

func validChannel(channel string) bool {
	switch channel {
	case models.ChannelGlobal, models.ChannelZone, models.ChannelDM:
		return true
	}
	return false
}

// HealthCheck reports process and dependency health.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := s.db.Ping(c.Context()); err != nil {
		dbStatus = "unreachable"
	}

	status := fiber.StatusOK
	if dbStatus != "ok" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{
		"status":    dbStatus,
		"db":        dbStatus,
		"timestamp": time.Now().UTC(),
	})
}

// ReportMessage counts one chat message against the sender's rate limit. A
// denied message returns 200 with allowed=false: hitting a cap is a normal
// outcome for the chat gateway to act on, not a failure.
func (s *Server) ReportMessage(c *fiber.Ctx) error {
	var req messageRequest
	if err := c.BodyParser(&req); err != nil {
		return sendBadRequest(c, "invalid request body")
	}
	if req.Address == "" {
		return sendBadRequest(c, "address is required")
	}
	if !validChannel(req.Channel) {
		return sendBadRequest(c, "channel must be one of global, zone, dm")
	}

	start := time.Now().UTC()
	res, err := s.engine.ReportMessage(c.Context(), req.Address, req.Channel, start)
	logger.LogEvent("message", req.Address, time.Since(start), err)
	if err != nil {
		return s.engineError(c, err)
	}
	return sendSuccess(c, res)
}

// ReportBurn converts a confirmed on-chain burn into XP.
func (s *Server) ReportBurn(c *fiber.Ctx) error {
	var req burnRequest
	if err := c.BodyParser(&req); err != nil {
		return sendBadRequest(c, "invalid request body")
	}
	if req.Address == "" {
		return sendBadRequest(c, "address is required")
	}

	start := time.Now().UTC()
	res, err := s.engine.ReportBurn(c.Context(), req.Address, req.SeasonID, req.Amount, start)
	logger.LogEvent("burn", req.Address, time.Since(start), err)
	if err != nil {
		return s.engineError(c, err)
	}
	return sendSuccess(c, res)
}

// GetAccount returns the full progression snapshot for an address.
func (s *Server) GetAccount(c *fiber.Ctx) error {
	address := c.Params("address")
	if address == "" {
		return sendBadRequest(c, "address is required")
	}

	snap, err := s.engine.GetAccountSnapshot(c.Context(), address, time.Now().UTC())
	if err != nil {
		return s.engineError(c, err)
	}
	return sendSuccess(c, snap)
}

// GetSeason returns the active season, rolling over lazily if needed.
func (s *Server) GetSeason(c *fiber.Ctx) error {
	season, err := s.engine.GetCurrentSeason(c.Context(), time.Now().UTC())
	if err != nil {
		return s.engineError(c, err)
	}
	return sendSuccess(c, season)
}

// UpdateHoldings records the wallet subsystem's holdings report.
func (s *Server) UpdateHoldings(c *fiber.Ctx) error {
	address := c.Params("address")
	if address == "" {
		return sendBadRequest(c, "address is required")
	}

	var req holdingsRequest
	if err := c.BodyParser(&req); err != nil {
		return sendBadRequest(c, "invalid request body")
	}

	if err := s.engine.UpdateHoldings(c.Context(), address, req.Holdings, time.Now().UTC()); err != nil {
		return s.engineError(c, err)
	}
	return sendSuccess(c, fiber.Map{"address": address, "holdings": req.Holdings})
}

// GetLeaderboard returns the live airdrop-weight standings for the active
// season. Needs the Redis board; ended seasons are served from their frozen
// snapshot instead.
func (s *Server) GetLeaderboard(c *fiber.Ctx) error {
	limit := int64(c.QueryInt("limit", 50))
	if limit < 1 || limit > 500 {
		return sendBadRequest(c, "limit must be between 1 and 500")
	}

	season, err := s.engine.GetCurrentSeason(c.Context(), time.Now().UTC())
	if err != nil {
		return s.engineError(c, err)
	}

	seasonID := int64(c.QueryInt("season", int(season.ID)))
	if seasonID == season.ID {
		if s.board == nil {
			return sendError(c, fiber.StatusServiceUnavailable, "LEADERBOARD_DISABLED", "live leaderboard is not configured")
		}
		entries, err := s.board.Top(c.Context(), seasonID, limit)
		if err != nil {
			return sendInternalServerError(c, "failed to read leaderboard")
		}
		return sendSuccess(c, fiber.Map{"season_id": seasonID, "entries": entries, "frozen": false})
	}

	rows, err := s.snapshots.TopByWeight(c.Context(), seasonID, int(limit))
	if err != nil {
		return sendInternalServerError(c, "failed to read season snapshot")
	}
	if len(rows) == 0 {
		return sendNotFound(c, "no snapshot for that season")
	}
	return sendSuccess(c, fiber.Map{"season_id": seasonID, "entries": rows, "frozen": true})
}

func (s *Server) engineError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, voidgrid.ErrInvalidAmount):
		return sendBadRequest(c, "amount must be a finite, non-negative number")
	case errors.Is(err, voidgrid.ErrSeasonEnded):
		return sendConflict(c, "SEASON_ENDED", "that season is no longer active")
	case errors.Is(err, voidgrid.ErrCapExceeded):
		return sendConflict(c, "CAP_EXCEEDED", "rate limit exhausted for this channel")
	default:
		return sendInternalServerError(c, "storage failure")
	}
}
