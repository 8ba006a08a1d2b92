package service

import (
	"context"
	"errors"
	"fmt"

	"gauntlet-queue/internal/constants"
	"gauntlet-queue/internal/domain"

	"github.com/rs/zerolog"
)

// StatsService ingests post-match hero usage data. Parsing game logs into
// per-hero stat maps happens upstream; this side only merges the numbers
// into the player record. Stats ingestion is independent of rating logic.
type StatsService struct {
	players PlayerStore
	logger  zerolog.Logger
}

func NewStatsService(players PlayerStore, logger zerolog.Logger) *StatsService {
	return &StatsService{players: players, logger: logger}
}

// ApplyHeroStats merges statsByHero into the player's aggregate hero stats,
// retrying once on a lost write race.
func (s *StatsService) ApplyHeroStats(ctx context.Context, playerID string, statsByHero domain.HeroStats) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	var err error
	for attempt := 0; attempt <= constants.RatingConflictRetries; attempt++ {
		var player *domain.Player
		player, err = s.players.Get(ctx, playerID)
		if err != nil {
			return err
		}

		merged := player.HeroStats.Merge(statsByHero)
		err = s.players.UpdateHeroStats(ctx, playerID, merged, player.Version)
		if err == nil {
			s.logger.Debug().
				Str("player_id", playerID).
				Int("heroes", len(statsByHero)).
				Msg("hero stats applied")
			return nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("failed to update hero stats for %s: %w", playerID, err)
		}
	}
	return fmt.Errorf("hero stats update for %s kept conflicting: %w", playerID, err)
}
