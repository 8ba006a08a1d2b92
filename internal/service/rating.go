package service

import (
	"context"
	"errors"
	"fmt"

	"gauntlet-queue/internal/config"
	"gauntlet-queue/internal/constants"
	"gauntlet-queue/internal/domain"
	"gauntlet-queue/internal/matchmaking"
	"gauntlet-queue/internal/monitoring"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// RatingService applies a finished match's outcome to every participant:
// the rating for the role they played moves by the team's Elo delta, and
// the win/loss/tie counters are bumped from the same outcome.
type RatingService struct {
	players PlayerStore
	monitor *monitoring.Monitor
	logger  zerolog.Logger
	kFactor int
}

func NewRatingService(players PlayerStore, monitor *monitoring.Monitor, cfg *config.Config, logger zerolog.Logger) *RatingService {
	return &RatingService{players: players, monitor: monitor, logger: logger, kFactor: cfg.KFactor}
}

func (s *RatingService) Apply(ctx context.Context, teamA, teamB domain.Team, outcome domain.MatchOutcome) error {
	expectedA := matchmaking.ExpectedScore(teamA.AggregateRating(), teamB.AggregateRating())
	actualA := matchmaking.ActualScore(outcome)
	deltaA := matchmaking.RatingDelta(expectedA, actualA, s.kFactor)
	deltaB := matchmaking.RatingDelta(1-expectedA, 1-actualA, s.kFactor)

	winsA, lossesA, tiesA := resultCounters(actualA)
	winsB, lossesB, tiesB := resultCounters(1 - actualA)

	s.logger.Info().
		Str("outcome", string(outcome)).
		Float64("expected_a", expectedA).
		Int("delta_a", deltaA).
		Int("delta_b", deltaB).
		Msg("applying match outcome")

	g, gCtx := errgroup.WithContext(ctx)
	for _, a := range teamA {
		g.Go(func() error {
			return s.applyPlayer(gCtx, a, deltaA, winsA, lossesA, tiesA)
		})
	}
	for _, b := range teamB {
		g.Go(func() error {
			return s.applyPlayer(gCtx, b, deltaB, winsB, lossesB, tiesB)
		})
	}
	return g.Wait()
}

// applyPlayer runs the two independent steps for one participant. The
// counter update always lands first and is never skipped because of a
// failed rating write.
func (s *RatingService) applyPlayer(ctx context.Context, a domain.Assignment, delta, wins, losses, ties int) error {
	if err := s.players.AddResult(ctx, a.PlayerID, wins, losses, ties); err != nil {
		return fmt.Errorf("failed to update result counters for %s: %w", a.PlayerID, err)
	}

	var err error
	for attempt := 0; attempt <= constants.RatingConflictRetries; attempt++ {
		var player *domain.Player
		player, err = s.players.Get(ctx, a.PlayerID)
		if err != nil {
			return fmt.Errorf("failed to load player %s: %w", a.PlayerID, err)
		}

		newRating := player.Rating(a.Role) + delta
		err = s.players.UpdateRating(ctx, a.PlayerID, a.Role, newRating, player.Version)
		if err == nil {
			s.monitor.TrackRatingUpdate(a.Role)
			s.logger.Debug().
				Str("player_id", a.PlayerID).
				Str("role", string(a.Role)).
				Int("rating", newRating).
				Int("delta", delta).
				Msg("rating updated")
			return nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("failed to update rating for %s: %w", a.PlayerID, err)
		}
		s.logger.Warn().Str("player_id", a.PlayerID).Int("attempt", attempt).Msg("rating write conflicted, retrying with fresh read")
	}
	return fmt.Errorf("rating update for %s kept conflicting: %w", a.PlayerID, err)
}

func resultCounters(actual float64) (wins, losses, ties int) {
	switch actual {
	case 1:
		return 1, 0, 0
	case 0:
		return 0, 1, 0
	default:
		return 0, 0, 1
	}
}
