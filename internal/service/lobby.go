package service

import (
	"context"
	"fmt"

	"gauntlet-queue/internal/domain"
	"gauntlet-queue/internal/monitoring"

	"github.com/rs/zerolog"
)

// LobbyService tracks formed matches through to completion. A lobby's
// finished flag flips exactly once; the second report of the same match
// gets ErrAlreadyFinished and no rating delta.
type LobbyService struct {
	lobbies LobbyStore
	rating  *RatingService
	monitor *monitoring.Monitor
	logger  zerolog.Logger
}

func NewLobbyService(lobbies LobbyStore, rating *RatingService, monitor *monitoring.Monitor, logger zerolog.Logger) *LobbyService {
	return &LobbyService{lobbies: lobbies, rating: rating, monitor: monitor, logger: logger}
}

func (s *LobbyService) Create(ctx context.Context, variant domain.Variant, hostID string, teamA, teamB domain.Team) (*domain.Lobby, error) {
	lobby := &domain.Lobby{
		HostID:  hostID,
		Variant: variant,
		TeamA:   teamA,
		TeamB:   teamB,
	}
	if err := s.lobbies.Create(ctx, lobby); err != nil {
		return nil, fmt.Errorf("failed to create lobby: %w", err)
	}
	return lobby, nil
}

func (s *LobbyService) Get(ctx context.Context, id string) (*domain.Lobby, error) {
	return s.lobbies.Get(ctx, id)
}

func (s *LobbyService) ListRecent(ctx context.Context, limit int) ([]domain.Lobby, error) {
	return s.lobbies.ListRecent(ctx, limit)
}

// RecordResult stores the outcome and adjusts every participant's rating.
// MarkFinished is the single-use gate: two concurrent reports for the same
// lobby serialize on it, and only the winner proceeds to the rating update.
func (s *LobbyService) RecordResult(ctx context.Context, id string, outcome domain.MatchOutcome) error {
	lobby, err := s.lobbies.Get(ctx, id)
	if err != nil {
		return err
	}
	if lobby.Finished {
		return domain.ErrAlreadyFinished
	}

	if err := s.lobbies.MarkFinished(ctx, id, outcome); err != nil {
		return err
	}

	s.monitor.TrackResultRecorded(outcome)
	s.logger.Info().
		Str("lobby_id", id).
		Str("outcome", string(outcome)).
		Msg("match result recorded")

	if err := s.rating.Apply(ctx, lobby.TeamA, lobby.TeamB, outcome); err != nil {
		s.logger.Error().Err(err).Str("lobby_id", id).Msg("rating update failed after result was recorded")
		return fmt.Errorf("result recorded but rating update failed: %w", err)
	}
	return nil
}
