package service

import (
	"context"
	"fmt"

	"gauntlet-queue/internal/constants"
	"gauntlet-queue/internal/domain"

	"github.com/rs/zerolog"
)

// PlayerService is the registry: signup, lookup and leaderboard reads over
// persisted player records.
type PlayerService struct {
	ratings RatingSource
	repo    PlayerStore
	logger  zerolog.Logger
}

func NewPlayerService(ratings RatingSource, repo PlayerStore, logger zerolog.Logger) *PlayerService {
	return &PlayerService{ratings: ratings, repo: repo, logger: logger}
}

type RegisterInput struct {
	ID          string
	BattleTag   string
	DisplayName string
	Roles       []string
}

// Register creates a player with initial per-role ratings pulled from the
// public profile API. A failed or empty profile fetch degrades to zero
// ratings; it never blocks signup.
func (s *PlayerService) Register(ctx context.Context, input RegisterInput) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if len(input.Roles) == 0 {
		return nil, fmt.Errorf("at least one role is required: %w", domain.ErrUnknownRole)
	}
	roles := make([]domain.Role, 0, len(input.Roles))
	for _, raw := range input.Roles {
		role, err := domain.ParseRole(raw)
		if err != nil {
			return nil, fmt.Errorf("role %q: %w", raw, err)
		}
		roles = append(roles, role)
	}

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	fetched, err := s.ratings.FetchRatings(apiCtx, input.BattleTag)
	if err != nil {
		s.logger.Warn().Err(err).Str("battle_tag", input.BattleTag).Msg("profile fetch failed, starting with zero ratings")
		fetched = map[domain.Role]int{}
	}

	// Keep only the roles the player signed up for; a stray profile rating
	// for an unselected role would skew the overall average.
	ratings := make(map[domain.Role]int, len(roles))
	for _, role := range roles {
		ratings[role] = fetched[role]
	}

	player := &domain.Player{
		ID:           input.ID,
		BattleTag:    input.BattleTag,
		DisplayName:  input.DisplayName,
		Roles:        roles,
		RatingByRole: ratings,
		HeroStats:    domain.HeroStats{},
	}
	if err := s.repo.Create(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("player_id", player.ID).
		Str("battle_tag", player.BattleTag).
		Int("roles", len(roles)).
		Msg("player registered")
	return player, nil
}

func (s *PlayerService) Get(ctx context.Context, id string) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.repo.Get(ctx, id)
}

func (s *PlayerService) GetByBattleTag(ctx context.Context, battleTag string) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.repo.GetByBattleTag(ctx, battleTag)
}

// TopByRole returns the role leaderboard, limit clamped to a sane range.
func (s *PlayerService) TopByRole(ctx context.Context, role domain.Role, limit int) ([]domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.repo.TopByRole(ctx, role, clampLimit(limit))
}

// TopOverall returns the overall leaderboard ordered by summed role ratings.
func (s *PlayerService) TopOverall(ctx context.Context, limit int) ([]domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.repo.TopOverall(ctx, clampLimit(limit))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return constants.LeaderboardLimit
	}
	if limit > constants.MaxLeaderboardSize {
		return constants.MaxLeaderboardSize
	}
	return limit
}
