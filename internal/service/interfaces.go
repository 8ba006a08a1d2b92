package service

import (
	"context"

	"gauntlet-queue/internal/domain"
)

// PlayerStore is the slice of the persistence layer the services need for
// player records. *repository.PlayerRepository satisfies it.
type PlayerStore interface {
	Create(ctx context.Context, player *domain.Player) error
	Get(ctx context.Context, id string) (*domain.Player, error)
	GetByBattleTag(ctx context.Context, battleTag string) (*domain.Player, error)
	UpdateRating(ctx context.Context, id string, role domain.Role, rating int, version int64) error
	AddResult(ctx context.Context, id string, wins, losses, ties int) error
	UpdateHeroStats(ctx context.Context, id string, stats domain.HeroStats, version int64) error
	TopByRole(ctx context.Context, role domain.Role, limit int) ([]domain.Player, error)
	TopOverall(ctx context.Context, limit int) ([]domain.Player, error)
}

// LobbyStore is the persistence surface for lobby records.
// *repository.LobbyRepository satisfies it.
type LobbyStore interface {
	Create(ctx context.Context, lobby *domain.Lobby) error
	Get(ctx context.Context, id string) (*domain.Lobby, error)
	MarkFinished(ctx context.Context, id string, outcome domain.MatchOutcome) error
	ListRecent(ctx context.Context, limit int) ([]domain.Lobby, error)
}

// RatingSource supplies initial per-role ratings for a new signup.
// *api.OvrstatClient satisfies it.
type RatingSource interface {
	FetchRatings(ctx context.Context, battleTag string) (map[domain.Role]int, error)
}
