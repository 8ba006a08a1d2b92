package fx

import (
	"gauntlet-queue/internal/api"
	"gauntlet-queue/internal/auth"
	"gauntlet-queue/internal/config"
	"gauntlet-queue/internal/database"
	"gauntlet-queue/internal/logger"
	"gauntlet-queue/internal/monitoring"
	"gauntlet-queue/internal/queue"
	"gauntlet-queue/internal/repository"
	"gauntlet-queue/internal/server"
	"gauntlet-queue/internal/service"

	"go.uber.org/fx"
)

func ProvidePlayerStore(r *repository.PlayerRepository) service.PlayerStore {
	return r
}

func ProvideLobbyStore(r *repository.LobbyRepository) service.LobbyStore {
	return r
}

func ProvideRatingSource(c *api.OvrstatClient) service.RatingSource {
	return c
}

func ProvideIdentityResolver(r *auth.HeaderResolver) auth.IdentityResolver {
	return r
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewLobbyRepository),
	fx.Provide(ProvidePlayerStore),
	fx.Provide(ProvideLobbyStore),
	// queue core
	fx.Provide(queue.NewStore),
	fx.Provide(monitoring.NewMonitor),
	// collaborators
	fx.Provide(api.NewOvrstatClient),
	fx.Provide(ProvideRatingSource),
	fx.Provide(auth.NewHeaderResolver),
	fx.Provide(ProvideIdentityResolver),
	// svc
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewRatingService),
	fx.Provide(service.NewLobbyService),
	fx.Provide(service.NewMatchmakerService),
	fx.Provide(service.NewStatsService),
	// server
	fx.Provide(server.NewQueueServer),
)
