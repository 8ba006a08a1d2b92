package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"gauntlet-queue/internal/auth"
	"gauntlet-queue/internal/constants"
	"gauntlet-queue/internal/domain"
	"gauntlet-queue/internal/service"

	"github.com/rs/zerolog"
)

// QueueServer exposes the matchmaking operations over JSON. Transport stays
// thin here: parse, resolve identity, call the service, map the error.
type QueueServer struct {
	players    *service.PlayerService
	matchmaker *service.MatchmakerService
	lobbies    *service.LobbyService
	stats      *service.StatsService
	resolver   auth.IdentityResolver
	logger     zerolog.Logger
}

func NewQueueServer(
	players *service.PlayerService,
	matchmaker *service.MatchmakerService,
	lobbies *service.LobbyService,
	stats *service.StatsService,
	resolver auth.IdentityResolver,
	logger zerolog.Logger,
) *QueueServer {
	return &QueueServer{
		players:    players,
		matchmaker: matchmaker,
		lobbies:    lobbies,
		stats:      stats,
		resolver:   resolver,
		logger:     logger,
	}
}

func (s *QueueServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/players", s.handleRegister)
	mux.HandleFunc("GET /api/players/{id}", s.handleGetPlayer)
	mux.HandleFunc("POST /api/players/{id}/stats", s.handleHeroStats)
	mux.HandleFunc("POST /api/queue/join", s.handleJoinQueue)
	mux.HandleFunc("POST /api/queue/leave", s.handleLeaveQueue)
	mux.HandleFunc("POST /api/match/attempt", s.handleAttemptMatch)
	mux.HandleFunc("GET /api/lobbies/{id}", s.handleGetLobby)
	mux.HandleFunc("POST /api/lobbies/{id}/result", s.handleReportResult)
	mux.HandleFunc("GET /api/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /api/leaderboard/{role}", s.handleRoleLeaderboard)
}

func (s *QueueServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	playerID, err := s.resolver.Resolve(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BattleTag == "" {
		writeError(w, http.StatusBadRequest, "battleTag is required")
		return
	}

	player, err := s.players.Register(r.Context(), service.RegisterInput{
		ID:          playerID,
		BattleTag:   req.BattleTag,
		DisplayName: req.DisplayName,
		Roles:       req.Roles,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlayerResponse(player))
}

func (s *QueueServer) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := s.players.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlayerResponse(player))
}

func (s *QueueServer) handleHeroStats(w http.ResponseWriter, r *http.Request) {
	var req heroStatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.StatsByHero) == 0 {
		writeError(w, http.StatusBadRequest, "statsByHero is required")
		return
	}

	if err := s.stats.ApplyHeroStats(r.Context(), r.PathValue("id"), req.StatsByHero); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"applied": true})
}

func (s *QueueServer) handleJoinQueue(w http.ResponseWriter, r *http.Request) {
	playerID, err := s.resolver.Resolve(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	var req joinQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	variant, err := domain.ParseVariant(req.Variant)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	result, err := s.matchmaker.Join(r.Context(), playerID, role, variant)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toQueueStatus(result, true))
}

func (s *QueueServer) handleLeaveQueue(w http.ResponseWriter, r *http.Request) {
	playerID, err := s.resolver.Resolve(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	var req leaveQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	variant, err := domain.ParseVariant(req.Variant)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if err := s.matchmaker.Leave(r.Context(), playerID, variant); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
}

func (s *QueueServer) handleAttemptMatch(w http.ResponseWriter, r *http.Request) {
	var req attemptMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	variant, err := domain.ParseVariant(req.Variant)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	result, err := s.matchmaker.AttemptMatch(r.Context(), variant)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQueueStatus(result, false))
}

func (s *QueueServer) handleGetLobby(w http.ResponseWriter, r *http.Request) {
	lobby, err := s.lobbies.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLobbyResponse(lobby))
}

func (s *QueueServer) handleReportResult(w http.ResponseWriter, r *http.Request) {
	var req reportResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	outcome, err := domain.ParseOutcome(req.Outcome)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if err := s.lobbies.RecordResult(r.Context(), r.PathValue("id"), outcome); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ratingsUpdated": true})
}

func (s *QueueServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	players, err := s.players.TopOverall(r.Context(), queryLimit(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaderboard(players))
}

func (s *QueueServer) handleRoleLeaderboard(w http.ResponseWriter, r *http.Request) {
	role, err := domain.ParseRole(r.PathValue("role"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	players, err := s.players.TopByRole(r.Context(), role, queryLimit(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaderboard(players))
}

func toQueueStatus(result *service.MatchResult, queued bool) queueStatusResponse {
	resp := queueStatusResponse{
		Queued:       queued,
		StillWaiting: !result.Matched,
		Counts:       result.Counts,
	}
	if result.Matched {
		lobby := toLobbyResponse(result.Lobby)
		resp.Lobby = &lobby
	}
	return resp
}

func toLeaderboard(players []domain.Player) []playerResponse {
	out := make([]playerResponse, len(players))
	for i := range players {
		out[i] = toPlayerResponse(&players[i])
	}
	return out
}

func queryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("top")
	if raw == "" {
		return constants.LeaderboardLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return constants.LeaderboardLimit
	}
	return limit
}

func (s *QueueServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrNoIdentity):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrUnknownPlayer), errors.Is(err, domain.ErrUnknownLobby):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicateEntry),
		errors.Is(err, domain.ErrAlreadyFinished),
		errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrRoleMismatch),
		errors.Is(err, domain.ErrUnknownRole),
		errors.Is(err, domain.ErrUnknownVariant),
		errors.Is(err, domain.ErrUnknownOutcome):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
