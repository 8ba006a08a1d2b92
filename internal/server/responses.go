package server

import (
	"encoding/json"
	"net/http"

	"gauntlet-queue/internal/domain"
)

type registerRequest struct {
	BattleTag   string   `json:"battleTag"`
	DisplayName string   `json:"displayName"`
	Roles       []string `json:"roles"`
}

type joinQueueRequest struct {
	Role    string `json:"role"`
	Variant string `json:"variant"`
}

type leaveQueueRequest struct {
	Variant string `json:"variant"`
}

type attemptMatchRequest struct {
	Variant string `json:"variant"`
}

type reportResultRequest struct {
	Outcome string `json:"outcome"`
}

type heroStatsRequest struct {
	StatsByHero domain.HeroStats `json:"statsByHero"`
}

type playerResponse struct {
	ID          string              `json:"id"`
	BattleTag   string              `json:"battleTag"`
	DisplayName string              `json:"displayName"`
	Roles       []domain.Role       `json:"roles"`
	Ratings     map[domain.Role]int `json:"ratings"`
	Overall     int                 `json:"overall"`
	Wins        int                 `json:"wins"`
	Losses      int                 `json:"losses"`
	Ties        int                 `json:"ties"`
}

func toPlayerResponse(p *domain.Player) playerResponse {
	return playerResponse{
		ID:          p.ID,
		BattleTag:   p.BattleTag,
		DisplayName: p.DisplayName,
		Roles:       p.Roles,
		Ratings:     p.RatingByRole,
		Overall:     p.OverallRating(),
		Wins:        p.Wins,
		Losses:      p.Losses,
		Ties:        p.Ties,
	}
}

type lobbyResponse struct {
	ID       string              `json:"id"`
	HostID   string              `json:"hostId"`
	Variant  domain.Variant      `json:"variant"`
	TeamA    []domain.Assignment `json:"teamA"`
	TeamB    []domain.Assignment `json:"teamB"`
	Finished bool                `json:"finished"`
	Outcome  string              `json:"outcome,omitempty"`
}

func toLobbyResponse(l *domain.Lobby) lobbyResponse {
	return lobbyResponse{
		ID:       l.ID,
		HostID:   l.HostID,
		Variant:  l.Variant,
		TeamA:    l.TeamA,
		TeamB:    l.TeamB,
		Finished: l.Finished,
		Outcome:  string(l.Outcome),
	}
}

type queueStatusResponse struct {
	Queued       bool                `json:"queued"`
	StillWaiting bool                `json:"stillWaiting"`
	Counts       map[domain.Role]int `json:"counts,omitempty"`
	Lobby        *lobbyResponse      `json:"lobby,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
