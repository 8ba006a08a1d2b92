package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gauntlet-queue/internal/domain"
	"gauntlet-queue/internal/matchmaking"
	"gauntlet-queue/internal/monitoring"
	"gauntlet-queue/internal/queue"

	"github.com/rs/zerolog"
)

// errNotReady flows out of the formation callback when the queue cannot
// fill both teams yet. It is normal control flow, never surfaced to callers.
var errNotReady = errors.New("queue not ready")

// MatchmakerService owns the join-then-matchmake sequence. All queue reads
// and mutations for a variant happen inside the store's per-variant critical
// section, so two concurrent joins can never form overlapping teams.
type MatchmakerService struct {
	store   *queue.Store
	players PlayerStore
	lobbies *LobbyService
	monitor *monitoring.Monitor
	logger  zerolog.Logger
}

func NewMatchmakerService(store *queue.Store, players PlayerStore, lobbies *LobbyService, monitor *monitoring.Monitor, logger zerolog.Logger) *MatchmakerService {
	return &MatchmakerService{store: store, players: players, lobbies: lobbies, monitor: monitor, logger: logger}
}

// MatchResult is the outcome of a join or an explicit matchmaking attempt:
// either a formed lobby, or the current per-role counts while waiting.
type MatchResult struct {
	Matched bool
	Lobby   *domain.Lobby
	Counts  map[domain.Role]int
}

// Join queues a player for a role and variant, then attempts to form a
// match. The join is rejected with ErrDuplicateEntry when the player is
// already waiting for this variant, and with ErrRoleMismatch when they do
// not hold the role.
func (s *MatchmakerService) Join(ctx context.Context, playerID string, role domain.Role, variant domain.Variant) (*MatchResult, error) {
	if _, err := domain.TemplateFor(variant); err != nil {
		return nil, err
	}

	player, err := s.players.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if !player.HasRole(role) {
		s.monitor.TrackQueueOperation("join", variant, "role_mismatch")
		return nil, domain.ErrRoleMismatch
	}

	entry := domain.QueueEntry{
		PlayerID:  player.ID,
		BattleTag: player.BattleTag,
		Role:      role,
		Variant:   variant,
		Rating:    player.Rating(role),
	}
	if err := s.store.Add(entry); err != nil {
		s.monitor.TrackQueueOperation("join", variant, "duplicate")
		return nil, err
	}

	s.monitor.TrackQueueOperation("join", variant, "ok")
	s.logger.Info().
		Str("player_id", player.ID).
		Str("role", string(role)).
		Str("variant", string(variant)).
		Int("rating", entry.Rating).
		Msg("player queued")

	return s.AttemptMatch(ctx, variant)
}

// Leave drops a player from a variant's queue. Leaving while not queued is
// a no-op, which covers a disconnect racing a completed selection.
func (s *MatchmakerService) Leave(ctx context.Context, playerID string, variant domain.Variant) error {
	if _, err := domain.TemplateFor(variant); err != nil {
		return err
	}
	s.store.Remove(playerID, variant)
	s.monitor.TrackQueueOperation("leave", variant, "ok")
	s.logger.Info().Str("player_id", playerID).Str("variant", string(variant)).Msg("player left queue")
	return nil
}

// AttemptMatch evaluates readiness against a live snapshot and, when both
// teams can be filled, selects them and removes the selected players from
// the queue as one atomic unit.
func (s *MatchmakerService) AttemptMatch(ctx context.Context, variant domain.Variant) (*MatchResult, error) {
	tmpl, err := domain.TemplateFor(variant)
	if err != nil {
		return nil, err
	}

	var (
		teamA, teamB domain.Team
		hostID       string
		counts       map[domain.Role]int
		selected     []domain.QueueEntry
	)

	err = s.store.FormMatch(variant, func(snap queue.Snapshot) ([]string, error) {
		counts = snap.Counts()
		if !matchmaking.IsReady(counts, tmpl) {
			return nil, errNotReady
		}

		var formErr error
		teamA, teamB, formErr = matchmaking.FormTeams(snap, tmpl)
		if formErr != nil {
			return nil, formErr
		}

		ids := append(teamA.PlayerIDs(), teamB.PlayerIDs()...)
		hostID, selected = hostAndEntries(snap, ids)
		return ids, nil
	})
	if errors.Is(err, errNotReady) {
		return &MatchResult{Counts: counts}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("team formation aborted: %w", err)
	}

	lobby, err := s.lobbies.Create(ctx, variant, hostID, teamA, teamB)
	if err != nil {
		// The players were already taken out of the queue; put them back
		// with their original enqueue times so they lose no waiting credit.
		s.requeue(selected)
		return nil, err
	}

	s.monitor.TrackMatchFormed(variant)
	s.logger.Info().
		Str("lobby_id", lobby.ID).
		Str("variant", string(variant)).
		Int("team_a_rating", teamA.AggregateRating()).
		Int("team_b_rating", teamB.AggregateRating()).
		Msg("match formed")

	return &MatchResult{Matched: true, Lobby: lobby, Counts: s.store.Counts(variant)}, nil
}

// Counts reports the current queue composition for a variant.
func (s *MatchmakerService) Counts(variant domain.Variant) (map[domain.Role]int, error) {
	if _, err := domain.TemplateFor(variant); err != nil {
		return nil, err
	}
	return s.store.Counts(variant), nil
}

func (s *MatchmakerService) requeue(entries []domain.QueueEntry) {
	for _, e := range entries {
		if err := s.store.Add(e); err != nil && !errors.Is(err, domain.ErrDuplicateEntry) {
			s.logger.Warn().Err(err).Str("player_id", e.PlayerID).Msg("failed to requeue player after lobby create failure")
		}
	}
}

// hostAndEntries finds the longest-waiting selected player (the lobby host)
// and collects the selected entries for a potential requeue.
func hostAndEntries(snap queue.Snapshot, ids []string) (string, []domain.QueueEntry) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	var host string
	var earliest time.Time
	var entries []domain.QueueEntry
	for _, roleEntries := range snap.ByRole {
		for _, e := range roleEntries {
			if _, ok := set[e.PlayerID]; !ok {
				continue
			}
			entries = append(entries, e)
			if host == "" || e.EnqueuedAt.Before(earliest) {
				host = e.PlayerID
				earliest = e.EnqueuedAt
			}
		}
	}
	return host, entries
}
