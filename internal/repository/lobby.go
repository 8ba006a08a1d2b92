package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gauntlet-queue/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type LobbyRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewLobbyRepository(sqlDB *sql.DB, logger zerolog.Logger) *LobbyRepository {
	return &LobbyRepository{db: sqlDB, logger: logger}
}

func (r *LobbyRepository) Create(ctx context.Context, lobby *domain.Lobby) error {
	if lobby.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		lobby.ID = id
	}

	teamA, err := json.Marshal(lobby.TeamA)
	if err != nil {
		return fmt.Errorf("failed to marshal team a: %w", err)
	}
	teamB, err := json.Marshal(lobby.TeamB)
	if err != nil {
		return fmt.Errorf("failed to marshal team b: %w", err)
	}

	now := time.Now()
	lobby.CreatedAt = now
	lobby.UpdatedAt = now

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO lobbies (id, host_id, variant, team_a, team_b, finished, outcome, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, '', ?, ?)`,
		lobby.ID, lobby.HostID, string(lobby.Variant), string(teamA), string(teamB),
		lobby.CreatedAt, lobby.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert lobby: %w", err)
	}

	r.logger.Info().
		Str("lobby_id", lobby.ID).
		Str("variant", string(lobby.Variant)).
		Str("host_id", lobby.HostID).
		Msg("lobby created")
	return nil
}

func (r *LobbyRepository) Get(ctx context.Context, id string) (*domain.Lobby, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, host_id, variant, team_a, team_b, finished, outcome, created_at, updated_at
		FROM lobbies WHERE id = ?`, id)

	var lobby domain.Lobby
	var variant, teamA, teamB, outcome string
	var finished int

	err := row.Scan(&lobby.ID, &lobby.HostID, &variant, &teamA, &teamB, &finished, &outcome, &lobby.CreatedAt, &lobby.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUnknownLobby
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan lobby: %w", err)
	}

	if err := json.Unmarshal([]byte(teamA), &lobby.TeamA); err != nil {
		return nil, fmt.Errorf("failed to unmarshal team a: %w", err)
	}
	if err := json.Unmarshal([]byte(teamB), &lobby.TeamB); err != nil {
		return nil, fmt.Errorf("failed to unmarshal team b: %w", err)
	}
	lobby.Variant = domain.Variant(variant)
	lobby.Finished = finished != 0
	lobby.Outcome = domain.MatchOutcome(outcome)
	return &lobby, nil
}

// MarkFinished flips the finished flag exactly once. The conditional UPDATE
// is the single-use gate: whichever of two racing reports runs second
// matches zero rows and gets ErrAlreadyFinished.
func (r *LobbyRepository) MarkFinished(ctx context.Context, id string, outcome domain.MatchOutcome) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE lobbies SET finished = 1, outcome = ?, updated_at = ?
		WHERE id = ? AND finished = 0`,
		string(outcome), time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark lobby finished: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		if _, err := r.Get(ctx, id); errors.Is(err, domain.ErrUnknownLobby) {
			return domain.ErrUnknownLobby
		}
		return domain.ErrAlreadyFinished
	}
	return nil
}

// ListRecent returns the newest lobbies first.
func (r *LobbyRepository) ListRecent(ctx context.Context, limit int) ([]domain.Lobby, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, host_id, variant, team_a, team_b, finished, outcome, created_at, updated_at
		FROM lobbies ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query lobbies: %w", err)
	}
	defer rows.Close()

	var lobbies []domain.Lobby
	for rows.Next() {
		var lobby domain.Lobby
		var variant, teamA, teamB, outcome string
		var finished int
		if err := rows.Scan(&lobby.ID, &lobby.HostID, &variant, &teamA, &teamB, &finished, &outcome, &lobby.CreatedAt, &lobby.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lobby: %w", err)
		}
		if err := json.Unmarshal([]byte(teamA), &lobby.TeamA); err != nil {
			return nil, fmt.Errorf("failed to unmarshal team a: %w", err)
		}
		if err := json.Unmarshal([]byte(teamB), &lobby.TeamB); err != nil {
			return nil, fmt.Errorf("failed to unmarshal team b: %w", err)
		}
		lobby.Variant = domain.Variant(variant)
		lobby.Finished = finished != 0
		lobby.Outcome = domain.MatchOutcome(outcome)
		lobbies = append(lobbies, lobby)
	}
	return lobbies, rows.Err()
}
