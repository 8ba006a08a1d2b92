package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gauntlet-queue/internal/domain"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

type PlayerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{db: sqlDB, logger: logger}
}

const playerColumns = `id, battle_tag, display_name, roles, rating_tank, rating_damage, rating_support,
	hero_stats, wins, losses, ties, version, created_at, updated_at`

func (r *PlayerRepository) Create(ctx context.Context, player *domain.Player) error {
	roles, err := json.Marshal(player.Roles)
	if err != nil {
		return fmt.Errorf("failed to marshal roles: %w", err)
	}
	stats := player.HeroStats
	if stats == nil {
		stats = domain.HeroStats{}
	}
	heroStats, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal hero stats: %w", err)
	}

	now := time.Now()
	player.CreatedAt = now
	player.UpdatedAt = now
	player.Version = 1

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO players (`+playerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		player.ID,
		player.BattleTag,
		player.DisplayName,
		string(roles),
		player.Rating(domain.RoleTank),
		player.Rating(domain.RoleDamage),
		player.Rating(domain.RoleSupport),
		string(heroStats),
		player.Wins,
		player.Losses,
		player.Ties,
		player.Version,
		player.CreatedAt,
		player.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Debug().Str("player_id", player.ID).Str("battle_tag", player.BattleTag).Msg("player already exists")
			return domain.ErrConflict
		}
		return fmt.Errorf("failed to insert player: %w", err)
	}
	return nil
}

func (r *PlayerRepository) Get(ctx context.Context, id string) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id)
	return scanPlayer(row)
}

func (r *PlayerRepository) GetByBattleTag(ctx context.Context, battleTag string) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE battle_tag = ?`, battleTag)
	return scanPlayer(row)
}

// UpdateRating writes one role's rating, guarded by the version read with the
// player. A stale version loses the race and returns ErrConflict; callers
// re-read and retry once.
func (r *PlayerRepository) UpdateRating(ctx context.Context, id string, role domain.Role, rating int, version int64) error {
	column, err := ratingColumn(role)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE players SET `+column+` = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		rating, time.Now(), id, version,
	)
	if err != nil {
		return fmt.Errorf("failed to update rating: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrConflict
	}
	return nil
}

// AddResult bumps the win/loss/tie counters. Counter increments are atomic
// in SQL and deliberately do not touch the version column, so they never
// invalidate a concurrent optimistic rating write.
func (r *PlayerRepository) AddResult(ctx context.Context, id string, wins, losses, ties int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE players SET wins = wins + ?, losses = losses + ?, ties = ties + ?, updated_at = ?
		WHERE id = ?`,
		wins, losses, ties, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update result counters: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrUnknownPlayer
	}
	return nil
}

// UpdateHeroStats replaces the stored hero stats, guarded by version like
// rating writes.
func (r *PlayerRepository) UpdateHeroStats(ctx context.Context, id string, stats domain.HeroStats, version int64) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal hero stats: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE players SET hero_stats = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		string(payload), time.Now(), id, version,
	)
	if err != nil {
		return fmt.Errorf("failed to update hero stats: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrConflict
	}
	return nil
}

// TopByRole returns the highest-rated players eligible for a role.
func (r *PlayerRepository) TopByRole(ctx context.Context, role domain.Role, limit int) ([]domain.Player, error) {
	column, err := ratingColumn(role)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+playerColumns+` FROM players
		WHERE instr(roles, '"' || ? || '"') > 0
		ORDER BY `+column+` DESC LIMIT ?`,
		string(role), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query role leaderboard: %w", err)
	}
	defer rows.Close()
	return collectPlayers(rows)
}

// TopOverall returns players ordered by the average rating across their
// eligible roles. Unplaced roles hold zero, so the column sum over the
// eligible count matches the domain's OverallRating.
func (r *PlayerRepository) TopOverall(ctx context.Context, limit int) ([]domain.Player, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+playerColumns+` FROM players
		ORDER BY (rating_tank + rating_damage + rating_support) / max(json_array_length(roles), 1) DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query overall leaderboard: %w", err)
	}
	defer rows.Close()
	return collectPlayers(rows)
}

func ratingColumn(role domain.Role) (string, error) {
	switch role {
	case domain.RoleTank:
		return "rating_tank", nil
	case domain.RoleDamage:
		return "rating_damage", nil
	case domain.RoleSupport:
		return "rating_support", nil
	}
	return "", domain.ErrUnknownRole
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (*domain.Player, error) {
	var p domain.Player
	var roles, heroStats string
	var tank, damage, support int

	err := row.Scan(
		&p.ID, &p.BattleTag, &p.DisplayName, &roles, &tank, &damage, &support,
		&heroStats, &p.Wins, &p.Losses, &p.Ties, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUnknownPlayer
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}

	if err := json.Unmarshal([]byte(roles), &p.Roles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal roles: %w", err)
	}
	if err := json.Unmarshal([]byte(heroStats), &p.HeroStats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hero stats: %w", err)
	}
	p.RatingByRole = map[domain.Role]int{
		domain.RoleTank:    tank,
		domain.RoleDamage:  damage,
		domain.RoleSupport: support,
	}
	return &p, nil
}

func collectPlayers(rows *sql.Rows) ([]domain.Player, error) {
	var players []domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
