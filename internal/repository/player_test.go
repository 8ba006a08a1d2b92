package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"gauntlet-queue/internal/database"
	"gauntlet-queue/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.RunMigrations(db, zerolog.Nop()))
	return db
}

func testPlayer(id string) *domain.Player {
	return &domain.Player{
		ID:          id,
		BattleTag:   id + "#1234",
		DisplayName: id,
		Roles:       []domain.Role{domain.RoleTank, domain.RoleSupport},
		RatingByRole: map[domain.Role]int{
			domain.RoleTank:    1500,
			domain.RoleSupport: 1700,
		},
		HeroStats: domain.HeroStats{},
	}
}

func TestPlayerRepository_CreateAndGet(t *testing.T) {
	repo := NewPlayerRepository(setupTestDB(t), zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testPlayer("p1")))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1#1234", got.BattleTag)
	assert.Equal(t, []domain.Role{domain.RoleTank, domain.RoleSupport}, got.Roles)
	assert.Equal(t, 1500, got.Rating(domain.RoleTank))
	assert.Equal(t, 1700, got.Rating(domain.RoleSupport))
	assert.Equal(t, 0, got.Rating(domain.RoleDamage))
	assert.Equal(t, int64(1), got.Version)

	byTag, err := repo.GetByBattleTag(ctx, "p1#1234")
	require.NoError(t, err)
	assert.Equal(t, "p1", byTag.ID)
}

func TestPlayerRepository_GetUnknown(t *testing.T) {
	repo := NewPlayerRepository(setupTestDB(t), zerolog.Nop())

	_, err := repo.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUnknownPlayer)
}

func TestPlayerRepository_DuplicateBattleTagConflicts(t *testing.T) {
	repo := NewPlayerRepository(setupTestDB(t), zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testPlayer("p1")))

	dup := testPlayer("p2")
	dup.BattleTag = "p1#1234"
	assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrConflict)
}

func TestPlayerRepository_DuplicateIDConflicts(t *testing.T) {
	repo := NewPlayerRepository(setupTestDB(t), zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testPlayer("p1")))
	assert.ErrorIs(t, repo.Create(ctx, testPlayer("p1")), domain.ErrConflict)
}

func TestPlayerRepository_UpdateRating(t *testing.T) {
	repo := NewPlayerRepository(setupTestDB(t), zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testPlayer("p1")))

	require.NoError(t, repo.UpdateRating(ctx, "p1", domain.RoleTank, 1516, 1))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1516, got.Rating(domain.RoleTank))
	assert.Equal(t, 1700, got.Rating(domain.RoleSupport), "other roles untouched")
	assert.Equal(t, int64(2), got.Version, "successful write bumps the version")
}

func TestPlayerRepository_UpdateRatingStaleVersionConflicts(t *testing.T) {
	repo := NewPlayerRepository(setupTestDB(t), zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testPlayer("p1")))
	require.NoError(t, repo.UpdateRating(ctx, "p1", domain.RoleTank, 1516, 1))

	// A second writer still holding version 1 loses the race.
	err := repo.UpdateRating(ctx, "p1", domain.RoleTank, 1490, 1)
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1516, got.Rating(domain.RoleTank), "losing write must not land")
}

func TestPlayerRepository_AddResultDoesNotBumpVersion(t *testing.T) {
	repo := NewPlayerRepository(setupTestDB(t), zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testPlayer("p1")))
	require.NoError(t, repo.AddResult(ctx, "p1", 1, 0, 0))
	require.NoError(t, repo.AddResult(ctx, "p1", 0, 1, 0))
	require.NoError(t, repo.AddResult(ctx, "p1", 0, 0, 1))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Wins)
	assert.Equal(t, 1, got.Losses)
	assert.Equal(t, 1, got.Ties)
	assert.Equal(t, int64(1), got.Version, "counter writes bypass the version guard")

	// A rating write read before the counter updates still succeeds.
	assert.NoError(t, repo.UpdateRating(ctx, "p1", domain.RoleTank, 1516, 1))
}

func TestPlayerRepository_AddResultUnknownPlayer(t *testing.T) {
	repo := NewPlayerRepository(setupTestDB(t), zerolog.Nop())

	err := repo.AddResult(context.Background(), "ghost", 1, 0, 0)
	assert.ErrorIs(t, err, domain.ErrUnknownPlayer)
}

func TestPlayerRepository_UpdateHeroStats(t *testing.T) {
	repo := NewPlayerRepository(setupTestDB(t), zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testPlayer("p1")))

	stats := domain.HeroStats{"reinhardt": {"eliminations": 20}}
	require.NoError(t, repo.UpdateHeroStats(ctx, "p1", stats, 1))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 20.0, got.HeroStats["reinhardt"]["eliminations"])

	assert.ErrorIs(t, repo.UpdateHeroStats(ctx, "p1", stats, 1), domain.ErrConflict)
}

func TestPlayerRepository_TopByRole(t *testing.T) {
	repo := NewPlayerRepository(setupTestDB(t), zerolog.Nop())
	ctx := context.Background()

	for _, p := range []struct {
		id     string
		roles  []domain.Role
		rating int
	}{
		{"low", []domain.Role{domain.RoleTank}, 1400},
		{"high", []domain.Role{domain.RoleTank}, 1900},
		{"mid", []domain.Role{domain.RoleTank, domain.RoleDamage}, 1600},
		{"healer", []domain.Role{domain.RoleSupport}, 2400},
	} {
		player := &domain.Player{
			ID:           p.id,
			BattleTag:    p.id + "#1234",
			Roles:        p.roles,
			RatingByRole: map[domain.Role]int{},
			HeroStats:    domain.HeroStats{},
		}
		for _, role := range p.roles {
			player.RatingByRole[role] = p.rating
		}
		require.NoError(t, repo.Create(ctx, player))
	}

	top, err := repo.TopByRole(ctx, domain.RoleTank, 10)
	require.NoError(t, err)

	ids := make([]string, len(top))
	for i, p := range top {
		ids[i] = p.ID
	}
	// Highest tank rating first; the support-only player is filtered out.
	assert.Equal(t, []string{"high", "mid", "low"}, ids)

	limited, err := repo.TopByRole(ctx, domain.RoleTank, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestPlayerRepository_TopOverall(t *testing.T) {
	repo := NewPlayerRepository(setupTestDB(t), zerolog.Nop())
	ctx := context.Background()

	a := testPlayer("a") // 1500 + 1700
	b := testPlayer("b")
	b.RatingByRole[domain.RoleTank] = 2500 // 2500 + 1700
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	top, err := repo.TopOverall(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "b", top[0].ID)
	assert.Equal(t, "a", top[1].ID)
}
