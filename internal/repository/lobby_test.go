package repository

import (
	"context"
	"testing"
	"time"

	"gauntlet-queue/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLobby() *domain.Lobby {
	return &domain.Lobby{
		HostID:  "t1",
		Variant: domain.VariantSixes,
		TeamA: domain.Team{
			{PlayerID: "t1", BattleTag: "t1#1234", Role: domain.RoleTank, Rating: 1500},
			{PlayerID: "s1", BattleTag: "s1#1234", Role: domain.RoleSupport, Rating: 1600},
		},
		TeamB: domain.Team{
			{PlayerID: "t2", BattleTag: "t2#1234", Role: domain.RoleTank, Rating: 1520},
			{PlayerID: "s2", BattleTag: "s2#1234", Role: domain.RoleSupport, Rating: 1580},
		},
	}
}

func TestLobbyRepository_CreateAndGet(t *testing.T) {
	repo := NewLobbyRepository(setupTestDB(t), zerolog.Nop())
	ctx := context.Background()

	lobby := testLobby()
	require.NoError(t, repo.Create(ctx, lobby))
	assert.NotEmpty(t, lobby.ID, "create assigns an id")

	got, err := repo.Get(ctx, lobby.ID)
	require.NoError(t, err)
	assert.Equal(t, "t1", got.HostID)
	assert.Equal(t, domain.VariantSixes, got.Variant)
	assert.Equal(t, lobby.TeamA, got.TeamA)
	assert.Equal(t, lobby.TeamB, got.TeamB)
	assert.False(t, got.Finished)
	assert.Empty(t, got.Outcome)
}

func TestLobbyRepository_GetUnknown(t *testing.T) {
	repo := NewLobbyRepository(setupTestDB(t), zerolog.Nop())

	_, err := repo.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUnknownLobby)
}

func TestLobbyRepository_MarkFinishedOnce(t *testing.T) {
	repo := NewLobbyRepository(setupTestDB(t), zerolog.Nop())
	ctx := context.Background()

	lobby := testLobby()
	require.NoError(t, repo.Create(ctx, lobby))

	require.NoError(t, repo.MarkFinished(ctx, lobby.ID, domain.OutcomeTeamB))

	got, err := repo.Get(ctx, lobby.ID)
	require.NoError(t, err)
	assert.True(t, got.Finished)
	assert.Equal(t, domain.OutcomeTeamB, got.Outcome)

	// The second report loses the gate and the stored outcome stands.
	err = repo.MarkFinished(ctx, lobby.ID, domain.OutcomeTeamA)
	assert.ErrorIs(t, err, domain.ErrAlreadyFinished)

	got, err = repo.Get(ctx, lobby.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeTeamB, got.Outcome)
}

func TestLobbyRepository_MarkFinishedUnknown(t *testing.T) {
	repo := NewLobbyRepository(setupTestDB(t), zerolog.Nop())

	err := repo.MarkFinished(context.Background(), "ghost", domain.OutcomeTeamA)
	assert.ErrorIs(t, err, domain.ErrUnknownLobby)
}

func TestLobbyRepository_ListRecent(t *testing.T) {
	repo := NewLobbyRepository(setupTestDB(t), zerolog.Nop())
	ctx := context.Background()

	first := testLobby()
	require.NoError(t, repo.Create(ctx, first))

	// Created-at resolution is sub-millisecond; a short sleep keeps the
	// ordering deterministic.
	time.Sleep(5 * time.Millisecond)

	second := testLobby()
	require.NoError(t, repo.Create(ctx, second))

	recent, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, second.ID, recent[0].ID)
	assert.Equal(t, first.ID, recent[1].ID)

	limited, err := repo.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, second.ID, limited[0].ID)
}
