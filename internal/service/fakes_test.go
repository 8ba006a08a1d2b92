package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gauntlet-queue/internal/domain"
)

// fakePlayerStore is an in-memory PlayerStore with the same optimistic
// concurrency behavior as the real repository: version-guarded rating and
// stats writes, counter increments that bypass the version.
type fakePlayerStore struct {
	mu      sync.Mutex
	players map[string]*domain.Player

	ratingErr     error // returned by every UpdateRating call when set
	conflictsLeft int   // UpdateRating fails with ErrConflict this many times

	ratingWrites int
	resultWrites int
}

func newFakePlayerStore() *fakePlayerStore {
	return &fakePlayerStore{players: make(map[string]*domain.Player)}
}

func (f *fakePlayerStore) put(p *domain.Player) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.Version == 0 {
		p.Version = 1
	}
	f.players[p.ID] = copyPlayer(p)
}

func (f *fakePlayerStore) get(id string) *domain.Player {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyPlayer(f.players[id])
}

func (f *fakePlayerStore) Create(_ context.Context, p *domain.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.players[p.ID]; ok {
		return domain.ErrConflict
	}
	p.Version = 1
	f.players[p.ID] = copyPlayer(p)
	return nil
}

func (f *fakePlayerStore) Get(_ context.Context, id string) (*domain.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.players[id]
	if !ok {
		return nil, domain.ErrUnknownPlayer
	}
	return copyPlayer(p), nil
}

func (f *fakePlayerStore) GetByBattleTag(_ context.Context, battleTag string) (*domain.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.players {
		if p.BattleTag == battleTag {
			return copyPlayer(p), nil
		}
	}
	return nil, domain.ErrUnknownPlayer
}

func (f *fakePlayerStore) UpdateRating(_ context.Context, id string, role domain.Role, rating int, version int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ratingErr != nil {
		return f.ratingErr
	}
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return domain.ErrConflict
	}

	p, ok := f.players[id]
	if !ok {
		return domain.ErrUnknownPlayer
	}
	if p.Version != version {
		return domain.ErrConflict
	}
	p.RatingByRole[role] = rating
	p.Version++
	f.ratingWrites++
	return nil
}

func (f *fakePlayerStore) AddResult(_ context.Context, id string, wins, losses, ties int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.players[id]
	if !ok {
		return domain.ErrUnknownPlayer
	}
	p.Wins += wins
	p.Losses += losses
	p.Ties += ties
	f.resultWrites++
	return nil
}

func (f *fakePlayerStore) UpdateHeroStats(_ context.Context, id string, stats domain.HeroStats, version int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.players[id]
	if !ok {
		return domain.ErrUnknownPlayer
	}
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return domain.ErrConflict
	}
	if p.Version != version {
		return domain.ErrConflict
	}
	p.HeroStats = stats
	p.Version++
	return nil
}

func (f *fakePlayerStore) TopByRole(_ context.Context, role domain.Role, limit int) ([]domain.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Player
	for _, p := range f.players {
		if p.HasRole(role) {
			out = append(out, *copyPlayer(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rating(role) > out[j].Rating(role) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePlayerStore) TopOverall(_ context.Context, limit int) ([]domain.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Player
	for _, p := range f.players {
		out = append(out, *copyPlayer(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OverallRating() > out[j].OverallRating() })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyPlayer(p *domain.Player) *domain.Player {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Roles = append([]domain.Role(nil), p.Roles...)
	cp.RatingByRole = make(map[domain.Role]int, len(p.RatingByRole))
	for role, rating := range p.RatingByRole {
		cp.RatingByRole[role] = rating
	}
	cp.HeroStats = domain.HeroStats{}.Merge(p.HeroStats)
	return &cp
}

// fakeLobbyStore is an in-memory LobbyStore whose MarkFinished behaves like
// the repository's single-use conditional update.
type fakeLobbyStore struct {
	mu        sync.Mutex
	lobbies   map[string]*domain.Lobby
	createErr error
	nextID    int
}

func newFakeLobbyStore() *fakeLobbyStore {
	return &fakeLobbyStore{lobbies: make(map[string]*domain.Lobby)}
}

func (f *fakeLobbyStore) Create(_ context.Context, lobby *domain.Lobby) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if lobby.ID == "" {
		f.nextID++
		lobby.ID = fmt.Sprintf("lobby-%d", f.nextID)
	}
	cp := *lobby
	f.lobbies[lobby.ID] = &cp
	return nil
}

func (f *fakeLobbyStore) Get(_ context.Context, id string) (*domain.Lobby, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lobby, ok := f.lobbies[id]
	if !ok {
		return nil, domain.ErrUnknownLobby
	}
	cp := *lobby
	return &cp, nil
}

func (f *fakeLobbyStore) MarkFinished(_ context.Context, id string, outcome domain.MatchOutcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lobby, ok := f.lobbies[id]
	if !ok {
		return domain.ErrUnknownLobby
	}
	if lobby.Finished {
		return domain.ErrAlreadyFinished
	}
	lobby.Finished = true
	lobby.Outcome = outcome
	return nil
}

func (f *fakeLobbyStore) ListRecent(_ context.Context, limit int) ([]domain.Lobby, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Lobby
	for _, lobby := range f.lobbies {
		out = append(out, *lobby)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeRatingSource returns canned signup ratings.
type fakeRatingSource struct {
	ratings map[domain.Role]int
	err     error
}

func (f *fakeRatingSource) FetchRatings(context.Context, string) (map[domain.Role]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ratings, nil
}
