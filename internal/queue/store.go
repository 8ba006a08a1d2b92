// Package queue holds the shared waiting pool. The store is the only shared
// mutable state of the matchmaking core; every read and write of a variant's
// queue happens under that variant's lock, and FormMatch runs an entire
// {snapshot, readiness check, selection, removal} sequence inside one
// critical section.
package queue

import (
	"sync"
	"time"

	"gauntlet-queue/internal/domain"
)

// Snapshot is a consistent point-in-time view of one variant's queue,
// grouped by role in FIFO order.
type Snapshot struct {
	Variant domain.Variant
	ByRole  map[domain.Role][]domain.QueueEntry
	TakenAt time.Time
}

// Counts returns the number of queued players per role.
func (s Snapshot) Counts() map[domain.Role]int {
	counts := make(map[domain.Role]int, len(s.ByRole))
	for role, entries := range s.ByRole {
		counts[role] = len(entries)
	}
	return counts
}

func (s Snapshot) Total() int {
	total := 0
	for _, entries := range s.ByRole {
		total += len(entries)
	}
	return total
}

// Store is the in-memory waiting pool, partitioned by game variant.
// Created once at process start and shared by all request handlers.
type Store struct {
	mu     sync.Mutex
	queues map[domain.Variant]*variantQueue
	now    func() time.Time
}

type variantQueue struct {
	mu      sync.Mutex
	entries []domain.QueueEntry
	members map[string]struct{}
}

func NewStore() *Store {
	return &Store{
		queues: make(map[domain.Variant]*variantQueue),
		now:    time.Now,
	}
}

func (s *Store) variant(v domain.Variant) *variantQueue {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[v]
	if !ok {
		q = &variantQueue{members: make(map[string]struct{})}
		s.queues[v] = q
	}
	return q
}

// Add inserts a waiting entry, stamping the enqueue time if unset.
// A player may hold at most one live entry per variant; a second add
// fails with ErrDuplicateEntry and changes nothing.
func (s *Store) Add(entry domain.QueueEntry) error {
	q := s.variant(entry.Variant)
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, queued := q.members[entry.PlayerID]; queued {
		return domain.ErrDuplicateEntry
	}
	if entry.EnqueuedAt.IsZero() {
		entry.EnqueuedAt = s.now()
	}
	q.entries = append(q.entries, entry)
	q.members[entry.PlayerID] = struct{}{}
	return nil
}

// Remove drops a player's entry for a variant. Removing an absent player is
// a no-op, which covers disconnect racing a completed selection.
func (s *Store) Remove(playerID string, v domain.Variant) {
	q := s.variant(v)
	q.mu.Lock()
	defer q.mu.Unlock()
	q.remove(playerID)
}

func (q *variantQueue) remove(playerID string) {
	if _, queued := q.members[playerID]; !queued {
		return
	}
	delete(q.members, playerID)
	for i, e := range q.entries {
		if e.PlayerID == playerID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return
		}
	}
}

// Snapshot returns a consistent copy of a variant's queue grouped by role.
func (s *Store) Snapshot(v domain.Variant) Snapshot {
	q := s.variant(v)
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshot(v, s.now())
}

func (q *variantQueue) snapshot(v domain.Variant, at time.Time) Snapshot {
	snap := Snapshot{
		Variant: v,
		ByRole:  make(map[domain.Role][]domain.QueueEntry),
		TakenAt: at,
	}
	for _, e := range q.entries {
		snap.ByRole[e.Role] = append(snap.ByRole[e.Role], e)
	}
	return snap
}

// Counts reports the queued players per role for a variant.
func (s *Store) Counts(v domain.Variant) map[domain.Role]int {
	return s.Snapshot(v).Counts()
}

// FormMatch runs form under the variant's lock with a fresh snapshot and
// atomically removes the entries whose player ids form returns. Selection
// and removal are one unit: no concurrent caller can observe a selected
// player still waiting, and no join or leave can interleave with the
// readiness check and selection.
func (s *Store) FormMatch(v domain.Variant, form func(Snapshot) ([]string, error)) error {
	q := s.variant(v)
	q.mu.Lock()
	defer q.mu.Unlock()

	selected, err := form(q.snapshot(v, s.now()))
	if err != nil {
		return err
	}
	for _, id := range selected {
		q.remove(id)
	}
	return nil
}
