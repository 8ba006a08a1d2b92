package matchmaking

import (
	"fmt"
	"sort"

	"gauntlet-queue/internal/domain"
	"gauntlet-queue/internal/queue"
)

// FormTeams partitions the snapshot into two role-balanced teams for the
// template. Per role, the 2x per-team-count longest-waiting players are
// selected, then dealt in snake order by rating (best to team A, next two
// to team B, next two to team A, ...) to keep the aggregate-rating gap
// small while team sizes stay exactly equal.
//
// The returned teams are disjoint because the queue holds at most one entry
// per player per variant. FormTeams does not mutate the queue; the caller
// removes the selected players as part of the same critical section.
func FormTeams(snap queue.Snapshot, tmpl domain.RosterTemplate) (teamA, teamB domain.Team, err error) {
	teamA = make(domain.Team, 0, tmpl.TeamSize())
	teamB = make(domain.Team, 0, tmpl.TeamSize())

	for _, role := range domain.AllRoles {
		perTeam := tmpl[role]
		if perTeam == 0 {
			continue
		}

		pool := make([]domain.QueueEntry, len(snap.ByRole[role]))
		copy(pool, snap.ByRole[role])
		if len(pool) < 2*perTeam {
			return nil, nil, fmt.Errorf("role %s has %d queued, need %d", role, len(pool), 2*perTeam)
		}

		// Longest-waiting first; stable so equal timestamps keep join order.
		sort.SliceStable(pool, func(i, j int) bool {
			return pool[i].EnqueuedAt.Before(pool[j].EnqueuedAt)
		})
		picked := pool[:2*perTeam]

		// Highest rating first; stable so equal ratings keep wait order.
		sort.SliceStable(picked, func(i, j int) bool {
			return picked[i].Rating > picked[j].Rating
		})

		for i, e := range picked {
			a := domain.Assignment{
				PlayerID:  e.PlayerID,
				BattleTag: e.BattleTag,
				Role:      e.Role,
				Rating:    e.Rating,
			}
			// Snake order: A, B, B, A, A, B, B, A, ...
			if i%4 == 0 || i%4 == 3 {
				teamA = append(teamA, a)
			} else {
				teamB = append(teamB, a)
			}
		}
	}

	return teamA, teamB, nil
}
