// Package matchmaking holds the pure matchmaking kernels: the readiness
// predicate, role-balanced team formation, and the Elo rating update.
// Nothing here touches shared state; callers run these inside the queue's
// critical section.
package matchmaking

import "gauntlet-queue/internal/domain"

// IsReady reports whether the queued role counts can fill both teams of the
// template. It is a pure function of its inputs and must be re-evaluated
// against a live snapshot before every formation attempt.
func IsReady(counts map[domain.Role]int, tmpl domain.RosterTemplate) bool {
	for role, perTeam := range tmpl {
		if counts[role] < 2*perTeam {
			return false
		}
	}
	return true
}
