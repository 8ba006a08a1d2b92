package domain

import "errors"

var (
	// ErrDuplicateEntry rejects a second queue join for the same player and
	// variant while an entry is still live.
	ErrDuplicateEntry = errors.New("player already queued for this variant")

	// ErrRoleMismatch rejects a join for a role the player does not hold.
	ErrRoleMismatch = errors.New("player does not hold the requested role")

	ErrUnknownPlayer  = errors.New("player not found")
	ErrUnknownLobby   = errors.New("lobby not found")
	ErrUnknownRole    = errors.New("unknown role")
	ErrUnknownVariant = errors.New("unknown game variant")
	ErrUnknownOutcome = errors.New("unknown match outcome")

	// ErrAlreadyFinished rejects a second result report for the same lobby.
	ErrAlreadyFinished = errors.New("lobby result already recorded")

	// ErrConflict surfaces a lost write race against the persistence store:
	// a uniqueness violation on create, or a stale version on update.
	ErrConflict = errors.New("conflicting write to player record")
)
