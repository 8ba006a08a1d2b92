package domain

import (
	"strings"
	"time"
)

// Role is one of the three queueable roles.
type Role string

const (
	RoleTank    Role = "TANK"
	RoleDamage  Role = "DAMAGE"
	RoleSupport Role = "SUPPORT"
)

// AllRoles is the canonical role order used for iteration and display.
var AllRoles = []Role{RoleTank, RoleDamage, RoleSupport}

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleTank:
		return RoleTank, nil
	case RoleDamage:
		return RoleDamage, nil
	case RoleSupport:
		return RoleSupport, nil
	}
	return "", ErrUnknownRole
}

// Variant is a ruleset defining team size and role quotas.
type Variant string

const (
	// VariantSixes is the 6v6 ruleset: 2 tanks, 2 damage, 2 supports per team.
	VariantSixes Variant = "sixes"
	// VariantFives is the 5v5 ruleset: 1 tank, 2 damage, 2 supports per team.
	VariantFives Variant = "fives"
)

var AllVariants = []Variant{VariantSixes, VariantFives}

// RosterTemplate is the required player count per role for one team.
type RosterTemplate map[Role]int

func (t RosterTemplate) TeamSize() int {
	size := 0
	for _, n := range t {
		size += n
	}
	return size
}

var rosterTemplates = map[Variant]RosterTemplate{
	VariantSixes: {RoleTank: 2, RoleDamage: 2, RoleSupport: 2},
	VariantFives: {RoleTank: 1, RoleDamage: 2, RoleSupport: 2},
}

func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := rosterTemplates[v]; !ok {
		return "", ErrUnknownVariant
	}
	return v, nil
}

// TemplateFor returns the roster template for a variant.
func TemplateFor(v Variant) (RosterTemplate, error) {
	tmpl, ok := rosterTemplates[v]
	if !ok {
		return nil, ErrUnknownVariant
	}
	return tmpl, nil
}

// HeroStats is aggregate per-hero usage data: hero name -> stat name -> value.
type HeroStats map[string]map[string]float64

// Merge accumulates other into a copy of h, summing stat values per hero.
func (h HeroStats) Merge(other HeroStats) HeroStats {
	merged := make(HeroStats, len(h)+len(other))
	for hero, stats := range h {
		merged[hero] = make(map[string]float64, len(stats))
		for name, value := range stats {
			merged[hero][name] = value
		}
	}
	for hero, stats := range other {
		if _, ok := merged[hero]; !ok {
			merged[hero] = make(map[string]float64, len(stats))
		}
		for name, value := range stats {
			merged[hero][name] += value
		}
	}
	return merged
}

// Player is a registered account with one rating per eligible role.
type Player struct {
	ID           string
	BattleTag    string
	DisplayName  string
	Roles        []Role
	RatingByRole map[Role]int
	HeroStats    HeroStats
	Wins         int
	Losses       int
	Ties         int

	// Version guards optimistic writes to ratings and hero stats.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Player) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Rating returns the player's rating for a role, zero when unplaced.
func (p *Player) Rating(role Role) int {
	return p.RatingByRole[role]
}

// OverallRating averages the ratings of the player's eligible roles.
func (p *Player) OverallRating() int {
	if len(p.Roles) == 0 {
		return 0
	}
	sum := 0
	for _, r := range p.Roles {
		sum += p.RatingByRole[r]
	}
	return sum / len(p.Roles)
}

// QueueEntry is one player waiting in one variant's queue. The rating is
// captured at join time so team formation is deterministic for a given
// queue content.
type QueueEntry struct {
	PlayerID   string
	BattleTag  string
	Role       Role
	Variant    Variant
	Rating     int
	EnqueuedAt time.Time
}

// Assignment is a player placed into a team slot for a specific role.
type Assignment struct {
	PlayerID  string `json:"playerId"`
	BattleTag string `json:"battleTag"`
	Role      Role   `json:"role"`
	Rating    int    `json:"rating"`
}

// Team is the ordered, fixed-size roster of one side of a lobby.
type Team []Assignment

// AggregateRating sums member ratings for the roles they were selected into.
func (t Team) AggregateRating() int {
	sum := 0
	for _, a := range t {
		sum += a.Rating
	}
	return sum
}

func (t Team) PlayerIDs() []string {
	ids := make([]string, len(t))
	for i, a := range t {
		ids[i] = a.PlayerID
	}
	return ids
}

// MatchOutcome says which side of a lobby won.
type MatchOutcome string

const (
	OutcomeTeamA MatchOutcome = "TEAM_A"
	OutcomeTeamB MatchOutcome = "TEAM_B"
	OutcomeDraw  MatchOutcome = "DRAW"
)

func ParseOutcome(s string) (MatchOutcome, error) {
	switch MatchOutcome(strings.ToUpper(strings.TrimSpace(s))) {
	case OutcomeTeamA:
		return OutcomeTeamA, nil
	case OutcomeTeamB:
		return OutcomeTeamB, nil
	case OutcomeDraw:
		return OutcomeDraw, nil
	}
	return "", ErrUnknownOutcome
}

// Lobby tracks a formed pair of teams through to match completion.
// Lobbies are never deleted; finished flips to true exactly once.
type Lobby struct {
	ID        string
	HostID    string
	Variant   Variant
	TeamA     Team
	TeamB     Team
	Finished  bool
	Outcome   MatchOutcome
	CreatedAt time.Time
	UpdatedAt time.Time
}
