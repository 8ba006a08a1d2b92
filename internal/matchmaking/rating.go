package matchmaking

import (
	"math"

	"gauntlet-queue/internal/domain"
)

// RatingScale is the logistic curve width: a RatingScale-point gap gives the
// stronger side a 10:1 expected-score edge.
const RatingScale = 400

// ExpectedScore is the probability-like expected score of side A against
// side B under the logistic model.
func ExpectedScore(ratingA, ratingB int) float64 {
	return 1 / (1 + math.Pow(10, float64(ratingB-ratingA)/RatingScale))
}

// ActualScore maps an outcome to team A's score: win 1, draw 0.5, loss 0.
// Team B's score is the complement.
func ActualScore(outcome domain.MatchOutcome) float64 {
	switch outcome {
	case domain.OutcomeTeamA:
		return 1
	case domain.OutcomeTeamB:
		return 0
	default:
		return 0.5
	}
}

// RatingDelta is the signed adjustment for every member of a team whose
// aggregate rating gave the expected score, rounded to the nearest point.
func RatingDelta(expected, actual float64, k int) int {
	return int(math.Round(float64(k) * (actual - expected)))
}
