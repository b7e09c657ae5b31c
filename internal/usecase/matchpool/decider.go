package matchpool

import (
	"context"
	"math/rand/v2"

	"kindred/internal/domain/assessment"
	"kindred/internal/domain/match"
	"kindred/internal/domain/matching"
)

// CounterpartDecider resolves whether the other side of an "interested"
// decision opts in as well.
type CounterpartDecider interface {
	Reciprocates(ctx context.Context, user assessment.Results, candidate match.MatchProfile) bool
}

// DefaultMutualMinScore is the overall score a counterpart needs, judging the
// user from its own side, before it opts in.
const DefaultMutualMinScore = 70

// ReciprocalDecider models double opt-in: the candidate scores the user with
// the candidate as the "user" side of the asymmetric tables and opts in when
// that score clears MinScore.
type ReciprocalDecider struct {
	MinScore int
}

func NewReciprocalDecider(minScore int) *ReciprocalDecider {
	if minScore <= 0 {
		minScore = DefaultMutualMinScore
	}
	return &ReciprocalDecider{MinScore: minScore}
}

func (d *ReciprocalDecider) Reciprocates(_ context.Context, user assessment.Results, candidate match.MatchProfile) bool {
	score := matching.Calculate(candidate.AssessmentResults, user)
	return score.Overall >= d.MinScore
}

const (
	SeedProbability    = 0.8
	DefaultProbability = 0.3
)

// RandomDecider is the demo behaviour: a seed profile opts in with
// probability 0.8, anyone else with 0.3.
type RandomDecider struct {
	seeds map[string]struct{}
	rand  func() float64
}

// NewRandomDecider uses math/rand/v2 when rnd is nil.
func NewRandomDecider(seedIDs []string, rnd func() float64) *RandomDecider {
	seeds := make(map[string]struct{}, len(seedIDs))
	for _, id := range seedIDs {
		seeds[id] = struct{}{}
	}
	if rnd == nil {
		rnd = rand.Float64
	}
	return &RandomDecider{seeds: seeds, rand: rnd}
}

func (d *RandomDecider) Probability(matchID string) float64 {
	if _, ok := d.seeds[matchID]; ok {
		return SeedProbability
	}
	return DefaultProbability
}

func (d *RandomDecider) Reciprocates(_ context.Context, _ assessment.Results, candidate match.MatchProfile) bool {
	return d.rand() < d.Probability(candidate.ID)
}
