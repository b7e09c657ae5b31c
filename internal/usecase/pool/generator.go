// Package pool builds ranked candidate pools: preference filtering, assessment
// synthesis for candidates without results, and compatibility scoring.
package pool

import (
	"context"
	"fmt"
	"sort"

	"kindred/internal/domain/assessment"
	"kindred/internal/domain/match"
	"kindred/internal/domain/matching"
	"kindred/internal/platform/logger"
)

type Generator struct {
	source match.CandidateSource
	synth  Synthesizer
	logger *logger.Logger
}

func NewGenerator(source match.CandidateSource, synth Synthesizer, log *logger.Logger) *Generator {
	if synth == nil {
		synth = NewComplementarySynthesizer()
	}
	return &Generator{source: source, synth: synth, logger: log}
}

// Generate returns scored profiles for every corpus candidate that passes the
// user's preferences and is not in exclude, best first. limit <= 0 means no
// limit. An empty result is not an error.
func (g *Generator) Generate(ctx context.Context, user assessment.Results, exclude map[string]struct{}, limit int) ([]match.MatchProfile, error) {
	if g == nil || g.source == nil {
		return []match.MatchProfile{}, nil
	}

	corpus, err := g.source.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	open := make([]match.Candidate, 0, len(corpus))
	for _, c := range corpus {
		if _, skip := exclude[c.ID]; skip {
			continue
		}
		open = append(open, c)
	}

	survivors := Filter(open, user.Preferences)
	out := Score(user, survivors, g.synth)
	Rank(out)

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	g.logger.Debug("[Pool] generated",
		"corpus", len(corpus),
		"excluded", len(corpus)-len(open),
		"filtered_out", len(open)-len(survivors),
		"returned", len(out),
	)
	return out, nil
}

// Score builds a MatchProfile per candidate. Candidates that already carry
// results keep them; the rest are synthesized.
func Score(user assessment.Results, candidates []match.Candidate, synth Synthesizer) []match.MatchProfile {
	out := make([]match.MatchProfile, 0, len(candidates))
	for _, c := range candidates {
		var results assessment.Results
		if c.Assessment != nil {
			results = *c.Assessment
		} else if synth != nil {
			results = synth.Synthesize(user, c)
		}
		score := matching.Calculate(user, results)
		out = append(out, match.NewMatchProfile(c, results, score))
	}
	return out
}

// Rank orders by overall score descending, then most recently active, then
// id ascending so equal inputs always produce the same order.
func Rank(items []match.MatchProfile) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.CompatibilityScore.Overall != b.CompatibilityScore.Overall {
			return a.CompatibilityScore.Overall > b.CompatibilityScore.Overall
		}
		if !a.LastActive.Equal(b.LastActive) {
			return a.LastActive.After(b.LastActive)
		}
		return a.ID < b.ID
	})
}
