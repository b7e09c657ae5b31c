package matchpool

import "kindred/internal/domain/match"

const (
	// RefreshThreshold is the active-match count below which a pool is
	// topped up.
	RefreshThreshold = 3
	// TargetPoolSize is the number of active matches a refresh aims for.
	TargetPoolSize = 10
)

// ShouldRefreshPool reports whether a pool with this many active matches
// needs a new batch. Exactly RefreshThreshold does not.
func ShouldRefreshPool(active int) bool {
	return active < RefreshThreshold
}

// ActiveMatches drops passed candidates.
func ActiveMatches(pool []match.MatchProfile) []match.MatchProfile {
	out := make([]match.MatchProfile, 0, len(pool))
	for _, p := range pool {
		if p.ConnectionStatus == match.StatusPassed {
			continue
		}
		out = append(out, p)
	}
	return out
}

// StatusOf derives the visible status of one candidate. A later pass wins
// over an earlier mutual match; otherwise a mutual record surfaces as mutual.
func StatusOf(matchID string, decisions map[string]match.MatchDecision, mutual map[string]match.MutualMatch) match.ConnectionStatus {
	d, decided := decisions[matchID]
	if decided && d.Decision == match.DecisionPassed {
		return match.StatusPassed
	}
	if _, ok := mutual[matchID]; ok {
		return match.StatusMutual
	}
	if decided {
		return match.StatusInterested
	}
	return match.StatusNone
}

// ApplyDecisions returns a copy of pool with each status derived from the
// stored decisions and mutual matches.
func ApplyDecisions(pool []match.MatchProfile, decisions map[string]match.MatchDecision, mutual map[string]match.MutualMatch) []match.MatchProfile {
	out := make([]match.MatchProfile, len(pool))
	for i, p := range pool {
		p.ConnectionStatus = StatusOf(p.ID, decisions, mutual)
		out[i] = p
	}
	return out
}

func poolIDs(pool []match.MatchProfile) map[string]struct{} {
	out := make(map[string]struct{}, len(pool))
	for _, p := range pool {
		out[p.ID] = struct{}{}
	}
	return out
}
