package match

import "context"

// DecisionRepository is the durable record of decisions and mutual matches
// for one session.
type DecisionRepository interface {
	SaveDecision(ctx context.Context, sessionID string, d MatchDecision) error
	Decisions(ctx context.Context, sessionID string) (map[string]MatchDecision, error)
	AddMutualMatch(ctx context.Context, sessionID string, m MutualMatch) error
	MutualMatches(ctx context.Context, sessionID string) (map[string]MutualMatch, error)
	Clear(ctx context.Context, sessionID string) error
}

// CandidateSource provides the corpus the pool is generated from.
type CandidateSource interface {
	ListCandidates(ctx context.Context) ([]Candidate, error)
}
