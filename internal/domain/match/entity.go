package match

import (
	"errors"
	"strings"
	"time"

	"kindred/internal/domain/assessment"
	"kindred/internal/domain/matching"
)

var ErrInvalidDecision = errors.New("invalid decision")

type ConnectionStatus string

const (
	StatusNone       ConnectionStatus = "none"
	StatusInterested ConnectionStatus = "interested"
	StatusPassed     ConnectionStatus = "passed"
	// StatusMutual is derived from a MutualMatch record, never stored as a
	// decision.
	StatusMutual ConnectionStatus = "mutual"
)

type Decision string

const (
	DecisionInterested Decision = "interested"
	DecisionPassed     Decision = "passed"
)

func (d Decision) IsValid() bool {
	return d == DecisionInterested || d == DecisionPassed
}

func ParseDecision(raw string) (Decision, error) {
	d := Decision(strings.ToLower(strings.TrimSpace(raw)))
	if !d.IsValid() {
		return "", ErrInvalidDecision
	}
	return d, nil
}

type MatchDecision struct {
	MatchID   string    `json:"matchId"`
	Decision  Decision  `json:"decision"`
	Timestamp time.Time `json:"timestamp"`
}

type MutualMatch struct {
	MatchID   string    `json:"matchId"`
	Timestamp time.Time `json:"timestamp"`
}

// Candidate is a corpus entry before filtering and scoring. Assessment is
// nil when the corpus carries no results and they must be synthesized.
type Candidate struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Age        int                 `json:"age"`
	Gender     assessment.Gender   `json:"gender"`
	Location   string              `json:"location"`
	DistanceKm int                 `json:"distanceKm"`
	Bio        string              `json:"bio"`
	Photos     []string            `json:"photos,omitempty"`
	Interests  []string            `json:"interests,omitempty"`
	Attributes map[string]string   `json:"attributes,omitempty"`
	Assessment *assessment.Results `json:"assessmentResults,omitempty"`
	LastActive time.Time           `json:"lastActive"`
}

// MatchProfile is a scored candidate as shown in the pool. It is recomputed
// per session and never persisted.
type MatchProfile struct {
	ID                 string                      `json:"id"`
	Name               string                      `json:"name"`
	Age                int                         `json:"age"`
	Gender             assessment.Gender           `json:"gender"`
	Location           string                      `json:"location"`
	DistanceKm         int                         `json:"distanceKm"`
	Bio                string                      `json:"bio"`
	Photos             []string                    `json:"photos,omitempty"`
	Interests          []string                    `json:"interests,omitempty"`
	Attributes         map[string]string           `json:"attributes,omitempty"`
	AssessmentResults  assessment.Results          `json:"assessmentResults"`
	CompatibilityScore matching.CompatibilityScore `json:"compatibilityScore"`
	ConnectionStatus   ConnectionStatus            `json:"connectionStatus"`
	LastActive         time.Time                   `json:"lastActive"`
}

func NewMatchProfile(c Candidate, results assessment.Results, score matching.CompatibilityScore) MatchProfile {
	return MatchProfile{
		ID:                 c.ID,
		Name:               c.Name,
		Age:                c.Age,
		Gender:             c.Gender,
		Location:           c.Location,
		DistanceKm:         c.DistanceKm,
		Bio:                c.Bio,
		Photos:             c.Photos,
		Interests:          c.Interests,
		Attributes:         c.Attributes,
		AssessmentResults:  results,
		CompatibilityScore: score,
		ConnectionStatus:   StatusNone,
		LastActive:         c.LastActive,
	}
}
