package dto

import (
	"time"

	"kindred/internal/domain/assessment"
	"kindred/internal/domain/match"
)

type MatchListResponse struct {
	Matches []match.MatchProfile `json:"matches"`
	Count   int                  `json:"count"`
}

func NewMatchListResponse(items []match.MatchProfile) MatchListResponse {
	if items == nil {
		items = []match.MatchProfile{}
	}
	return MatchListResponse{Matches: items, Count: len(items)}
}

type DecisionRequest struct {
	Decision string `json:"decision"`
}

type DecisionResponse struct {
	MatchID          string                 `json:"matchId"`
	Decision         match.Decision         `json:"decision"`
	ConnectionStatus match.ConnectionStatus `json:"connectionStatus"`
	Mutual           bool                   `json:"mutual"`
}

type MutualMatchResponse struct {
	MatchID   string              `json:"matchId"`
	MatchedAt time.Time           `json:"matchedAt"`
	Profile   *match.MatchProfile `json:"profile,omitempty"`
}

type CompatibilityRequest struct {
	User      assessment.Results `json:"user"`
	Candidate assessment.Results `json:"candidate"`
}
