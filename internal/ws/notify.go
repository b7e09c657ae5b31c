package ws

import (
	"encoding/json"
	"time"

	"kindred/internal/domain/match"
)

type MutualMatchEvent struct {
	Type      string             `json:"type"`
	MatchID   string             `json:"matchId"`
	Name      string             `json:"name,omitempty"`
	Overall   int                `json:"overall"`
	MatchedAt string             `json:"matchedAt"`
	Profile   match.MatchProfile `json:"profile"`
}

// NotifyMutualMatch satisfies the match pool's notifier.
func (h *Hub) NotifyMutualMatch(sessionID string, m match.MutualMatch, p match.MatchProfile) {
	if h == nil || sessionID == "" {
		return
	}
	evt := MutualMatchEvent{
		Type:      "mutual_match",
		MatchID:   m.MatchID,
		Name:      p.Name,
		Overall:   p.CompatibilityScore.Overall,
		MatchedAt: m.Timestamp.UTC().Format(time.RFC3339),
		Profile:   p,
	}
	b, err := json.Marshal(evt)
	if err != nil {
		h.logger.Warn("[WS] encode event failed", "err", err)
		return
	}
	h.Broadcast(sessionID, b)
}
