// Package matchpool tracks decisions over a session's candidate pool, derives
// mutual matches and keeps the pool topped up.
package matchpool

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"kindred/internal/domain/assessment"
	"kindred/internal/domain/match"
	"kindred/internal/domain/profile"
	"kindred/internal/metrics"
	"kindred/internal/platform/logger"

	lru "github.com/hashicorp/golang-lru/v2"
)

var ErrMatchNotFound = errors.New("match not found")

// ProfileReader is the slice of the profile manager the pool needs.
type ProfileReader interface {
	GetUserProfile(ctx context.Context, sessionID string) (*profile.UserProfile, error)
}

type PoolGenerator interface {
	Generate(ctx context.Context, user assessment.Results, exclude map[string]struct{}, limit int) ([]match.MatchProfile, error)
}

// Notifier is told about every new mutual match.
type Notifier interface {
	NotifyMutualMatch(sessionID string, m match.MutualMatch, p match.MatchProfile)
}

type Options struct {
	TargetSize   int
	RefreshBelow int
	CacheSize    int
}

type Manager struct {
	decisions match.DecisionRepository
	generator PoolGenerator
	profiles  ProfileReader
	decider   CounterpartDecider
	notifier  Notifier
	metrics   *metrics.Metrics
	logger    *logger.Logger

	pools        *lru.Cache[string, []match.MatchProfile]
	targetSize   int
	refreshBelow int

	now func() time.Time
}

func NewManager(
	decisions match.DecisionRepository,
	generator PoolGenerator,
	profiles ProfileReader,
	decider CounterpartDecider,
	notifier Notifier,
	m *metrics.Metrics,
	log *logger.Logger,
	opts Options,
) (*Manager, error) {
	if opts.TargetSize <= 0 {
		opts.TargetSize = TargetPoolSize
	}
	if opts.RefreshBelow <= 0 {
		opts.RefreshBelow = RefreshThreshold
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 1024
	}
	if decider == nil {
		decider = NewReciprocalDecider(DefaultMutualMinScore)
	}
	pools, err := lru.New[string, []match.MatchProfile](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("pool cache: %w", err)
	}
	return &Manager{
		decisions:    decisions,
		generator:    generator,
		profiles:     profiles,
		decider:      decider,
		notifier:     notifier,
		metrics:      m,
		logger:       log,
		pools:        pools,
		targetSize:   opts.TargetSize,
		refreshBelow: opts.RefreshBelow,
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

// ShouldRefresh applies the configured threshold.
func (m *Manager) ShouldRefresh(active int) bool {
	return active < m.refreshBelow
}

// Decide records a decision, last write wins. On "interested" the
// counterpart decider runs and a mutual match is stored when it opts in.
// The returned status is what the candidate now shows.
func (m *Manager) Decide(ctx context.Context, sessionID, matchID string, decision match.Decision) (match.ConnectionStatus, error) {
	if !decision.IsValid() {
		return "", match.ErrInvalidDecision
	}
	if matchID == "" {
		return "", ErrMatchNotFound
	}

	now := m.now()
	if err := m.decisions.SaveDecision(ctx, sessionID, match.MatchDecision{
		MatchID:   matchID,
		Decision:  decision,
		Timestamp: now,
	}); err != nil {
		return "", fmt.Errorf("save decision: %w", err)
	}
	m.metrics.IncDecision(string(decision))

	if decision == match.DecisionPassed {
		m.setStatus(sessionID, matchID, match.StatusPassed)
		return match.StatusPassed, nil
	}

	mutual, err := m.decisions.MutualMatches(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("load mutual matches: %w", err)
	}
	if _, ok := mutual[matchID]; ok {
		m.setStatus(sessionID, matchID, match.StatusMutual)
		return match.StatusMutual, nil
	}

	candidate := m.cachedProfile(sessionID, matchID)
	user, err := m.userResults(ctx, sessionID)
	if err != nil {
		return "", err
	}

	if !m.decider.Reciprocates(ctx, user, candidate) {
		m.setStatus(sessionID, matchID, match.StatusInterested)
		return match.StatusInterested, nil
	}

	record := match.MutualMatch{MatchID: matchID, Timestamp: now}
	if err := m.decisions.AddMutualMatch(ctx, sessionID, record); err != nil {
		return "", fmt.Errorf("save mutual match: %w", err)
	}
	m.metrics.IncMutualMatch()
	m.logger.Info("[Matches] mutual match", "session_id", sessionID, "match_id", matchID)

	candidate.ConnectionStatus = match.StatusMutual
	if m.notifier != nil {
		m.notifier.NotifyMutualMatch(sessionID, record, candidate)
	}
	m.setStatus(sessionID, matchID, match.StatusMutual)
	return match.StatusMutual, nil
}

// Status reports the current status of one candidate.
func (m *Manager) Status(ctx context.Context, sessionID, matchID string) (match.ConnectionStatus, error) {
	decisions, err := m.decisions.Decisions(ctx, sessionID)
	if err != nil {
		return "", err
	}
	mutual, err := m.decisions.MutualMatches(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return StatusOf(matchID, decisions, mutual), nil
}

// RefreshPool tops pool up toward the target size when fewer than the
// threshold remain active. New candidates exclude every id already in the
// pool. It is a no-op when no refresh is needed, so it can run on every
// load.
func (m *Manager) RefreshPool(ctx context.Context, user assessment.Results, pool []match.MatchProfile) ([]match.MatchProfile, bool, error) {
	active := len(ActiveMatches(pool))
	if !m.ShouldRefresh(active) {
		return pool, false, nil
	}
	need := m.targetSize - active
	if need <= 0 || m.generator == nil {
		return pool, false, nil
	}

	batch, err := m.generator.Generate(ctx, user, poolIDs(pool), need)
	if err != nil {
		return pool, false, fmt.Errorf("generate batch: %w", err)
	}
	if len(batch) == 0 {
		return pool, false, nil
	}

	out := make([]match.MatchProfile, 0, len(pool)+len(batch))
	out = append(out, pool...)
	out = append(out, batch...)
	m.metrics.IncPoolRefresh()
	return out, true, nil
}

// Dashboard loads the session's pool (generating it on first use), applies
// stored decisions, refreshes it when needed and returns the active matches.
func (m *Manager) Dashboard(ctx context.Context, sessionID string) ([]match.MatchProfile, error) {
	user, err := m.userResults(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	pool, cached := m.pools.Get(sessionID)
	if !cached {
		pool = []match.MatchProfile{}
		if m.generator != nil {
			pool, err = m.generator.Generate(ctx, user, nil, m.targetSize)
			if err != nil {
				return nil, fmt.Errorf("generate pool: %w", err)
			}
		}
	}

	decisions, err := m.decisions.Decisions(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load decisions: %w", err)
	}
	mutual, err := m.decisions.MutualMatches(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load mutual matches: %w", err)
	}
	pool = ApplyDecisions(pool, decisions, mutual)

	pool, refreshed, err := m.RefreshPool(ctx, user, pool)
	if err != nil {
		m.logger.Warn("[Matches] pool refresh failed", "session_id", sessionID, "err", err)
	}
	if refreshed {
		m.logger.Debug("[Matches] pool refreshed", "session_id", sessionID, "size", len(pool))
	}
	m.pools.Add(sessionID, pool)

	active := ActiveMatches(pool)
	m.metrics.ObservePoolSize(len(active))
	return active, nil
}

// MutualView pairs a mutual match with the candidate profile when the
// session's pool still holds it.
type MutualView struct {
	match.MutualMatch
	Profile *match.MatchProfile `json:"profile,omitempty"`
}

// MutualMatches lists the session's mutual matches, newest first.
func (m *Manager) MutualMatches(ctx context.Context, sessionID string) ([]MutualView, error) {
	mutual, err := m.decisions.MutualMatches(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]MutualView, 0, len(mutual))
	for _, mm := range mutual {
		v := MutualView{MutualMatch: mm}
		if p, ok := m.lookup(sessionID, mm.MatchID); ok {
			p.ConnectionStatus = match.StatusMutual
			v.Profile = &p
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].MatchID < out[j].MatchID
	})
	return out, nil
}

// Clear drops decisions, mutual matches and the cached pool.
func (m *Manager) Clear(ctx context.Context, sessionID string) error {
	m.pools.Remove(sessionID)
	return m.decisions.Clear(ctx, sessionID)
}

// Invalidate forgets the cached pool so the next dashboard load rescores
// against the current profile.
func (m *Manager) Invalidate(sessionID string) {
	m.pools.Remove(sessionID)
}

func (m *Manager) userResults(ctx context.Context, sessionID string) (assessment.Results, error) {
	if m.profiles == nil {
		return assessment.Results{}, nil
	}
	p, err := m.profiles.GetUserProfile(ctx, sessionID)
	if err != nil {
		return assessment.Results{}, fmt.Errorf("read profile: %w", err)
	}
	if p == nil {
		return assessment.Results{}, nil
	}
	return p.AssessmentResults, nil
}

func (m *Manager) lookup(sessionID, matchID string) (match.MatchProfile, bool) {
	pool, ok := m.pools.Peek(sessionID)
	if !ok {
		return match.MatchProfile{}, false
	}
	for _, p := range pool {
		if p.ID == matchID {
			return p, true
		}
	}
	return match.MatchProfile{}, false
}

// cachedProfile falls back to a bare profile carrying only the id, which a
// reciprocal decider scores as incomplete.
func (m *Manager) cachedProfile(sessionID, matchID string) match.MatchProfile {
	if p, ok := m.lookup(sessionID, matchID); ok {
		return p
	}
	return match.MatchProfile{ID: matchID, ConnectionStatus: match.StatusNone}
}

func (m *Manager) setStatus(sessionID, matchID string, status match.ConnectionStatus) {
	pool, ok := m.pools.Peek(sessionID)
	if !ok {
		return
	}
	next := make([]match.MatchProfile, len(pool))
	copy(next, pool)
	for i := range next {
		if next[i].ID == matchID {
			next[i].ConnectionStatus = status
		}
	}
	m.pools.Add(sessionID, next)
}
