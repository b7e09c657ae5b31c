package repository

import (
	"context"
	"encoding/json"
	"sync"

	"kindred/internal/domain/match"
	"kindred/internal/pkg/storekey"
	"kindred/internal/platform/logger"
)

// KeyValueStore is the durable tier as seen by repositories.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// DurableDecisionRepository keeps one JSON document of decisions and one of
// mutual matches per session. Saving a decision for a known match id
// replaces it.
type DurableDecisionRepository struct {
	kv     KeyValueStore
	logger *logger.Logger

	mu sync.Mutex
}

func NewDurableDecisionRepository(kv KeyValueStore, log *logger.Logger) *DurableDecisionRepository {
	return &DurableDecisionRepository{kv: kv, logger: log}
}

func (r *DurableDecisionRepository) SaveDecision(ctx context.Context, sessionID string, d match.MatchDecision) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := map[string]match.MatchDecision{}
	if err := r.load(ctx, storekey.Decisions(sessionID), &all); err != nil {
		return err
	}
	all[d.MatchID] = d
	return r.store(ctx, storekey.Decisions(sessionID), all)
}

func (r *DurableDecisionRepository) Decisions(ctx context.Context, sessionID string) (map[string]match.MatchDecision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := map[string]match.MatchDecision{}
	if err := r.load(ctx, storekey.Decisions(sessionID), &all); err != nil {
		return nil, err
	}
	return all, nil
}

func (r *DurableDecisionRepository) AddMutualMatch(ctx context.Context, sessionID string, m match.MutualMatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := map[string]match.MutualMatch{}
	if err := r.load(ctx, storekey.MutualMatches(sessionID), &all); err != nil {
		return err
	}
	if _, ok := all[m.MatchID]; ok {
		return nil
	}
	all[m.MatchID] = m
	return r.store(ctx, storekey.MutualMatches(sessionID), all)
}

func (r *DurableDecisionRepository) MutualMatches(ctx context.Context, sessionID string) (map[string]match.MutualMatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := map[string]match.MutualMatch{}
	if err := r.load(ctx, storekey.MutualMatches(sessionID), &all); err != nil {
		return nil, err
	}
	return all, nil
}

func (r *DurableDecisionRepository) Clear(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.kv.Delete(ctx, storekey.Decisions(sessionID), storekey.MutualMatches(sessionID))
}

// load leaves out untouched on a miss. An unreadable document is dropped
// and treated as empty.
func (r *DurableDecisionRepository) load(ctx context.Context, key string, out any) error {
	raw, found, err := r.kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if !found || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		r.logger.Warn("[Decisions] discarding unreadable document", "key", key, "err", err)
		return r.kv.Delete(ctx, key)
	}
	return nil
}

func (r *DurableDecisionRepository) store(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, key, b)
}
