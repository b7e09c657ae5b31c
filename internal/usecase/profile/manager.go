// Package profile owns the user profile across the three storage tiers:
// the session tier (Redis, TTL), the durable tier (SQLite, with a backup
// slot) and the remote store (Postgres). Every profile write in the service
// goes through Manager.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"kindred/internal/domain/assessment"
	"kindred/internal/domain/profile"
	"kindred/internal/metrics"
	"kindred/internal/pkg/lock"
	"kindred/internal/pkg/storekey"
	"kindred/internal/platform/logger"

	"golang.org/x/sync/errgroup"
)

// SessionStore is the session tier. Misses and outages both read as
// found=false; a value that does not decode comes back with found=true and
// an error.
type SessionStore interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// DurableStore is the durable tier.
type DurableStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

const (
	DefaultRemoteTimeout = 5 * time.Second
	DefaultWriteRetries  = 3
)

type Options struct {
	SessionTTL    time.Duration
	RemoteTimeout time.Duration
	WriteRetries  int
}

type Manager struct {
	session SessionStore
	durable DurableStore
	remote  profile.RemoteStore
	locks   *lock.Registry
	metrics *metrics.Metrics
	logger  *logger.Logger
	opts    Options

	now     func() time.Time
	wg      sync.WaitGroup
	remoteQ *remoteQueue
}

// NewManager wires the tiers. remote may be nil, in which case the service
// runs on the local tiers alone.
func NewManager(session SessionStore, durable DurableStore, remote profile.RemoteStore, locks *lock.Registry, m *metrics.Metrics, log *logger.Logger, opts Options) *Manager {
	if opts.RemoteTimeout <= 0 {
		opts.RemoteTimeout = DefaultRemoteTimeout
	}
	if opts.WriteRetries <= 0 {
		opts.WriteRetries = DefaultWriteRetries
	}
	if locks == nil {
		locks = lock.NewRegistry(lock.DefaultNavigationRelease)
	}
	return &Manager{
		session: session,
		durable: durable,
		remote:  remote,
		locks:   locks,
		metrics: m,
		logger:  log,
		opts:    opts,
		now:     func() time.Time { return time.Now().UTC() },
		remoteQ: newRemoteQueue(),
	}
}

// Wait blocks until background remote work has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// GetUserProfile returns the session's profile, or nil when none exists in
// any tier. A local hit returns at once and schedules a background check
// against the remote store.
func (m *Manager) GetUserProfile(ctx context.Context, sessionID string) (*profile.UserProfile, error) {
	p, fromLocal, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if p != nil && fromLocal {
		m.checkFreshness(sessionID, p.Clone())
	}
	return p, nil
}

// SaveUserProfile writes p through every tier. Saves for one session run one
// at a time in call order. An existing profile keeps its creation time.
func (m *Manager) SaveUserProfile(ctx context.Context, sessionID string, p *profile.UserProfile) error {
	if p == nil {
		return ErrValidation
	}
	return m.locks.Sync(ctx, sessionID, func() error {
		in := p.Clone()
		existing, _, err := m.load(ctx, sessionID)
		switch {
		case err != nil:
			m.logger.Warn("[Profile] overwriting unreadable profile", "session_id", sessionID, "err", err)
		case existing != nil && !existing.CreatedAt.IsZero():
			in.CreatedAt = existing.CreatedAt
		}
		_, err = m.save(ctx, sessionID, in)
		return err
	})
}

// UpdateAssessmentResult records one dimension, creating the profile on the
// first assessment interaction.
func (m *Manager) UpdateAssessmentResult(ctx context.Context, sessionID string, res assessment.Result) (*profile.UserProfile, error) {
	if res == nil {
		return nil, ErrValidation
	}
	return m.mutate(ctx, sessionID, func(p *profile.UserProfile) error {
		if err := p.AssessmentResults.Set(res); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil
	})
}

func (m *Manager) UpdateOnboardingProgress(ctx context.Context, sessionID string, phase, step int) (*profile.UserProfile, error) {
	if phase < 1 || step < 1 {
		return nil, ErrValidation
	}
	return m.mutate(ctx, sessionID, func(p *profile.UserProfile) error {
		p.CurrentStep = profile.Step{Phase: phase, Step: step}
		return nil
	})
}

// CompleteOnboardingWithReadinessScore marks onboarding done. A second call
// while one is in flight, or within the navigation lock's release delay,
// fails with ErrLockContention and changes nothing.
func (m *Manager) CompleteOnboardingWithReadinessScore(ctx context.Context, sessionID string, score int) (*profile.UserProfile, error) {
	if score < 0 || score > 100 {
		return nil, ErrValidation
	}

	var out *profile.UserProfile
	err := m.locks.Navigate(sessionID, func() error {
		p, err := m.mutate(ctx, sessionID, func(p *profile.UserProfile) error {
			s := score
			p.ReadinessScore = &s
			p.OnboardingCompleted = true
			return nil
		})
		out = p
		return err
	})
	if errors.Is(err, lock.ErrLockContention) {
		m.metrics.IncLockContention("navigation")
		m.logger.Info("[Profile] duplicate onboarding completion rejected", "session_id", sessionID)
		return nil, ErrLockContention
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Manager) HasCompletedOnboarding(ctx context.Context, sessionID string) (bool, error) {
	p, err := m.GetUserProfile(ctx, sessionID)
	if err != nil || p == nil {
		return false, err
	}
	return p.OnboardingCompleted, nil
}

func (m *Manager) IsAssessmentComplete(ctx context.Context, sessionID string) (bool, error) {
	p, err := m.GetUserProfile(ctx, sessionID)
	if err != nil || p == nil {
		return false, err
	}
	return p.AssessmentResults.IsComplete(), nil
}

// Status summarizes progress for the session.
type Status struct {
	Exists              bool                   `json:"exists"`
	OnboardingCompleted bool                   `json:"onboardingCompleted"`
	AssessmentComplete  bool                   `json:"assessmentComplete"`
	CompletedDimensions []assessment.Dimension `json:"completedDimensions"`
	CurrentStep         profile.Step           `json:"currentStep"`
	ReadinessScore      *int                   `json:"readinessScore,omitempty"`
}

func (m *Manager) Status(ctx context.Context, sessionID string) (Status, error) {
	p, err := m.GetUserProfile(ctx, sessionID)
	if err != nil {
		return Status{}, err
	}
	if p == nil {
		return Status{CompletedDimensions: []assessment.Dimension{}}, nil
	}
	return Status{
		Exists:              true,
		OnboardingCompleted: p.OnboardingCompleted,
		AssessmentComplete:  p.AssessmentResults.IsComplete(),
		CompletedDimensions: p.AssessmentResults.Recorded(),
		CurrentStep:         p.CurrentStep,
		ReadinessScore:      p.ReadinessScore,
	}, nil
}

// Reset clears every key the session owns in both local tiers and removes
// the remote row in the background, after any remote write already queued
// for the session. Until that delete has run the remote row is not restored.
func (m *Manager) Reset(ctx context.Context, sessionID string) error {
	return m.locks.Sync(ctx, sessionID, func() error {
		if err := m.clearLocal(ctx, sessionID); err != nil {
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}
		if m.remote != nil {
			m.remoteQ.beginReset(sessionID)
			m.background(sessionID, "delete", func(ctx context.Context) error {
				defer m.remoteQ.endReset(sessionID)
				return m.remote.Delete(ctx, sessionID)
			})
		}
		m.logger.Info("[Profile] reset", "session_id", sessionID)
		return nil
	})
}

// mutate runs a read-modify-write under the sync lock.
func (m *Manager) mutate(ctx context.Context, sessionID string, fn func(p *profile.UserProfile) error) (*profile.UserProfile, error) {
	var out *profile.UserProfile
	err := m.locks.Sync(ctx, sessionID, func() error {
		p, _, err := m.load(ctx, sessionID)
		if err != nil {
			return err
		}
		if p == nil {
			p = profile.New(sessionID, m.now())
		}
		if err := fn(p); err != nil {
			return err
		}
		out, err = m.save(ctx, sessionID, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// save must run under the session's sync lock.
func (m *Manager) save(ctx context.Context, sessionID string, in *profile.UserProfile) (*profile.UserProfile, error) {
	p := in.Clone()
	if p == nil {
		return nil, ErrValidation
	}
	now := m.now()
	if p.ID == "" {
		p.ID = sessionID
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.BasicInfo == nil {
		p.BasicInfo = map[string]string{}
	}
	p.LastUpdated = now
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	m.writeSession(ctx, sessionID, p)
	if err := m.writeDurable(ctx, sessionID, p); err != nil {
		return nil, err
	}

	pushed := p.Clone()
	m.background(sessionID, "upsert", func(ctx context.Context) error {
		return m.remote.Upsert(ctx, profile.ToRemote(pushed))
	})
	return p, nil
}

// load walks session tier, durable tier, then the remote store. fromLocal
// reports whether the profile came from one of the local tiers.
func (m *Manager) load(ctx context.Context, sessionID string) (*profile.UserProfile, bool, error) {
	if p := m.readSession(ctx, sessionID); p != nil {
		return p, true, nil
	}

	p, err := m.readDurable(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if p != nil {
		m.writeSession(ctx, sessionID, p)
		return p, true, nil
	}

	p = m.restoreFromRemote(ctx, sessionID)
	return p, false, nil
}

func (m *Manager) readSession(ctx context.Context, sessionID string) *profile.UserProfile {
	if m.session == nil {
		return nil
	}
	key := storekey.Profile(sessionID)
	var p profile.UserProfile
	found, err := m.session.GetJSON(ctx, key, &p)
	if !found {
		if err != nil {
			m.logger.Warn("[Profile] session tier read failed", "session_id", sessionID, "err", err)
		}
		return nil
	}
	if err == nil {
		err = p.Validate()
	}
	if err != nil {
		m.logger.Warn("[Profile] discarding invalid session profile",
			"session_id", sessionID, "err", fmt.Errorf("%w: %v", ErrValidation, err))
		_ = m.session.Delete(ctx, key)
		return nil
	}
	return &p
}

// readDurable falls back to the backup slot when the primary does not
// decode, repairing the primary from it. When both are unreadable every key
// of the session is cleared.
func (m *Manager) readDurable(ctx context.Context, sessionID string) (*profile.UserProfile, error) {
	raw, found, err := m.durable.Get(ctx, storekey.Profile(sessionID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if !found {
		return nil, nil
	}
	p, decodeErr := profile.Decode(raw)
	if decodeErr == nil {
		return p, nil
	}
	m.logger.Warn("[Profile] durable primary unreadable, trying backup", "session_id", sessionID, "err", decodeErr)

	backup, found, err := m.durable.Get(ctx, storekey.ProfileBackup(sessionID))
	if err == nil && found {
		if p, err := profile.Decode(backup); err == nil {
			if err := m.durable.Set(ctx, storekey.Profile(sessionID), backup); err != nil {
				m.logger.Warn("[Profile] primary repair failed", "session_id", sessionID, "err", err)
			}
			m.metrics.IncProfileRecovery("backup")
			m.logger.Info("[Profile] restored profile from backup", "session_id", sessionID)
			return p, nil
		}
	}

	m.metrics.IncProfileRecovery("corrupted")
	m.logger.Error("[Profile] profile and backup unreadable, clearing session", "session_id", sessionID)
	if err := m.clearLocal(ctx, sessionID); err != nil {
		m.logger.Warn("[Profile] clearing corrupted session failed", "session_id", sessionID, "err", err)
	}
	return nil, ErrProfileCorrupted
}

// restoreFromRemote is the one read that waits on the remote store, used
// when neither local tier has the profile.
func (m *Manager) restoreFromRemote(ctx context.Context, sessionID string) *profile.UserProfile {
	if m.remote == nil || m.remoteQ.resetPending(sessionID) {
		return nil
	}
	rctx, cancel := context.WithTimeout(ctx, m.opts.RemoteTimeout)
	defer cancel()

	rec, found, err := m.remote.Latest(rctx, sessionID)
	if err != nil {
		m.metrics.IncRemoteSyncFailure("restore")
		m.logger.Warn("[Profile] remote restore failed",
			"session_id", sessionID, "err", fmt.Errorf("%w: %v", ErrRemoteSync, err))
		return nil
	}
	if !found {
		return nil
	}

	p := profile.MergeRemote(nil, rec)
	if p.Validate() != nil {
		m.logger.Warn("[Profile] remote record invalid, ignoring", "session_id", sessionID)
		return nil
	}
	m.writeSession(ctx, sessionID, p)
	if err := m.writeDurable(ctx, sessionID, p); err != nil {
		m.logger.Warn("[Profile] caching restored profile failed", "session_id", sessionID, "err", err)
	}
	m.logger.Info("[Profile] restored profile from remote", "session_id", sessionID)
	return p
}

// checkFreshness compares the remote row with local in the background and
// overwrites the local tiers only when the remote one is strictly newer.
func (m *Manager) checkFreshness(sessionID string, local *profile.UserProfile) {
	if m.remote == nil || local == nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), m.opts.RemoteTimeout)
		defer cancel()

		rec, found, err := m.remote.Latest(ctx, local.ID)
		if err != nil {
			m.metrics.IncRemoteSyncFailure("latest")
			m.logger.Warn("[Profile] freshness check failed",
				"session_id", sessionID, "err", fmt.Errorf("%w: %v", ErrRemoteSync, err))
			return
		}
		if !found || !rec.LastUpdated.After(local.LastUpdated) {
			return
		}

		applied := false
		err = m.locks.Sync(ctx, sessionID, func() error {
			current, err := m.readDurable(ctx, sessionID)
			if err != nil {
				return err
			}
			// Reset since the read: nothing local to refresh.
			if current == nil || !rec.LastUpdated.After(current.LastUpdated) {
				return nil
			}
			merged := profile.MergeRemote(current, rec)
			applied = true
			m.writeSession(ctx, sessionID, merged)
			return m.writeDurable(ctx, sessionID, merged)
		})
		if err != nil {
			m.logger.Warn("[Profile] applying newer remote profile failed", "session_id", sessionID, "err", err)
			return
		}
		if !applied {
			return
		}
		m.logger.Info("[Profile] local profile replaced by newer remote copy",
			"session_id", sessionID, "remote_updated", rec.LastUpdated)
	}()
}

// background queues a remote call for the session. Calls for one session
// run in the order they were queued, each with its own timeout. Failures are
// logged, counted and dropped.
func (m *Manager) background(sessionID, op string, fn func(ctx context.Context) error) {
	if m.remote == nil {
		return
	}
	prev, done := m.remoteQ.push(sessionID)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.remoteQ.finish(sessionID, done)
		if prev != nil {
			<-prev
		}
		ctx, cancel := context.WithTimeout(context.Background(), m.opts.RemoteTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			m.metrics.IncRemoteSyncFailure(op)
			m.logger.Warn("[Profile] remote "+op+" failed", "session_id", sessionID, "err", fmt.Errorf("%w: %v", ErrRemoteSync, err))
		}
	}()
}

func (m *Manager) writeSession(ctx context.Context, sessionID string, p *profile.UserProfile) {
	if m.session == nil {
		return
	}
	if err := m.session.SetJSON(ctx, storekey.Profile(sessionID), p, m.opts.SessionTTL); err != nil {
		m.logger.Warn("[Profile] session tier write failed", "session_id", sessionID, "err", err)
	}
}

// writeDurable copies the previous readable primary to the backup slot, then
// writes the primary with retries. When every attempt fails the primary is
// put back from the backup.
func (m *Manager) writeDurable(ctx context.Context, sessionID string, p *profile.UserProfile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	primary := storekey.Profile(sessionID)
	backupKey := storekey.ProfileBackup(sessionID)

	prev, found, err := m.durable.Get(ctx, primary)
	if err == nil && found {
		if _, decodeErr := profile.Decode(prev); decodeErr == nil {
			if err := m.durable.Set(ctx, backupKey, prev); err != nil {
				m.logger.Warn("[Profile] backup write failed", "session_id", sessionID, "err", err)
			}
		}
	}

	var lastErr error
	for attempt := 1; attempt <= m.opts.WriteRetries; attempt++ {
		if lastErr = m.durable.Set(ctx, primary, raw); lastErr == nil {
			return nil
		}
		m.logger.Warn("[Profile] durable write failed", "session_id", sessionID, "attempt", attempt, "err", lastErr)
	}

	if backup, ok, err := m.durable.Get(ctx, backupKey); err == nil && ok {
		if err := m.durable.Set(ctx, primary, backup); err != nil {
			m.logger.Warn("[Profile] restoring primary from backup failed", "session_id", sessionID, "err", err)
		}
	}
	return fmt.Errorf("%w: %v", ErrStorage, lastErr)
}

func (m *Manager) clearLocal(ctx context.Context, sessionID string) error {
	keys := storekey.All(sessionID)
	g, gctx := errgroup.WithContext(ctx)
	if m.session != nil {
		g.Go(func() error { return m.session.Delete(gctx, keys...) })
	}
	g.Go(func() error { return m.durable.Delete(gctx, keys...) })
	return g.Wait()
}
