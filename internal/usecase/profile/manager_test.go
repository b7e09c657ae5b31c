package profile

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"kindred/internal/domain/assessment"
	"kindred/internal/domain/profile"
	"kindred/internal/infrastructure/cache"
	"kindred/internal/infrastructure/durable"
	"kindred/internal/pkg/lock"
	"kindred/internal/pkg/storekey"
	"kindred/internal/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	mu        sync.Mutex
	rows      map[string]profile.RemoteRecord
	upsertErr error
	latestErr error
	upserts   int
	deletes   int
	// upsertDelays[i] stalls the i-th upsert before it writes.
	upsertDelays []time.Duration
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{rows: map[string]profile.RemoteRecord{}}
}

func (f *fakeRemote) Upsert(_ context.Context, rec profile.RemoteRecord) error {
	f.mu.Lock()
	var delay time.Duration
	if len(f.upsertDelays) > 0 {
		delay, f.upsertDelays = f.upsertDelays[0], f.upsertDelays[1:]
	}
	f.mu.Unlock()
	time.Sleep(delay)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.rows[rec.ID] = rec
	return nil
}

func (f *fakeRemote) Latest(_ context.Context, id string) (profile.RemoteRecord, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latestErr != nil {
		return profile.RemoteRecord{}, false, f.latestErr
	}
	rec, ok := f.rows[id]
	return rec, ok, nil
}

func (f *fakeRemote) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	delete(f.rows, id)
	return nil
}

func (f *fakeRemote) row(id string) (profile.RemoteRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.rows[id]
	return rec, ok
}

func (f *fakeRemote) delayUpserts(d ...time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertDelays = d
}

func (f *fakeRemote) put(rec profile.RemoteRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[rec.ID] = rec
}

// flakyDurable fails every write to failKey.
type flakyDurable struct {
	DurableStore
	failKey string
	writes  int
}

func (f *flakyDurable) Set(ctx context.Context, key string, value []byte) error {
	if key == f.failKey {
		f.writes++
		return errors.New("disk full")
	}
	return f.DurableStore.Set(ctx, key, value)
}

type harness struct {
	mgr     *Manager
	mr      *miniredis.Miniredis
	session *cache.Redis
	durable *durable.Store
	remote  *fakeRemote
}

func newHarness(t *testing.T, navRelease time.Duration) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	session := cache.NewRedisWithClient(client, logger.NewNop(), time.Hour)

	db, err := durable.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := durable.NewStore(db)

	remote := newFakeRemote()
	mgr := NewManager(session, store, remote, lock.NewRegistry(navRelease), nil, logger.NewNop(), Options{
		SessionTTL:    time.Hour,
		RemoteTimeout: time.Second,
		WriteRetries:  3,
	})
	t.Cleanup(mgr.Wait)
	return &harness{mgr: mgr, mr: mr, session: session, durable: store, remote: remote}
}

func attachment(style assessment.AttachmentStyle) *assessment.AttachmentResult {
	return &assessment.AttachmentResult{Style: style}
}

func TestManager_NothingAnywhere(t *testing.T) {
	h := newHarness(t, 0)
	p, err := h.mgr.GetUserProfile(context.Background(), "s1")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestManager_SaveGetRoundTrip(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	p := profile.New("s1", time.Now())
	p.AssessmentResults.AttachmentStyle = attachment(assessment.AttachmentSecure)
	p.AssessmentResults.BirthOrder = &assessment.BirthOrderResult{Position: assessment.BirthOrderOldest}
	p.OnboardingCompleted = true
	require.NoError(t, h.mgr.SaveUserProfile(ctx, "s1", p))

	got, err := h.mgr.GetUserProfile(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.AssessmentResults, got.AssessmentResults)
	assert.Equal(t, p.OnboardingCompleted, got.OnboardingCompleted)

	h.mgr.Wait()
	h.remote.mu.Lock()
	assert.Equal(t, 1, h.remote.upserts)
	h.remote.mu.Unlock()

	// Session tier gone: the durable tier still answers.
	h.mr.FlushAll()
	got, err = h.mgr.GetUserProfile(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.AssessmentResults, got.AssessmentResults)
}

func TestManager_CorruptedPrimaryRestoredFromBackup(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	_, err := h.mgr.UpdateAssessmentResult(ctx, "s1", attachment(assessment.AttachmentAnxious))
	require.NoError(t, err)
	_, err = h.mgr.UpdateAssessmentResult(ctx, "s1", &assessment.BirthOrderResult{Position: assessment.BirthOrderMiddle})
	require.NoError(t, err)

	h.mgr.Wait()
	h.remote.mu.Lock()
	h.remote.latestErr = errors.New("offline")
	h.remote.mu.Unlock()

	require.NoError(t, h.durable.Set(ctx, storekey.Profile("s1"), []byte(`{"id": "s1", "assessmentRes`)))
	h.mr.FlushAll()

	got, err := h.mgr.GetUserProfile(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.AssessmentResults.AttachmentStyle)
	assert.Equal(t, assessment.AttachmentAnxious, got.AssessmentResults.AttachmentStyle.Style)
	assert.Nil(t, got.AssessmentResults.BirthOrder, "backup holds the state before the last write")

	raw, found, err := h.durable.Get(ctx, storekey.Profile("s1"))
	require.NoError(t, err)
	require.True(t, found)
	repaired, err := profile.Decode(raw)
	require.NoError(t, err, "primary slot is repaired")
	assert.Equal(t, got.AssessmentResults, repaired.AssessmentResults)
}

func TestManager_CorruptedPrimaryAndBackup(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	_, err := h.mgr.UpdateAssessmentResult(ctx, "s1", attachment(assessment.AttachmentSecure))
	require.NoError(t, err)
	require.NoError(t, h.durable.Set(ctx, storekey.Decisions("s1"), []byte(`{}`)))
	require.NoError(t, h.durable.Set(ctx, storekey.Profile("s1"), []byte(`not json`)))
	require.NoError(t, h.durable.Set(ctx, storekey.ProfileBackup("s1"), []byte(`{"id": ""}`)))
	h.mr.FlushAll()

	_, err = h.mgr.GetUserProfile(ctx, "s1")
	assert.ErrorIs(t, err, ErrProfileCorrupted)

	for _, key := range storekey.All("s1") {
		_, found, err := h.durable.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, found, key)
	}
}

func TestManager_InvalidSessionEntryDiscarded(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	_, err := h.mgr.UpdateAssessmentResult(ctx, "s1", attachment(assessment.AttachmentAvoidant))
	require.NoError(t, err)
	require.NoError(t, h.mr.Set(storekey.Profile("s1"), `{"id":"","assessmentResults":{}}`))

	got, err := h.mgr.GetUserProfile(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, assessment.AttachmentAvoidant, got.AssessmentResults.AttachmentStyle.Style)

	cached, err := h.mr.Get(storekey.Profile("s1"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(cached, `"id":"s1"`), "session tier refilled from the durable tier")
}

func TestManager_AssessmentCompletionThreshold(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	dims := assessment.Dimensions()
	for _, d := range dims[:6] {
		res, err := assessment.NewResult(d)
		require.NoError(t, err)
		_, err = h.mgr.UpdateAssessmentResult(ctx, "s1", res)
		require.NoError(t, err)
	}
	complete, err := h.mgr.IsAssessmentComplete(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, complete, "6 of 14")

	for _, d := range dims[6:8] {
		res, err := assessment.NewResult(d)
		require.NoError(t, err)
		_, err = h.mgr.UpdateAssessmentResult(ctx, "s1", res)
		require.NoError(t, err)
	}
	complete, err = h.mgr.IsAssessmentComplete(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, complete, "8 of 14")
}

func TestManager_ConcurrentUpdatesAreSerialized(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, d := range assessment.Dimensions() {
		wg.Add(1)
		go func(d assessment.Dimension) {
			defer wg.Done()
			res, err := assessment.NewResult(d)
			if err != nil {
				t.Error(err)
				return
			}
			if _, err := h.mgr.UpdateAssessmentResult(ctx, "s1", res); err != nil {
				t.Error(err)
			}
		}(d)
	}
	wg.Wait()

	got, err := h.mgr.GetUserProfile(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, len(assessment.Dimensions()), got.AssessmentResults.Completed(), "no update is lost")
}

func TestManager_RemoteNewerOverwritesLocal(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	_, err := h.mgr.UpdateAssessmentResult(ctx, "s1", attachment(assessment.AttachmentAnxious))
	require.NoError(t, err)
	h.mgr.Wait()

	score := 77
	h.remote.put(profile.RemoteRecord{
		ID:                  "s1",
		AssessmentResults:   assessment.Results{AttachmentStyle: attachment(assessment.AttachmentSecure)},
		ReadinessScore:      &score,
		OnboardingCompleted: true,
		CurrentStep:         profile.Step{Phase: 3, Step: 2},
		LastUpdated:         time.Now().Add(time.Hour).UTC(),
	})

	stale, err := h.mgr.GetUserProfile(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, stale.OnboardingCompleted, "local copy is returned without waiting")
	h.mgr.Wait()

	fresh, err := h.mgr.GetUserProfile(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, fresh.OnboardingCompleted)
	assert.Equal(t, assessment.AttachmentSecure, fresh.AssessmentResults.AttachmentStyle.Style)
	require.NotNil(t, fresh.ReadinessScore)
	assert.Equal(t, 77, *fresh.ReadinessScore)
}

func TestManager_RemoteOlderIsIgnored(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	_, err := h.mgr.UpdateAssessmentResult(ctx, "s1", attachment(assessment.AttachmentAnxious))
	require.NoError(t, err)
	h.mgr.Wait()
	h.remote.put(profile.RemoteRecord{
		ID:                  "s1",
		OnboardingCompleted: true,
		LastUpdated:         time.Now().Add(-time.Hour).UTC(),
	})

	_, err = h.mgr.GetUserProfile(ctx, "s1")
	require.NoError(t, err)
	h.mgr.Wait()

	got, err := h.mgr.GetUserProfile(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, got.OnboardingCompleted)
}

func TestManager_RemoteFailuresAreSwallowed(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	h.remote.upsertErr = errors.New("connection refused")
	h.remote.latestErr = errors.New("connection refused")

	_, err := h.mgr.UpdateAssessmentResult(ctx, "s1", attachment(assessment.AttachmentSecure))
	require.NoError(t, err)

	got, err := h.mgr.GetUserProfile(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	h.mgr.Wait()
}

func TestManager_ColdStartRestoresFromRemote(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	updated := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	h.remote.put(profile.RemoteRecord{
		ID:                "s1",
		AssessmentResults: assessment.Results{AttachmentStyle: attachment(assessment.AttachmentDisorganized)},
		CurrentStep:       profile.Step{Phase: 2, Step: 4},
		LastUpdated:       updated,
	})

	got, err := h.mgr.GetUserProfile(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, profile.Step{Phase: 2, Step: 4}, got.CurrentStep)
	assert.True(t, got.CreatedAt.Equal(updated))

	_, found, err := h.durable.Get(ctx, storekey.Profile("s1"))
	require.NoError(t, err)
	assert.True(t, found, "restored profile is cached locally")
}

func TestManager_DurableWriteExhausted(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	_, err := h.mgr.UpdateAssessmentResult(ctx, "s1", attachment(assessment.AttachmentSecure))
	require.NoError(t, err)

	flaky := &flakyDurable{DurableStore: h.durable, failKey: storekey.Profile("s1")}
	h.mgr.durable = flaky

	_, err = h.mgr.UpdateOnboardingProgress(ctx, "s1", 2, 1)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, 4, flaky.writes, "three attempts plus the restore from backup")
}

func TestManager_OnboardingProgressValidation(t *testing.T) {
	h := newHarness(t, 0)
	_, err := h.mgr.UpdateOnboardingProgress(context.Background(), "s1", 0, 1)
	assert.ErrorIs(t, err, ErrValidation)

	p, err := h.mgr.UpdateOnboardingProgress(context.Background(), "s1", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, profile.Step{Phase: 2, Step: 3}, p.CurrentStep)
}

func TestManager_CompleteOnboardingNavigationLock(t *testing.T) {
	h := newHarness(t, 5*time.Second)
	ctx := context.Background()

	p, err := h.mgr.CompleteOnboardingWithReadinessScore(ctx, "s1", 82)
	require.NoError(t, err)
	assert.True(t, p.OnboardingCompleted)
	require.NotNil(t, p.ReadinessScore)
	assert.Equal(t, 82, *p.ReadinessScore)

	_, err = h.mgr.CompleteOnboardingWithReadinessScore(ctx, "s1", 40)
	assert.ErrorIs(t, err, ErrLockContention)

	got, err := h.mgr.GetUserProfile(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 82, *got.ReadinessScore, "rejected call changed nothing")

	done, err := h.mgr.HasCompletedOnboarding(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, done)

	_, err = h.mgr.CompleteOnboardingWithReadinessScore(ctx, "s2", 101)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestManager_Reset(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	_, err := h.mgr.UpdateAssessmentResult(ctx, "s1", attachment(assessment.AttachmentSecure))
	require.NoError(t, err)
	h.mgr.Wait()

	require.NoError(t, h.mgr.Reset(ctx, "s1"))
	h.mgr.Wait()

	got, err := h.mgr.GetUserProfile(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, h.mr.Exists(storekey.Profile("s1")))
	assert.Equal(t, 1, h.remote.deletes)
}

func TestManager_Status(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	st, err := h.mgr.Status(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, st.Exists)

	_, err = h.mgr.UpdateAssessmentResult(ctx, "s1", attachment(assessment.AttachmentSecure))
	require.NoError(t, err)
	st, err = h.mgr.Status(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, st.Exists)
	assert.Equal(t, []assessment.Dimension{assessment.DimensionAttachmentStyle}, st.CompletedDimensions)
	assert.False(t, st.AssessmentComplete)
}

func TestManager_RemoteWritesKeepSaveOrder(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	h.remote.delayUpserts(150 * time.Millisecond)

	_, err := h.mgr.UpdateAssessmentResult(ctx, "s1", attachment(assessment.AttachmentAnxious))
	require.NoError(t, err)
	latest, err := h.mgr.UpdateAssessmentResult(ctx, "s1", attachment(assessment.AttachmentSecure))
	require.NoError(t, err)
	h.mgr.Wait()

	rec, ok := h.remote.row("s1")
	require.True(t, ok)
	assert.True(t, rec.LastUpdated.Equal(latest.LastUpdated), "remote %v, local %v", rec.LastUpdated, latest.LastUpdated)
	assert.Equal(t, assessment.AttachmentSecure, rec.AssessmentResults.AttachmentStyle.Style)
}

func TestManager_ResetNotUndoneByPendingUpsert(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	_, err := h.mgr.UpdateAssessmentResult(ctx, "s2", attachment(assessment.AttachmentAnxious))
	require.NoError(t, err)
	h.mgr.Wait()

	h.remote.delayUpserts(150 * time.Millisecond)
	_, err = h.mgr.UpdateAssessmentResult(ctx, "s2", attachment(assessment.AttachmentSecure))
	require.NoError(t, err)
	require.NoError(t, h.mgr.Reset(ctx, "s2"))

	got, err := h.mgr.GetUserProfile(ctx, "s2")
	require.NoError(t, err)
	assert.Nil(t, got, "remote row awaiting delete is not restored")

	h.mgr.Wait()
	_, ok := h.remote.row("s2")
	assert.False(t, ok)

	got, err = h.mgr.GetUserProfile(ctx, "s2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestManager_FullSaveKeepsCreatedAt(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	first, err := h.mgr.UpdateAssessmentResult(ctx, "s1", attachment(assessment.AttachmentSecure))
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	require.NoError(t, h.mgr.SaveUserProfile(ctx, "s1", &profile.UserProfile{
		ID:          "s1",
		CurrentStep: profile.Step{Phase: 2, Step: 1},
	}))

	got, err := h.mgr.GetUserProfile(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.CreatedAt.Equal(first.CreatedAt), "created %v, now %v", first.CreatedAt, got.CreatedAt)
	assert.True(t, got.LastUpdated.After(first.LastUpdated))
	assert.Equal(t, profile.Step{Phase: 2, Step: 1}, got.CurrentStep)
}

func TestManager_LocksReleasedAfterOperations(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	for _, sid := range []string{"a", "b", "c"} {
		_, err := h.mgr.UpdateAssessmentResult(ctx, sid, attachment(assessment.AttachmentSecure))
		require.NoError(t, err)
		_, err = h.mgr.CompleteOnboardingWithReadinessScore(ctx, sid, 70)
		require.NoError(t, err)
		require.NoError(t, h.mgr.Reset(ctx, sid))
	}
	h.mgr.Wait()
	assert.Equal(t, 0, h.mgr.locks.Len())
}
