package profile

import (
	"context"
	"time"

	"kindred/internal/domain/assessment"
)

// RemoteRecord is the row shape kept by the remote store.
type RemoteRecord struct {
	ID                  string
	AssessmentResults   assessment.Results
	ReadinessScore      *int
	OnboardingCompleted bool
	CurrentStep         Step
	LastUpdated         time.Time
}

// RemoteStore is the cross-device backing store. Latest reports found=false
// for a missing row rather than an error.
type RemoteStore interface {
	Upsert(ctx context.Context, rec RemoteRecord) error
	Latest(ctx context.Context, id string) (RemoteRecord, bool, error)
	Delete(ctx context.Context, id string) error
}

func ToRemote(p *UserProfile) RemoteRecord {
	return RemoteRecord{
		ID:                  p.ID,
		AssessmentResults:   p.AssessmentResults,
		ReadinessScore:      p.ReadinessScore,
		OnboardingCompleted: p.OnboardingCompleted,
		CurrentStep:         p.CurrentStep,
		LastUpdated:         p.LastUpdated,
	}
}

// MergeRemote applies a remote record over a local profile. Fields the remote
// row does not carry (createdAt, basicInfo) are kept from local; a nil local
// yields a profile restored solely from the remote row.
func MergeRemote(local *UserProfile, rec RemoteRecord) *UserProfile {
	out := local.Clone()
	if out == nil {
		out = &UserProfile{
			ID:        rec.ID,
			CreatedAt: rec.LastUpdated.UTC(),
			BasicInfo: map[string]string{},
		}
	}
	out.AssessmentResults = rec.AssessmentResults
	out.ReadinessScore = rec.ReadinessScore
	out.OnboardingCompleted = rec.OnboardingCompleted
	out.CurrentStep = rec.CurrentStep
	out.LastUpdated = rec.LastUpdated.UTC()
	return out
}
