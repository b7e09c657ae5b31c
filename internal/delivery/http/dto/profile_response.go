package dto

import (
	"time"

	"kindred/internal/domain/assessment"
	"kindred/internal/domain/profile"
)

type SaveProfileRequest struct {
	CreatedAt           *time.Time         `json:"createdAt"`
	BasicInfo           map[string]string  `json:"basicInfo"`
	AssessmentResults   assessment.Results `json:"assessmentResults"`
	ReadinessScore      *int               `json:"readinessScore"`
	OnboardingCompleted bool               `json:"onboardingCompleted"`
	CurrentStep         *profile.Step      `json:"currentStep"`
}

// ToProfile builds the profile to save for sessionID. The id always comes
// from the session, never from the body.
func (r SaveProfileRequest) ToProfile(sessionID string) *profile.UserProfile {
	p := &profile.UserProfile{
		ID:                  sessionID,
		BasicInfo:           r.BasicInfo,
		AssessmentResults:   r.AssessmentResults,
		ReadinessScore:      r.ReadinessScore,
		OnboardingCompleted: r.OnboardingCompleted,
		CurrentStep:         profile.Step{Phase: 1, Step: 1},
	}
	if r.CreatedAt != nil {
		p.CreatedAt = r.CreatedAt.UTC()
	}
	if r.CurrentStep != nil {
		p.CurrentStep = *r.CurrentStep
	}
	return p
}

type OnboardingProgressRequest struct {
	Phase int `json:"phase"`
	Step  int `json:"step"`
}

type CompleteOnboardingRequest struct {
	ReadinessScore *int `json:"readinessScore"`
}

type ProfileResponse struct {
	ID                  string                 `json:"id"`
	CreatedAt           time.Time              `json:"createdAt"`
	LastUpdated         time.Time              `json:"lastUpdated"`
	BasicInfo           map[string]string      `json:"basicInfo"`
	AssessmentResults   assessment.Results     `json:"assessmentResults"`
	CompletedDimensions []assessment.Dimension `json:"completedDimensions"`
	AssessmentComplete  bool                   `json:"assessmentComplete"`
	ReadinessScore      *int                   `json:"readinessScore"`
	OnboardingCompleted bool                   `json:"onboardingCompleted"`
	CurrentStep         profile.Step           `json:"currentStep"`
}

func NewProfileResponse(p *profile.UserProfile) ProfileResponse {
	basic := p.BasicInfo
	if basic == nil {
		basic = map[string]string{}
	}
	return ProfileResponse{
		ID:                  p.ID,
		CreatedAt:           p.CreatedAt,
		LastUpdated:         p.LastUpdated,
		BasicInfo:           basic,
		AssessmentResults:   p.AssessmentResults,
		CompletedDimensions: p.AssessmentResults.Recorded(),
		AssessmentComplete:  p.AssessmentResults.IsComplete(),
		ReadinessScore:      p.ReadinessScore,
		OnboardingCompleted: p.OnboardingCompleted,
		CurrentStep:         p.CurrentStep,
	}
}
