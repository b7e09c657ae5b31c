package profile

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"kindred/internal/domain/assessment"
)

var ErrInvalidProfile = errors.New("invalid profile")

type Step struct {
	Phase int `json:"phase"`
	Step  int `json:"step"`
}

// UserProfile is owned by the profile state manager; nothing else writes it
// to storage.
type UserProfile struct {
	ID                  string             `json:"id"`
	CreatedAt           time.Time          `json:"createdAt"`
	LastUpdated         time.Time          `json:"lastUpdated"`
	BasicInfo           map[string]string  `json:"basicInfo,omitempty"`
	AssessmentResults   assessment.Results `json:"assessmentResults"`
	ReadinessScore      *int               `json:"readinessScore,omitempty"`
	OnboardingCompleted bool               `json:"onboardingCompleted"`
	CurrentStep         Step               `json:"currentStep"`
}

// New returns an empty profile stamped with now.
func New(id string, now time.Time) *UserProfile {
	now = now.UTC()
	return &UserProfile{
		ID:          id,
		CreatedAt:   now,
		LastUpdated: now,
		BasicInfo:   map[string]string{},
		CurrentStep: Step{Phase: 1, Step: 1},
	}
}

// Validate checks the structural fields every stored profile must carry.
func (p *UserProfile) Validate() error {
	if p == nil {
		return ErrInvalidProfile
	}
	if strings.TrimSpace(p.ID) == "" || p.CreatedAt.IsZero() || p.LastUpdated.IsZero() {
		return ErrInvalidProfile
	}
	return nil
}

// Clone returns a deep copy via JSON; profiles are small.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil
	}
	var out UserProfile
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	return &out
}

// Decode parses a stored profile and validates it.
func Decode(raw []byte) (*UserProfile, error) {
	if len(raw) == 0 {
		return nil, ErrInvalidProfile
	}
	var p UserProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
