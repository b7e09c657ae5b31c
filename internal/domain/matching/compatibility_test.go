package matching

import (
	"testing"

	"kindred/internal/domain/assessment"

	"github.com/stretchr/testify/assert"
)

func fullResults(style assessment.AttachmentStyle, order assessment.BirthOrder) assessment.Results {
	return assessment.Results{
		AttachmentStyle: &assessment.AttachmentResult{Style: style},
		Personality:     &assessment.PersonalityResult{Introversion: 70, Extroversion: 30, Thinking: 60, Feeling: 40},
		BirthOrder:      &assessment.BirthOrderResult{Position: order},
		RelationshipIntent: &assessment.RelationshipIntentResult{
			Timeline:        assessment.TimelineWithinYear,
			CommitmentStyle: assessment.CommitmentMonogamous,
			FamilyPlanning:  assessment.FamilyWantChildren,
		},
		Lifestyle: &assessment.LifestyleResult{ActivityLevel: "active"},
	}
}

func TestOverall_WeightsSumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, WeightAttachment+WeightValues+WeightPersonality+WeightBirthOrder+WeightLifestyle, 1e-9)

	all90 := SubScores{Attachment: 90, Personality: 90, BirthOrder: 90, Values: 90, Lifestyle: 90}
	assert.Equal(t, 90, Overall(all90))

	secure := all90
	secure.Attachment = 95
	// 95*0.35 + 90*0.65 = 91.75
	assert.Equal(t, 92, Overall(secure))
}

func TestOverall_Bounds(t *testing.T) {
	assert.Equal(t, 0, Overall(SubScores{}))
	assert.Equal(t, 100, Overall(SubScores{Attachment: 100, Personality: 100, BirthOrder: 100, Values: 100, Lifestyle: 100}))
}

func TestDeriveBreakdown(t *testing.T) {
	s := SubScores{Attachment: 85, Personality: 72, BirthOrder: 60, Values: 77, Lifestyle: 82}
	got := DeriveBreakdown(s)

	assert.Equal(t, Breakdown{
		Emotional:     88, // 85*0.8 + 20
		Communication: 76, // 72*0.7 + 85*0.3 = 75.9
		Lifestyle:     82,
		Goals:         77,
		Intimacy:      84, // 85*0.6 + 82*0.4 = 83.8
	}, got)

	low := DeriveBreakdown(SubScores{Attachment: 45})
	assert.Equal(t, 46, low.Emotional) // 45*0.8 + 10
	assert.Equal(t, got, DeriveBreakdown(s), "breakdown is a pure function")

	capped := DeriveBreakdown(SubScores{Attachment: 100})
	assert.Equal(t, 100, capped.Emotional)
}

func TestCalculate_Deterministic(t *testing.T) {
	u := fullResults(assessment.AttachmentSecure, assessment.BirthOrderOldest)
	c := fullResults(assessment.AttachmentSecure, assessment.BirthOrderYoungest)
	c.Personality = &assessment.PersonalityResult{Extroversion: 70, Introversion: 30, Thinking: 60, Feeling: 40}

	first := Calculate(u, c)
	second := Calculate(u, c)
	assert.Equal(t, first, second)

	assert.Equal(t, 95, first.Attachment)
	assert.Equal(t, 92, first.BirthOrder)
	assert.Equal(t, 100, first.Values)
	assert.Equal(t, 100, first.Personality)
	assert.Equal(t, LifestyleBothPresent, first.Lifestyle)
	assert.GreaterOrEqual(t, first.Overall, 90)
	assert.LessOrEqual(t, first.Overall, 100)
	assert.NotEmpty(t, first.Explanations.Strengths)
	assert.Empty(t, first.Explanations.Challenges)
}

func TestCalculate_EmptyProfiles(t *testing.T) {
	got := Calculate(assessment.Results{}, assessment.Results{})

	assert.Equal(t, NeutralScore, got.Attachment)
	assert.Equal(t, NeutralScore, got.Personality)
	assert.Equal(t, NeutralScore, got.BirthOrder)
	assert.Equal(t, NeutralScore, got.Values)
	assert.Equal(t, LifestyleMissing, got.Lifestyle)
	// 50*0.95 + 68*0.05 = 50.9
	assert.Equal(t, 51, got.Overall)
	assert.Len(t, got.Explanations.Challenges, 5)
}

func TestExplain_Thresholds(t *testing.T) {
	s := SubScores{Attachment: 45, Personality: 80, BirthOrder: 92, Values: 59, Lifestyle: 68}
	got := Explain(s, Overall(s), Details{})

	assert.Contains(t, got.Challenges, "Attachment styles may create push-pull dynamics that need open conversation")
	assert.Contains(t, got.Strengths, "Complementary family roles")
	assert.Contains(t, got.Strengths, "Personalities that balance each other")
	assert.NotContains(t, got.Strengths, "Broadly compatible relationship goals")
}
