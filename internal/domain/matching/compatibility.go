package matching

import "kindred/internal/domain/assessment"

const (
	WeightAttachment  = 0.35
	WeightValues      = 0.25
	WeightPersonality = 0.20
	WeightBirthOrder  = 0.15
	WeightLifestyle   = 0.05

	// Lifestyle is a presence proxy, not a comparison of the records.
	LifestyleBothPresent = 82
	LifestyleMissing     = 68
)

type Breakdown struct {
	Emotional     int `json:"emotional"`
	Communication int `json:"communication"`
	Lifestyle     int `json:"lifestyle"`
	Goals         int `json:"goals"`
	Intimacy      int `json:"intimacy"`
}

type Explanations struct {
	WhyCompatible []string `json:"whyCompatible"`
	Challenges    []string `json:"challenges"`
	Strengths     []string `json:"strengths"`
}

type CompatibilityScore struct {
	Overall      int          `json:"overall"`
	Attachment   int          `json:"attachment"`
	Personality  int          `json:"personality"`
	BirthOrder   int          `json:"birthOrder"`
	Values       int          `json:"values"`
	Lifestyle    int          `json:"lifestyle"`
	Breakdown    Breakdown    `json:"breakdown"`
	Explanations Explanations `json:"explanations"`
}

// SubScores are the five inputs to the weighted overall score.
type SubScores struct {
	Attachment  int
	Personality int
	BirthOrder  int
	Values      int
	Lifestyle   int
}

// Details carries the per-dimension rationales alongside the sub-scores.
type Details struct {
	Attachment  DimensionScore
	Personality DimensionScore
	BirthOrder  DimensionScore
	Values      DimensionScore
}

// Overall applies the fixed weights. The weights sum to 1.0 so equal
// sub-scores yield that same overall.
func Overall(s SubScores) int {
	total := float64(s.Attachment)*WeightAttachment +
		float64(s.Values)*WeightValues +
		float64(s.Personality)*WeightPersonality +
		float64(s.BirthOrder)*WeightBirthOrder +
		float64(s.Lifestyle)*WeightLifestyle
	return clampScore(total)
}

// DeriveBreakdown is a pure function of the sub-scores.
func DeriveBreakdown(s SubScores) Breakdown {
	emotionalBonus := 10.0
	if s.Attachment >= 80 {
		emotionalBonus = 20
	}
	return Breakdown{
		Emotional:     clampScore(float64(s.Attachment)*0.8 + emotionalBonus),
		Communication: clampScore(float64(s.Personality)*0.7 + float64(s.Attachment)*0.3),
		Lifestyle:     clampInt(s.Lifestyle, 0, 100),
		Goals:         clampInt(s.Values, 0, 100),
		Intimacy:      clampScore(float64(s.Attachment)*0.6 + float64(s.Lifestyle)*0.4),
	}
}

// Combine builds a full score from already computed sub-scores.
func Combine(s SubScores, d Details) CompatibilityScore {
	s = SubScores{
		Attachment:  clampInt(s.Attachment, 0, 100),
		Personality: clampInt(s.Personality, 0, 100),
		BirthOrder:  clampInt(s.BirthOrder, 0, 100),
		Values:      clampInt(s.Values, 0, 100),
		Lifestyle:   clampInt(s.Lifestyle, 0, 100),
	}
	overall := Overall(s)
	return CompatibilityScore{
		Overall:      overall,
		Attachment:   s.Attachment,
		Personality:  s.Personality,
		BirthOrder:   s.BirthOrder,
		Values:       s.Values,
		Lifestyle:    s.Lifestyle,
		Breakdown:    DeriveBreakdown(s),
		Explanations: Explain(s, overall, d),
	}
}

// LifestyleHeuristic returns the presence-based lifestyle score.
func LifestyleHeuristic(user, candidate assessment.Results) int {
	if user.Lifestyle != nil && candidate.Lifestyle != nil {
		return LifestyleBothPresent
	}
	return LifestyleMissing
}

// Calculate scores candidate against user. It is deterministic and never
// fails; missing dimensions degrade to neutral scores.
func Calculate(user, candidate assessment.Results) CompatibilityScore {
	d := Details{
		Attachment:  ScoreAttachment(user.AttachmentStyle, candidate.AttachmentStyle),
		Personality: ScorePersonality(user.Personality, candidate.Personality),
		BirthOrder:  ScoreBirthOrder(user.BirthOrder, candidate.BirthOrder),
		Values:      ScoreValues(user.RelationshipIntent, candidate.RelationshipIntent),
	}
	s := SubScores{
		Attachment:  d.Attachment.Score,
		Personality: d.Personality.Score,
		BirthOrder:  d.BirthOrder.Score,
		Values:      d.Values.Score,
		Lifestyle:   LifestyleHeuristic(user, candidate),
	}
	return Combine(s, d)
}
