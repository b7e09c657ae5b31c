package matching

import "fmt"

// Thresholds used by the explanation rules.
const (
	ThresholdChallenge   = 60
	ThresholdSolid       = 70
	ThresholdStrong      = 80
	ThresholdAttachment  = 85
	ThresholdExceptional = 90
)

// Explain populates the three explanation lists from the sub-scores.
func Explain(s SubScores, overall int, d Details) Explanations {
	out := Explanations{
		WhyCompatible: make([]string, 0, 4),
		Challenges:    make([]string, 0, 4),
		Strengths:     make([]string, 0, 4),
	}

	if overall >= ThresholdExceptional {
		out.WhyCompatible = append(out.WhyCompatible, "Exceptional alignment across every core dimension")
	} else if overall >= ThresholdStrong {
		out.WhyCompatible = append(out.WhyCompatible, "Strong overall compatibility with a solid foundation")
	}

	if s.Attachment >= ThresholdAttachment {
		out.Strengths = append(out.Strengths, "Emotional security: your attachment styles support deep trust")
		out.WhyCompatible = appendExplanation(out.WhyCompatible, d.Attachment)
	} else if s.Attachment < ThresholdSolid {
		out.Challenges = append(out.Challenges, "Attachment styles may create push-pull dynamics that need open conversation")
	}

	if s.Values >= ThresholdStrong {
		out.WhyCompatible = append(out.WhyCompatible, "You want the same things from a relationship")
		out.Strengths = append(out.Strengths, "Shared relationship goals and life direction")
	} else if s.Values >= ThresholdSolid {
		out.Strengths = append(out.Strengths, "Broadly compatible relationship goals")
	}

	if s.Personality >= ThresholdStrong {
		out.WhyCompatible = appendExplanation(out.WhyCompatible, d.Personality)
		out.Strengths = append(out.Strengths, "Personalities that balance each other")
	}

	if s.BirthOrder >= ThresholdAttachment {
		out.Strengths = append(out.Strengths, "Complementary family roles")
		out.WhyCompatible = appendExplanation(out.WhyCompatible, d.BirthOrder)
	}

	for _, c := range []struct {
		name  string
		score int
	}{
		{"attachment", s.Attachment},
		{"personality", s.Personality},
		{"family dynamics", s.BirthOrder},
		{"relationship goals", s.Values},
		{"lifestyle", s.Lifestyle},
	} {
		if c.score < ThresholdChallenge {
			out.Challenges = append(out.Challenges, fmt.Sprintf("Your %s scores suggest this area will need attention (%d/100)", c.name, c.score))
		}
	}

	if len(out.WhyCompatible) == 0 {
		out.WhyCompatible = append(out.WhyCompatible, "You share enough common ground to explore a connection")
	}
	if len(out.Strengths) == 0 {
		out.Strengths = append(out.Strengths, "Room to grow together through honest communication")
	}
	return out
}

func appendExplanation(list []string, ds DimensionScore) []string {
	if ds.Explanation == "" || ds.Explanation == incompleteExplanation {
		return list
	}
	return append(list, ds.Explanation)
}
