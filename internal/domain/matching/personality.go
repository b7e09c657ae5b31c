package matching

import (
	"strings"

	"kindred/internal/domain/assessment"
)

const (
	personalityBase           = 50
	energyComplementaryBonus  = 20
	energySameBonus           = 10
	decisionSharedBonus       = 20
	decisionOppositeBonus     = 10
	intensitySimilarityBonus  = 10
	intensitySimilarityWindow = 20
)

type personalityAxes struct {
	introverted bool
	thinking    bool
	intensity   int
}

func axesOf(p *assessment.PersonalityResult) personalityAxes {
	energy := absInt(p.Introversion - p.Extroversion)
	decision := absInt(p.Thinking - p.Feeling)
	return personalityAxes{
		introverted: p.Introversion > p.Extroversion,
		thinking:    p.Thinking > p.Feeling,
		intensity:   (energy + decision) / 2,
	}
}

// ScorePersonality rewards complementary energy and a shared decision style.
// Profiles whose overall axis extremity lies within 20 points get a bonus.
func ScorePersonality(user, candidate *assessment.PersonalityResult) DimensionScore {
	if user == nil || candidate == nil {
		return neutral()
	}

	u := axesOf(user)
	c := axesOf(candidate)

	score := personalityBase
	reasons := make([]string, 0, 3)

	if u.introverted != c.introverted {
		score += energyComplementaryBonus
		reasons = append(reasons, "complementary social energy balances quiet time and going out")
	} else {
		score += energySameBonus
		reasons = append(reasons, "similar social energy means matching rhythms")
	}

	if u.thinking == c.thinking {
		score += decisionSharedBonus
		reasons = append(reasons, "you weigh decisions the same way")
	} else {
		score += decisionOppositeBonus
		reasons = append(reasons, "you approach decisions differently, which takes conscious translation")
	}

	if absInt(u.intensity-c.intensity) <= intensitySimilarityWindow {
		score += intensitySimilarityBonus
		reasons = append(reasons, "your traits are expressed with similar intensity")
	}

	return DimensionScore{
		Score:       clampInt(score, 0, 100),
		Explanation: capitalize(strings.Join(reasons, "; ")),
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
