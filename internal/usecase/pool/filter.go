package pool

import (
	"strings"

	"kindred/internal/domain/assessment"
	"kindred/internal/domain/match"
)

// ChildrenCategory is the must-have category where "maybe" on either side is
// compatible with any answer.
const ChildrenCategory = "children"

const maybe = "maybe"

// Filter keeps the candidates that pass every active preference. Each
// candidate is judged on its own, so the outcome for one never depends on the
// others in the slice.
func Filter(candidates []match.Candidate, prefs *assessment.PreferencesResult) []match.Candidate {
	out := make([]match.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if Matches(c, prefs) {
			out = append(out, c)
		}
	}
	return out
}

// Matches is the strict AND of all active constraints. A nil preferences
// record activates none of them.
func Matches(c match.Candidate, prefs *assessment.PreferencesResult) bool {
	if prefs == nil {
		return true
	}
	return matchesGender(c, prefs.GenderPreference) &&
		matchesAge(c, prefs.AgeRange) &&
		matchesDistance(c, prefs.MaxDistanceKm) &&
		passesDealBreakers(c, prefs.DealBreakers) &&
		satisfiesMustHaves(c, prefs.MustHaves)
}

func matchesGender(c match.Candidate, pref assessment.Gender) bool {
	if pref == "" || pref == assessment.GenderEveryone {
		return true
	}
	return strings.EqualFold(string(c.Gender), string(pref))
}

// matchesAge is inclusive on both ends; a zero bound is open.
func matchesAge(c match.Candidate, r *assessment.AgeRange) bool {
	if r == nil {
		return true
	}
	if r.Min > 0 && c.Age < r.Min {
		return false
	}
	if r.Max > 0 && c.Age > r.Max {
		return false
	}
	return true
}

func matchesDistance(c match.Candidate, maxKm int) bool {
	if maxKm <= 0 {
		return true
	}
	return c.DistanceKm <= maxKm
}

func passesDealBreakers(c match.Candidate, dealBreakers map[string][]string) bool {
	for category, values := range dealBreakers {
		have, ok := attribute(c, category)
		if !ok {
			continue
		}
		for _, v := range values {
			if strings.EqualFold(strings.TrimSpace(v), have) {
				return false
			}
		}
	}
	return true
}

func satisfiesMustHaves(c match.Candidate, mustHaves map[string]string) bool {
	for category, want := range mustHaves {
		want = strings.ToLower(strings.TrimSpace(want))
		if want == "" {
			continue
		}
		have, ok := attribute(c, category)
		if strings.EqualFold(category, ChildrenCategory) && (want == maybe || have == maybe) {
			continue
		}
		if !ok || have != want {
			return false
		}
	}
	return true
}

func attribute(c match.Candidate, category string) (string, bool) {
	if c.Attributes == nil {
		return "", false
	}
	if v, ok := c.Attributes[category]; ok {
		return strings.ToLower(strings.TrimSpace(v)), true
	}
	for k, v := range c.Attributes {
		if strings.EqualFold(k, category) {
			return strings.ToLower(strings.TrimSpace(v)), true
		}
	}
	return "", false
}
