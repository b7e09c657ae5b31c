package pool

import (
	"fmt"
	"testing"

	"kindred/internal/domain/assessment"
	"kindred/internal/domain/match"

	"github.com/stretchr/testify/assert"
)

func candidate(id string, gender assessment.Gender, age, distance int, attrs map[string]string) match.Candidate {
	return match.Candidate{ID: id, Gender: gender, Age: age, DistanceKm: distance, Attributes: attrs}
}

func TestMatches_NoPreferences(t *testing.T) {
	assert.True(t, Matches(candidate("a", assessment.GenderMen, 99, 9999, nil), nil))
	assert.True(t, Matches(candidate("a", assessment.GenderMen, 99, 9999, nil), &assessment.PreferencesResult{}))
}

func TestMatches_Gender(t *testing.T) {
	women := &assessment.PreferencesResult{GenderPreference: assessment.GenderWomen}
	everyone := &assessment.PreferencesResult{GenderPreference: assessment.GenderEveryone}

	assert.True(t, Matches(candidate("a", assessment.GenderWomen, 30, 1, nil), women))
	assert.False(t, Matches(candidate("b", assessment.GenderMen, 30, 1, nil), women))
	assert.True(t, Matches(candidate("b", assessment.GenderMen, 30, 1, nil), everyone))
}

func TestMatches_AgeRangeInclusive(t *testing.T) {
	prefs := &assessment.PreferencesResult{AgeRange: &assessment.AgeRange{Min: 25, Max: 30}}

	cases := map[int]bool{24: false, 25: true, 28: true, 30: true, 31: false}
	for age, want := range cases {
		assert.Equal(t, want, Matches(candidate("a", assessment.GenderWomen, age, 1, nil), prefs), "age %d", age)
	}
}

func TestMatches_DistanceInclusive(t *testing.T) {
	prefs := &assessment.PreferencesResult{MaxDistanceKm: 20}

	assert.True(t, Matches(candidate("a", assessment.GenderWomen, 30, 20, nil), prefs))
	assert.False(t, Matches(candidate("a", assessment.GenderWomen, 30, 21, nil), prefs))
}

func TestMatches_DealBreakers(t *testing.T) {
	prefs := &assessment.PreferencesResult{DealBreakers: map[string][]string{"smoking": {"yes", "occasionally"}}}

	assert.False(t, Matches(candidate("a", assessment.GenderWomen, 30, 1, map[string]string{"smoking": "Yes"}), prefs))
	assert.True(t, Matches(candidate("b", assessment.GenderWomen, 30, 1, map[string]string{"smoking": "no"}), prefs))
	assert.True(t, Matches(candidate("c", assessment.GenderWomen, 30, 1, nil), prefs), "unknown attribute is not a deal-breaker")
}

func TestMatches_MustHavesChildrenCarveOut(t *testing.T) {
	wantKids := &assessment.PreferencesResult{MustHaves: map[string]string{"children": "true"}}
	maybeKids := &assessment.PreferencesResult{MustHaves: map[string]string{"children": "maybe"}}

	assert.True(t, Matches(candidate("a", assessment.GenderWomen, 30, 1, map[string]string{"children": "true"}), wantKids))
	assert.False(t, Matches(candidate("b", assessment.GenderWomen, 30, 1, map[string]string{"children": "false"}), wantKids))
	assert.True(t, Matches(candidate("c", assessment.GenderWomen, 30, 1, map[string]string{"children": "maybe"}), wantKids))
	assert.False(t, Matches(candidate("d", assessment.GenderWomen, 30, 1, nil), wantKids))

	assert.True(t, Matches(candidate("e", assessment.GenderWomen, 30, 1, map[string]string{"children": "false"}), maybeKids))
	assert.True(t, Matches(candidate("f", assessment.GenderWomen, 30, 1, map[string]string{"children": "true"}), maybeKids))
}

func TestMatches_MustHavesExactOutsideChildren(t *testing.T) {
	prefs := &assessment.PreferencesResult{MustHaves: map[string]string{"smoking": "no", "pets": ""}}

	assert.True(t, Matches(candidate("a", assessment.GenderWomen, 30, 1, map[string]string{"smoking": "NO"}), prefs))
	assert.False(t, Matches(candidate("b", assessment.GenderWomen, 30, 1, map[string]string{"smoking": "maybe"}), prefs))
}

func TestFilter_IndependentPerCandidate(t *testing.T) {
	prefs := &assessment.PreferencesResult{
		GenderPreference: assessment.GenderWomen,
		AgeRange:         &assessment.AgeRange{Min: 25, Max: 32},
		MaxDistanceKm:    25,
		DealBreakers:     map[string][]string{"smoking": {"yes"}},
		MustHaves:        map[string]string{"children": "true"},
	}

	var all []match.Candidate
	genders := []assessment.Gender{assessment.GenderWomen, assessment.GenderMen}
	smoking := []string{"yes", "no"}
	children := []string{"true", "false", "maybe"}
	i := 0
	for _, g := range genders {
		for _, age := range []int{24, 25, 32, 33} {
			for _, dist := range []int{25, 26} {
				for _, s := range smoking {
					for _, ch := range children {
						all = append(all, candidate(fmt.Sprintf("c-%d", i), g, age, dist, map[string]string{"smoking": s, "children": ch}))
						i++
					}
				}
			}
		}
	}

	full := ids(Filter(all, prefs))
	for _, c := range all {
		_, kept := full[c.ID]
		assert.Equal(t, Matches(c, prefs), kept, c.ID)
	}

	for drop := range all {
		if Matches(all[drop], prefs) {
			continue
		}
		rest := make([]match.Candidate, 0, len(all)-1)
		rest = append(rest, all[:drop]...)
		rest = append(rest, all[drop+1:]...)
		assert.Equal(t, full, ids(Filter(rest, prefs)), "dropping %s", all[drop].ID)
	}
	assert.NotEmpty(t, full)
}

func ids(items []match.Candidate) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, c := range items {
		out[c.ID] = struct{}{}
	}
	return out
}
