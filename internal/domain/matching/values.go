package matching

import (
	"strings"

	"kindred/internal/domain/assessment"
)

const (
	valuesBase = 40

	timelineExact    = 25
	timelineAdjacent = 15
	timelineFar      = 5

	commitmentExact = 20
	commitmentOther = 8
)

// familyMatrix is symmetric. want_children vs no_children scores 0 and is
// treated as a hard incompatibility.
var familyMatrix = map[assessment.FamilyPlanning]map[assessment.FamilyPlanning]int{
	assessment.FamilyWantChildren: {
		assessment.FamilyWantChildren: 15,
		assessment.FamilyOpen:         10,
		assessment.FamilyHasChildren:  8,
		assessment.FamilyNoChildren:   0,
	},
	assessment.FamilyOpen: {
		assessment.FamilyWantChildren: 10,
		assessment.FamilyOpen:         12,
		assessment.FamilyHasChildren:  10,
		assessment.FamilyNoChildren:   8,
	},
	assessment.FamilyHasChildren: {
		assessment.FamilyWantChildren: 8,
		assessment.FamilyOpen:         10,
		assessment.FamilyHasChildren:  15,
		assessment.FamilyNoChildren:   5,
	},
	assessment.FamilyNoChildren: {
		assessment.FamilyWantChildren: 0,
		assessment.FamilyOpen:         8,
		assessment.FamilyHasChildren:  5,
		assessment.FamilyNoChildren:   15,
	},
}

// IsHardIncompatibility reports the want/no children combination.
func IsHardIncompatibility(a, b assessment.FamilyPlanning) bool {
	return (a == assessment.FamilyWantChildren && b == assessment.FamilyNoChildren) ||
		(a == assessment.FamilyNoChildren && b == assessment.FamilyWantChildren)
}

// ScoreValues compares relationship intent: timeline, commitment style and
// family planning.
func ScoreValues(user, candidate *assessment.RelationshipIntentResult) DimensionScore {
	if user == nil || candidate == nil {
		return neutral()
	}

	score := valuesBase
	reasons := make([]string, 0, 3)

	ur, cr := user.Timeline.Rank(), candidate.Timeline.Rank()
	switch {
	case ur >= 0 && ur == cr:
		score += timelineExact
		reasons = append(reasons, "you share the same relationship timeline")
	case ur >= 0 && cr >= 0 && absInt(ur-cr) == 1:
		score += timelineAdjacent
		reasons = append(reasons, "your timelines are close")
	default:
		score += timelineFar
		reasons = append(reasons, "your timelines differ")
	}

	if user.CommitmentStyle != "" && user.CommitmentStyle == candidate.CommitmentStyle {
		score += commitmentExact
		reasons = append(reasons, "you want the same kind of commitment")
	} else {
		score += commitmentOther
		reasons = append(reasons, "your commitment styles differ")
	}

	if row, ok := familyMatrix[user.FamilyPlanning]; ok {
		score += row[candidate.FamilyPlanning]
	}
	switch {
	case IsHardIncompatibility(user.FamilyPlanning, candidate.FamilyPlanning):
		reasons = append(reasons, "hard incompatibility: one of you wants children and the other does not")
	case user.FamilyPlanning != "" && user.FamilyPlanning == candidate.FamilyPlanning:
		reasons = append(reasons, "your family plans align")
	}

	return DimensionScore{
		Score:       clampInt(score, 0, 100),
		Explanation: capitalize(strings.Join(reasons, "; ")),
	}
}
