package matching

import "kindred/internal/domain/assessment"

// birthOrderMatrix is indexed [user][candidate]. Rows are deliberately not
// mirrored: oldest->youngest is the classic complementary pairing.
var birthOrderMatrix = map[assessment.BirthOrder]map[assessment.BirthOrder]int{
	assessment.BirthOrderOldest: {
		assessment.BirthOrderOldest:   60,
		assessment.BirthOrderMiddle:   75,
		assessment.BirthOrderYoungest: 92,
		assessment.BirthOrderOnly:     65,
	},
	assessment.BirthOrderMiddle: {
		assessment.BirthOrderOldest:   78,
		assessment.BirthOrderMiddle:   70,
		assessment.BirthOrderYoungest: 80,
		assessment.BirthOrderOnly:     72,
	},
	assessment.BirthOrderYoungest: {
		assessment.BirthOrderOldest:   88,
		assessment.BirthOrderMiddle:   76,
		assessment.BirthOrderYoungest: 58,
		assessment.BirthOrderOnly:     82,
	},
	assessment.BirthOrderOnly: {
		assessment.BirthOrderOldest:   62,
		assessment.BirthOrderMiddle:   74,
		assessment.BirthOrderYoungest: 85,
		assessment.BirthOrderOnly:     55,
	},
}

func ScoreBirthOrder(user, candidate *assessment.BirthOrderResult) DimensionScore {
	if user == nil || candidate == nil {
		return neutral()
	}
	row, ok := birthOrderMatrix[user.Position]
	if !ok {
		return neutral()
	}
	score, ok := row[candidate.Position]
	if !ok {
		return neutral()
	}
	return DimensionScore{Score: score, Explanation: birthOrderExplanation(user.Position, candidate.Position, score)}
}

func birthOrderExplanation(u, c assessment.BirthOrder, score int) string {
	switch {
	case u == assessment.BirthOrderOldest && c == assessment.BirthOrderYoungest:
		return "Classic complementary pairing: a natural leader with someone comfortable being cared for"
	case u == c && u != assessment.BirthOrderMiddle:
		return "Shared family position can mean competing for the same role"
	case score >= 80:
		return "Your family roles complement each other well"
	case score >= 70:
		return "Your family backgrounds fit comfortably together"
	default:
		return "Your family roles may need some negotiation"
	}
}
