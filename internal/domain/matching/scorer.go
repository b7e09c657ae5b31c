package matching

import "math"

// NeutralScore is returned whenever either side of a comparison is missing.
const NeutralScore = 50

const incompleteExplanation = "Incomplete data: one or both profiles have not finished this assessment"

// DimensionScore is the result of comparing one dimension between two
// profiles.
type DimensionScore struct {
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

func neutral() DimensionScore {
	return DimensionScore{Score: NeutralScore, Explanation: incompleteExplanation}
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func clampScore(v float64) int {
	return clampInt(int(math.Round(v)), 0, 100)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
