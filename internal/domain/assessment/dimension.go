package assessment

import (
	"errors"
	"strings"
)

var ErrUnknownDimension = errors.New("unknown assessment dimension")

type Dimension string

const (
	DimensionAttachmentStyle    Dimension = "attachmentStyle"
	DimensionPersonality        Dimension = "personality"
	DimensionBirthOrder         Dimension = "birthOrder"
	DimensionRelationshipIntent Dimension = "relationshipIntent"
	DimensionEmotionalCapacity  Dimension = "emotionalCapacity"
	DimensionAttractionLayer    Dimension = "attractionLayer"
	DimensionPhysicalProximity  Dimension = "physicalProximity"
	DimensionCommunicationStyle Dimension = "communicationStyle"
	DimensionLifeGoals          Dimension = "lifeGoals"
	DimensionValues             Dimension = "values"
	DimensionLifestyle          Dimension = "lifestyle"
	DimensionLoveLanguages      Dimension = "loveLanguages"
	DimensionFinancialValues    Dimension = "financialValues"
	DimensionPreferences        Dimension = "preferences"
)

// CompletionThreshold is the number of recorded dimensions at which an
// assessment counts as complete.
const CompletionThreshold = 8

var allDimensions = []Dimension{
	DimensionAttachmentStyle,
	DimensionPersonality,
	DimensionBirthOrder,
	DimensionRelationshipIntent,
	DimensionEmotionalCapacity,
	DimensionAttractionLayer,
	DimensionPhysicalProximity,
	DimensionCommunicationStyle,
	DimensionLifeGoals,
	DimensionValues,
	DimensionLifestyle,
	DimensionLoveLanguages,
	DimensionFinancialValues,
	DimensionPreferences,
}

// Dimensions returns every known dimension in canonical order.
func Dimensions() []Dimension {
	out := make([]Dimension, len(allDimensions))
	copy(out, allDimensions)
	return out
}

func (d Dimension) IsValid() bool {
	for _, it := range allDimensions {
		if it == d {
			return true
		}
	}
	return false
}

func ParseDimension(raw string) (Dimension, error) {
	raw = strings.TrimSpace(raw)
	for _, it := range allDimensions {
		if strings.EqualFold(string(it), raw) {
			return it, nil
		}
	}
	return "", ErrUnknownDimension
}
