package assessment

import (
	"encoding/json"
	"fmt"
)

// Results maps each of the 14 dimensions to a record or nil.
type Results struct {
	AttachmentStyle    *AttachmentResult         `json:"attachmentStyle"`
	Personality        *PersonalityResult        `json:"personality"`
	BirthOrder         *BirthOrderResult         `json:"birthOrder"`
	RelationshipIntent *RelationshipIntentResult `json:"relationshipIntent"`
	EmotionalCapacity  *EmotionalCapacityResult  `json:"emotionalCapacity"`
	AttractionLayer    *AttractionLayerResult    `json:"attractionLayer"`
	PhysicalProximity  *PhysicalProximityResult  `json:"physicalProximity"`
	CommunicationStyle *CommunicationStyleResult `json:"communicationStyle"`
	LifeGoals          *LifeGoalsResult          `json:"lifeGoals"`
	Values             *ValuesResult             `json:"values"`
	Lifestyle          *LifestyleResult          `json:"lifestyle"`
	LoveLanguages      *LoveLanguagesResult      `json:"loveLanguages"`
	FinancialValues    *FinancialValuesResult    `json:"financialValues"`
	Preferences        *PreferencesResult        `json:"preferences"`
}

// Get returns the record for d, or nil when it has not been recorded.
func (r Results) Get(d Dimension) Result {
	switch d {
	case DimensionAttachmentStyle:
		if r.AttachmentStyle != nil {
			return r.AttachmentStyle
		}
	case DimensionPersonality:
		if r.Personality != nil {
			return r.Personality
		}
	case DimensionBirthOrder:
		if r.BirthOrder != nil {
			return r.BirthOrder
		}
	case DimensionRelationshipIntent:
		if r.RelationshipIntent != nil {
			return r.RelationshipIntent
		}
	case DimensionEmotionalCapacity:
		if r.EmotionalCapacity != nil {
			return r.EmotionalCapacity
		}
	case DimensionAttractionLayer:
		if r.AttractionLayer != nil {
			return r.AttractionLayer
		}
	case DimensionPhysicalProximity:
		if r.PhysicalProximity != nil {
			return r.PhysicalProximity
		}
	case DimensionCommunicationStyle:
		if r.CommunicationStyle != nil {
			return r.CommunicationStyle
		}
	case DimensionLifeGoals:
		if r.LifeGoals != nil {
			return r.LifeGoals
		}
	case DimensionValues:
		if r.Values != nil {
			return r.Values
		}
	case DimensionLifestyle:
		if r.Lifestyle != nil {
			return r.Lifestyle
		}
	case DimensionLoveLanguages:
		if r.LoveLanguages != nil {
			return r.LoveLanguages
		}
	case DimensionFinancialValues:
		if r.FinancialValues != nil {
			return r.FinancialValues
		}
	case DimensionPreferences:
		if r.Preferences != nil {
			return r.Preferences
		}
	}
	return nil
}

// Set records res under its own dimension, replacing any previous record.
func (r *Results) Set(res Result) error {
	switch v := res.(type) {
	case *AttachmentResult:
		r.AttachmentStyle = v
	case *PersonalityResult:
		r.Personality = v
	case *BirthOrderResult:
		r.BirthOrder = v
	case *RelationshipIntentResult:
		r.RelationshipIntent = v
	case *EmotionalCapacityResult:
		r.EmotionalCapacity = v
	case *AttractionLayerResult:
		r.AttractionLayer = v
	case *PhysicalProximityResult:
		r.PhysicalProximity = v
	case *CommunicationStyleResult:
		r.CommunicationStyle = v
	case *LifeGoalsResult:
		r.LifeGoals = v
	case *ValuesResult:
		r.Values = v
	case *LifestyleResult:
		r.Lifestyle = v
	case *LoveLanguagesResult:
		r.LoveLanguages = v
	case *FinancialValuesResult:
		r.FinancialValues = v
	case *PreferencesResult:
		r.Preferences = v
	default:
		return ErrUnknownDimension
	}
	return nil
}

// Completed counts the recorded dimensions.
func (r Results) Completed() int {
	n := 0
	for _, d := range allDimensions {
		if r.Get(d) != nil {
			n++
		}
	}
	return n
}

func (r Results) IsComplete() bool {
	return r.Completed() >= CompletionThreshold
}

// Recorded lists the dimensions that hold a record, in canonical order.
func (r Results) Recorded() []Dimension {
	out := make([]Dimension, 0, len(allDimensions))
	for _, d := range allDimensions {
		if r.Get(d) != nil {
			out = append(out, d)
		}
	}
	return out
}

// DecodeResult parses the JSON payload for a single dimension.
func DecodeResult(d Dimension, raw []byte) (Result, error) {
	res, err := NewResult(d)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, res); err != nil {
		return nil, fmt.Errorf("decode %s: %w", d, err)
	}
	return res, nil
}
