package assessment

import "time"

// Result is one recorded dimension. The set of implementations is closed:
// every type below belongs to exactly one Dimension.
type Result interface {
	Dimension() Dimension
	sealed()
}

type AttachmentStyle string

const (
	AttachmentSecure       AttachmentStyle = "secure"
	AttachmentAnxious      AttachmentStyle = "anxious"
	AttachmentAvoidant     AttachmentStyle = "avoidant"
	AttachmentDisorganized AttachmentStyle = "disorganized"
)

func (s AttachmentStyle) IsValid() bool {
	switch s {
	case AttachmentSecure, AttachmentAnxious, AttachmentAvoidant, AttachmentDisorganized:
		return true
	}
	return false
}

// IsInsecure reports whether the style is one of the three insecure styles.
func (s AttachmentStyle) IsInsecure() bool {
	return s.IsValid() && s != AttachmentSecure
}

type AttachmentResult struct {
	Style          AttachmentStyle `json:"style"`
	AnxietyScore   int             `json:"anxietyScore,omitempty"`
	AvoidanceScore int             `json:"avoidanceScore,omitempty"`
	CompletedAt    *time.Time      `json:"completedAt,omitempty"`
}

// PersonalityResult holds paired 0-100 scores. Only the energy
// (introversion/extroversion) and decision (thinking/feeling) pairs feed
// the compatibility score.
type PersonalityResult struct {
	Introversion int    `json:"introversion"`
	Extroversion int    `json:"extroversion"`
	Thinking     int    `json:"thinking"`
	Feeling      int    `json:"feeling"`
	Sensing      int    `json:"sensing,omitempty"`
	Intuition    int    `json:"intuition,omitempty"`
	Judging      int    `json:"judging,omitempty"`
	Perceiving   int    `json:"perceiving,omitempty"`
	Type         string `json:"type,omitempty"`
}

type BirthOrder string

const (
	BirthOrderOldest   BirthOrder = "oldest"
	BirthOrderMiddle   BirthOrder = "middle"
	BirthOrderYoungest BirthOrder = "youngest"
	BirthOrderOnly     BirthOrder = "only"
)

func (b BirthOrder) IsValid() bool {
	switch b {
	case BirthOrderOldest, BirthOrderMiddle, BirthOrderYoungest, BirthOrderOnly:
		return true
	}
	return false
}

type BirthOrderResult struct {
	Position BirthOrder `json:"position"`
	Siblings int        `json:"siblings,omitempty"`
}

// Timeline is ordered: its rank is used for adjacency.
type Timeline string

const (
	TimelineReadyNow   Timeline = "ready_now"
	TimelineWithinYear Timeline = "within_year"
	TimelineFewYears   Timeline = "few_years"
	TimelineOpen       Timeline = "open"
)

// Rank returns the position on the ordered timeline scale, or -1.
func (t Timeline) Rank() int {
	switch t {
	case TimelineReadyNow:
		return 0
	case TimelineWithinYear:
		return 1
	case TimelineFewYears:
		return 2
	case TimelineOpen:
		return 3
	}
	return -1
}

type CommitmentStyle string

const (
	CommitmentMonogamous CommitmentStyle = "monogamous"
	CommitmentOpen       CommitmentStyle = "open"
	CommitmentExploring  CommitmentStyle = "exploring"
)

type FamilyPlanning string

const (
	FamilyWantChildren FamilyPlanning = "want_children"
	FamilyOpen         FamilyPlanning = "open"
	FamilyHasChildren  FamilyPlanning = "has_children"
	FamilyNoChildren   FamilyPlanning = "no_children"
)

type RelationshipIntentResult struct {
	Timeline        Timeline        `json:"timeline"`
	CommitmentStyle CommitmentStyle `json:"commitmentStyle"`
	FamilyPlanning  FamilyPlanning  `json:"familyPlanning"`
}

type EmotionalCapacityResult struct {
	Score int    `json:"score"`
	Level string `json:"level,omitempty"`
}

type AttractionLayerResult struct {
	Primary string         `json:"primary"`
	Layers  map[string]int `json:"layers,omitempty"`
}

type PhysicalProximityResult struct {
	Preference    string `json:"preference"`
	MaxDistanceKm int    `json:"maxDistanceKm,omitempty"`
}

type CommunicationStyleResult struct {
	Style            string `json:"style"`
	ConflictApproach string `json:"conflictApproach,omitempty"`
}

type LifeGoalsResult struct {
	Goals []string `json:"goals"`
}

type ValuesResult struct {
	CoreValues []string `json:"coreValues"`
}

type LifestyleResult struct {
	ActivityLevel string `json:"activityLevel"`
	Social        string `json:"social,omitempty"`
	Smoking       string `json:"smoking,omitempty"`
	Drinking      string `json:"drinking,omitempty"`
}

type LoveLanguagesResult struct {
	Primary   string         `json:"primary"`
	Secondary string         `json:"secondary,omitempty"`
	Scores    map[string]int `json:"scores,omitempty"`
}

type FinancialValuesResult struct {
	Style string `json:"style"`
	Score int    `json:"score,omitempty"`
}

type Gender string

const (
	GenderMen      Gender = "men"
	GenderWomen    Gender = "women"
	GenderEveryone Gender = "everyone"
)

type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// PreferencesResult constrains the candidate pool. Empty/zero fields are
// inactive constraints.
type PreferencesResult struct {
	GenderPreference Gender              `json:"genderPreference,omitempty"`
	AgeRange         *AgeRange           `json:"ageRange,omitempty"`
	MaxDistanceKm    int                 `json:"maxDistanceKm,omitempty"`
	DealBreakers     map[string][]string `json:"dealBreakers,omitempty"`
	MustHaves        map[string]string   `json:"mustHaves,omitempty"`
}

func (*AttachmentResult) Dimension() Dimension         { return DimensionAttachmentStyle }
func (*PersonalityResult) Dimension() Dimension        { return DimensionPersonality }
func (*BirthOrderResult) Dimension() Dimension         { return DimensionBirthOrder }
func (*RelationshipIntentResult) Dimension() Dimension { return DimensionRelationshipIntent }
func (*EmotionalCapacityResult) Dimension() Dimension  { return DimensionEmotionalCapacity }
func (*AttractionLayerResult) Dimension() Dimension    { return DimensionAttractionLayer }
func (*PhysicalProximityResult) Dimension() Dimension  { return DimensionPhysicalProximity }
func (*CommunicationStyleResult) Dimension() Dimension { return DimensionCommunicationStyle }
func (*LifeGoalsResult) Dimension() Dimension          { return DimensionLifeGoals }
func (*ValuesResult) Dimension() Dimension             { return DimensionValues }
func (*LifestyleResult) Dimension() Dimension          { return DimensionLifestyle }
func (*LoveLanguagesResult) Dimension() Dimension      { return DimensionLoveLanguages }
func (*FinancialValuesResult) Dimension() Dimension    { return DimensionFinancialValues }
func (*PreferencesResult) Dimension() Dimension        { return DimensionPreferences }

func (*AttachmentResult) sealed()         {}
func (*PersonalityResult) sealed()        {}
func (*BirthOrderResult) sealed()         {}
func (*RelationshipIntentResult) sealed() {}
func (*EmotionalCapacityResult) sealed()  {}
func (*AttractionLayerResult) sealed()    {}
func (*PhysicalProximityResult) sealed()  {}
func (*CommunicationStyleResult) sealed() {}
func (*LifeGoalsResult) sealed()          {}
func (*ValuesResult) sealed()             {}
func (*LifestyleResult) sealed()          {}
func (*LoveLanguagesResult) sealed()      {}
func (*FinancialValuesResult) sealed()    {}
func (*PreferencesResult) sealed()        {}

// NewResult returns an empty record for d, suitable as a decode target.
func NewResult(d Dimension) (Result, error) {
	switch d {
	case DimensionAttachmentStyle:
		return &AttachmentResult{}, nil
	case DimensionPersonality:
		return &PersonalityResult{}, nil
	case DimensionBirthOrder:
		return &BirthOrderResult{}, nil
	case DimensionRelationshipIntent:
		return &RelationshipIntentResult{}, nil
	case DimensionEmotionalCapacity:
		return &EmotionalCapacityResult{}, nil
	case DimensionAttractionLayer:
		return &AttractionLayerResult{}, nil
	case DimensionPhysicalProximity:
		return &PhysicalProximityResult{}, nil
	case DimensionCommunicationStyle:
		return &CommunicationStyleResult{}, nil
	case DimensionLifeGoals:
		return &LifeGoalsResult{}, nil
	case DimensionValues:
		return &ValuesResult{}, nil
	case DimensionLifestyle:
		return &LifestyleResult{}, nil
	case DimensionLoveLanguages:
		return &LoveLanguagesResult{}, nil
	case DimensionFinancialValues:
		return &FinancialValuesResult{}, nil
	case DimensionPreferences:
		return &PreferencesResult{}, nil
	}
	return nil, ErrUnknownDimension
}
