package pool

import (
	"hash/fnv"
	"math/rand/v2"

	"kindred/internal/domain/assessment"
	"kindred/internal/domain/match"
)

// Synthesizer produces assessment results for a candidate the corpus carries
// none for.
type Synthesizer interface {
	Synthesize(user assessment.Results, c match.Candidate) assessment.Results
}

// ComplementarySynthesizer generates a counterpart leaning toward what scores
// well against the user: secure attachment for an insecure user, the opposite
// energy axis, the same decision axis and a complementary birth order. Output
// is deterministic per candidate id so a regenerated pool scores the same.
type ComplementarySynthesizer struct {
	// SecureBias is the chance a secure user still gets a secure counterpart.
	SecureBias float64
}

func NewComplementarySynthesizer() *ComplementarySynthesizer {
	return &ComplementarySynthesizer{SecureBias: 0.7}
}

func (s *ComplementarySynthesizer) Synthesize(user assessment.Results, c match.Candidate) assessment.Results {
	rng := candidateRand(c.ID)

	out := assessment.Results{
		AttachmentStyle:    s.attachment(rng, user.AttachmentStyle),
		Personality:        personalityFor(rng, user.Personality),
		BirthOrder:         birthOrderFor(rng, user.BirthOrder),
		RelationshipIntent: intentFor(rng, user.RelationshipIntent),
		Lifestyle:          lifestyleFor(rng),
		EmotionalCapacity: &assessment.EmotionalCapacityResult{
			Score: 60 + rng.IntN(36),
		},
	}
	return out
}

func candidateRand(id string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	seed := h.Sum64()
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (s *ComplementarySynthesizer) attachment(rng *rand.Rand, user *assessment.AttachmentResult) *assessment.AttachmentResult {
	style := assessment.AttachmentSecure
	if user != nil && !user.Style.IsInsecure() && rng.Float64() >= s.SecureBias {
		if rng.IntN(2) == 0 {
			style = assessment.AttachmentAnxious
		} else {
			style = assessment.AttachmentAvoidant
		}
	}
	res := &assessment.AttachmentResult{Style: style}
	switch style {
	case assessment.AttachmentSecure:
		res.AnxietyScore = 10 + rng.IntN(20)
		res.AvoidanceScore = 10 + rng.IntN(20)
	case assessment.AttachmentAnxious:
		res.AnxietyScore = 60 + rng.IntN(30)
		res.AvoidanceScore = 15 + rng.IntN(25)
	default:
		res.AnxietyScore = 15 + rng.IntN(25)
		res.AvoidanceScore = 60 + rng.IntN(30)
	}
	return res
}

// personalityFor mirrors the user's decision axis, flips the energy axis and
// keeps the axis extremity near the user's so the intensity bonus applies.
func personalityFor(rng *rand.Rand, user *assessment.PersonalityResult) *assessment.PersonalityResult {
	introvert := rng.IntN(2) == 0
	thinker := rng.IntN(2) == 0
	energy := 55 + rng.IntN(30)
	decision := 55 + rng.IntN(30)

	if user != nil {
		introvert = !(user.Introversion > user.Extroversion)
		thinker = user.Thinking > user.Feeling
		energy = dominantShare(user.Introversion, user.Extroversion, rng)
		decision = dominantShare(user.Thinking, user.Feeling, rng)
	}

	p := &assessment.PersonalityResult{}
	if introvert {
		p.Introversion, p.Extroversion = energy, 100-energy
	} else {
		p.Extroversion, p.Introversion = energy, 100-energy
	}
	if thinker {
		p.Thinking, p.Feeling = decision, 100-decision
	} else {
		p.Feeling, p.Thinking = decision, 100-decision
	}
	return p
}

// dominantShare returns a 51..95 share whose spread from its complement is
// within a few points of the user's spread on the same axis.
func dominantShare(a, b int, rng *rand.Rand) int {
	hi, lo := a, b
	if lo > hi {
		hi, lo = lo, hi
	}
	total := hi + lo
	share := 70
	if total > 0 {
		share = hi * 100 / total
	}
	share += rng.IntN(9) - 4
	if share < 51 {
		share = 51
	}
	if share > 95 {
		share = 95
	}
	return share
}

var complementaryOrder = map[assessment.BirthOrder]assessment.BirthOrder{
	assessment.BirthOrderOldest:   assessment.BirthOrderYoungest,
	assessment.BirthOrderYoungest: assessment.BirthOrderOldest,
	assessment.BirthOrderMiddle:   assessment.BirthOrderYoungest,
	assessment.BirthOrderOnly:     assessment.BirthOrderYoungest,
}

var birthOrders = []assessment.BirthOrder{
	assessment.BirthOrderOldest,
	assessment.BirthOrderMiddle,
	assessment.BirthOrderYoungest,
	assessment.BirthOrderOnly,
}

func birthOrderFor(rng *rand.Rand, user *assessment.BirthOrderResult) *assessment.BirthOrderResult {
	pos := birthOrders[rng.IntN(len(birthOrders))]
	if user != nil {
		if c, ok := complementaryOrder[user.Position]; ok {
			pos = c
		}
	}
	siblings := 1 + rng.IntN(3)
	if pos == assessment.BirthOrderOnly {
		siblings = 0
	}
	return &assessment.BirthOrderResult{Position: pos, Siblings: siblings}
}

var (
	timelines   = []assessment.Timeline{assessment.TimelineReadyNow, assessment.TimelineWithinYear, assessment.TimelineFewYears, assessment.TimelineOpen}
	families    = []assessment.FamilyPlanning{assessment.FamilyWantChildren, assessment.FamilyOpen, assessment.FamilyHasChildren, assessment.FamilyNoChildren}
	activities  = []string{"active", "moderate", "relaxed"}
	socialModes = []string{"social", "balanced", "homebody"}
)

func intentFor(rng *rand.Rand, user *assessment.RelationshipIntentResult) *assessment.RelationshipIntentResult {
	if user != nil {
		cp := *user
		return &cp
	}
	return &assessment.RelationshipIntentResult{
		Timeline:        timelines[rng.IntN(len(timelines))],
		CommitmentStyle: assessment.CommitmentMonogamous,
		FamilyPlanning:  families[rng.IntN(len(families))],
	}
}

func lifestyleFor(rng *rand.Rand) *assessment.LifestyleResult {
	return &assessment.LifestyleResult{
		ActivityLevel: activities[rng.IntN(len(activities))],
		Social:        socialModes[rng.IntN(len(socialModes))],
	}
}
