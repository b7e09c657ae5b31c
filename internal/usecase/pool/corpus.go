package pool

import (
	"context"
	"strconv"
	"time"

	"kindred/internal/domain/assessment"
	"kindred/internal/domain/match"
	"kindred/internal/platform/logger"
)

// StaticCandidateSource serves a fixed in-memory corpus. It backs the service
// when no remote store is configured, and tests.
type StaticCandidateSource struct {
	items []match.Candidate
}

func NewStaticCandidateSource(items []match.Candidate) *StaticCandidateSource {
	cp := make([]match.Candidate, len(items))
	copy(cp, items)
	return &StaticCandidateSource{items: cp}
}

func (s *StaticCandidateSource) ListCandidates(_ context.Context) ([]match.Candidate, error) {
	out := make([]match.Candidate, len(s.items))
	copy(out, s.items)
	return out, nil
}

// FallbackCandidateSource reads from primary and serves fallback when the
// primary fails or holds no candidates, e.g. an unseeded candidates table.
type FallbackCandidateSource struct {
	primary  match.CandidateSource
	fallback match.CandidateSource
	logger   *logger.Logger
}

func NewFallbackCandidateSource(primary, fallback match.CandidateSource, log *logger.Logger) *FallbackCandidateSource {
	return &FallbackCandidateSource{primary: primary, fallback: fallback, logger: log}
}

func (s *FallbackCandidateSource) ListCandidates(ctx context.Context) ([]match.Candidate, error) {
	items, err := s.primary.ListCandidates(ctx)
	switch {
	case err != nil:
		s.logger.Warn("[Pool] candidate source failed, using fallback corpus", "err", err)
	case len(items) == 0:
		s.logger.Debug("[Pool] candidate source empty, using fallback corpus")
	default:
		return items, nil
	}
	return s.fallback.ListCandidates(ctx)
}

// DemoSeedIDs are the demo profiles that opt in more readily when the random
// counterpart decider is used.
var DemoSeedIDs = []string{"match-1", "match-2", "match-3"}

type demoEntry struct {
	name      string
	age       int
	gender    assessment.Gender
	location  string
	distance  int
	bio       string
	interests []string
	attrs     map[string]string
	activeAgo time.Duration
}

var demoEntries = []demoEntry{
	{"Sarah", 28, assessment.GenderWomen, "San Francisco, CA", 5, "Love hiking, cooking, and deep conversations about life.", []string{"hiking", "cooking", "travel"}, map[string]string{"children": "true", "smoking": "no"}, 2 * time.Hour},
	{"Emma", 26, assessment.GenderWomen, "Oakland, CA", 12, "Artist and coffee enthusiast looking for genuine connection.", []string{"art", "coffee", "music"}, map[string]string{"children": "maybe", "smoking": "no"}, 30 * time.Minute},
	{"Jessica", 30, assessment.GenderWomen, "Berkeley, CA", 15, "Teacher by day, bookworm by night.", []string{"reading", "yoga", "teaching"}, map[string]string{"children": "true", "smoking": "no"}, 24 * time.Hour},
	{"Michael", 31, assessment.GenderMen, "San Francisco, CA", 3, "Software engineer who loves rock climbing and board games.", []string{"climbing", "board games", "tech"}, map[string]string{"children": "false", "smoking": "no"}, time.Hour},
	{"David", 29, assessment.GenderMen, "San Jose, CA", 45, "Chef who believes the way to the heart is through good food.", []string{"cooking", "wine", "travel"}, map[string]string{"children": "true", "smoking": "occasionally"}, 3 * time.Hour},
	{"Olivia", 27, assessment.GenderWomen, "Palo Alto, CA", 30, "Product designer who journals every morning.", []string{"design", "journaling", "running"}, map[string]string{"children": "false", "smoking": "no"}, 6 * time.Hour},
	{"James", 34, assessment.GenderMen, "Daly City, CA", 10, "Nurse, amateur photographer, dog person.", []string{"photography", "dogs", "hiking"}, map[string]string{"children": "maybe", "smoking": "no"}, 48 * time.Hour},
	{"Sophia", 32, assessment.GenderWomen, "San Mateo, CA", 22, "Marine biologist. Will talk your ear off about octopuses.", []string{"ocean", "diving", "science"}, map[string]string{"children": "true", "smoking": "no"}, 12 * time.Hour},
	{"Daniel", 27, assessment.GenderMen, "Fremont, CA", 38, "Musician and weekend woodworker.", []string{"music", "woodworking", "camping"}, map[string]string{"children": "false", "smoking": "yes"}, 5 * time.Hour},
	{"Ava", 29, assessment.GenderWomen, "Sausalito, CA", 18, "Sailing instructor who loves a quiet night in.", []string{"sailing", "movies", "baking"}, map[string]string{"children": "maybe", "smoking": "no"}, 90 * time.Minute},
	{"Lucas", 33, assessment.GenderMen, "Richmond, CA", 20, "Architect into urban sketching and jazz.", []string{"architecture", "jazz", "sketching"}, map[string]string{"children": "true", "smoking": "no"}, 36 * time.Hour},
	{"Mia", 25, assessment.GenderWomen, "Hayward, CA", 28, "Grad student, trail runner, terrible at karaoke.", []string{"running", "karaoke", "research"}, map[string]string{"children": "false", "smoking": "no"}, 15 * time.Minute},
	{"Ethan", 36, assessment.GenderMen, "Walnut Creek, CA", 33, "Firefighter who volunteers at the animal shelter.", []string{"volunteering", "fitness", "animals"}, map[string]string{"children": "true", "smoking": "no"}, 72 * time.Hour},
	{"Chloe", 31, assessment.GenderWomen, "Mill Valley, CA", 14, "Therapist, gardener, collector of houseplants.", []string{"gardening", "psychology", "tea"}, map[string]string{"children": "true", "smoking": "no"}, 4 * time.Hour},
	{"Noah", 28, assessment.GenderMen, "Alameda, CA", 9, "Startup founder learning to slow down.", []string{"startups", "cycling", "podcasts"}, map[string]string{"children": "maybe", "smoking": "no"}, 8 * time.Hour},
	{"Grace", 35, assessment.GenderWomen, "Redwood City, CA", 27, "Pediatrician with a soft spot for bad puns.", []string{"medicine", "comedy", "tennis"}, map[string]string{"children": "true", "smoking": "no"}, 20 * time.Hour},
}

// DemoCandidates returns the built-in corpus with lastActive relative to now.
// Ids are match-1..match-N in table order.
func DemoCandidates(now time.Time) []match.Candidate {
	out := make([]match.Candidate, 0, len(demoEntries))
	for i, e := range demoEntries {
		attrs := make(map[string]string, len(e.attrs))
		for k, v := range e.attrs {
			attrs[k] = v
		}
		out = append(out, match.Candidate{
			ID:         demoID(i),
			Name:       e.name,
			Age:        e.age,
			Gender:     e.gender,
			Location:   e.location,
			DistanceKm: e.distance,
			Bio:        e.bio,
			Interests:  append([]string(nil), e.interests...),
			Attributes: attrs,
			LastActive: now.Add(-e.activeAgo).UTC(),
		})
	}
	return out
}

func demoID(i int) string {
	return "match-" + strconv.Itoa(i+1)
}
