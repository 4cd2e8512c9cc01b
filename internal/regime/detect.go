// Package regime scans a labelled macro-regime timeline for transitions
// and maps the prevailing regime to desk hedge recommendations.
package regime

import (
	"hash/fnv"
	"math/rand/v2"
	"sync"

	"github.com/seenimoa/marketdesk/pkg/models"
)

// Significance bounds: every score lies in [MinSignificance, MaxSignificance).
const (
	MinSignificance = 0.5
	MaxSignificance = 1.0
)

// Scorer assigns a significance score to a transition between two
// adjacent timeline entries. Implementations must return a value in
// [MinSignificance, MaxSignificance).
type Scorer interface {
	Score(prev, next models.RegimeEntry) float64
}

// Scorer names accepted by NewScorer.
const (
	ScorerDeterministic = "deterministic"
	ScorerRandom        = "random"
)

// NewScorer returns the scorer registered under name, defaulting to HashScorer.
func NewScorer(name string) Scorer {
	if name == ScorerRandom {
		return &RandomScorer{}
	}
	return HashScorer{}
}

// HashScorer derives the score from the transition labels and date, so
// re-analysing the same timeline yields the same scores.
type HashScorer struct{}

// Score implements Scorer.
func (HashScorer) Score(prev, next models.RegimeEntry) float64 {
	h := fnv.New64a()
	h.Write([]byte(prev.Regime))
	h.Write([]byte{0})
	h.Write([]byte(next.Regime))
	h.Write([]byte{0})
	h.Write([]byte(next.Date))
	return scale(float64(h.Sum64()>>11) / (1 << 53))
}

// RandomScorer draws a fresh uniform score per transition. The zero value
// uses the global source; NewRandomScorer pins a seed for tests.
type RandomScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomScorer returns a RandomScorer with a seeded PCG source.
func NewRandomScorer(seed uint64) *RandomScorer {
	return &RandomScorer{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Score implements Scorer.
func (s *RandomScorer) Score(_, _ models.RegimeEntry) float64 {
	if s.rng == nil {
		return scale(rand.Float64())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return scale(s.rng.Float64())
}

// scale maps u in [0,1) onto [MinSignificance, MaxSignificance).
func scale(u float64) float64 {
	v := MinSignificance + u*(MaxSignificance-MinSignificance)
	if v >= MaxSignificance {
		// guard against rounding at the top of the range
		v = 0.9999999999
	}
	return v
}

// Detector finds regime transitions.
type Detector struct {
	scorer Scorer
}

// NewDetector returns a Detector using scorer, or HashScorer when nil.
func NewDetector(scorer Scorer) *Detector {
	if scorer == nil {
		scorer = HashScorer{}
	}
	return &Detector{scorer: scorer}
}

// Changes walks adjacent pairs in the given order and emits one change
// for every pair whose labels differ.
func (d *Detector) Changes(timeline []models.RegimeEntry) []models.RegimeChange {
	changes := make([]models.RegimeChange, 0)
	for i := 1; i < len(timeline); i++ {
		prev, next := timeline[i-1], timeline[i]
		if prev.Regime == next.Regime {
			continue
		}
		changes = append(changes, models.RegimeChange{
			Date:         next.Date,
			FromRegime:   prev.Regime,
			ToRegime:     next.Regime,
			Significance: d.scorer.Score(prev, next),
		})
	}
	return changes
}

// CurrentRegime returns the last entry's label, or DefaultRegime.
func CurrentRegime(timeline []models.RegimeEntry) string {
	if len(timeline) == 0 {
		return DefaultRegime
	}
	return timeline[len(timeline)-1].Regime
}

// Analyze runs change detection and hedge lookup over timeline.
func (d *Detector) Analyze(timeline []models.RegimeEntry) models.RegimeDetection {
	if timeline == nil {
		timeline = []models.RegimeEntry{}
	}
	current := CurrentRegime(timeline)
	return models.RegimeDetection{
		Timeline:      timeline,
		Changes:       d.Changes(timeline),
		CurrentRegime: current,
		Hedges:        Hedges(current),
	}
}
