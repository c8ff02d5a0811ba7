package scoring

import (
	"time"

	"github.com/montanaflynn/stats"

	"EvidenceCollector/internal/domain"
)

const (
	baseScore    = 0.5
	primaryBonus = 0.2
	recentBonus  = 0.1

	highThreshold   = 0.7
	mediumThreshold = 0.4
)

// categoryBonus adjusts the score by source category; unknown categories get 0.
var categoryBonus = map[string]float64{
	domain.CategoryCompany: 0.1,
	domain.CategoryNews:    0.0,
	domain.CategoryBlog:    -0.1,
}

// Scorer computes recency and reliability for documents in place.
type Scorer struct {
	windowDays int
	now        func() time.Time
}

// NewScorer builds a scorer for the profile's recency window. A nil clock
// means time.Now.
func NewScorer(windowDays int, now func() time.Time) *Scorer {
	if now == nil {
		now = time.Now
	}
	return &Scorer{windowDays: windowDays, now: now}
}

// Score recomputes recency and reliability on every document.
func (s *Scorer) Score(docs []domain.Document) {
	now := s.now().UTC()
	for i := range docs {
		s.assessRecency(&docs[i], now)
		assessReliability(&docs[i])
	}
}

func (s *Scorer) assessRecency(doc *domain.Document, now time.Time) {
	var raw string
	if doc.Date != nil {
		raw = *doc.Date
	}

	t, ok := ParseDate(raw)
	if !ok {
		doc.AgeDays = domain.UnknownAgeDays
		doc.IsRecent = false
		doc.Date = nil
		return
	}

	age := AgeDays(t, now)
	doc.AgeDays = max(0, age)
	doc.IsRecent = age <= s.windowDays
	iso := t.Format(time.DateOnly)
	doc.Date = &iso
}

func assessReliability(doc *domain.Document) {
	score := baseScore
	reasons := []string{}

	if doc.SourceType == domain.SourcePrimary {
		score += primaryBonus
		reasons = append(reasons, "primary source")
	}

	score += categoryBonus[doc.SourceCategory]

	if doc.IsRecent {
		score += recentBonus
		reasons = append(reasons, "recent within policy window")
	}

	score = max(0, min(1, score))
	score, _ = stats.Round(score, 2)

	doc.ReliabilityScore = score
	doc.Reliability, doc.EvidenceTier = Tier(score)
	doc.ReliabilityReasons = reasons
}

// Tier maps a score onto its label and evidence tier.
func Tier(score float64) (domain.Reliability, domain.EvidenceTier) {
	switch {
	case score >= highThreshold:
		return domain.ReliabilityHigh, domain.Tier1
	case score >= mediumThreshold:
		return domain.ReliabilityMedium, domain.Tier2
	default:
		return domain.ReliabilityLow, domain.Tier3
	}
}
