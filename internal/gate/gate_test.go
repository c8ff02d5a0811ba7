package gate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EvidenceCollector/internal/domain"
	"EvidenceCollector/internal/scoring"
)

type corpusShape struct {
	total      int
	primary    int
	recent     int
	low        int
	hosts      int
	categories []string
	score      float64
}

func buildCorpus(s corpusShape) ([]domain.Document, domain.Stats) {
	docs := make([]domain.Document, s.total)
	for i := range docs {
		doc := domain.Document{
			URL:              fmt.Sprintf("https://host%d.example.com/doc/%d", i%s.hosts, i),
			SourceType:       domain.SourceSecondary,
			SourceCategory:   s.categories[i%len(s.categories)],
			IsRecent:         i < s.recent,
			Reliability:      domain.ReliabilityMedium,
			ReliabilityScore: s.score,
		}
		if i < s.primary {
			doc.SourceType = domain.SourcePrimary
		}
		if i >= s.total-s.low {
			doc.Reliability = domain.ReliabilityLow
		}
		docs[i] = doc
	}
	return docs, scoring.Aggregate(docs)
}

func scenarioProfile() domain.ThresholdProfile {
	return domain.ThresholdProfile{
		MinDocs:              50,
		MinPrimary:           2,
		RecentWindowDays:     180,
		MinRecent:            3,
		AvgReliabilityMin:    0.6,
		LowRatioMax:          0.3,
		DistinctDomainsMin:   4,
		CategoryDiversityMin: 2,
		MaxAttempts:          2,
	}
}

func TestEvaluateFailsEveryDeficientSlot(t *testing.T) {
	t.Parallel()

	docs, stats := buildCorpus(corpusShape{
		total: 40, primary: 1, recent: 1, hosts: 3,
		categories: []string{"news", "blog"}, score: 0.55,
	})

	verdict, err := New().Evaluate(docs, stats, scenarioProfile())
	require.NoError(t, err)

	assert.False(t, verdict.Passed)
	assert.Equal(t, []domain.Slot{
		domain.SlotDiversity,
		domain.SlotDocsCount,
		domain.SlotPrimary,
		domain.SlotRecent,
		domain.SlotReliability,
	}, verdict.MissingSlots)
	assert.Len(t, verdict.Reasons, 5)
	assert.Equal(t, "not enough documents 40/50", verdict.Reasons[0])
}

func TestEvaluatePasses(t *testing.T) {
	t.Parallel()

	docs, stats := buildCorpus(corpusShape{
		total: 55, primary: 3, recent: 5, low: 11, hosts: 6,
		categories: []string{"news", "company", "academic"}, score: 0.65,
	})
	require.InDelta(t, 0.2, LowRatio(docs, stats), 1e-9)

	verdict, err := New().Evaluate(docs, stats, scenarioProfile())
	require.NoError(t, err)
	assert.True(t, verdict.Passed)
	assert.Empty(t, verdict.MissingSlots)
	assert.Empty(t, verdict.Reasons)
}

func TestEvaluateMergesSharedSlots(t *testing.T) {
	t.Parallel()

	docs, stats := buildCorpus(corpusShape{
		total: 60, primary: 5, recent: 5, low: 30, hosts: 1,
		categories: []string{"news"}, score: 0.3,
	})

	verdict, err := New().Evaluate(docs, stats, scenarioProfile())
	require.NoError(t, err)
	assert.Equal(t, []domain.Slot{domain.SlotDiversity, domain.SlotReliability}, verdict.MissingSlots)
	// two reasons per merged slot
	assert.Len(t, verdict.Reasons, 4)
}

func TestEvaluateEmptyCorpus(t *testing.T) {
	t.Parallel()

	stats := scoring.Aggregate(nil)
	assert.Equal(t, 1.0, LowRatio(nil, stats))

	p := scenarioProfile()
	p.AvgReliabilityMin = 0
	verdict, err := New().Evaluate(nil, stats, p)
	require.NoError(t, err)
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.MissingSlots, domain.SlotReliability)
	assert.Contains(t, verdict.Reasons, "low-reliability ratio too high 1.00 > 0.30")
}

func TestEvaluateIsDeterministic(t *testing.T) {
	t.Parallel()

	docs, stats := buildCorpus(corpusShape{
		total: 20, primary: 2, recent: 1, low: 8, hosts: 5,
		categories: []string{"news", "blog", "company"}, score: 0.5,
	})
	e := New()
	first, err := e.Evaluate(docs, stats, scenarioProfile())
	require.NoError(t, err)
	for range 10 {
		again, err := e.Evaluate(docs, stats, scenarioProfile())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEvaluateRejectsMalformedProfile(t *testing.T) {
	t.Parallel()

	p := scenarioProfile()
	p.RecentWindowDays = 0

	_, err := New().Evaluate(nil, domain.Stats{}, p)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestCustomChecks(t *testing.T) {
	t.Parallel()

	alwaysFail := CheckFunc(func([]domain.Document, domain.Stats, domain.ThresholdProfile) Outcome {
		return Outcome{Slot: domain.SlotPrimary, Reason: "no investor relations page"}
	})

	verdict, err := New(alwaysFail).Evaluate(nil, domain.Stats{}, scenarioProfile())
	require.NoError(t, err)
	assert.Equal(t, []domain.Slot{domain.SlotPrimary}, verdict.MissingSlots)
	assert.Equal(t, []string{"no investor relations page"}, verdict.Reasons)
}

func TestDistinctHosts(t *testing.T) {
	t.Parallel()

	docs := []domain.Document{
		{URL: "https://A.com/1"},
		{URL: "https://a.com/2"},
		{URL: "https://b.com/1"},
		{URL: ""},
	}
	assert.Equal(t, 2, DistinctHosts(docs))
}
