package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EvidenceCollector/internal/domain"
)

var fixedNow = time.Date(2025, time.June, 30, 15, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func strPtr(s string) *string { return &s }

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2025-01-15", "2025-01-15", true},
		{"2025-01-15T08:30:00Z", "2025-01-15", true},
		{"2025-01-15T23:30:00-05:00", "2025-01-16", true},
		{"2025-01-15T08:30:00", "2025-01-15", true},
		{"Published 2024/3/7 by staff", "2024-03-07", true},
		{"2024.12.01", "2024-12-01", true},
		{"March 5, 2024", "2024-03-05", true},
		{"updated Sep 9 2023", "2023-09-09", true},
		{"Sept. 9, 2023", "2023-09-09", true},
		{"2024-02-30", "", false},
		{"Smarch 5, 2024", "", false},
		{"last week", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		require.Equal(t, tt.ok, ok, tt.in)
		if ok {
			assert.Equal(t, tt.want, got.Format(time.DateOnly), tt.in)
		}
	}
}

func TestAgeDays(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, AgeDays(fixedNow.Add(-time.Hour), fixedNow))
	assert.Equal(t, 1, AgeDays(fixedNow.Add(-25*time.Hour), fixedNow))
	assert.Equal(t, -1, AgeDays(fixedNow.Add(time.Hour), fixedNow))
}

func TestScoreRecency(t *testing.T) {
	t.Parallel()

	docs := []domain.Document{
		{Date: strPtr("2025-06-01")},
		{Date: strPtr("2020-01-01")},
		{Date: strPtr("not a date")},
		{},
		{Date: strPtr("2025-08-01")},
	}
	NewScorer(180, clock).Score(docs)

	assert.Equal(t, 29, docs[0].AgeDays)
	assert.True(t, docs[0].IsRecent)
	assert.Equal(t, "2025-06-01", *docs[0].Date)

	assert.False(t, docs[1].IsRecent)
	assert.Greater(t, docs[1].AgeDays, 180)

	for _, i := range []int{2, 3} {
		assert.Equal(t, domain.UnknownAgeDays, docs[i].AgeDays)
		assert.False(t, docs[i].IsRecent)
		assert.Nil(t, docs[i].Date)
	}

	// future dates clamp to age 0 and count as recent
	assert.Equal(t, 0, docs[4].AgeDays)
	assert.True(t, docs[4].IsRecent)
}

func TestScoreReliability(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		doc      domain.Document
		score    float64
		label    domain.Reliability
		tier     domain.EvidenceTier
		nReasons int
	}{
		{
			name:  "secondary news undated",
			doc:   domain.Document{SourceType: domain.SourceSecondary, SourceCategory: domain.CategoryNews},
			score: 0.5, label: domain.ReliabilityMedium, tier: domain.Tier2,
		},
		{
			name:  "primary company recent",
			doc:   domain.Document{SourceType: domain.SourcePrimary, SourceCategory: domain.CategoryCompany, Date: strPtr("2025-06-01")},
			score: 0.9, label: domain.ReliabilityHigh, tier: domain.Tier1, nReasons: 2,
		},
		{
			name:  "primary news",
			doc:   domain.Document{SourceType: domain.SourcePrimary, SourceCategory: domain.CategoryNews},
			score: 0.7, label: domain.ReliabilityHigh, tier: domain.Tier1, nReasons: 1,
		},
		{
			name:  "secondary blog",
			doc:   domain.Document{SourceType: domain.SourceSecondary, SourceCategory: domain.CategoryBlog},
			score: 0.4, label: domain.ReliabilityMedium, tier: domain.Tier2,
		},
		{
			name:  "secondary company recent",
			doc:   domain.Document{SourceType: domain.SourceSecondary, SourceCategory: domain.CategoryCompany, Date: strPtr("2025-05-01")},
			score: 0.7, label: domain.ReliabilityHigh, tier: domain.Tier1, nReasons: 1,
		},
		{
			name:  "unknown category",
			doc:   domain.Document{SourceType: domain.SourceSecondary, SourceCategory: "podcast"},
			score: 0.5, label: domain.ReliabilityMedium, tier: domain.Tier2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			docs := []domain.Document{tt.doc}
			NewScorer(180, clock).Score(docs)
			got := docs[0]

			assert.InDelta(t, tt.score, got.ReliabilityScore, 1e-9)
			assert.Equal(t, tt.label, got.Reliability)
			assert.Equal(t, tt.tier, got.EvidenceTier)
			assert.Len(t, got.ReliabilityReasons, tt.nReasons)
			assert.GreaterOrEqual(t, got.ReliabilityScore, 0.0)
			assert.LessOrEqual(t, got.ReliabilityScore, 1.0)
		})
	}
}

func TestTierBoundaries(t *testing.T) {
	t.Parallel()

	for score, want := range map[float64]domain.EvidenceTier{
		1.0: domain.Tier1, 0.7: domain.Tier1, 0.69: domain.Tier2,
		0.4: domain.Tier2, 0.39: domain.Tier3, 0.0: domain.Tier3,
	} {
		_, tier := Tier(score)
		assert.Equal(t, want, tier, "score %.2f", score)
	}
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	empty := Aggregate(nil)
	assert.Zero(t, empty.AverageReliability)
	assert.Empty(t, empty.SourcesBreakdown)
	assert.Nil(t, empty.NewestDate)

	docs := []domain.Document{
		{SourceType: domain.SourcePrimary, SourceCategory: domain.CategoryCompany, Date: strPtr("2025-06-01"), IsRecent: true, Reliability: domain.ReliabilityHigh, ReliabilityScore: 0.9},
		{SourceType: domain.SourceSecondary, SourceCategory: domain.CategoryNews, Date: strPtr("2023-01-10"), Reliability: domain.ReliabilityMedium, ReliabilityScore: 0.5},
		{SourceType: domain.SourceSecondary, SourceCategory: domain.CategoryNews, Reliability: domain.ReliabilityLow, ReliabilityScore: 0.3},
	}
	got := Aggregate(docs)

	assert.Equal(t, map[string]int{"company": 1, "news": 2}, got.SourcesBreakdown)
	assert.Equal(t, 1, got.PrimaryCount)
	assert.Equal(t, 2, got.SecondaryCount)
	assert.Equal(t, 1, got.RecentCount)
	assert.Equal(t, 1, got.HighCount)
	assert.Equal(t, 1, got.MediumCount)
	assert.Equal(t, 1, got.LowCount)
	assert.Equal(t, "2025-06-01", *got.NewestDate)
	assert.Equal(t, "2023-01-10", *got.OldestDate)
	assert.InDelta(t, 0.57, got.AverageReliability, 1e-9)
	assert.Equal(t, []string{"company", "news"}, DistinctCategories(got))
}
