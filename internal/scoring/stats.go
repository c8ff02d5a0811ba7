package scoring

import (
	"slices"

	"github.com/montanaflynn/stats"

	"EvidenceCollector/internal/domain"
)

// Aggregate recomputes corpus statistics from scratch.
func Aggregate(docs []domain.Document) domain.Stats {
	out := domain.Stats{SourcesBreakdown: map[string]int{}}
	if len(docs) == 0 {
		return out
	}

	scores := make(stats.Float64Data, 0, len(docs))
	var newest, oldest string
	for _, doc := range docs {
		cat := doc.SourceCategory
		if cat == "" {
			cat = domain.CategoryNews
		}
		out.SourcesBreakdown[cat]++

		if doc.SourceType == domain.SourcePrimary {
			out.PrimaryCount++
		} else {
			out.SecondaryCount++
		}

		if doc.IsRecent {
			out.RecentCount++
		}

		switch doc.Reliability {
		case domain.ReliabilityHigh:
			out.HighCount++
		case domain.ReliabilityMedium:
			out.MediumCount++
		default:
			out.LowCount++
		}

		if doc.Date != nil && *doc.Date != "" {
			if newest == "" || *doc.Date > newest {
				newest = *doc.Date
			}
			if oldest == "" || *doc.Date < oldest {
				oldest = *doc.Date
			}
		}

		scores = append(scores, doc.ReliabilityScore)
	}

	if newest != "" {
		out.NewestDate = &newest
		out.OldestDate = &oldest
	}

	if mean, err := stats.Mean(scores); err == nil {
		out.AverageReliability, _ = stats.Round(mean, 2)
	}

	return out
}

// DistinctCategories lists categories with at least one document, sorted.
func DistinctCategories(s domain.Stats) []string {
	cats := make([]string, 0, len(s.SourcesBreakdown))
	for cat, n := range s.SourcesBreakdown {
		if n > 0 {
			cats = append(cats, cat)
		}
	}
	slices.Sort(cats)
	return cats
}
