package domain

import (
	"errors"
	"fmt"
)

// ThresholdProfile is the immutable gate policy for one collection run.
type ThresholdProfile struct {
	MinDocs              int     `yaml:"minDocs" json:"min_docs"`
	MinPrimary           int     `yaml:"minPrimary" json:"min_primary"`
	RecentWindowDays     int     `yaml:"recentWindowDays" json:"recent_window_days"`
	MinRecent            int     `yaml:"minRecent" json:"min_recent"`
	AvgReliabilityMin    float64 `yaml:"avgReliabilityMin" json:"avg_rel_min"`
	LowRatioMax          float64 `yaml:"lowRatioMax" json:"low_ratio_max"`
	DistinctDomainsMin   int     `yaml:"distinctDomainsMin" json:"distinct_domains_min"`
	CategoryDiversityMin int     `yaml:"categoryDiversityMin" json:"category_diversity_min"`
	MaxAttempts          int     `yaml:"maxAttempts" json:"max_attempts"`
}

// DefaultThresholdProfile returns the production gate policy.
func DefaultThresholdProfile() ThresholdProfile {
	return ThresholdProfile{
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

// Validate reports every field that makes the profile unusable.
func (p ThresholdProfile) Validate() error {
	var errs []error

	minimums := []struct {
		name  string
		value int
	}{
		{"min_docs", p.MinDocs},
		{"min_primary", p.MinPrimary},
		{"min_recent", p.MinRecent},
		{"distinct_domains_min", p.DistinctDomainsMin},
		{"category_diversity_min", p.CategoryDiversityMin},
	}
	for _, m := range minimums {
		if m.value < 0 {
			errs = append(errs, fmt.Errorf("%s must be >= 0, got %d", m.name, m.value))
		}
	}

	if p.RecentWindowDays <= 0 {
		errs = append(errs, fmt.Errorf("recent_window_days must be > 0, got %d", p.RecentWindowDays))
	}
	if p.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("max_attempts must be > 0, got %d", p.MaxAttempts))
	}
	if p.AvgReliabilityMin < 0 || p.AvgReliabilityMin > 1 {
		errs = append(errs, fmt.Errorf("avg_rel_min must be within [0,1], got %.2f", p.AvgReliabilityMin))
	}
	if p.LowRatioMax < 0 || p.LowRatioMax > 1 {
		errs = append(errs, fmt.Errorf("low_ratio_max must be within [0,1], got %.2f", p.LowRatioMax))
	}

	return errors.Join(errs...)
}
