// Package gate decides whether a cumulative evidence corpus is good enough to
// hand downstream. Each dimension is an independent Check so the planner can
// target exactly the failing slots on the next attempt.
package gate

import (
	"errors"
	"fmt"
	"slices"

	"EvidenceCollector/internal/domain"
	"EvidenceCollector/internal/search"
)

// ErrInvalidProfile wraps threshold profiles that fail validation.
var ErrInvalidProfile = errors.New("invalid threshold profile")

// Outcome is the result of one check.
type Outcome struct {
	Passed bool
	Slot   domain.Slot
	Reason string
}

// Check evaluates one gate dimension.
type Check interface {
	Evaluate(docs []domain.Document, stats domain.Stats, profile domain.ThresholdProfile) Outcome
}

// CheckFunc adapts a function to Check.
type CheckFunc func(docs []domain.Document, stats domain.Stats, profile domain.ThresholdProfile) Outcome

// Evaluate implements Check.
func (f CheckFunc) Evaluate(docs []domain.Document, stats domain.Stats, profile domain.ThresholdProfile) Outcome {
	return f(docs, stats, profile)
}

// Evaluator runs its checks in order and merges failing slots.
type Evaluator struct {
	checks []Check
}

// New builds an evaluator from explicit checks; with none it uses DefaultChecks.
func New(checks ...Check) *Evaluator {
	if len(checks) == 0 {
		checks = DefaultChecks()
	}
	return &Evaluator{checks: checks}
}

// DefaultChecks is the production policy: volume, provenance, recency,
// trustworthiness (two checks) and diversity (two checks).
func DefaultChecks() []Check {
	return []Check{
		CheckFunc(minDocs),
		CheckFunc(minPrimary),
		CheckFunc(minRecent),
		CheckFunc(avgReliability),
		CheckFunc(lowReliabilityRatio),
		CheckFunc(distinctDomains),
		CheckFunc(categoryDiversity),
	}
}

// Evaluate recomputes the verdict from scratch. It only fails when the
// profile itself is malformed.
func (e *Evaluator) Evaluate(docs []domain.Document, stats domain.Stats, profile domain.ThresholdProfile) (domain.GateVerdict, error) {
	if err := profile.Validate(); err != nil {
		return domain.GateVerdict{}, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}

	verdict := domain.GateVerdict{MissingSlots: []domain.Slot{}, Reasons: []string{}}
	for _, check := range e.checks {
		out := check.Evaluate(docs, stats, profile)
		if out.Passed {
			continue
		}
		if out.Slot != "" && !slices.Contains(verdict.MissingSlots, out.Slot) {
			verdict.MissingSlots = append(verdict.MissingSlots, out.Slot)
		}
		if out.Reason != "" {
			verdict.Reasons = append(verdict.Reasons, out.Reason)
		}
	}

	slices.Sort(verdict.MissingSlots)
	verdict.Passed = len(verdict.MissingSlots) == 0
	return verdict, nil
}

func minDocs(docs []domain.Document, _ domain.Stats, p domain.ThresholdProfile) Outcome {
	total := len(docs)
	if total >= p.MinDocs {
		return Outcome{Passed: true}
	}
	return Outcome{Slot: domain.SlotDocsCount, Reason: fmt.Sprintf("not enough documents %d/%d", total, p.MinDocs)}
}

func minPrimary(_ []domain.Document, s domain.Stats, p domain.ThresholdProfile) Outcome {
	if s.PrimaryCount >= p.MinPrimary {
		return Outcome{Passed: true}
	}
	return Outcome{Slot: domain.SlotPrimary, Reason: fmt.Sprintf("not enough primary sources %d/%d", s.PrimaryCount, p.MinPrimary)}
}

func minRecent(_ []domain.Document, s domain.Stats, p domain.ThresholdProfile) Outcome {
	if s.RecentCount >= p.MinRecent {
		return Outcome{Passed: true}
	}
	return Outcome{Slot: domain.SlotRecent, Reason: fmt.Sprintf("not enough recent documents %d/%d", s.RecentCount, p.MinRecent)}
}

func avgReliability(_ []domain.Document, s domain.Stats, p domain.ThresholdProfile) Outcome {
	if s.AverageReliability >= p.AvgReliabilityMin {
		return Outcome{Passed: true}
	}
	return Outcome{Slot: domain.SlotReliability, Reason: fmt.Sprintf("average reliability too low %.2f < %.2f", s.AverageReliability, p.AvgReliabilityMin)}
}

// LowRatio is the share of low-reliability documents; 1.0 for an empty corpus.
func LowRatio(docs []domain.Document, s domain.Stats) float64 {
	if len(docs) == 0 {
		return 1.0
	}
	return float64(s.LowCount) / float64(len(docs))
}

func lowReliabilityRatio(docs []domain.Document, s domain.Stats, p domain.ThresholdProfile) Outcome {
	ratio := LowRatio(docs, s)
	if ratio <= p.LowRatioMax {
		return Outcome{Passed: true}
	}
	return Outcome{Slot: domain.SlotReliability, Reason: fmt.Sprintf("low-reliability ratio too high %.2f > %.2f", ratio, p.LowRatioMax)}
}

// DistinctHosts counts the distinct non-empty hosts across documents.
func DistinctHosts(docs []domain.Document) int {
	hosts := map[string]struct{}{}
	for _, doc := range docs {
		if h := search.Host(doc.URL); h != "" {
			hosts[h] = struct{}{}
		}
	}
	return len(hosts)
}

func distinctDomains(docs []domain.Document, _ domain.Stats, p domain.ThresholdProfile) Outcome {
	n := DistinctHosts(docs)
	if n >= p.DistinctDomainsMin {
		return Outcome{Passed: true}
	}
	return Outcome{Slot: domain.SlotDiversity, Reason: fmt.Sprintf("not enough distinct domains %d/%d", n, p.DistinctDomainsMin)}
}

func categoryDiversity(_ []domain.Document, s domain.Stats, p domain.ThresholdProfile) Outcome {
	n := 0
	for _, count := range s.SourcesBreakdown {
		if count > 0 {
			n++
		}
	}
	if n >= p.CategoryDiversityMin {
		return Outcome{Passed: true}
	}
	return Outcome{Slot: domain.SlotDiversity, Reason: fmt.Sprintf("not enough source categories %d/%d", n, p.CategoryDiversityMin)}
}
