package search

import (
	"net/url"
	"strings"

	"EvidenceCollector/internal/domain"
)

// Deduplicator drops hits whose normalized URL was already accepted during
// the run. One instance lives for the whole run so the seen-set spans attempts.
type Deduplicator struct {
	seen map[string]struct{}
}

// NewDeduplicator builds an empty seen-set.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: map[string]struct{}{}}
}

// Filter returns the hits not seen before, in input order, and marks them seen.
func (d *Deduplicator) Filter(hits []domain.Hit) []domain.Hit {
	accepted := make([]domain.Hit, 0, len(hits))
	for _, hit := range hits {
		if hit.URL == "" {
			continue
		}
		norm := NormalizeURL(hit.URL)
		if _, ok := d.seen[norm]; ok {
			continue
		}
		d.seen[norm] = struct{}{}
		accepted = append(accepted, hit)
	}
	return accepted
}

// Seen reports how many distinct URLs were accepted so far.
func (d *Deduplicator) Seen() int {
	return len(d.seen)
}

// NormalizeURL lower-cases the host and strips the query string and fragment.
// Unparseable input is returned unchanged.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return u.Scheme + "://" + strings.ToLower(u.Host) + u.Path
}

// Host returns the lower-cased host of raw, or "" when it cannot be parsed.
func Host(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
