// Package planner builds the search queries for each collection attempt.
package planner

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"EvidenceCollector/internal/domain"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// Request holds everything a plan depends on. Plan is a pure function of it.
type Request struct {
	Company          string
	Domain           string
	CompanyDomain    string
	Attempt          int
	Missing          []domain.Slot
	RecentWindowDays int
	Now              time.Time
}

// slotOrder fixes the order targeted queries are appended in.
var slotOrder = []domain.Slot{
	domain.SlotPrimary,
	domain.SlotRecent,
	domain.SlotDocsCount,
	domain.SlotReliability,
	domain.SlotDiversity,
}

// Plan returns the baseline queries on the first attempt and baseline plus
// slot-targeted queries afterwards.
func Plan(req Request) []string {
	base := Baseline(req.Company, req.Domain)
	if req.Attempt <= 1 || len(req.Missing) == 0 {
		return base
	}

	missing := make(map[domain.Slot]bool, len(req.Missing))
	for _, s := range req.Missing {
		missing[s] = true
	}

	queries := base
	for _, slot := range slotOrder {
		if missing[slot] {
			queries = append(queries, targeted(slot, req)...)
		}
	}
	return queries
}

// Baseline is the broad query set covering overview, product, news, case
// studies, developer/social platforms and funding.
func Baseline(company, dom string) []string {
	return []string{
		fmt.Sprintf("%s %s company overview", company, dom),
		fmt.Sprintf("%s product features technology", company),
		fmt.Sprintf("%s news press release", company),
		fmt.Sprintf("%s case study", company),
		fmt.Sprintf("%s whitepaper", company),
		fmt.Sprintf("%s interview", company),
		fmt.Sprintf("%s site:medium.com", company),
		fmt.Sprintf("%s site:github.com", company),
		fmt.Sprintf("%s site:linkedin.com", company),
		fmt.Sprintf("%s funding announcement", company),
	}
}

func targeted(slot domain.Slot, req Request) []string {
	c := req.Company
	switch slot {
	case domain.SlotPrimary:
		site := CompanyDomainHint(req.Company, req.CompanyDomain)
		return []string{
			fmt.Sprintf("%s site:%s (press OR newsroom OR investors)", c, site),
			fmt.Sprintf("%s press release site:%s", c, site),
			fmt.Sprintf("%s site:%s blog", c, site),
		}
	case domain.SlotRecent:
		cut := RecentCutoff(req.Now, req.RecentWindowDays)
		return []string{
			fmt.Sprintf(`%s ("launch" OR "announced" OR "funding") after:%s`, c, cut),
			fmt.Sprintf("%s press release after:%s", c, cut),
		}
	case domain.SlotDocsCount:
		return []string{
			fmt.Sprintf("%s %s case study pdf", c, req.Domain),
			fmt.Sprintf("%s %s whitepaper pdf", c, req.Domain),
			fmt.Sprintf("%s architecture overview", c),
		}
	case domain.SlotReliability:
		return []string{
			fmt.Sprintf("%s site:sec.gov OR site:europa.eu OR site:ec.europa.eu", c),
			fmt.Sprintf("%s site:iso.org OR site:ieee.org standard", c),
			fmt.Sprintf("%s analyst report site:gartner.com OR site:forrester.com", c),
		}
	case domain.SlotDiversity:
		return []string{
			fmt.Sprintf("%s review technology analysis", c),
			fmt.Sprintf("%s %s industry report", c, req.Domain),
			fmt.Sprintf("%s competitors comparison", c),
		}
	}
	return nil
}

// CompanyDomainHint prefers an explicitly configured domain and otherwise
// guesses <alnum company name>.com.
func CompanyDomainHint(company, explicit string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return strings.ToLower(explicit)
	}
	return nonAlnum.ReplaceAllString(strings.ToLower(company), "") + ".com"
}

// RecentCutoff is the ISO date at the start of the recency window.
func RecentCutoff(now time.Time, windowDays int) string {
	return now.UTC().AddDate(0, 0, -windowDays).Format(time.DateOnly)
}
