package planner

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EvidenceCollector/internal/domain"
)

var now = time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)

func TestPlanFirstAttemptReturnsBaseline(t *testing.T) {
	t.Parallel()

	got := Plan(Request{
		Company: "Lunit",
		Domain:  "medical",
		Attempt: 1,
		Missing: []domain.Slot{domain.SlotPrimary},
		Now:     now,
	})

	require.Len(t, got, 10)
	if diff := cmp.Diff(Baseline("Lunit", "medical"), got); diff != "" {
		t.Fatalf("unexpected plan (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Lunit medical company overview", got[0])
}

func TestPlanRetryWithoutMissingSlotsRepeatsBaseline(t *testing.T) {
	t.Parallel()

	got := Plan(Request{Company: "Lunit", Domain: "medical", Attempt: 2, Now: now})
	assert.Empty(t, cmp.Diff(Baseline("Lunit", "medical"), got))
}

func TestPlanTargetsMissingSlots(t *testing.T) {
	t.Parallel()

	got := Plan(Request{
		Company:          "Lunit Inc",
		Domain:           "medical",
		Attempt:          2,
		Missing:          []domain.Slot{domain.SlotRecent, domain.SlotPrimary},
		RecentWindowDays: 180,
		Now:              now,
	})

	require.Len(t, got, 10+3+2)
	extra := got[10:]

	// primary templates come first regardless of input order
	assert.Equal(t, "Lunit Inc site:lunitinc.com (press OR newsroom OR investors)", extra[0])
	assert.Equal(t, "Lunit Inc press release site:lunitinc.com", extra[1])
	assert.Equal(t, "Lunit Inc site:lunitinc.com blog", extra[2])
	assert.Equal(t, `Lunit Inc ("launch" OR "announced" OR "funding") after:2025-01-02`, extra[3])
	assert.Equal(t, "Lunit Inc press release after:2025-01-02", extra[4])
}

func TestPlanAllSlots(t *testing.T) {
	t.Parallel()

	got := Plan(Request{
		Company: "Acme",
		Domain:  "finance",
		Attempt: 3,
		Missing: []domain.Slot{
			domain.SlotDiversity, domain.SlotReliability, domain.SlotDocsCount,
			domain.SlotRecent, domain.SlotPrimary,
		},
		RecentWindowDays: 30,
		Now:              now,
	})

	assert.Len(t, got, 10+3+2+3+3+3)
	joined := strings.Join(got, "\n")
	assert.Contains(t, joined, "Acme finance whitepaper pdf")
	assert.Contains(t, joined, "site:sec.gov")
	assert.Contains(t, joined, "Acme competitors comparison")
}

func TestPlanIsPure(t *testing.T) {
	t.Parallel()

	req := Request{Company: "Acme", Domain: "ai", Attempt: 2, Missing: []domain.Slot{domain.SlotDiversity}, Now: now}
	assert.Equal(t, Plan(req), Plan(req))
}

func TestCompanyDomainHint(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "deepmind.com", CompanyDomainHint("Deep-Mind", ""))
	assert.Equal(t, "lunit.io", CompanyDomainHint("Lunit", " Lunit.io "))
}
