package domain

import "time"

// Slot names a gate dimension that can be flagged as deficient.
type Slot string

const (
	SlotDocsCount   Slot = "docs_count"
	SlotPrimary     Slot = "primary"
	SlotRecent      Slot = "recent"
	SlotReliability Slot = "reliability"
	SlotDiversity   Slot = "diversity"
)

// GateVerdict is the outcome of one gate evaluation over the cumulative corpus.
type GateVerdict struct {
	Passed       bool     `json:"passed"`
	MissingSlots []Slot   `json:"missing_slots"`
	Reasons      []string `json:"reasons"`
}

// Stats are corpus-wide aggregates recomputed after every attempt.
type Stats struct {
	SourcesBreakdown   map[string]int `json:"sources_breakdown"`
	PrimaryCount       int            `json:"primary_sources_count"`
	SecondaryCount     int            `json:"secondary_sources_count"`
	NewestDate         *string        `json:"newest_date"`
	OldestDate         *string        `json:"oldest_date"`
	RecentCount        int            `json:"recent_documents_count"`
	HighCount          int            `json:"high_reliability_count"`
	MediumCount        int            `json:"medium_reliability_count"`
	LowCount           int            `json:"low_reliability_count"`
	AverageReliability float64        `json:"average_reliability"`
}

// Status is the terminal state reported to downstream consumers.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPartial   Status = "partial"
	StatusDegraded  Status = "degraded"
)

// Impact levels recorded on error entries.
const (
	ImpactMedium = "medium"
	ImpactHigh   = "high"
)

// ErrorEntry records a run-level failure.
type ErrorEntry struct {
	Stage               string    `json:"stage"`
	Error               string    `json:"error"`
	Timestamp           time.Time `json:"timestamp"`
	Recovered           bool      `json:"recovered"`
	ImpactOnReliability string    `json:"impact_on_reliability"`
}

// DecisionLogEntry captures what one attempt did and what the gate decided.
type DecisionLogEntry struct {
	Attempt      int       `json:"attempt"`
	Queries      []string  `json:"queries"`
	NewDocs      int       `json:"new_docs"`
	TotalDocs    int       `json:"total_docs"`
	GatePassed   bool      `json:"gate_passed"`
	MissingSlots []Slot    `json:"missing_slots"`
	Reasons      []string  `json:"reasons"`
	Timestamp    time.Time `json:"timestamp"`
}

// Attempts tracks the attempt counter against its budget.
type Attempts struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// CollectionResult is handed to downstream evaluators once a run terminates.
// Callers must branch on Status.
type CollectionResult struct {
	RunID       string             `json:"run_id"`
	Company     string             `json:"company_name"`
	Domain      string             `json:"domain"`
	Status      Status             `json:"status"`
	Documents   []Document         `json:"documents"`
	Count       int                `json:"count"`
	Sources     []string           `json:"sources"`
	Stats       Stats              `json:"stats"`
	Gate        GateVerdict        `json:"gate"`
	Attempts    Attempts           `json:"attempts"`
	DecisionLog []DecisionLogEntry `json:"decision_log"`
	Profile     ThresholdProfile   `json:"threshold_profile"`
	Error       *string            `json:"error"`
	Errors      []ErrorEntry       `json:"errors"`
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  time.Time          `json:"finished_at"`
}

// Target identifies the organization a run collects evidence about.
type Target struct {
	Company       string `yaml:"company" json:"company"`
	Domain        string `yaml:"domain" json:"domain"`
	CompanyDomain string `yaml:"companyDomain" json:"company_domain,omitempty"`
}
