package domain

import "time"

// SourceType separates first-party evidence from reporting about the target.
type SourceType string

const (
	SourcePrimary   SourceType = "primary"
	SourceSecondary SourceType = "secondary"
)

// Well-known source categories. The set is open: classifiers may return others.
const (
	CategoryCompany     = "company"
	CategoryNews        = "news"
	CategoryAcademic    = "academic"
	CategoryRegulatory  = "regulatory"
	CategoryBlog        = "blog"
	CategorySocialMedia = "social_media"
)

// Reliability is the coarse trust label derived from ReliabilityScore.
type Reliability string

const (
	ReliabilityHigh   Reliability = "high"
	ReliabilityMedium Reliability = "medium"
	ReliabilityLow    Reliability = "low"
)

// EvidenceTier mirrors Reliability as tier1/tier2/tier3.
type EvidenceTier string

const (
	Tier1 EvidenceTier = "tier1"
	Tier2 EvidenceTier = "tier2"
	Tier3 EvidenceTier = "tier3"
)

// UnknownAgeDays marks documents whose date could not be parsed.
const UnknownAgeDays = 9999

// CollectedByWeb identifies documents admitted by the web collection engine.
const CollectedByWeb = "web_collection"

// Hit is a raw search result before deduplication and classification.
type Hit struct {
	URL           string
	Title         string
	Content       string
	RawContent    string
	PublishedHint string
	Provider      string
	Query         string
}

// Document is a unique piece of evidence inside a collection run.
type Document struct {
	ID                 string       `json:"id"`
	URL                string       `json:"url"`
	Title              string       `json:"title"`
	Content            string       `json:"content"`
	Excerpt            string       `json:"excerpt"`
	Summary            *string      `json:"two_line_summary"`
	SourceType         SourceType   `json:"source_type"`
	SourceCategory     string       `json:"source_category"`
	Publisher          *string      `json:"publisher"`
	Author             *string      `json:"author"`
	Date               *string      `json:"date"`
	AgeDays            int          `json:"age_days"`
	IsRecent           bool         `json:"is_recent"`
	Reliability        Reliability  `json:"reliability"`
	ReliabilityScore   float64      `json:"reliability_score"`
	ReliabilityReasons []string     `json:"reliability_reasons"`
	EvidenceTier       EvidenceTier `json:"evidence_tier"`
	IsVerified         bool         `json:"is_verified"`
	VerifiedBy         []string     `json:"verified_by"`
	CollectedBy        string       `json:"collected_by"`
	CollectedAt        time.Time    `json:"collected_at"`
}

// Provenance is the classifier's view of where a document comes from.
type Provenance struct {
	SourceType     SourceType `json:"source_type"`
	SourceCategory string     `json:"source_category"`
	Publisher      *string    `json:"publisher"`
	Date           *string    `json:"date"`
}

// DefaultProvenance is substituted whenever classification output is unusable.
func DefaultProvenance() Provenance {
	return Provenance{
		SourceType:     SourceSecondary,
		SourceCategory: CategoryNews,
	}
}

// Classification is the tagged result of a classify call: either parsed
// provenance or a malformed response that must fall back to defaults.
type Classification struct {
	Parsed    Provenance
	Malformed bool
	Detail    string
}

// MalformedClassification builds the Malformed variant.
func MalformedClassification(detail string) Classification {
	return Classification{Malformed: true, Detail: detail}
}

// Resolve returns usable provenance, defaulting the whole value when
// malformed and individual empty fields otherwise.
func (c Classification) Resolve() Provenance {
	def := DefaultProvenance()
	if c.Malformed {
		return def
	}

	p := c.Parsed
	switch p.SourceType {
	case SourcePrimary, SourceSecondary:
	default:
		p.SourceType = def.SourceType
	}
	if p.SourceCategory == "" {
		p.SourceCategory = def.SourceCategory
	}
	if p.Publisher != nil && *p.Publisher == "" {
		p.Publisher = nil
	}
	if p.Date != nil && *p.Date == "" {
		p.Date = nil
	}
	return p
}
