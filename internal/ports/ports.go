package ports

import (
	"context"
	"time"

	"EvidenceCollector/internal/domain"
)

// SearchDepth selects between the cheap broad pass and the expensive deep pass.
type SearchDepth string

const (
	DepthShallow SearchDepth = "shallow"
	DepthDeep    SearchDepth = "deep"
)

// SearchRequest carries the parameters of a single provider call.
type SearchRequest struct {
	Query           string
	Depth           SearchDepth
	MaxResults      int
	FetchRawContent bool
	IncludeDomains  []string
}

// SearchProvider executes web searches (Tavily, scraped HTML endpoints, etc.).
// An error and an empty result are both zero contributions to a pass, but
// must stay distinguishable for logging.
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, req SearchRequest) ([]domain.Hit, error)
}

// ClassifyRequest is the input of the provenance classifier.
type ClassifyRequest struct {
	Company string
	Title   string
	URL     string
	Snippet string
}

// Classifier assigns provenance attributes to a search hit.
type Classifier interface {
	Classify(ctx context.Context, req ClassifyRequest) (domain.Classification, error)
}

// Summarizer produces a short free-text summary of a document.
type Summarizer interface {
	Summarize(ctx context.Context, url, content string) (string, error)
}

// ResultRepository persists finished collection runs for downstream stages.
type ResultRepository interface {
	SaveResult(ctx context.Context, result domain.CollectionResult) error
	GetResult(ctx context.Context, runID string) (domain.CollectionResult, error)
}

// Notifier streams gate verdicts to Telegram or other channels.
type Notifier interface {
	PublishVerdict(ctx context.Context, message string) error
}

// Scheduler controls when watch-mode collections execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
