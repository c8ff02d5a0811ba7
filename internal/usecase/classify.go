package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"EvidenceCollector/internal/domain"
	"EvidenceCollector/internal/ports"
	"EvidenceCollector/pkg/formatting"
)

const (
	classifySnippetRunes = 500
	excerptRunes         = 200
	summarySnippetRunes  = 2000
	summaryBasisRunes    = 6000
)

// classifierAdapter turns accepted hits into documents. Classification and
// summary failures degrade to defaults and never stop admission.
type classifierAdapter struct {
	classifier ports.Classifier
	summarizer ports.Summarizer
	workers    int
	timeout    time.Duration
	newID      func() string
	now        func() time.Time
	logger     *slog.Logger
}

// admit classifies hits on a bounded pool; output order matches input order.
// A panic in a worker is returned as ErrAttemptPanicked and no documents are
// admitted.
func (a *classifierAdapter) admit(ctx context.Context, company string, hits []domain.Hit) ([]domain.Document, error) {
	docs := make([]domain.Document, len(hits))

	var g errgroup.Group
	g.SetLimit(max(a.workers, 1))
	for i, hit := range hits {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: classify %s: %v", ErrAttemptPanicked, hit.URL, r)
				}
			}()
			docs[i] = a.toDocument(ctx, company, hit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return docs, nil
}

func (a *classifierAdapter) toDocument(ctx context.Context, company string, hit domain.Hit) domain.Document {
	snippet := hit.Content
	if snippet == "" {
		snippet = hit.RawContent
	}
	content := hit.RawContent
	if content == "" {
		content = hit.Content
	}

	prov := a.classify(ctx, ports.ClassifyRequest{
		Company: company,
		Title:   hit.Title,
		URL:     hit.URL,
		Snippet: formatting.Truncate(snippet, classifySnippetRunes),
	})
	if prov.Date == nil && strings.TrimSpace(hit.PublishedHint) != "" {
		hint := strings.TrimSpace(hit.PublishedHint)
		prov.Date = &hint
	}

	basis := hit.RawContent
	if basis == "" {
		basis = formatting.Truncate(hit.Content, summarySnippetRunes)
	}

	return domain.Document{
		ID:                 a.newID(),
		URL:                hit.URL,
		Title:              hit.Title,
		Content:            content,
		Excerpt:            formatting.Truncate(hit.Content, excerptRunes),
		Summary:            a.summarize(ctx, hit.URL, formatting.Truncate(basis, summaryBasisRunes)),
		SourceType:         prov.SourceType,
		SourceCategory:     prov.SourceCategory,
		Publisher:          prov.Publisher,
		Date:               prov.Date,
		Reliability:        domain.ReliabilityMedium,
		ReliabilityScore:   0.5,
		ReliabilityReasons: []string{},
		EvidenceTier:       domain.Tier2,
		VerifiedBy:         []string{},
		CollectedBy:        domain.CollectedByWeb,
		CollectedAt:        a.now(),
	}
}

func (a *classifierAdapter) classify(ctx context.Context, req ports.ClassifyRequest) domain.Provenance {
	if a.classifier == nil {
		return domain.DefaultProvenance()
	}

	callCtx, cancel := a.callContext(ctx)
	defer cancel()

	c, err := a.classifier.Classify(callCtx, req)
	if err != nil {
		a.warn("classification failed, using defaults", "url", req.URL, "error", err)
		return domain.DefaultProvenance()
	}
	if c.Malformed {
		a.debug("classification malformed, using defaults", "url", req.URL, "detail", c.Detail)
	}
	return c.Resolve()
}

func (a *classifierAdapter) summarize(ctx context.Context, url, basis string) *string {
	if a.summarizer == nil || strings.TrimSpace(basis) == "" {
		return nil
	}

	callCtx, cancel := a.callContext(ctx)
	defer cancel()

	text, err := a.summarizer.Summarize(callCtx, url, basis)
	if err != nil {
		a.debug("summary skipped", "url", url, "error", err)
		return nil
	}
	two := formatting.TwoLines(text)
	if two == "" {
		return nil
	}
	return &two
}

func (a *classifierAdapter) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

func (a *classifierAdapter) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}

func (a *classifierAdapter) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}

// NewDocumentID returns web_ followed by eight hex characters.
func NewDocumentID() string {
	return "web_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
