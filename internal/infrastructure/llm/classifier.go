package llm

import (
	"context"
	"fmt"

	"EvidenceCollector/internal/domain"
	"EvidenceCollector/internal/ports"
	"EvidenceCollector/pkg/formatting"
)

const (
	classifySystemPrompt = "Classify source and date. Return compact JSON only with keys " +
		`source_type ("primary" or "secondary"), source_category ` +
		"(company, news, academic, regulatory, blog, social_media), publisher and date (YYYY-MM-DD or null)."

	summarySystemPrompt = "Summarize in exactly two lines. No bullets, max ~35 words total."
)

// Completer is the single chat call both adapters need.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

var _ Completer = (*ChatGPTClient)(nil)

// Classifier asks a chat model for document provenance.
type Classifier struct {
	chat Completer
}

var _ ports.Classifier = (*Classifier)(nil)

// NewClassifier wraps a chat completer.
func NewClassifier(chat Completer) *Classifier {
	return &Classifier{chat: chat}
}

// Classify returns an error only when the call itself fails; unparseable
// answers come back as a malformed classification.
func (c *Classifier) Classify(ctx context.Context, req ports.ClassifyRequest) (domain.Classification, error) {
	user := fmt.Sprintf("Company: %s\nTitle: %s\nURL: %s\nSnippet:\n%s\nJSON:",
		req.Company, req.Title, req.URL, req.Snippet)

	answer, err := c.chat.Complete(ctx, classifySystemPrompt, user)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("classify %s: %w", req.URL, err)
	}

	prov, err := formatting.Parse[domain.Provenance](answer)
	if err != nil {
		return domain.MalformedClassification(err.Error()), nil
	}
	return domain.Classification{Parsed: prov}, nil
}

// Summarizer asks a chat model for a two-line summary.
type Summarizer struct {
	chat Completer
}

var _ ports.Summarizer = (*Summarizer)(nil)

// NewSummarizer wraps a chat completer.
func NewSummarizer(chat Completer) *Summarizer {
	return &Summarizer{chat: chat}
}

// Summarize returns the raw model answer; callers normalize it.
func (s *Summarizer) Summarize(ctx context.Context, url, content string) (string, error) {
	user := fmt.Sprintf("URL: %s\nText:\n%s\nTwo-line summary:", url, content)

	answer, err := s.chat.Complete(ctx, summarySystemPrompt, user)
	if err != nil {
		return "", fmt.Errorf("summarize %s: %w", url, err)
	}
	return answer, nil
}
