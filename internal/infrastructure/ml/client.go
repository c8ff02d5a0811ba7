package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"EvidenceCollector/internal/domain"
	"EvidenceCollector/internal/ports"
)

// Client talks to an external inference service for classification and
// summarization.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.Classifier = (*Client)(nil)
var _ ports.Summarizer = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Classify sends the hit to /classify. A response missing source_type is
// reported as malformed.
func (c *Client) Classify(ctx context.Context, req ports.ClassifyRequest) (domain.Classification, error) {
	payload := map[string]any{
		"company": req.Company,
		"title":   req.Title,
		"url":     req.URL,
		"snippet": req.Snippet,
	}

	var prov domain.Provenance
	if err := c.post(ctx, "/classify", payload, &prov); err != nil {
		return domain.Classification{}, err
	}
	if prov.SourceType == "" {
		return domain.MalformedClassification("inference response without source_type"), nil
	}

	return domain.Classification{Parsed: prov}, nil
}

// Summarize requests a summary for the document content.
func (c *Client) Summarize(ctx context.Context, url, content string) (string, error) {
	payload := map[string]any{
		"url":     url,
		"content": content,
	}

	var resp struct {
		Summary string `json:"summary"`
	}

	if err := c.post(ctx, "/summarize", payload, &resp); err != nil {
		return "", err
	}

	return resp.Summary, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %s", path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}

	return nil
}
