// Package tavily adapts the Tavily search API to ports.SearchProvider.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"EvidenceCollector/internal/config"
	"EvidenceCollector/internal/domain"
	"EvidenceCollector/internal/ports"
)

const (
	depthBasic    = "basic"
	depthAdvanced = "advanced"
)

// Client calls POST /search.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

var _ ports.SearchProvider = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.TavilyConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name identifies the provider inside the registry.
func (c *Client) Name() string {
	return "tavily"
}

// Search maps shallow to basic depth and deep to advanced depth.
func (c *Client) Search(ctx context.Context, req ports.SearchRequest) ([]domain.Hit, error) {
	if c.apiKey == "" || c.endpoint == "" {
		return nil, fmt.Errorf("tavily client misconfigured")
	}

	depth := depthBasic
	if req.Depth == ports.DepthDeep {
		depth = depthAdvanced
	}

	payload := map[string]any{
		"api_key":             c.apiKey,
		"query":               req.Query,
		"search_depth":        depth,
		"max_results":         req.MaxResults,
		"include_raw_content": req.FetchRawContent,
	}
	if len(req.IncludeDomains) > 0 {
		payload["include_domains"] = req.IncludeDomains
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal tavily payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", req.Query, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tavily response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily error %s: %s", resp.Status, strings.TrimSpace(string(raw[:min(len(raw), 512)])))
	}

	results := gjson.GetBytes(raw, "results")
	if !results.Exists() {
		return nil, fmt.Errorf("tavily response has no results field")
	}

	var hits []domain.Hit
	results.ForEach(func(_, item gjson.Result) bool {
		url := item.Get("url").String()
		if url == "" {
			return true
		}
		hits = append(hits, domain.Hit{
			URL:           url,
			Title:         item.Get("title").String(),
			Content:       item.Get("content").String(),
			RawContent:    item.Get("raw_content").String(),
			PublishedHint: item.Get("published_date").String(),
			Provider:      c.Name(),
		})
		return true
	})

	return hits, nil
}
