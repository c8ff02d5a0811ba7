package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"EvidenceCollector/internal/domain"
	"EvidenceCollector/internal/ports"
)

const (
	defaultSearchURL = "https://html.duckduckgo.com/html/"
	userAgent        = "EvidenceCollector/1.0"
	rawContentRunes  = 20000
)

// HTMLSearch scrapes a DuckDuckGo-style HTML results page. It is the
// keyless fallback when no search API is configured.
type HTMLSearch struct {
	client  *http.Client
	baseURL string
}

var _ ports.SearchProvider = (*HTMLSearch)(nil)

// NewHTMLSearch wires an HTTP client; an empty baseURL targets DuckDuckGo.
func NewHTMLSearch(client *http.Client, baseURL string) *HTMLSearch {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultSearchURL
	}
	return &HTMLSearch{client: client, baseURL: baseURL}
}

// Name identifies the provider inside the registry.
func (h *HTMLSearch) Name() string {
	return "html"
}

// Search runs one query. Deep requests also download each result page and
// attach its text and published date.
func (h *HTMLSearch) Search(ctx context.Context, req ports.SearchRequest) ([]domain.Hit, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("empty query")
	}

	pageURL, err := buildSearchURL(h.baseURL, req.Query, req.IncludeDomains)
	if err != nil {
		return nil, err
	}

	doc, err := h.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", req.Query, err)
	}

	hits := extractResults(doc, req.MaxResults)
	if req.FetchRawContent {
		for i := range hits {
			page, err := h.fetchDocument(ctx, hits[i].URL)
			if err != nil {
				continue
			}
			extracted := ExtractPage(page)
			hits[i].RawContent = extracted.Text
			hits[i].PublishedHint = extracted.Published
		}
	}

	return hits, nil
}

func (h *HTMLSearch) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func extractResults(doc *goquery.Document, limit int) []domain.Hit {
	var hits []domain.Hit

	doc.Find(".result").EachWithBreak(func(_ int, result *goquery.Selection) bool {
		if limit > 0 && len(hits) >= limit {
			return false
		}

		link := result.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		target := resolveResultURL(href)
		if target == "" {
			return true
		}

		hits = append(hits, domain.Hit{
			URL:     target,
			Title:   strings.TrimSpace(link.Text()),
			Content: strings.TrimSpace(result.Find(".result__snippet").First().Text()),
		})
		return true
	})

	return hits
}

// resolveResultURL unwraps redirect links of the form /l/?uddg=<target>.
func resolveResultURL(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return webURL(target)
	}
	return webURL(parsed.String())
}

// webURL returns raw when it is an absolute http(s) URL, otherwise "".
func webURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return ""
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	return parsed.String()
}

func buildSearchURL(base, query string, includeDomains []string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid search url %s: %w", base, err)
	}

	if len(includeDomains) > 0 {
		sites := make([]string, len(includeDomains))
		for i, d := range includeDomains {
			sites[i] = "site:" + d
		}
		query = fmt.Sprintf("%s (%s)", query, strings.Join(sites, " OR "))
	}

	q := parsed.Query()
	q.Set("q", query)
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}
