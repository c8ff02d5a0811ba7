package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EvidenceCollector/internal/config"
	"EvidenceCollector/internal/ports"
)

func TestClientSearch(t *testing.T) {
	t.Parallel()

	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, _ = w.Write([]byte(`{
			"query": "Acme",
			"results": [
				{"url": "https://acme.com/ir", "title": "IR", "content": "snippet", "raw_content": "full", "published_date": "2025-04-01"},
				{"title": "no url"},
				{"url": "https://news.example.com/a", "title": "News", "content": "c", "raw_content": null}
			]
		}`))
	}))
	defer server.Close()

	c := NewClient(config.TavilyConfig{Endpoint: server.URL, APIKey: "key"})
	hits, err := c.Search(context.Background(), ports.SearchRequest{
		Query:           "Acme",
		Depth:           ports.DepthDeep,
		MaxResults:      8,
		FetchRawContent: true,
		IncludeDomains:  []string{"acme.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, "advanced", payload["search_depth"])
	assert.Equal(t, true, payload["include_raw_content"])
	assert.EqualValues(t, 8, payload["max_results"])
	assert.Equal(t, []any{"acme.com"}, payload["include_domains"])

	require.Len(t, hits, 2)
	assert.Equal(t, "https://acme.com/ir", hits[0].URL)
	assert.Equal(t, "full", hits[0].RawContent)
	assert.Equal(t, "2025-04-01", hits[0].PublishedHint)
	assert.Equal(t, "tavily", hits[0].Provider)
	assert.Empty(t, hits[1].RawContent)
}

func TestClientShallowOmitsDomains(t *testing.T) {
	t.Parallel()

	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	hits, err := NewClient(config.TavilyConfig{Endpoint: server.URL, APIKey: "key"}).
		Search(context.Background(), ports.SearchRequest{Query: "q", Depth: ports.DepthShallow, MaxResults: 5})
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Equal(t, "basic", payload["search_depth"])
	assert.NotContains(t, payload, "include_domains")
}

func TestClientErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := NewClient(config.TavilyConfig{Endpoint: server.URL, APIKey: "bad"}).
		Search(context.Background(), ports.SearchRequest{Query: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")

	_, err = NewClient(config.TavilyConfig{Endpoint: server.URL}).
		Search(context.Background(), ports.SearchRequest{Query: "q"})
	require.Error(t, err)
}
