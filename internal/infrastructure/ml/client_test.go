package ml

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EvidenceCollector/internal/domain"
	"EvidenceCollector/internal/ports"
)

func TestClientClassifyAndSummarize(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/classify", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"source_type":"primary","source_category":"regulatory","date":"2025-01-01"}`))
	})
	mux.HandleFunc("/summarize", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"summary":"short"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := NewClient(server.URL, "k")

	got, err := c.Classify(context.Background(), ports.ClassifyRequest{URL: "https://sec.gov/x"})
	require.NoError(t, err)
	assert.False(t, got.Malformed)
	assert.Equal(t, domain.SourcePrimary, got.Parsed.SourceType)
	assert.Equal(t, domain.CategoryRegulatory, got.Parsed.SourceCategory)

	summary, err := c.Summarize(context.Background(), "https://sec.gov/x", "text")
	require.NoError(t, err)
	assert.Equal(t, "short", summary)
}

func TestClientMalformedAndErrors(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/classify", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"label":"unknown"}`))
	})
	mux.HandleFunc("/summarize", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := NewClient(server.URL, "")

	got, err := c.Classify(context.Background(), ports.ClassifyRequest{})
	require.NoError(t, err)
	assert.True(t, got.Malformed)

	_, err = c.Summarize(context.Background(), "u", "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/summarize")
}
