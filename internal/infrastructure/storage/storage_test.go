package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EvidenceCollector/internal/domain"
)

func sampleResult() domain.CollectionResult {
	started := time.Date(2025, time.June, 30, 10, 0, 0, 0, time.UTC)
	return domain.CollectionResult{
		RunID:   "run-1",
		Company: "Acme",
		Domain:  "medical",
		Status:  domain.StatusPartial,
		Documents: []domain.Document{
			{ID: "web_aaaa0001", URL: "https://acme.com/a", SourceType: domain.SourcePrimary, SourceCategory: domain.CategoryCompany, ReliabilityScore: 0.8},
			{ID: "web_aaaa0002", URL: "https://news.com/b", SourceType: domain.SourceSecondary, SourceCategory: domain.CategoryNews, ReliabilityScore: 0.5, ReliabilityReasons: []string{"recent within policy window"}},
		},
		Count:      2,
		Sources:    []string{"company", "news"},
		Gate:       domain.GateVerdict{MissingSlots: []domain.Slot{domain.SlotDocsCount}, Reasons: []string{"not enough documents 2/50"}},
		Attempts:   domain.Attempts{Current: 2, Max: 2},
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
	}
}

func TestInsertRunQuery(t *testing.T) {
	t.Parallel()

	query, args, err := insertRunQuery(sampleResult())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "INSERT INTO collection_runs (run_id,company,domain,status"))
	assert.Contains(t, query, "$13")
	assert.Contains(t, query, "ON CONFLICT (run_id) DO UPDATE")
	require.Len(t, args, 13)
	assert.Equal(t, "run-1", args[0])
	assert.Equal(t, "partial", args[3])
	assert.Equal(t, pq.StringArray{"docs_count"}, args[6])

	payload, ok := args[10].([]byte)
	require.True(t, ok)
	assert.NotContains(t, string(payload), "web_aaaa0001", "documents are stored separately")
}

func TestInsertDocumentsQuery(t *testing.T) {
	t.Parallel()

	query, args, err := insertDocumentsQuery(sampleResult())
	require.NoError(t, err)
	assert.Contains(t, query, "INSERT INTO collection_documents")
	assert.Contains(t, query, "$20")
	require.Len(t, args, 20)
	assert.Equal(t, 1, args[11])
	assert.Equal(t, pq.StringArray{}, args[7])

	empty := sampleResult()
	empty.Documents = nil
	query, args, err = insertDocumentsQuery(empty)
	require.NoError(t, err)
	assert.Empty(t, query)
	assert.Nil(t, args)
}

func TestMemoryRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	ctx := context.Background()
	res := sampleResult()

	require.NoError(t, repo.SaveResult(ctx, res))
	res.Documents[0].URL = "mutated"

	got, err := repo.GetResult(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "https://acme.com/a", got.Documents[0].URL)
	assert.Equal(t, domain.StatusPartial, got.Status)
	assert.True(t, got.StartedAt.Equal(res.StartedAt))

	_, err = repo.GetResult(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
