package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"EvidenceCollector/internal/domain"
	"EvidenceCollector/internal/ports"
)

// ErrNotFound is returned by GetResult for unknown run IDs.
var ErrNotFound = errors.New("collection run not found")

// Schema creates the tables used by PostgresRepository.
const Schema = `
CREATE TABLE IF NOT EXISTS collection_runs (
    run_id        TEXT PRIMARY KEY,
    company       TEXT NOT NULL,
    domain        TEXT NOT NULL,
    status        TEXT NOT NULL,
    doc_count     INTEGER NOT NULL,
    sources       TEXT[] NOT NULL,
    missing_slots TEXT[] NOT NULL,
    attempts      INTEGER NOT NULL,
    max_attempts  INTEGER NOT NULL,
    error         TEXT,
    payload       JSONB NOT NULL,
    started_at    TIMESTAMPTZ NOT NULL,
    finished_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS collection_documents (
    run_id              TEXT NOT NULL REFERENCES collection_runs(run_id) ON DELETE CASCADE,
    position            INTEGER NOT NULL,
    doc_id              TEXT NOT NULL,
    url                 TEXT NOT NULL,
    source_type         TEXT NOT NULL,
    source_category     TEXT NOT NULL,
    reliability_score   DOUBLE PRECISION NOT NULL,
    reliability_reasons TEXT[] NOT NULL,
    is_recent           BOOLEAN NOT NULL,
    body                JSONB NOT NULL,
    PRIMARY KEY (run_id, position)
);`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository persists finished collection runs into Postgres.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.ResultRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates missing tables.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveResult writes the run and its documents in one transaction. Saving the
// same run ID again replaces the previous snapshot.
func (r *PostgresRepository) SaveResult(ctx context.Context, result domain.CollectionResult) (err error) {
	if r.db == nil {
		return nil
	}

	runQuery, runArgs, err := insertRunQuery(result)
	if err != nil {
		return err
	}
	docQuery, docArgs, err := insertDocumentsQuery(result)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM collection_documents WHERE run_id = $1`, result.RunID); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	if _, err = tx.ExecContext(ctx, runQuery, runArgs...); err != nil {
		return fmt.Errorf("upsert run: %w", err)
	}
	if docQuery != "" {
		if _, err = tx.ExecContext(ctx, docQuery, docArgs...); err != nil {
			return fmt.Errorf("insert documents: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetResult loads a run snapshot with its documents in insertion order.
func (r *PostgresRepository) GetResult(ctx context.Context, runID string) (domain.CollectionResult, error) {
	var result domain.CollectionResult
	if r.db == nil {
		return result, ErrNotFound
	}

	query, args, err := psql.Select("payload").
		From("collection_runs").
		Where(sq.Eq{"run_id": runID}).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build run query: %w", err)
	}

	var payload []byte
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return result, fmt.Errorf("query run: %w", err)
	}
	if err := json.Unmarshal(payload, &result); err != nil {
		return result, fmt.Errorf("decode run payload: %w", err)
	}

	docs, err := r.loadDocuments(ctx, runID)
	if err != nil {
		return result, err
	}
	result.Documents = docs
	return result, nil
}

func (r *PostgresRepository) loadDocuments(ctx context.Context, runID string) ([]domain.Document, error) {
	query, args, err := psql.Select("body").
		From("collection_documents").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build documents query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		var doc domain.Document
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return docs, nil
}

// insertRunQuery stores the result without documents; they live in their own table.
func insertRunQuery(result domain.CollectionResult) (string, []any, error) {
	snapshot := result
	snapshot.Documents = nil
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return "", nil, fmt.Errorf("encode run payload: %w", err)
	}

	slots := make([]string, len(result.Gate.MissingSlots))
	for i, s := range result.Gate.MissingSlots {
		slots[i] = string(s)
	}

	query, args, err := psql.Insert("collection_runs").
		Columns("run_id", "company", "domain", "status", "doc_count", "sources", "missing_slots",
			"attempts", "max_attempts", "error", "payload", "started_at", "finished_at").
		Values(result.RunID, result.Company, result.Domain, string(result.Status), result.Count,
			pq.StringArray(nonNil(result.Sources)), pq.StringArray(slots),
			result.Attempts.Current, result.Attempts.Max, result.Error, payload,
			result.StartedAt, result.FinishedAt).
		Suffix(`ON CONFLICT (run_id) DO UPDATE SET
			status = EXCLUDED.status,
			doc_count = EXCLUDED.doc_count,
			sources = EXCLUDED.sources,
			missing_slots = EXCLUDED.missing_slots,
			attempts = EXCLUDED.attempts,
			error = EXCLUDED.error,
			payload = EXCLUDED.payload,
			finished_at = EXCLUDED.finished_at`).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build run insert: %w", err)
	}
	return query, args, nil
}

// insertDocumentsQuery returns an empty query for a run without documents.
func insertDocumentsQuery(result domain.CollectionResult) (string, []any, error) {
	if len(result.Documents) == 0 {
		return "", nil, nil
	}

	builder := psql.Insert("collection_documents").
		Columns("run_id", "position", "doc_id", "url", "source_type", "source_category",
			"reliability_score", "reliability_reasons", "is_recent", "body")

	for i, doc := range result.Documents {
		body, err := json.Marshal(doc)
		if err != nil {
			return "", nil, fmt.Errorf("encode document %s: %w", doc.ID, err)
		}
		builder = builder.Values(result.RunID, i, doc.ID, doc.URL, string(doc.SourceType), doc.SourceCategory,
			doc.ReliabilityScore, pq.StringArray(nonNil(doc.ReliabilityReasons)), doc.IsRecent, body)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build documents insert: %w", err)
	}
	return query, args, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
