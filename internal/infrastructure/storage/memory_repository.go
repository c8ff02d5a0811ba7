package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"EvidenceCollector/internal/domain"
	"EvidenceCollector/internal/ports"
)

// MemoryRepository keeps runs in process; used when no DSN is configured.
type MemoryRepository struct {
	mu   sync.RWMutex
	runs map[string][]byte
}

var _ ports.ResultRepository = (*MemoryRepository)(nil)

// NewMemoryRepository builds an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{runs: map[string][]byte{}}
}

// SaveResult stores an encoded snapshot so later mutation by the caller is
// not visible to readers.
func (m *MemoryRepository) SaveResult(_ context.Context, result domain.CollectionResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", result.RunID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[result.RunID] = raw
	return nil
}

// GetResult decodes a stored snapshot.
func (m *MemoryRepository) GetResult(_ context.Context, runID string) (domain.CollectionResult, error) {
	m.mu.RLock()
	raw, ok := m.runs[runID]
	m.mu.RUnlock()

	var result domain.CollectionResult
	if !ok {
		return result, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return result, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return result, nil
}
