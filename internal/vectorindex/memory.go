package vectorindex

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process index used in tests and throwaway deployments.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry // keyed by documentId:chunkIndex
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Entry)}
}

func (m *Memory) Upsert(ctx context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.entries[fmt.Sprintf("%s:%d", e.DocumentID, e.ChunkIndex)] = e
	}
	return nil
}

func (m *Memory) Query(ctx context.Context, vector []float32, topK int) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]scored, 0, len(m.entries))
	for _, e := range m.entries {
		fileName := e.FileName
		if fileName == "" {
			fileName = "Unknown"
		}
		score := cosineSimilarity(vector, e.Vector)
		items = append(items, scored{
			result: Result{
				Content:  e.Text,
				FileName: fileName,
				Score:    score,
				Metadata: entryMetadata(e),
			},
			score: score,
		})
	}
	return rankResults(items, topK), nil
}

// Len reports the number of stored chunks.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
