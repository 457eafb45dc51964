// Package vectorindex stores chunk vectors and serves top-k similarity
// queries. One record exists per (documentId, chunkIndex) pair; re-ingesting
// a document overwrites its records.
package vectorindex

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"
)

// ErrUnavailable means the backing store could not be reached. It is always
// surfaced so a failed query is never mistaken for "no relevant documents".
var ErrUnavailable = errors.New("vector index unavailable")

// Entry is one embedded chunk with its provenance metadata.
type Entry struct {
	Vector     []float32
	Text       string
	DocumentID string
	FileName   string
	ChunkIndex int
	UploadTime time.Time
}

// Result is one retrieval match, score in [0,1], higher is more relevant.
type Result struct {
	Content  string                 `json:"content"`
	FileName string                 `json:"fileName"`
	Score    float32                `json:"score"`
	Metadata map[string]interface{} `json:"metadata"`
}

type Index interface {
	// Upsert writes entries, overwriting any existing record with the same
	// (documentId, chunkIndex) identity.
	Upsert(ctx context.Context, entries []Entry) error

	// Query returns up to topK results ordered by descending score.
	Query(ctx context.Context, vector []float32, topK int) ([]Result, error)
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

type scored struct {
	result Result
	score  float32
}

// rankResults sorts by descending score and bounds the result count to topK.
func rankResults(items []scored, topK int) []Result {
	if topK <= 0 {
		return nil
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})
	if topK > len(items) {
		topK = len(items)
	}
	results := make([]Result, topK)
	for i := range results {
		results[i] = items[i].result
	}
	return results
}

func entryMetadata(e Entry) map[string]interface{} {
	return map[string]interface{}{
		"text":       e.Text,
		"fileName":   e.FileName,
		"documentId": e.DocumentID,
		"chunkIndex": e.ChunkIndex,
		"uploadTime": e.UploadTime.Format(time.RFC3339),
	}
}
