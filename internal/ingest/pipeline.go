// Package ingest orchestrates document loading, chunking, embedding, and
// indexing for a single upload.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"docuchat/internal/chunker"
	"docuchat/internal/vectorindex"
)

// ErrLoad means the source document produced no extractable content. A
// user-facing condition, not a provider failure.
var ErrLoad = errors.New("no content found in the document")

// Summary describes one completed ingestion.
type Summary struct {
	DocumentID string    `json:"documentId"`
	FileName   string    `json:"fileName"`
	ChunkCount int       `json:"chunkCount"`
	UploadTime time.Time `json:"uploadTime"`
}

// BatchEmbedder is the slice of the embedding gateway the pipeline needs.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Notifier receives the summary of a successful ingestion, e.g. to feed the
// document catalog. Notification is best effort.
type Notifier interface {
	Notify(ctx context.Context, summary Summary) error
}

type Pipeline struct {
	loader       Loader
	embedder     BatchEmbedder
	index        vectorindex.Index
	notifier     Notifier // optional
	chunkSize    int
	chunkOverlap int
}

func NewPipeline(loader Loader, embedder BatchEmbedder, index vectorindex.Index, chunkSize, chunkOverlap int) *Pipeline {
	if chunkSize <= 0 {
		chunkSize = chunker.DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = chunker.DefaultChunkOverlap
	}
	return &Pipeline{
		loader:       loader,
		embedder:     embedder,
		index:        index,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// SetNotifier attaches an optional ingestion notifier.
func (p *Pipeline) SetNotifier(n Notifier) {
	p.notifier = n
}

// Process ingests the file at path: extract text, chunk, embed, index. The
// temporary upload at path is removed on every exit path. On failure nothing
// partial is indexed beyond the single failed upsert call.
func (p *Pipeline) Process(ctx context.Context, path, fileName string) (*Summary, error) {
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("remove temp upload %s failed: %v", path, err)
		}
	}()

	text, err := p.loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load document failed: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrLoad
	}

	documentID := uuid.NewString()
	uploadTime := time.Now().UTC()

	chunks, err := chunker.Split(text, p.chunkSize, p.chunkOverlap)
	if err != nil {
		if errors.Is(err, chunker.ErrEmptyDocument) {
			return nil, ErrLoad
		}
		return nil, fmt.Errorf("chunk document failed: %w", err)
	}

	vectors, err := p.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed chunks failed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}

	entries := make([]vectorindex.Entry, len(chunks))
	for i := range chunks {
		entries[i] = vectorindex.Entry{
			Vector:     vectors[i],
			Text:       chunks[i],
			DocumentID: documentID,
			FileName:   fileName,
			ChunkIndex: i,
			UploadTime: uploadTime,
		}
	}
	if err := p.index.Upsert(ctx, entries); err != nil {
		return nil, fmt.Errorf("index chunks failed: %w", err)
	}

	summary := &Summary{
		DocumentID: documentID,
		FileName:   fileName,
		ChunkCount: len(chunks),
		UploadTime: uploadTime,
	}

	if p.notifier != nil {
		if err := p.notifier.Notify(ctx, *summary); err != nil {
			log.Printf("notify ingestion of %s failed: %v", documentID, err)
		}
	}

	log.Printf("ingested %s (%s): %d chunks", fileName, documentID, summary.ChunkCount)
	return summary, nil
}
