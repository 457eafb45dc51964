// Package embedding wraps an embedding provider behind batch-size and
// concurrency limits so callers never trip provider rate limits.
package embedding

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"docuchat/internal/ai"
)

const (
	DefaultBatchSize      = 50
	DefaultMaxConcurrency = 5
)

// ErrProvider marks any upstream embedding failure. The gateway never
// retries; the caller owns the retry decision.
var ErrProvider = errors.New("embedding provider failed")

type Gateway struct {
	provider       ai.EmbeddingProvider
	batchSize      int
	maxConcurrency int
}

func NewGateway(provider ai.EmbeddingProvider, batchSize, maxConcurrency int) *Gateway {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &Gateway{
		provider:       provider,
		batchSize:      batchSize,
		maxConcurrency: maxConcurrency,
	}
}

// EmbedQuery embeds a single query string.
func (g *Gateway) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vec, err := g.provider.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	return vec, nil
}

// EmbedBatch embeds texts in sub-batches of at most batchSize, running at
// most maxConcurrency requests in flight, and reassembles the vectors in
// input order.
func (g *Gateway) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(texts))
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(g.maxConcurrency)

	for start := 0; start < len(texts); start += g.batchSize {
		end := start + g.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		start, end := start, end

		grp.Go(func() error {
			batch, err := g.provider.EmbedBatch(grpCtx, texts[start:end])
			if err != nil {
				return fmt.Errorf("%w: batch [%d:%d]: %v", ErrProvider, start, end, err)
			}
			if len(batch) != end-start {
				return fmt.Errorf("%w: batch [%d:%d]: got %d vectors for %d texts",
					ErrProvider, start, end, len(batch), end-start)
			}
			for i, vec := range batch {
				vectors[start+i] = vec
			}
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
