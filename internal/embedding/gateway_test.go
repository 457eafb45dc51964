package embedding

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeProvider derives each vector from the text's numeric suffix so order
// can be verified after reassembly.
type fakeProvider struct {
	mu         sync.Mutex
	batchSizes []int
	inFlight   atomic.Int32
	maxSeen    atomic.Int32
	failOn     string
}

func (p *fakeProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == p.failOn {
		return nil, errors.New("boom")
	}
	return []float32{textValue(text)}, nil
}

func (p *fakeProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	cur := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		max := p.maxSeen.Load()
		if cur <= max || p.maxSeen.CompareAndSwap(max, cur) {
			break
		}
	}

	p.mu.Lock()
	p.batchSizes = append(p.batchSizes, len(texts))
	p.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, t := range texts {
		if t == p.failOn {
			return nil, errors.New("boom")
		}
		out[i] = []float32{textValue(t)}
	}
	return out, nil
}

func textValue(text string) float32 {
	n, _ := strconv.Atoi(text)
	return float32(n)
}

func TestEmbedBatch_SplitsAndPreservesOrder(t *testing.T) {
	provider := &fakeProvider{}
	gw := NewGateway(provider, 10, 3)

	texts := make([]string, 47)
	for i := range texts {
		texts[i] = fmt.Sprintf("%d", i)
	}

	vectors, err := gw.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("embed batch failed: %v", err)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vectors))
	}
	for i, vec := range vectors {
		if len(vec) != 1 || vec[0] != float32(i) {
			t.Fatalf("vector %d out of order: got %v", i, vec)
		}
	}

	if len(provider.batchSizes) != 5 {
		t.Fatalf("expected 5 sub-batches, got %d", len(provider.batchSizes))
	}
	for _, size := range provider.batchSizes {
		if size > 10 {
			t.Fatalf("sub-batch exceeded batch size: %d", size)
		}
	}
}

func TestEmbedBatch_RespectsConcurrencyCap(t *testing.T) {
	provider := &fakeProvider{}
	gw := NewGateway(provider, 1, 2)

	texts := make([]string, 20)
	for i := range texts {
		texts[i] = fmt.Sprintf("%d", i)
	}
	if _, err := gw.EmbedBatch(context.Background(), texts); err != nil {
		t.Fatalf("embed batch failed: %v", err)
	}
	if max := provider.maxSeen.Load(); max > 2 {
		t.Fatalf("concurrency cap exceeded: %d in flight", max)
	}
}

func TestEmbedBatch_ProviderFailure(t *testing.T) {
	provider := &fakeProvider{failOn: "3"}
	gw := NewGateway(provider, 2, 2)

	_, err := gw.EmbedBatch(context.Background(), []string{"0", "1", "2", "3"})
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
}

func TestEmbedBatch_Empty(t *testing.T) {
	gw := NewGateway(&fakeProvider{}, 10, 2)
	vectors, err := gw.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vectors != nil {
		t.Fatalf("expected nil vectors for empty input, got %v", vectors)
	}
}

func TestEmbedQuery_WrapsProviderError(t *testing.T) {
	provider := &fakeProvider{failOn: "bad"}
	gw := NewGateway(provider, 10, 2)

	if _, err := gw.EmbedQuery(context.Background(), "bad"); !errors.Is(err, ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
	if vec, err := gw.EmbedQuery(context.Background(), "7"); err != nil || vec[0] != 7 {
		t.Fatalf("expected vector [7], got %v (%v)", vec, err)
	}
}
