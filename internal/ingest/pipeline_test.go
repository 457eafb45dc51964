package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docuchat/internal/vectorindex"
)

type stubLoader struct {
	text string
	err  error
}

func (l *stubLoader) Load(ctx context.Context, path string) (string, error) {
	return l.text, l.err
}

type stubEmbedder struct {
	err error
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

type recordingNotifier struct {
	summaries []Summary
}

func (n *recordingNotifier) Notify(ctx context.Context, summary Summary) error {
	n.summaries = append(n.summaries, summary)
	return nil
}

func tempUpload(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.pdf")
	if err := os.WriteFile(path, []byte("placeholder"), 0o644); err != nil {
		t.Fatalf("write temp upload: %v", err)
	}
	return path
}

func TestProcess_IndexesChunksWithMetadata(t *testing.T) {
	index := vectorindex.NewMemory()
	loader := &stubLoader{text: strings.Repeat("a", 250)}
	notifier := &recordingNotifier{}

	p := NewPipeline(loader, &stubEmbedder{}, index, 100, 25)
	p.SetNotifier(notifier)

	path := tempUpload(t)
	summary, err := p.Process(context.Background(), path, "notes.pdf")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	// 250 chars at size 100, overlap 25 -> chunks at 0, 75, 150 (remainder).
	if summary.ChunkCount != 3 {
		t.Fatalf("expected 3 chunks, got %d", summary.ChunkCount)
	}
	if summary.DocumentID == "" || summary.FileName != "notes.pdf" {
		t.Fatalf("bad summary: %+v", summary)
	}
	if index.Len() != 3 {
		t.Fatalf("expected 3 indexed entries, got %d", index.Len())
	}

	results, _ := index.Query(context.Background(), []float32{0, 1}, 10)
	for _, r := range results {
		if r.FileName != "notes.pdf" {
			t.Fatalf("expected fileName metadata on every chunk, got %q", r.FileName)
		}
		if r.Metadata["documentId"] != summary.DocumentID {
			t.Fatalf("expected documentId metadata %q, got %v", summary.DocumentID, r.Metadata["documentId"])
		}
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected temp upload to be removed after success")
	}
	if len(notifier.summaries) != 1 || notifier.summaries[0].DocumentID != summary.DocumentID {
		t.Fatalf("expected one notification for the summary, got %+v", notifier.summaries)
	}
}

func TestProcess_EmptyDocument(t *testing.T) {
	p := NewPipeline(&stubLoader{text: "   "}, &stubEmbedder{}, vectorindex.NewMemory(), 100, 25)

	path := tempUpload(t)
	_, err := p.Process(context.Background(), path, "empty.pdf")
	if !errors.Is(err, ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatal("expected temp upload to be removed after failure")
	}
}

func TestProcess_CleansUpOnEmbedFailure(t *testing.T) {
	index := vectorindex.NewMemory()
	p := NewPipeline(
		&stubLoader{text: strings.Repeat("b", 500)},
		&stubEmbedder{err: errors.New("provider down")},
		index, 100, 25,
	)

	path := tempUpload(t)
	_, err := p.Process(context.Background(), path, "doc.pdf")
	if err == nil {
		t.Fatal("expected error from embedding failure")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatal("expected temp upload to be removed even when embedding fails")
	}
	if index.Len() != 0 {
		t.Fatalf("expected no partial indexing, got %d entries", index.Len())
	}
}

func TestProcess_ReingestOverwrites(t *testing.T) {
	index := vectorindex.NewMemory()
	loader := &stubLoader{text: strings.Repeat("c", 250)}
	p := NewPipeline(loader, &stubEmbedder{}, index, 100, 25)

	first, err := p.Process(context.Background(), tempUpload(t), "doc.pdf")
	if err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}
	second, err := p.Process(context.Background(), tempUpload(t), "doc.pdf")
	if err != nil {
		t.Fatalf("second ingest failed: %v", err)
	}

	// Each upload gets a fresh documentId, so both generations coexist;
	// within one documentId the index keys are stable.
	if first.DocumentID == second.DocumentID {
		t.Fatal("expected a fresh documentId per ingestion")
	}
	if index.Len() != first.ChunkCount+second.ChunkCount {
		t.Fatalf("unexpected index size %d", index.Len())
	}
}
