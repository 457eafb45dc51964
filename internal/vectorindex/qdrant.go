package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Qdrant is a minimal REST client to a Qdrant collection using cosine
// distance. The collection is created on first upsert, sized to the vectors
// being written.
type Qdrant struct {
	baseURL    string
	apiKey     string
	collection string
	httpClient *http.Client

	mu          sync.Mutex
	initialized bool
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewQdrant(cfg QdrantConfig) *Qdrant {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Qdrant{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *Qdrant) Upsert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := s.ensureCollection(ctx, len(entries[0].Vector)); err != nil {
		return err
	}

	points := make([]map[string]interface{}, len(entries))
	for i, e := range entries {
		points[i] = map[string]interface{}{
			// Deterministic point id from the chunk identity keeps upserts
			// idempotent: re-ingesting overwrites instead of duplicating.
			"id":     pointID(e.DocumentID, e.ChunkIndex),
			"vector": e.Vector,
			"payload": map[string]interface{}{
				"text":       e.Text,
				"fileName":   e.FileName,
				"documentId": e.DocumentID,
				"chunkIndex": e.ChunkIndex,
				"uploadTime": e.UploadTime.Format(time.RFC3339),
			},
		}
	}

	path := fmt.Sprintf("/collections/%s/points?wait=true", s.collection)
	if err := s.doJSON(ctx, http.MethodPut, path, map[string]interface{}{"points": points}, nil); err != nil {
		return fmt.Errorf("%w: upsert points failed: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Qdrant) Query(ctx context.Context, vector []float32, topK int) ([]Result, error) {
	if topK <= 0 {
		return nil, nil
	}
	req := map[string]interface{}{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float32                `json:"score"`
			Payload map[string]interface{} `json:"payload"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/search", s.collection)
	if err := s.doJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, fmt.Errorf("%w: search failed: %v", ErrUnavailable, err)
	}

	results := make([]Result, 0, len(resp.Result))
	for _, r := range resp.Result {
		content, _ := r.Payload["text"].(string)
		fileName, _ := r.Payload["fileName"].(string)
		if fileName == "" {
			fileName = "Unknown"
		}
		results = append(results, Result{
			Content:  content,
			FileName: fileName,
			Score:    r.Score,
			Metadata: r.Payload,
		})
	}
	return results, nil
}

// ensureCollection creates the collection once. Only success is latched: a
// failed creation is retried on the next upsert so a transient outage does
// not wedge the adapter for the life of the process.
func (s *Qdrant) ensureCollection(ctx context.Context, dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	if dimension <= 0 {
		return fmt.Errorf("%w: invalid vector dimension %d", ErrUnavailable, dimension)
	}

	body := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	// Qdrant answers 409 when the collection already exists.
	err := s.doJSON(ctx, http.MethodPut, "/collections/"+s.collection, body, nil)
	if err != nil && !isConflict(err) {
		return fmt.Errorf("%w: create collection failed: %v", ErrUnavailable, err)
	}
	s.initialized = true
	return nil
}

type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant status %d: %s", e.status, e.body)
}

func isConflict(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.status == http.StatusConflict
}

func (s *Qdrant) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal qdrant request failed: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build qdrant request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read qdrant response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return &statusError{status: resp.StatusCode, body: string(raw)}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("parse qdrant response failed: %w", err)
		}
	}
	return nil
}

func pointID(documentID string, chunkIndex int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s:%d", documentID, chunkIndex))).String()
}
