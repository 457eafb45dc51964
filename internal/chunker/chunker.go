// Package chunker splits document text into overlapping windows sized to
// fit the embedding model's input.
package chunker

import (
	"errors"
	"strings"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

var ErrEmptyDocument = errors.New("document has no extractable text")

// Split cuts text into chunks of size runes where consecutive chunks overlap
// by overlap runes. Every chunk except the last is exactly size runes; the
// last carries the remainder, so no content is dropped. A document shorter
// than size yields exactly one chunk equal to the whole text.
func Split(text string, size, overlap int) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}

	runes := []rune(text)
	step := size - overlap

	var chunks []string
	for start := 0; ; start += step {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks, nil
}
