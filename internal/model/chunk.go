package model

import (
	"encoding/json"
	"time"
)

// ChunkRecord stores one embedded document chunk in MySQL.
// The (document_id, chunk_index) pair is the chunk's identity: re-ingesting a
// document overwrites its rows instead of duplicating them.
// Embedding is stored as a JSON array of float32 for portability.
type ChunkRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID string    `gorm:"size:36;not null;uniqueIndex:idx_doc_chunk" json:"document_id"`
	ChunkIndex int       `gorm:"not null;uniqueIndex:idx_doc_chunk" json:"chunk_index"`
	FileName   string    `gorm:"size:256;not null" json:"file_name"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Embedding  string    `gorm:"type:text" json:"-"` // JSON array of float32
	UploadTime time.Time `json:"upload_time"`
	CreatedAt  time.Time `json:"created_at"`
}

// EmbeddingVector returns the parsed embedding slice; empty on parse error.
func (c *ChunkRecord) EmbeddingVector() []float32 {
	if c.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(c.Embedding), &v)
	return v
}

// SetEmbedding stores the embedding as JSON.
func (c *ChunkRecord) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		c.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	c.Embedding = string(b)
}
