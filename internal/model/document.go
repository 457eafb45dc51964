package model

import "time"

// Document is a catalog row describing one ingested document. It is
// operational metadata for listing uploads; retrieval never reads it, the
// vector index alone serves queries.
type Document struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	DocumentID string    `gorm:"size:36;not null;uniqueIndex" json:"documentId"`
	FileName   string    `gorm:"size:256;not null" json:"fileName"`
	ChunkCount int       `gorm:"not null" json:"chunkCount"`
	UploadTime time.Time `json:"uploadTime"`
	CreatedAt  time.Time `json:"-"`
}
