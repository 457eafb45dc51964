// Package catalog maintains an operational list of ingested documents.
// Retrieval never touches it; it only serves the document-list endpoint.
package catalog

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"docuchat/internal/model"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save records an ingested document, overwriting any previous row with the
// same documentId.
func (r *Repository) Save(doc *model.Document) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "document_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"file_name", "chunk_count", "upload_time"}),
	}).Create(doc).Error
	if err != nil {
		return fmt.Errorf("save document failed: %w", err)
	}
	return nil
}

// List returns all catalogued documents, newest upload first.
func (r *Repository) List() ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Order("upload_time DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return docs, nil
}
