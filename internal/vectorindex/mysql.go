package vectorindex

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"docuchat/internal/model"
)

// MySQL keeps chunk rows in a relational table and ranks them in process by
// cosine similarity. Fine for small corpora; swap in the qdrant backend when
// the chunk count outgrows a full scan.
type MySQL struct {
	db *gorm.DB
}

func NewMySQL(db *gorm.DB) *MySQL {
	return &MySQL{db: db}
}

func (s *MySQL) Upsert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	records := make([]model.ChunkRecord, len(entries))
	for i, e := range entries {
		records[i] = model.ChunkRecord{
			DocumentID: e.DocumentID,
			ChunkIndex: e.ChunkIndex,
			FileName:   e.FileName,
			Content:    e.Text,
			UploadTime: e.UploadTime,
		}
		records[i].SetEmbedding(e.Vector)
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "document_id"}, {Name: "chunk_index"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"file_name", "content", "embedding", "upload_time",
		}),
	}).Create(&records).Error
	if err != nil {
		return fmt.Errorf("%w: upsert chunks failed: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *MySQL) Query(ctx context.Context, vector []float32, topK int) ([]Result, error) {
	var records []model.ChunkRecord
	if err := s.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("%w: list chunks failed: %v", ErrUnavailable, err)
	}

	items := make([]scored, 0, len(records))
	for i := range records {
		rec := &records[i]
		fileName := rec.FileName
		if fileName == "" {
			fileName = "Unknown"
		}
		score := cosineSimilarity(vector, rec.EmbeddingVector())
		items = append(items, scored{
			result: Result{
				Content:  rec.Content,
				FileName: fileName,
				Score:    score,
				Metadata: entryMetadata(Entry{
					Text:       rec.Content,
					DocumentID: rec.DocumentID,
					FileName:   rec.FileName,
					ChunkIndex: rec.ChunkIndex,
					UploadTime: rec.UploadTime,
				}),
			},
			score: score,
		})
	}
	return rankResults(items, topK), nil
}
