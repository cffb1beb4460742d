package repository

import (
	"github.com/fadilmartias/interview-analyzer/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EmbeddingRepository struct {
	db *gorm.DB
}

func NewEmbeddingRepository(db *gorm.DB) *EmbeddingRepository {
	return &EmbeddingRepository{db}
}

// FindByHashes returns the cached embeddings for the given text hashes
// under one embedding model. Missing hashes are simply absent from the
// result.
func (r *EmbeddingRepository) FindByHashes(embeddingModel string, hashes []string) ([]model.Embedding, error) {
	var records []model.Embedding
	err := r.db.
		Where("model = ? AND text_hash IN ?", embeddingModel, hashes).
		Find(&records).Error
	return records, err
}

// CreateBatch inserts new cache entries, ignoring rows another request
// already inserted for the same (model, hash) pair.
func (r *EmbeddingRepository) CreateBatch(records []model.Embedding) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&records).Error
}
