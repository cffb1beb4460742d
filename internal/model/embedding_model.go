package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Embedding is one cached embedding vector, keyed by the embedding model
// and the SHA-256 of the source text. The indicator-phrase catalog and
// repeated utterances hit this cache instead of the embedding API.
type Embedding struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Model     string          `gorm:"type:varchar(100);uniqueIndex:idx_embeddings_model_hash" json:"model"`
	TextHash  string          `gorm:"type:varchar(64);uniqueIndex:idx_embeddings_model_hash" json:"text_hash"`
	Text      string          `gorm:"type:text" json:"text"`
	Embedding pgvector.Vector `gorm:"type:vector(3072)" json:"embedding"`
	CreatedAt time.Time       `json:"created_at"`
}

func (e *Embedding) TableName() string {
	return "embeddings"
}
