package service

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"time"

	"github.com/fadilmartias/interview-analyzer/internal/model"
	"github.com/pgvector/pgvector-go"
)

type embeddingSource interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	EmbeddingModel() string
}

type embeddingStore interface {
	FindByHashes(embeddingModel string, hashes []string) ([]model.Embedding, error)
	CreateBatch(records []model.Embedding) error
}

// EmbeddingCacheService fronts the embedding API with a pgvector-backed
// cache keyed by (model, sha256 of text). The indicator-phrase catalog and
// recurring transcript lines are embedded once per deployment instead of
// once per process. Cache failures are logged and degrade to direct API
// calls; they never fail the request.
type EmbeddingCacheService struct {
	inner embeddingSource
	repo  embeddingStore
}

func NewEmbeddingCacheService(inner embeddingSource, repo embeddingStore) *EmbeddingCacheService {
	return &EmbeddingCacheService{inner: inner, repo: repo}
}

func (s *EmbeddingCacheService) EmbeddingModel() string {
	return s.inner.EmbeddingModel()
}

func (s *EmbeddingCacheService) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	hashes := make([]string, len(texts))
	for i, text := range texts {
		hashes[i] = hashText(text)
	}

	cached := s.lookup(hashes)

	missingIdx := make([]int, 0, len(texts))
	missingTexts := make([]string, 0, len(texts))
	for i, hash := range hashes {
		if _, ok := cached[hash]; !ok {
			missingIdx = append(missingIdx, i)
			missingTexts = append(missingTexts, texts[i])
		}
	}

	if len(missingTexts) > 0 {
		vectors, err := s.inner.GenerateEmbeddings(ctx, missingTexts)
		if err != nil {
			return nil, err
		}
		records := make([]model.Embedding, 0, len(missingTexts))
		for j, idx := range missingIdx {
			cached[hashes[idx]] = vectors[j]
			records = append(records, model.Embedding{
				Model:     s.inner.EmbeddingModel(),
				TextHash:  hashes[idx],
				Text:      texts[idx],
				Embedding: pgvector.NewVector(vectors[j]),
				CreatedAt: time.Now(),
			})
		}
		if err := s.repo.CreateBatch(records); err != nil {
			log.Printf("Warning: could not store %d embeddings in cache: %v", len(records), err)
		}
	}

	result := make([][]float32, len(texts))
	for i, hash := range hashes {
		result[i] = cached[hash]
	}
	return result, nil
}

func (s *EmbeddingCacheService) lookup(hashes []string) map[string][]float32 {
	cached := make(map[string][]float32, len(hashes))
	records, err := s.repo.FindByHashes(s.inner.EmbeddingModel(), hashes)
	if err != nil {
		log.Printf("Warning: embedding cache lookup failed: %v", err)
		return cached
	}
	for _, record := range records {
		cached[record.TextHash] = record.Embedding.Slice()
	}
	return cached
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", sum[:])
}
