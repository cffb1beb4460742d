package analyzer

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/fadilmartias/interview-analyzer/internal/transcript"
)

const (
	// DefaultSimilarityThreshold is the cosine similarity an utterance has
	// to exceed against at least one indicator phrase to count as a match.
	DefaultSimilarityThreshold = 0.4

	// DefaultContextMargin is how many adjacent utterances are pulled in
	// around every match to keep its conversational context.
	DefaultContextMargin = 1
)

type embeddingProvider interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Extractor selects the experience-related subset of a parsed transcript
// by embedding every utterance and every indicator phrase into the same
// vector space and thresholding their cosine similarity.
type Extractor struct {
	embedder  embeddingProvider
	phrases   []string
	threshold float64
	margin    int

	mu         sync.Mutex
	phraseVecs [][]float32
}

// NewExtractor builds an Extractor. A nil phrase slice selects
// DefaultIndicatorPhrases, a negative threshold selects
// DefaultSimilarityThreshold, and a negative margin selects
// DefaultContextMargin. A threshold of exactly zero is honored: it
// selects every utterance with any positive similarity.
func NewExtractor(embedder embeddingProvider, phrases []string, threshold float64, margin int) *Extractor {
	if phrases == nil {
		phrases = DefaultIndicatorPhrases
	}
	if threshold < 0 {
		threshold = DefaultSimilarityThreshold
	}
	if margin < 0 {
		margin = DefaultContextMargin
	}
	return &Extractor{
		embedder:  embedder,
		phrases:   phrases,
		threshold: threshold,
		margin:    margin,
	}
}

// Extract returns the texts of the utterances whose maximum similarity
// against the phrase catalog exceeds the threshold, expanded by the
// context margin, in conversation order without duplicates. An empty
// transcript yields an empty span without any embedding calls.
func (e *Extractor) Extract(ctx context.Context, utterances []transcript.Utterance) ([]string, error) {
	if len(utterances) == 0 {
		return nil, nil
	}

	// Back-to-back headers parse into turns with empty text. Those can
	// never match a phrase and the embedding API rejects empty input, so
	// they are excluded from the similarity search.
	embedIdx := make([]int, 0, len(utterances))
	texts := make([]string, 0, len(utterances))
	for i, u := range utterances {
		if strings.TrimSpace(u.Text) == "" {
			continue
		}
		embedIdx = append(embedIdx, i)
		texts = append(texts, u.Text)
	}
	if len(texts) == 0 {
		return nil, nil
	}

	phraseVecs, err := e.phraseEmbeddings(ctx)
	if err != nil {
		return nil, err
	}

	utteranceVecs, err := e.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed utterances: %w", err)
	}
	if len(utteranceVecs) != len(texts) {
		return nil, fmt.Errorf("embed utterances: got %d vectors for %d texts", len(utteranceVecs), len(texts))
	}

	selected := make(map[int]struct{})
	for k, vec := range utteranceVecs {
		best := math.Inf(-1)
		for _, pv := range phraseVecs {
			if sim := cosineSimilarity(vec, pv); sim > best {
				best = sim
			}
		}
		if best <= e.threshold {
			continue
		}
		i := embedIdx[k]
		for j := i - e.margin; j <= i+e.margin; j++ {
			if j >= 0 && j < len(utterances) {
				selected[j] = struct{}{}
			}
		}
	}

	indices := make([]int, 0, len(selected))
	for idx := range selected {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	span := make([]string, 0, len(indices))
	for _, idx := range indices {
		if strings.TrimSpace(utterances[idx].Text) == "" {
			continue
		}
		span = append(span, utterances[idx].Text)
	}
	return span, nil
}

// phraseEmbeddings embeds the indicator catalog once per Extractor and
// reuses the vectors for every subsequent call.
func (e *Extractor) phraseEmbeddings(ctx context.Context) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phraseVecs != nil {
		return e.phraseVecs, nil
	}

	vecs, err := e.embedder.GenerateEmbeddings(ctx, e.phrases)
	if err != nil {
		return nil, fmt.Errorf("embed indicator phrases: %w", err)
	}
	if len(vecs) != len(e.phrases) {
		return nil, fmt.Errorf("embed indicator phrases: got %d vectors for %d phrases", len(vecs), len(e.phrases))
	}

	e.phraseVecs = vecs
	return e.phraseVecs, nil
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
