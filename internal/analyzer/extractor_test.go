package analyzer

import (
	"context"
	"testing"

	"github.com/fadilmartias/interview-analyzer/internal/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder returns canned vectors per text and counts calls, so tests
// can assert both similarity behavior and call economy.
type fakeEmbedder struct {
	vectors  map[string][]float32
	calls    int
	embedded []string
}

func (f *fakeEmbedder) GenerateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	f.embedded = append(f.embedded, texts...)
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, ok := f.vectors[text]
		if !ok {
			vec = []float32{0, 0, 1}
		}
		out[i] = vec
	}
	return out, nil
}

func utterancesFrom(texts ...string) []transcript.Utterance {
	turns := make([]transcript.Utterance, len(texts))
	for i, text := range texts {
		turns[i] = transcript.Utterance{Speaker: "Candidate", Text: text, Index: i}
	}
	return turns
}

func TestExtractSelectsMatchesWithMargin(t *testing.T) {
	// phrase axis is (1,0,0); similarity of each utterance is its first component.
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"phrase": {1, 0, 0},
		"small talk": {0, 1, 0},
		"strong match": {0.9, 0.1, 0},
		"more chatter": {0, 0.5, 0.5},
		"tail": {0.1, 0.9, 0},
	}}
	e := NewExtractor(embedder, []string{"phrase"}, 0.4, 1)

	span, err := e.Extract(context.Background(), utterancesFrom("small talk", "strong match", "more chatter", "tail"))
	require.NoError(t, err)

	// Match at index 1 expands to [0, 2]; index 3 stays out.
	assert.Equal(t, []string{"small talk", "strong match", "more chatter"}, span)
}

func TestExtractMarginClippedAtBounds(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"phrase": {1, 0, 0},
		"match": {1, 0, 0},
	}}
	e := NewExtractor(embedder, []string{"phrase"}, 0.4, 2)

	span, err := e.Extract(context.Background(), utterancesFrom("match"))
	require.NoError(t, err)
	assert.Equal(t, []string{"match"}, span)
}

func TestExtractOverlappingMatchesDeduplicated(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"phrase": {1, 0, 0},
		"a": {1, 0, 0},
		"b": {1, 0, 0},
		"c": {0, 1, 0},
	}}
	e := NewExtractor(embedder, []string{"phrase"}, 0.4, 1)

	span, err := e.Extract(context.Background(), utterancesFrom("a", "b", "c"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, span)
}

func TestExtractThresholdMonotonicity(t *testing.T) {
	vectors := map[string][]float32{
		"phrase": {1, 0, 0},
		"weak": {0.45, 0.9, 0},
		"medium": {0.65, 0.76, 0},
		"strong": {0.95, 0.31, 0},
	}

	spanAt := func(threshold float64) []string {
		embedder := &fakeEmbedder{vectors: vectors}
		e := NewExtractor(embedder, []string{"phrase"}, threshold, 0)
		span, err := e.Extract(context.Background(), utterancesFrom("weak", "medium", "strong"))
		require.NoError(t, err)
		return span
	}

	loose := spanAt(0.3)
	tight := spanAt(0.7)

	// Everything selected under the tighter threshold is selected under the looser one.
	assert.Subset(t, loose, tight)
	assert.Equal(t, []string{"weak", "medium", "strong"}, loose)
	assert.Equal(t, []string{"strong"}, tight)
}

func TestExtractEmptyTranscriptSkipsEmbedding(t *testing.T) {
	embedder := &fakeEmbedder{}
	e := NewExtractor(embedder, []string{"phrase"}, 0.4, 1)

	span, err := e.Extract(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, span)
	assert.Zero(t, embedder.calls)
}

func TestExtractSkipsEmptyUtterances(t *testing.T) {
	// Back-to-back headers produce a turn whose text is empty; those
	// must never reach the embedder.
	raw := "Interviewer (02/28/2025, 03:39 AM): Candidate (02/28/2025, 03:40 AM): I worked at Google."
	turns, err := transcript.Parse(raw)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	require.Empty(t, turns[0].Text)

	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"phrase":              {1, 0, 0},
		"I worked at Google.": {1, 0, 0},
	}}
	e := NewExtractor(embedder, []string{"phrase"}, 0.4, 1)

	span, err := e.Extract(context.Background(), turns)
	require.NoError(t, err)
	assert.NotContains(t, embedder.embedded, "")
	// Margin expansion reaches the empty turn but it contributes no text.
	assert.Equal(t, []string{"I worked at Google."}, span)
}

func TestExtractAllEmptyUtterancesSkipsEmbedding(t *testing.T) {
	embedder := &fakeEmbedder{}
	e := NewExtractor(embedder, []string{"phrase"}, 0.4, 1)

	span, err := e.Extract(context.Background(), utterancesFrom("", "   "))
	require.NoError(t, err)
	assert.Empty(t, span)
	assert.Zero(t, embedder.calls)
}

func TestExtractNoMatchesYieldsEmptySpan(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"phrase": {1, 0, 0},
		"chatter": {0, 1, 0},
	}}
	e := NewExtractor(embedder, []string{"phrase"}, 0.4, 1)

	span, err := e.Extract(context.Background(), utterancesFrom("chatter"))
	require.NoError(t, err)
	assert.Empty(t, span)
}

func TestExtractPhraseCatalogEmbeddedOnce(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{"phrase": {1, 0, 0}}}
	e := NewExtractor(embedder, []string{"phrase"}, 0.4, 1)

	_, err := e.Extract(context.Background(), utterancesFrom("chatter"))
	require.NoError(t, err)
	_, err = e.Extract(context.Background(), utterancesFrom("chatter"))
	require.NoError(t, err)

	// 1 catalog call + 2 utterance calls.
	assert.Equal(t, 3, embedder.calls)
}

func TestExtractExperienceStatements(t *testing.T) {
	// Stand-in vectors for the catalog scenario: both experience sentences
	// sit close to the catalog phrases, the greeting does not.
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"I have X years of experience in": {1, 0, 0},
		"Previously, I was at": {0.9, 0.4, 0},

		"Hello there. My name is Manish.": {0, 0.2, 1},
		"I have 5 years of experience in Python and AI.": {0.95, 0.2, 0},
		"Previously, I worked at Google as a Machine Learning Engineer for 3 years.": {0.85, 0.45, 0},
	}}
	e := NewExtractor(embedder, []string{"I have X years of experience in", "Previously, I was at"}, 0.4, 0)

	span, err := e.Extract(context.Background(), utterancesFrom(
		"Hello there. My name is Manish.",
		"I have 5 years of experience in Python and AI.",
		"Previously, I worked at Google as a Machine Learning Engineer for 3 years.",
	))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"I have 5 years of experience in Python and AI.",
		"Previously, I worked at Google as a Machine Learning Engineer for 3 years.",
	}, span)
}

func TestNewExtractorDefaults(t *testing.T) {
	e := NewExtractor(&fakeEmbedder{}, nil, -1, -1)
	assert.Equal(t, DefaultIndicatorPhrases, e.phrases)
	assert.Equal(t, DefaultSimilarityThreshold, e.threshold)
	assert.Equal(t, DefaultContextMargin, e.margin)
}

func TestNewExtractorZeroThresholdHonored(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"phrase":         {1, 0, 0},
		"barely related": {0.01, 1, 0},
		"orthogonal":     {0, 1, 0},
	}}
	e := NewExtractor(embedder, []string{"phrase"}, 0, 0)
	assert.Equal(t, 0.0, e.threshold)

	// Any positive similarity clears a zero threshold.
	span, err := e.Extract(context.Background(), utterancesFrom("barely related", "orthogonal"))
	require.NoError(t, err)
	assert.Equal(t, []string{"barely related"}, span)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
