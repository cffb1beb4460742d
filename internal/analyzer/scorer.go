package analyzer

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
)

// GrammarIssue is one finding from the grammar-checking pass. Offsets are
// reported by the checker but unused by the scorer.
type GrammarIssue struct {
	Message string
	Offset  int
	Length  int
}

// QualityReport is the rule-based communication-quality assessment of a
// transcript: filler-word density, sentiment polarity, and grammar
// accuracy combined into one weighted score.
type QualityReport struct {
	FillerWords          map[string]int `json:"filler_words"`
	FillerWordPercentage float64        `json:"filler_word_percentage"`
	PolarityScore        float64        `json:"polarity_score"`
	OverallSentiment     string         `json:"overall_sentiment"`
	GrammarMistakes      []string       `json:"grammar_mistakes"`
	GrammarAccuracy      float64        `json:"grammar_accuracy"`
	OverallScore         float64        `json:"overall_score"`
	Error                string         `json:"error,omitempty"`
}

// ScoreWeights is the policy for combining the three sub-scores. The
// remaining 0.1 of headroom is intentionally unallocated.
type ScoreWeights struct {
	Sentiment float64
	Grammar   float64
	Filler    float64
}

var DefaultScoreWeights = ScoreWeights{Sentiment: 0.4, Grammar: 0.3, Filler: 0.2}

// DefaultFillerWords is the tracked filler-word catalog. Tokenization is
// whitespace-based, so the multi-word "you know" entry never accumulates a
// count; it is kept for catalog parity with the upstream analyzer.
var DefaultFillerWords = []string{
	"uh", "um", "like", "you know", "actually", "basically", "literally", "so", "right",
}

// noiseTerms mark grammar messages that are artifacts of transcript
// formatting rather than real mistakes.
var noiseTerms = []string{"whitespace", "consecutive spaces", "too many spaces", "extra space"}

type grammarChecker interface {
	Check(ctx context.Context, text string) ([]GrammarIssue, error)
}

type polarityScorer interface {
	Polarity(text string) float64
}

// Scorer computes a QualityReport from raw transcript text. It holds no
// request state; the grammar and sentiment collaborators are process-wide
// and shared across concurrent requests.
type Scorer struct {
	grammar   grammarChecker
	sentiment polarityScorer
	fillers   map[string]struct{}
	weights   ScoreWeights
}

// NewScorer builds a Scorer. A nil filler slice selects DefaultFillerWords
// and a zero-valued weights struct selects DefaultScoreWeights.
func NewScorer(grammar grammarChecker, sentiment polarityScorer, fillers []string, weights ScoreWeights) *Scorer {
	if fillers == nil {
		fillers = DefaultFillerWords
	}
	if weights == (ScoreWeights{}) {
		weights = DefaultScoreWeights
	}
	set := make(map[string]struct{}, len(fillers))
	for _, w := range fillers {
		set[w] = struct{}{}
	}
	return &Scorer{
		grammar:   grammar,
		sentiment: sentiment,
		fillers:   set,
		weights:   weights,
	}
}

// Score analyzes the given text. Empty or whitespace-only input yields a
// report carrying an explicit error instead of a division by zero. A
// grammar-checker transport failure degrades the report (error recorded,
// accuracy treated as clean) rather than failing the request.
func (s *Scorer) Score(ctx context.Context, text string) *QualityReport {
	if strings.TrimSpace(text) == "" {
		return &QualityReport{Error: "Empty text provided."}
	}

	words := strings.Fields(strings.ToLower(text))
	totalWords := len(words)

	fillerCounts := make(map[string]int)
	fillerTotal := 0
	for _, word := range words {
		if _, ok := s.fillers[word]; ok {
			fillerCounts[word]++
			fillerTotal++
		}
	}
	fillerPercentage := 0.0
	if totalWords > 0 {
		fillerPercentage = round2(float64(fillerTotal) / float64(totalWords) * 100)
	}

	polarity := round3(s.sentiment.Polarity(text))

	report := &QualityReport{
		FillerWords:          fillerCounts,
		FillerWordPercentage: fillerPercentage,
		PolarityScore:        polarity,
		OverallSentiment:     sentimentLabel(polarity),
	}

	mistakes, err := s.grammarMistakes(ctx, text)
	if err != nil {
		report.Error = fmt.Sprintf("grammar check failed: %v", err)
		mistakes = []string{}
	}
	report.GrammarMistakes = mistakes

	report.GrammarAccuracy = 100
	if totalWords > 0 {
		report.GrammarAccuracy = round2(100 - float64(len(mistakes))/float64(totalWords)*100)
	}

	report.OverallScore = round2(
		s.weights.Sentiment*((polarity+1)/2*100) +
			s.weights.Grammar*report.GrammarAccuracy +
			s.weights.Filler*(100-fillerPercentage))

	return report
}

// grammarMistakes runs the grammar pass, drops whitespace-noise findings,
// and deduplicates by message text. The result is sorted so identical
// input always produces an identical report.
func (s *Scorer) grammarMistakes(ctx context.Context, text string) ([]string, error) {
	issues, err := s.grammar.Check(ctx, text)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(issues))
	mistakes := make([]string, 0, len(issues))
	for _, issue := range issues {
		if isNoiseMessage(issue.Message) {
			continue
		}
		if _, dup := seen[issue.Message]; dup {
			continue
		}
		seen[issue.Message] = struct{}{}
		mistakes = append(mistakes, issue.Message)
	}
	sort.Strings(mistakes)
	return mistakes, nil
}

func isNoiseMessage(message string) bool {
	lower := strings.ToLower(message)
	for _, term := range noiseTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func sentimentLabel(polarity float64) string {
	switch {
	case polarity > 0.1:
		return "Positive"
	case polarity < -0.1:
		return "Negative"
	default:
		return "Neutral"
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
