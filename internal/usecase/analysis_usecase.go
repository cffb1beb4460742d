package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fadilmartias/interview-analyzer/internal/analyzer"
	"github.com/fadilmartias/interview-analyzer/internal/transcript"
)

// ErrMissingJobDescription is returned when the request carries no job
// description to evaluate against.
var ErrMissingJobDescription = errors.New("job description is required")

// AnalysisResult is the composite evaluation of one transcript: the
// LLM-derived fitment judgment and the rule-based quality report. The two
// fields share no state once built.
type AnalysisResult struct {
	ExperienceAnalysis *analyzer.Judgment      `json:"experience_analysis"`
	SentimentAnalysis  *analyzer.QualityReport `json:"sentiment_analysis"`
}

type experienceExtractor interface {
	Extract(ctx context.Context, utterances []transcript.Utterance) ([]string, error)
}

type fitJudge interface {
	Evaluate(ctx context.Context, span []string, jobDescription string) (*analyzer.Judgment, error)
}

type qualityScorer interface {
	Score(ctx context.Context, text string) *analyzer.QualityReport
}

// AnalysisUsecase sequences the evaluation pipeline: parse the transcript
// into turns, extract the experience span, judge it against the job
// description, and score communication quality on the raw text. It is the
// only component that knows about all the others.
type AnalysisUsecase struct {
	extractor experienceExtractor
	judge     fitJudge
	scorer    qualityScorer
}

func NewAnalysisUsecase(extractor experienceExtractor, judge fitJudge, scorer qualityScorer) *AnalysisUsecase {
	return &AnalysisUsecase{extractor: extractor, judge: judge, scorer: scorer}
}

// Analyze evaluates a raw transcript against a job description. Soft
// failures (unusable LLM output, empty quality input) are captured inside
// the branch records; only an unparseable transcript or an unreachable
// upstream surfaces as an error. Extraction and judging work on the parsed
// turns, while quality scoring always runs over the full raw text so both
// speakers contribute to the linguistic signals.
func (uc *AnalysisUsecase) Analyze(ctx context.Context, rawTranscript, jobDescription string) (*AnalysisResult, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, ErrMissingJobDescription
	}

	turns, err := transcript.Parse(rawTranscript)
	if err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}

	span, err := uc.extractor.Extract(ctx, turns)
	if err != nil {
		return nil, fmt.Errorf("extract experience: %w", err)
	}

	judgment, err := uc.judge.Evaluate(ctx, span, jobDescription)
	if err != nil {
		return nil, fmt.Errorf("judge experience: %w", err)
	}

	report := uc.scorer.Score(ctx, rawTranscript)

	return &AnalysisResult{
		ExperienceAnalysis: judgment,
		SentimentAnalysis:  report,
	}, nil
}
