package service

import "github.com/jonreiter/govader"

type SentimentServiceInterface interface {
	Polarity(text string) float64
}

// SentimentService scores sentiment with VADER. The analyzer is built
// once at startup and is safe for concurrent read-only use.
type SentimentService struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewSentimentService() *SentimentService {
	return &SentimentService{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Polarity returns the VADER compound score in [-1, 1].
func (s *SentimentService) Polarity(text string) float64 {
	return s.analyzer.PolarityScores(text).Compound
}
