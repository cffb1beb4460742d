package config

import (
	"log"
	"os"
	"strconv"
	"sync"
)

// AnalysisConfig holds the tunables of the evaluation pipeline. The
// defaults mirror the values the extractor ships with; environment
// variables override them per deployment.
type AnalysisConfig struct {
	SimilarityThreshold float64
	ContextMargin       int
}

var (
	analysisConfig *AnalysisConfig
	analysisOnce   sync.Once
)

func LoadAnalysisConfig() *AnalysisConfig {
	analysisOnce.Do(func() {
		threshold := 0.4
		if raw := os.Getenv("SIMILARITY_THRESHOLD"); raw != "" {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				log.Printf("Warning: invalid SIMILARITY_THRESHOLD %q, using %v", raw, threshold)
			} else {
				threshold = parsed
			}
		}
		margin := 1
		if raw := os.Getenv("CONTEXT_MARGIN"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				log.Printf("Warning: invalid CONTEXT_MARGIN %q, using %d", raw, margin)
			} else {
				margin = parsed
			}
		}
		analysisConfig = &AnalysisConfig{
			SimilarityThreshold: threshold,
			ContextMargin:       margin,
		}
	})
	return analysisConfig
}
