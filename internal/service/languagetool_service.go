package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fadilmartias/interview-analyzer/internal/analyzer"
	"github.com/fadilmartias/interview-analyzer/internal/config"
	"github.com/go-resty/resty/v2"
)

type LanguageToolServiceInterface interface {
	Check(ctx context.Context, text string) ([]analyzer.GrammarIssue, error)
}

// LanguageToolService checks grammar through a LanguageTool server,
// either the public API or a self-hosted instance.
type LanguageToolService struct {
	client   *resty.Client
	language string
}

func NewLanguageToolService() *LanguageToolService {
	cfg := config.LoadLanguageToolConfig()
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(30 * time.Second)
	return &LanguageToolService{
		client:   client,
		language: cfg.Language,
	}
}

type languageToolResponse struct {
	Matches []struct {
		Message string `json:"message"`
		Offset  int    `json:"offset"`
		Length  int    `json:"length"`
	} `json:"matches"`
}

func (s *LanguageToolService) Check(ctx context.Context, text string) ([]analyzer.GrammarIssue, error) {
	var parsed languageToolResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"text":     text,
			"language": s.language,
		}).
		SetResult(&parsed).
		Post("/v2/check")
	if err != nil {
		return nil, fmt.Errorf("languagetool check: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("languagetool check: unexpected status %s", resp.Status())
	}

	issues := make([]analyzer.GrammarIssue, 0, len(parsed.Matches))
	for _, match := range parsed.Matches {
		issues = append(issues, analyzer.GrammarIssue{
			Message: match.Message,
			Offset:  match.Offset,
			Length:  match.Length,
		})
	}
	return issues, nil
}
