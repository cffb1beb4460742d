package config

import (
	"os"
	"sync"
)

type LanguageToolConfig struct {
	BaseURL  string
	Language string
}

var (
	languageToolConfig *LanguageToolConfig
	languageToolOnce   sync.Once
)

func LoadLanguageToolConfig() *LanguageToolConfig {
	languageToolOnce.Do(func() {
		baseURL := os.Getenv("LANGUAGETOOL_URL")
		if baseURL == "" {
			baseURL = "https://api.languagetool.org"
		}
		language := os.Getenv("LANGUAGETOOL_LANGUAGE")
		if language == "" {
			language = "en-US"
		}
		languageToolConfig = &LanguageToolConfig{
			BaseURL:  baseURL,
			Language: language,
		}
	})
	return languageToolConfig
}
