package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	_ "embed"

	"github.com/tidwall/gjson"
)

// Judgment is the structured result of the LLM fitment evaluation. The
// five primary keys are always marshalled, so callers never have to check
// for their existence; a nil value serializes as JSON null. Error and
// RawResponse are only set when the LLM response could not be used.
type Judgment struct {
	ExperienceMatch   *int64   `json:"experience_match"`
	KeyStrengths      []string `json:"key_strengths"`
	MissingSkills     []string `json:"missing_skills"`
	ComplexityHandled *int64   `json:"complexity_handled"`
	OverallFitScore   *int64   `json:"overall_fit_score"`
	Error             string   `json:"error,omitempty"`
	RawResponse       string   `json:"raw_response,omitempty"`
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model, systemPrompt, prompt string) (string, error)
}

// Judge turns an extracted experience span and a job description into a
// Judgment via one LLM call. The model output is untrusted free text, so
// every parsing stage is defensive: a malformed response becomes a
// Judgment that carries its own error, never a returned error. Only a
// transport failure on the LLM call itself is returned to the caller.
type Judge struct {
	llm          contentGenerator
	model        string
	systemPrompt string
}

//go:embed prompt.md
var promptTemplate string

const (
	noExperienceMessage = "No relevant experience found in the transcript."

	defaultSystemPrompt = "You are an experienced technical recruiter evaluating interview transcripts."

	// rawResponsePreviewLen bounds the diagnostic snippet kept on parse failure.
	rawResponsePreviewLen = 500
)

func NewJudge(llm contentGenerator, model string) *Judge {
	return &Judge{
		llm:          llm,
		model:        model,
		systemPrompt: defaultSystemPrompt,
	}
}

// Evaluate judges the candidate's extracted experience against the job
// description. An empty span short-circuits without invoking the LLM.
func (j *Judge) Evaluate(ctx context.Context, span []string, jobDescription string) (*Judgment, error) {
	if len(span) == 0 {
		return &Judgment{Error: noExperienceMessage}, nil
	}

	prompt := buildPrompt(jobDescription, strings.Join(span, " "))

	raw, err := j.llm.GenerateContent(ctx, j.model, j.systemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("llm generate content: %w", err)
	}

	return parseJudgment(raw), nil
}

func buildPrompt(jobDescription, experienceText string) string {
	prompt := strings.ReplaceAll(promptTemplate, "{{JOB_DESCRIPTION}}", jobDescription)
	return strings.ReplaceAll(prompt, "{{EXPERIENCE}}", experienceText)
}

// lineComments matches //-style comments the model sometimes hallucinates
// into its "JSON" output.
var lineComments = regexp.MustCompile(`//[^\n]*`)

// parseJudgment normalizes an untrusted LLM response into a Judgment. The
// stages run in order: strip markdown fences, strip line comments, probe
// with encoding/json, and if that fails retry on the first-{ to last-}
// substring. A response that survives none of them yields a Judgment with
// the parse error and a truncated copy of the cleaned text.
func parseJudgment(raw string) *Judgment {
	cleaned := stripCodeFence(strings.TrimSpace(raw))
	cleaned = strings.TrimSpace(lineComments.ReplaceAllString(cleaned, ""))

	parseable, err := probeJSON(cleaned)
	if err != nil {
		// A reply that cleans to nothing (a bare fence, only comments)
		// would leave an empty diagnostic; fall back to the original.
		preview := cleaned
		if preview == "" {
			preview = strings.TrimSpace(raw)
		}
		return &Judgment{
			Error:       fmt.Sprintf("Failed to parse LLM response: %v", err),
			RawResponse: truncate(preview, rawResponsePreviewLen),
		}
	}

	judgment := &Judgment{}
	if v := gjson.Get(parseable, "experience_match"); v.Exists() && v.Type != gjson.Null {
		n := v.Int()
		judgment.ExperienceMatch = &n
	}
	judgment.KeyStrengths = stringList(gjson.Get(parseable, "key_strengths"))
	judgment.MissingSkills = stringList(gjson.Get(parseable, "missing_skills"))
	if v := gjson.Get(parseable, "complexity_handled"); v.Exists() && v.Type != gjson.Null {
		n := v.Int()
		judgment.ComplexityHandled = &n
	}
	if v := gjson.Get(parseable, "overall_fit_score"); v.Exists() && v.Type != gjson.Null {
		n := v.Int()
		judgment.OverallFitScore = &n
	}
	return judgment
}

// probeJSON returns a substring of cleaned that parses as a JSON object,
// falling back to greedy brace extraction when the full text does not.
func probeJSON(cleaned string) (string, error) {
	var probe map[string]any
	firstErr := json.Unmarshal([]byte(cleaned), &probe)
	if firstErr == nil {
		return cleaned, nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return "", firstErr
	}

	candidate := cleaned[start : end+1]
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return "", firstErr
	}
	return candidate, nil
}

// stripCodeFence removes a leading/trailing markdown fence, handling both
// the ```json form and the bare ``` form.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)
	if idx := strings.LastIndex(text, "```"); idx != -1 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func stringList(v gjson.Result) []string {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	items := v.Array()
	list := make([]string, 0, len(items))
	for _, item := range items {
		list = append(list, item.String())
	}
	return list
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
