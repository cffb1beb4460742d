package transcript

import (
	"errors"
	"regexp"
	"strings"
)

// Utterance is one speaker turn in a parsed transcript. Index is the
// position of the turn in the conversation; Speaker is informational only.
type Utterance struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Index   int    `json:"index"`
}

// ErrNoTurns is returned when no speaker/timestamp header matches the
// expected transcript format.
var ErrNoTurns = errors.New("transcript does not match the expected speaker/timestamp format")

// turnHeader matches headers like "John Smith (02/28/2025, 03:39 AM): ".
// The utterance text runs from the end of one header to the start of the next.
var turnHeader = regexp.MustCompile(`([\w][\w\s]*?) \(\d{2}/\d{2}/\d{4}, \d{2}:\d{2} [APM]{2}\): `)

// Parse splits raw transcript text into ordered utterances. Go's regexp
// engine has no lookahead, so instead of matching whole turns we locate
// every header and slice the text between consecutive headers.
func Parse(raw string) ([]Utterance, error) {
	matches := turnHeader.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return nil, ErrNoTurns
	}

	utterances := make([]Utterance, 0, len(matches))
	for i, m := range matches {
		speaker := strings.TrimSpace(raw[m[2]:m[3]])

		end := len(raw)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		text := strings.TrimSpace(raw[m[1]:end])

		utterances = append(utterances, Utterance{
			Speaker: speaker,
			Text:    text,
			Index:   i,
		})
	}

	return utterances, nil
}
