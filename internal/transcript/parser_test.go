package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSplitsTurns(t *testing.T) {
	raw := "Manish Bulchandani (02/28/2025, 03:39 AM): Good morning! Thanks for joining us today. " +
		"Rohit Sharma (02/28/2025, 03:39 AM): Good morning! Thank you for having me. " +
		"Manish Bulchandani (02/28/2025, 03:40 AM): Can you tell me about a project you're proud of?"

	turns, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, turns, 3)

	assert.Equal(t, "Manish Bulchandani", turns[0].Speaker)
	assert.Equal(t, "Good morning! Thanks for joining us today.", turns[0].Text)
	assert.Equal(t, 0, turns[0].Index)

	assert.Equal(t, "Rohit Sharma", turns[1].Speaker)
	assert.Equal(t, "Good morning! Thank you for having me.", turns[1].Text)
	assert.Equal(t, 1, turns[1].Index)

	assert.Equal(t, "Manish Bulchandani", turns[2].Speaker)
	assert.Equal(t, "Can you tell me about a project you're proud of?", turns[2].Text)
	assert.Equal(t, 2, turns[2].Index)
}

func TestParseMultilineUtterance(t *testing.T) {
	raw := "Rohit Sharma (02/28/2025, 03:39 AM): I worked on microservices.\nThen I moved to the ML team."

	turns, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "I worked on microservices.\nThen I moved to the ML team.", turns[0].Text)
}

func TestParseNoTurns(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t"},
		{"no timestamps", "just a plain chat without any headers"},
		{"wrong timestamp format", "Rohit [2025-02-28 03:39]: hello"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			turns, err := Parse(tc.raw)
			assert.Nil(t, turns)
			assert.ErrorIs(t, err, ErrNoTurns)
		})
	}
}
