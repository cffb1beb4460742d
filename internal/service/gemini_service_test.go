package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerOpensBeforeAnyCall(t *testing.T) {
	svc := &GeminiService{circuitBreakerMax: 2}
	svc.consecutiveErrors.Store(2)

	// Client is nil, so reaching the API would panic; the open breaker
	// has to short-circuit first.
	_, err := svc.GenerateContent(context.Background(), "gemini-2.5-flash", "", "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")

	_, err = svc.GenerateEmbeddings(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")

	n, open := svc.GetCircuitBreakerStatus()
	assert.Equal(t, 2, n)
	assert.True(t, open)

	svc.ResetCircuitBreaker()
	n, open = svc.GetCircuitBreakerStatus()
	assert.Zero(t, n)
	assert.False(t, open)
}

func TestCircuitBreakerConcurrentAccess(t *testing.T) {
	// A zero max keeps the breaker open no matter what the goroutines
	// do to the counter, so none of them ever reaches the nil client.
	svc := &GeminiService{circuitBreakerMax: 0}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 4 {
			case 0:
				_, err := svc.GenerateContent(context.Background(), "gemini-2.5-flash", "", "prompt")
				assert.Error(t, err)
			case 1:
				_, err := svc.GenerateEmbeddings(context.Background(), []string{"text"})
				assert.Error(t, err)
			case 2:
				svc.ResetCircuitBreaker()
			default:
				svc.GetCircuitBreakerStatus()
			}
		}(i)
	}
	wg.Wait()
}

func TestGenerateContentValidatesInput(t *testing.T) {
	svc := &GeminiService{circuitBreakerMax: 5}

	_, err := svc.GenerateContent(context.Background(), "", "", "prompt")
	assert.ErrorContains(t, err, "model name cannot be empty")

	_, err = svc.GenerateContent(context.Background(), "gemini-2.5-flash", "", "   ")
	assert.ErrorContains(t, err, "prompt cannot be empty")
}

func TestTruncateOnRuneBoundary(t *testing.T) {
	assert.Equal(t, "short", truncateOnRuneBoundary("short", 10))

	exact := strings.Repeat("a", 10)
	assert.Equal(t, exact, truncateOnRuneBoundary(exact, 10))

	// Two-byte runes: an odd limit lands mid-sequence and must back up.
	accented := strings.Repeat("é", 8)
	got := truncateOnRuneBoundary(accented, 9)
	assert.Equal(t, strings.Repeat("é", 4), got)
	assert.True(t, utf8.ValidString(got))

	// Four-byte runes.
	emoji := strings.Repeat("🙂", 5)
	got = truncateOnRuneBoundary(emoji, 10)
	assert.Equal(t, strings.Repeat("🙂", 2), got)
	assert.True(t, utf8.ValidString(got))
}
