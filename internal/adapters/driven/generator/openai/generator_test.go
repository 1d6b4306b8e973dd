package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maarif-labs/maarif/internal/core/domain"
	"github.com/maarif-labs/maarif/internal/core/ports/driven"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGenerate(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "the answer"}},
			},
		})
	}))
	defer server.Close()

	g, err := New(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	answer, err := g.Generate(context.Background(), driven.GenerationRequest{
		Instruction: "system prompt",
		Context:     "some context",
		Query:       "the question",
		Language:    domain.LanguageEnglish,
	})
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system prompt", captured.Messages[0].Content)
}

func TestGenerate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limit exceeded", "type": "rate_limit"},
		})
	}))
	defer server.Close()

	g, err := New(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), driven.GenerationRequest{Query: "q"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeneratorUnavailable)
	assert.Contains(t, err.Error(), "rate limit exceeded")
}

func TestGenerate_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	g, err := New(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), driven.GenerationRequest{Query: "q"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeneratorUnavailable)
}
