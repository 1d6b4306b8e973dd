package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maarif-labs/maarif/internal/core/domain"
)

// newTestServer returns an Ollama stub that records incoming prompts
// and answers with a fixed-size embedding.
func newTestServer(t *testing.T, dims int, prompts *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embeddings", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*prompts = append(*prompts, req.Prompt)

		embedding := make([]float64, dims)
		for i := range embedding {
			embedding[i] = 0.1
		}
		json.NewEncoder(w).Encode(embedResponse{Embedding: embedding})
	}))
}

func TestNew_Defaults(t *testing.T) {
	p := New(Config{})
	assert.Equal(t, DefaultModel, p.ModelName())
	assert.Equal(t, DefaultDimensions, p.Dimensions())
}

func TestEmbed(t *testing.T) {
	var prompts []string
	server := newTestServer(t, 4, &prompts)
	defer server.Close()

	p := New(Config{BaseURL: server.URL, Dimensions: 4})

	vec, err := p.Embed(context.Background(), "annual leave policy", domain.LanguageEnglish)
	require.NoError(t, err)
	assert.Len(t, vec, 4)
	require.Len(t, prompts, 1)
	assert.Equal(t, "annual leave policy", prompts[0])
}

func TestEmbed_NormalisesArabic(t *testing.T) {
	var prompts []string
	server := newTestServer(t, 4, &prompts)
	defer server.Close()

	p := New(Config{BaseURL: server.URL, Dimensions: 4})

	_, err := p.Embed(context.Background(), "الإِجَازَة", domain.LanguageArabic)
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Equal(t, "الاجازه", prompts[0])
}

func TestEmbed_DimensionMismatch(t *testing.T) {
	var prompts []string
	server := newTestServer(t, 8, &prompts)
	defer server.Close()

	p := New(Config{BaseURL: server.URL, Dimensions: 4})

	_, err := p.Embed(context.Background(), "text", domain.LanguageEnglish)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestEmbed_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	p := New(Config{BaseURL: server.URL, Dimensions: 4})

	_, err := p.Embed(context.Background(), "text", domain.LanguageEnglish)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbed_Unreachable(t *testing.T) {
	p := New(Config{BaseURL: "http://127.0.0.1:1", Dimensions: 4})

	_, err := p.Embed(context.Background(), "text", domain.LanguageEnglish)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbedBatch(t *testing.T) {
	var prompts []string
	server := newTestServer(t, 4, &prompts)
	defer server.Close()

	p := New(Config{BaseURL: server.URL, Dimensions: 4})

	vecs, err := p.EmbedBatch(context.Background(), []string{"one", "two", "three"}, domain.LanguageEnglish)
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, []string{"one", "two", "three"}, prompts)
}
