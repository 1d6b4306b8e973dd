package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maarif-labs/maarif/internal/core/domain"
	"github.com/maarif-labs/maarif/internal/scope"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 500, cfg.Chunking.Size)
	assert.Equal(t, 50, cfg.Chunking.Overlap)
	assert.Equal(t, 100, cfg.Chunking.MinSize)
	assert.Equal(t, int64(10<<20), cfg.Chunking.MaxInputBytes)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.7, cfg.Retrieval.SimilarityFloor, 1e-9)
	assert.Equal(t, 2000, cfg.Retrieval.MaxContextChars)
	assert.Equal(t, domain.LanguageArabic, cfg.Org.DefaultLanguage)
	assert.NotEmpty(t, cfg.Scope.Allowlist)
	assert.NotEmpty(t, cfg.Scope.Denylist)
	assert.NoError(t, cfg.Validate())
}

func TestDefaultAllowlistSkipsEnglishPronouns(t *testing.T) {
	cfg := Default()

	// A bare "it" entry would whole-word match the pronoun and let
	// allowlist precedence wave off-topic smalltalk through the gate.
	assert.NotContains(t, cfg.Scope.Allowlist, "it")

	c := scope.New(cfg.Scope.Allowlist, cfg.Scope.Denylist)
	decision := c.ClassifyQuery("is it going to rain tomorrow", domain.LanguageEnglish)
	assert.False(t, decision.InScope)
	assert.Equal(t, domain.ReasonDenylisted, decision.Reason)

	decision = c.ClassifyQuery("information technology support request", domain.LanguageEnglish)
	assert.Equal(t, domain.ReasonAllowlisted, decision.Reason)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Chunking, cfg.Chunking)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[retrieval]
top_k = 3
similarity_floor = 0.4

[org]
default_language = "en"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.4, cfg.Retrieval.SimilarityFloor, 1e-9)
	assert.Equal(t, domain.LanguageEnglish, cfg.Org.DefaultLanguage)
	// Untouched sections keep defaults.
	assert.Equal(t, 500, cfg.Chunking.Size)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[retrieval]
similarity_floor = 1.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	_, err := Load(path)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero chunk size", func(c *Config) { c.Chunking.Size = 0 }},
		{"overlap >= size", func(c *Config) { c.Chunking.Overlap = c.Chunking.Size }},
		{"negative overlap", func(c *Config) { c.Chunking.Overlap = -1 }},
		{"min size above size", func(c *Config) { c.Chunking.MinSize = c.Chunking.Size + 1 }},
		{"grounding threshold above 1", func(c *Config) { c.Scope.GroundingThreshold = 2 }},
		{"bad default language", func(c *Config) { c.Org.DefaultLanguage = "de" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), domain.ErrValidation)
		})
	}
}
