// Command maarif is the bilingual organizational knowledge assistant.
// It wires the configured adapters into the content and query services
// and hands control to the CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/maarif-labs/maarif/internal/adapters/driven/audit/jsonl"
	ollamaembed "github.com/maarif-labs/maarif/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/maarif-labs/maarif/internal/adapters/driven/embedding/openai"
	ollamagen "github.com/maarif-labs/maarif/internal/adapters/driven/generator/ollama"
	openaigen "github.com/maarif-labs/maarif/internal/adapters/driven/generator/openai"
	indexmemory "github.com/maarif-labs/maarif/internal/adapters/driven/index/memory"
	"github.com/maarif-labs/maarif/internal/adapters/driven/index/qdrant"
	"github.com/maarif-labs/maarif/internal/adapters/driven/storage/sqlite"
	"github.com/maarif-labs/maarif/internal/adapters/driving/cli"
	"github.com/maarif-labs/maarif/internal/chunker"
	"github.com/maarif-labs/maarif/internal/config"
	"github.com/maarif-labs/maarif/internal/core/ports/driven"
	"github.com/maarif-labs/maarif/internal/core/services"
	"github.com/maarif-labs/maarif/internal/extractors"
	"github.com/maarif-labs/maarif/internal/scope"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	defer embedder.Close()

	generator, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	defer generator.Close()

	index, err := newIndex(cfg, embedder.Dimensions())
	if err != nil {
		return err
	}
	defer index.Close()

	store, err := sqlite.New(cfg.Storage.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	var audit driven.AuditSink
	if cfg.Audit.Path != "" {
		audit, err = jsonl.New(cfg.Audit.Path)
		if err != nil {
			return err
		}
		defer audit.Close()
	}

	classifier := scope.New(cfg.Scope.Allowlist, cfg.Scope.Denylist,
		scope.WithAllowUnmatched(cfg.Scope.AllowUnmatched),
		scope.WithGroundingThreshold(cfg.Scope.GroundingThreshold),
	)

	splitter := chunker.New(
		chunker.WithSize(cfg.Chunking.Size),
		chunker.WithOverlap(cfg.Chunking.Overlap),
		chunker.WithMinSize(cfg.Chunking.MinSize),
	)

	contentOpts := []services.ContentOption{
		services.WithMaxInputBytes(cfg.Chunking.MaxInputBytes),
	}
	queryOpts := []services.QueryOption{
		services.WithTopK(cfg.Retrieval.TopK),
		services.WithMaxContextChars(cfg.Retrieval.MaxContextChars),
		services.WithOrganization(cfg.Org.Name, cfg.Org.AssistantName),
		services.WithDefaultLanguage(cfg.Org.DefaultLanguage),
	}
	if audit != nil {
		contentOpts = append(contentOpts, services.WithAuditSink(audit))
		queryOpts = append(queryOpts, services.WithQueryAudit(audit))
	}

	content := services.NewContentService(store, index, embedder, extractors.Default(), splitter, contentOpts...)
	query := services.NewQueryService(index, embedder, generator, classifier, queryOpts...)

	cli.SetConfig(cfg)
	cli.SetServices(content, query)
	cli.SetVersion(version)
	return cli.Execute()
}

// configPath resolves the configuration file: MAARIF_CONFIG wins,
// otherwise ~/.maarif/config.toml.
func configPath() string {
	if path := os.Getenv("MAARIF_CONFIG"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".maarif", "config.toml")
}

func newEmbedder(cfg config.Config) (driven.EmbeddingProvider, error) {
	switch cfg.Embedding.Provider {
	case "", "ollama":
		return ollamaembed.New(ollamaembed.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Timeout:    cfg.Embedding.Timeout,
			Dimensions: cfg.Embedding.Dimensions,
			RateLimit:  int(cfg.Embedding.RequestsPerSecond),
		}), nil
	case "openai":
		return openaiembed.New(openaiembed.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Timeout:    cfg.Embedding.Timeout,
			Dimensions: cfg.Embedding.Dimensions,
			RateLimit:  int(cfg.Embedding.RequestsPerSecond),
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}

func newGenerator(cfg config.Config) (driven.Generator, error) {
	switch cfg.Generator.Provider {
	case "", "ollama":
		return ollamagen.New(ollamagen.Config{
			BaseURL:     cfg.Generator.BaseURL,
			Model:       cfg.Generator.Model,
			Timeout:     cfg.Generator.Timeout,
			Temperature: cfg.Generator.Temperature,
			MaxTokens:   cfg.Generator.MaxTokens,
		}), nil
	case "openai":
		return openaigen.New(openaigen.Config{
			APIKey:      cfg.Generator.APIKey,
			BaseURL:     cfg.Generator.BaseURL,
			Model:       cfg.Generator.Model,
			Timeout:     cfg.Generator.Timeout,
			Temperature: cfg.Generator.Temperature,
			MaxTokens:   cfg.Generator.MaxTokens,
		})
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Generator.Provider)
	}
}

func newIndex(cfg config.Config, dimensions int) (driven.VectorIndex, error) {
	switch cfg.Index.Provider {
	case "", "memory":
		return indexmemory.New(dimensions,
			indexmemory.WithSimilarityFloor(cfg.Retrieval.SimilarityFloor)), nil
	case "qdrant":
		return qdrant.New(context.Background(), qdrant.Config{
			BaseURL:         cfg.Index.URL,
			APIKey:          cfg.Index.APIKey,
			Collection:      cfg.Index.Collection,
			Dimensions:      dimensions,
			SimilarityFloor: cfg.Retrieval.SimilarityFloor,
			Timeout:         cfg.Index.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown index provider %q", cfg.Index.Provider)
	}
}
