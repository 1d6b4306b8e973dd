// Package config defines the engine's immutable configuration. A Config is
// constructed once at process start (defaults, optionally overridden by a
// TOML file) and passed into each component's constructor; components never
// read ambient global state.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/maarif-labs/maarif/internal/core/domain"
)

// Config is the complete engine configuration.
type Config struct {
	Org       OrgConfig       `toml:"org"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Scope     ScopeConfig     `toml:"scope"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Generator GeneratorConfig `toml:"generator"`
	Index     IndexConfig     `toml:"index"`
	Storage   StorageConfig   `toml:"storage"`
	Audit     AuditConfig     `toml:"audit"`
	Watcher   WatcherConfig   `toml:"watcher"`
}

// OrgConfig identifies the organisation the assistant serves.
type OrgConfig struct {
	// Name is the organisation name interpolated into prompts.
	Name string `toml:"name"`

	// AssistantName is the assistant's self-identification.
	AssistantName string `toml:"assistant_name"`

	// DefaultLanguage is used when detection is inconclusive.
	DefaultLanguage domain.Language `toml:"default_language"`
}

// ChunkingConfig controls document splitting.
type ChunkingConfig struct {
	// Size is the target chunk size in characters.
	Size int `toml:"size"`

	// Overlap is the number of characters shared between consecutive
	// chunks.
	Overlap int `toml:"overlap"`

	// MinSize is the minimum viable chunk size; a trailing fragment
	// below it is merged into the previous chunk.
	MinSize int `toml:"min_size"`

	// MaxInputBytes is the raw content ceiling for ingestion.
	MaxInputBytes int64 `toml:"max_input_bytes"`
}

// RetrievalConfig controls search and context assembly.
type RetrievalConfig struct {
	// TopK is the maximum number of chunks retrieved per query.
	TopK int `toml:"top_k"`

	// SimilarityFloor excludes chunks scoring below it, even if topK
	// is not filled.
	SimilarityFloor float64 `toml:"similarity_floor"`

	// MaxContextChars bounds the assembled generator context.
	MaxContextChars int `toml:"max_context_chars"`
}

// ScopeConfig parameterises the two-sided scope gate. The topic taxonomy
// and grounding threshold are policy parameters, not fixed algorithms.
type ScopeConfig struct {
	// Allowlist are organisational topic keywords; a match admits the
	// query regardless of denylist matches.
	Allowlist []string `toml:"allowlist"`

	// Denylist are disallowed topic keywords.
	Denylist []string `toml:"denylist"`

	// AllowUnmatched admits queries matching neither list. The
	// post-generation grounding gate remains the fail-closed boundary.
	AllowUnmatched bool `toml:"allow_unmatched"`

	// GroundingThreshold is the minimum fraction of answer content
	// tokens that must be supported by source chunks.
	GroundingThreshold float64 `toml:"grounding_threshold"`
}

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	// Provider is "ollama" or "openai".
	Provider string `toml:"provider"`

	// BaseURL is the provider endpoint.
	BaseURL string `toml:"base_url"`

	// APIKey authenticates cloud providers.
	APIKey string `toml:"api_key"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// Dimensions is the vector size; fixed system-wide.
	Dimensions int `toml:"dimensions"`

	// Timeout bounds one embedding call.
	Timeout time.Duration `toml:"timeout"`

	// RequestsPerSecond throttles backend calls. Zero disables.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// GeneratorConfig selects and tunes the language-generation backend.
type GeneratorConfig struct {
	// Provider is "ollama" or "openai".
	Provider string `toml:"provider"`

	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`

	// Temperature keeps generation conservative by default.
	Temperature float64 `toml:"temperature"`

	// MaxTokens bounds the generated answer.
	MaxTokens int `toml:"max_tokens"`

	// Timeout bounds one generation call. Generation is never retried.
	Timeout time.Duration `toml:"timeout"`
}

// IndexConfig selects the vector index backend.
type IndexConfig struct {
	// Provider is "memory" or "qdrant".
	Provider string `toml:"provider"`

	// URL is the Qdrant endpoint.
	URL string `toml:"url"`

	// APIKey authenticates Qdrant.
	APIKey string `toml:"api_key"`

	// Collection is the Qdrant collection name.
	Collection string `toml:"collection"`

	// Timeout bounds one index call.
	Timeout time.Duration `toml:"timeout"`
}

// StorageConfig locates the document store.
type StorageConfig struct {
	// DataDir holds the SQLite database. Empty defaults to
	// ~/.maarif/data.
	DataDir string `toml:"data_dir"`
}

// AuditConfig locates the audit sink.
type AuditConfig struct {
	// Path is the JSONL audit file. Empty disables auditing.
	Path string `toml:"path"`
}

// WatcherConfig controls hot-folder ingestion.
type WatcherConfig struct {
	// Dir is the drop directory to watch.
	Dir string `toml:"dir"`

	// SettleDelay is how long a file must be quiet before ingestion,
	// so partially written files are not picked up.
	SettleDelay time.Duration `toml:"settle_delay"`
}

// Default returns the configuration with all engine defaults applied.
func Default() Config {
	return Config{
		Org: OrgConfig{
			Name:            "الهيئة",
			AssistantName:   "المُساعِد الرقمي",
			DefaultLanguage: domain.LanguageArabic,
		},
		Chunking: ChunkingConfig{
			Size:          500,
			Overlap:       50,
			MinSize:       100,
			MaxInputBytes: 10 << 20,
		},
		Retrieval: RetrievalConfig{
			TopK:            5,
			SimilarityFloor: 0.7,
			MaxContextChars: 2000,
		},
		Scope: ScopeConfig{
			Allowlist:          defaultAllowlist,
			Denylist:           defaultDenylist,
			AllowUnmatched:     true,
			GroundingThreshold: 0.5,
		},
		Embedding: EmbeddingConfig{
			Provider:   "ollama",
			BaseURL:    "http://localhost:11434",
			Model:      "nomic-embed-text",
			Dimensions: 768,
			Timeout:    30 * time.Second,
		},
		Generator: GeneratorConfig{
			Provider:    "ollama",
			BaseURL:     "http://localhost:11434",
			Model:       "llama3.2",
			Temperature: 0.1,
			MaxTokens:   1000,
			Timeout:     60 * time.Second,
		},
		Index: IndexConfig{
			Provider:   "memory",
			Collection: "organizational_knowledge",
			Timeout:    15 * time.Second,
		},
		Watcher: WatcherConfig{
			SettleDelay: 2 * time.Second,
		},
	}
}

// Load reads a TOML file over the defaults. A missing path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("%w: chunking.size must be positive", domain.ErrValidation)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("%w: chunking.overlap must be in [0, size)", domain.ErrValidation)
	}
	if c.Chunking.MinSize < 0 || c.Chunking.MinSize > c.Chunking.Size {
		return fmt.Errorf("%w: chunking.min_size must be in [0, size]", domain.ErrValidation)
	}
	if c.Retrieval.SimilarityFloor < 0 || c.Retrieval.SimilarityFloor > 1 {
		return fmt.Errorf("%w: retrieval.similarity_floor must be in [0, 1]", domain.ErrValidation)
	}
	if c.Scope.GroundingThreshold < 0 || c.Scope.GroundingThreshold > 1 {
		return fmt.Errorf("%w: scope.grounding_threshold must be in [0, 1]", domain.ErrValidation)
	}
	if !c.Org.DefaultLanguage.IsValid() {
		return fmt.Errorf("%w: org.default_language must be ar or en", domain.ErrValidation)
	}
	return nil
}
