// Package config loads and validates the fathom configuration.
// Configuration is resolved once at startup and is read-only afterwards;
// every shared component (mode registry, provider set, persona table)
// is built from this immutable snapshot.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	fatherrors "github.com/fathom-search/fathom/internal/errors"
)

// Provider kinds understood by the adapter factory.
const (
	KindKnowledge    = "knowledge"
	KindPrivacy      = "privacy"
	KindSemantic     = "semantic"
	KindAggregator   = "aggregator"
	KindUnrestricted = "unrestricted"
	KindScrape       = "scrape"
)

// Source classes for blend-ratio accounting.
const (
	ClassInternal = "internal"
	ClassWeb      = "web"
)

// Config represents the complete fathom configuration.
type Config struct {
	Version    int                `yaml:"version" json:"version"`
	Server     ServerConfig       `yaml:"server" json:"server"`
	Search     SearchConfig       `yaml:"search" json:"search"`
	Modes      map[string]Mode    `yaml:"modes" json:"modes"`
	Providers  []Provider         `yaml:"providers" json:"providers"`
	Personas   []Persona          `yaml:"personas" json:"personas"`
	Knowledge  KnowledgeConfig    `yaml:"knowledge" json:"knowledge"`
	Summarizer SummarizerConfig   `yaml:"summarizer" json:"summarizer"`
}

// ServerConfig configures the MCP server and logging.
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// ScoringWeights are the relative weights of the composite score terms.
// They must sum to 1.0.
type ScoringWeights struct {
	Relevance   float64 `yaml:"relevance" json:"relevance"`
	Freshness   float64 `yaml:"freshness" json:"freshness"`
	Credibility float64 `yaml:"credibility" json:"credibility"`
	Persona     float64 `yaml:"persona" json:"persona"`
}

// SearchConfig configures ranking, deduplication, and response shaping.
type SearchConfig struct {
	// Weights controls the composite relevance score.
	Weights ScoringWeights `yaml:"weights" json:"weights"`

	// FreshnessLambda is the per-day exponential decay constant.
	// Default ln(2)/30: a result loses half its freshness in 30 days.
	FreshnessLambda float64 `yaml:"freshness_lambda" json:"freshness_lambda"`

	// NeutralFreshness is the freshness assigned to records with an
	// unknown timestamp. Non-zero so undated internal records are not
	// unfairly penalized.
	NeutralFreshness float64 `yaml:"neutral_freshness" json:"neutral_freshness"`

	// TitleSimilarity is the Jaccard threshold for the title dedup pass.
	TitleSimilarity float64 `yaml:"title_similarity" json:"title_similarity"`

	// ContentSimilarity is the TF-IDF cosine threshold for the content dedup pass.
	ContentSimilarity float64 `yaml:"content_similarity" json:"content_similarity"`

	// DefaultK is the result count when the caller omits k.
	DefaultK int `yaml:"default_k" json:"default_k"`

	// MaxK caps the requested result count.
	MaxK int `yaml:"max_k" json:"max_k"`

	// CacheSize is the number of responses kept in the LRU cache (0 disables).
	CacheSize int `yaml:"cache_size" json:"cache_size"`

	// CacheTTLSeconds is how long a cached response stays valid.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds" json:"cache_ttl_seconds"`
}

// Mode is a named latency/provider/blend-ratio policy.
type Mode struct {
	// Providers is the ordered set of provider IDs active in this mode.
	Providers []string `yaml:"providers" json:"providers"`

	// ProviderTimeoutMs bounds each individual provider call.
	ProviderTimeoutMs int `yaml:"provider_timeout_ms" json:"provider_timeout_ms"`

	// OverallDeadlineMs bounds the whole dispatch; pending providers are
	// cancelled when it expires.
	OverallDeadlineMs int `yaml:"overall_deadline_ms" json:"overall_deadline_ms"`

	// BlendRatio is the target share of internal-class records in the
	// returned top-K.
	BlendRatio float64 `yaml:"blend_ratio" json:"blend_ratio"`

	// QueryExpansion enables synonym expansion for lexical providers.
	QueryExpansion bool `yaml:"query_expansion" json:"query_expansion"`

	// RequiresPersona restricts the mode to a single persona when set.
	RequiresPersona string `yaml:"requires_persona" json:"requires_persona"`
}

// ProviderTimeout returns the per-provider timeout as a duration.
func (m Mode) ProviderTimeout() time.Duration {
	return time.Duration(m.ProviderTimeoutMs) * time.Millisecond
}

// OverallDeadline returns the overall dispatch deadline as a duration.
func (m Mode) OverallDeadline() time.Duration {
	return time.Duration(m.OverallDeadlineMs) * time.Millisecond
}

// Provider registers one search backend.
type Provider struct {
	ID       string `yaml:"id" json:"id"`
	Kind     string `yaml:"kind" json:"kind"`
	Class    string `yaml:"class" json:"class"`
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	APIKey   string `yaml:"api_key" json:"api_key"`

	// Credibility is the static source-credibility weight (0-1) used by
	// the scorer.
	Credibility float64 `yaml:"credibility" json:"credibility"`

	// PageFetches is how many result pages the scrape adapter fetches
	// for fuller snippets (scrape kind only).
	PageFetches int `yaml:"page_fetches" json:"page_fetches"`
}

// Persona describes one persona's interests and identity.
type Persona struct {
	ID        string   `yaml:"id" json:"id"`
	Interests []string `yaml:"interests" json:"interests"`
}

// KnowledgeConfig configures the internal knowledge index.
type KnowledgeConfig struct {
	// Backend selects the index implementation: "bleve" (default) or "sqlite".
	Backend string `yaml:"backend" json:"backend"`

	// Path is the on-disk index location. Empty means in-memory.
	Path string `yaml:"path" json:"path"`

	// CorpusPath is an optional JSONL document corpus ingested at startup.
	CorpusPath string `yaml:"corpus_path" json:"corpus_path"`
}

// SummarizerConfig configures the optional result summarizer.
type SummarizerConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	Model     string `yaml:"model" json:"model"`
	APIKey    string `yaml:"api_key" json:"api_key"`
	TimeoutMs int    `yaml:"timeout_ms" json:"timeout_ms"`
}

// Timeout returns the summarizer budget as a duration.
func (s SummarizerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

// NewConfig returns the default configuration: four modes over six
// providers, 30-day freshness half-life, and a bleve in-memory
// knowledge index.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			Transport: "stdio",
			LogLevel:  "info",
		},
		Search: SearchConfig{
			Weights: ScoringWeights{
				Relevance:   0.45,
				Freshness:   0.20,
				Credibility: 0.20,
				Persona:     0.15,
			},
			FreshnessLambda:   math.Ln2 / 30,
			NeutralFreshness:  0.5,
			TitleSimilarity:   0.80,
			ContentSimilarity: 0.85,
			DefaultK:          10,
			MaxK:              50,
			CacheSize:         128,
			CacheTTLSeconds:   60,
		},
		Modes: map[string]Mode{
			"normal": {
				Providers:         []string{"knowledge", "privacy-web"},
				ProviderTimeoutMs: 5000,
				OverallDeadlineMs: 8000,
				BlendRatio:        0.6,
			},
			"deep": {
				Providers:         []string{"knowledge", "privacy-web", "semantic-web", "aggregator-web"},
				ProviderTimeoutMs: 15000,
				OverallDeadlineMs: 20000,
				BlendRatio:        0.4,
				QueryExpansion:    true,
			},
			"deeper": {
				Providers:         []string{"knowledge", "privacy-web", "semantic-web", "aggregator-web", "unrestricted-web", "scraper"},
				ProviderTimeoutMs: 30000,
				OverallDeadlineMs: 40000,
				BlendRatio:        0.3,
				QueryExpansion:    true,
			},
			"uncensored": {
				Providers:         []string{"knowledge", "unrestricted-web"},
				ProviderTimeoutMs: 10000,
				OverallDeadlineMs: 15000,
				BlendRatio:        0.2,
				RequiresPersona:   "raven",
			},
		},
		Providers: []Provider{
			{ID: "knowledge", Kind: KindKnowledge, Class: ClassInternal, Credibility: 0.9},
			{ID: "privacy-web", Kind: KindPrivacy, Class: ClassWeb, Endpoint: "https://api.search.brave.com/res/v1/web/search", Credibility: 0.7},
			{ID: "semantic-web", Kind: KindSemantic, Class: ClassWeb, Endpoint: "https://api.exa.ai/search", Credibility: 0.75},
			{ID: "aggregator-web", Kind: KindAggregator, Class: ClassWeb, Endpoint: "http://localhost:8888/search", Credibility: 0.6},
			{ID: "unrestricted-web", Kind: KindUnrestricted, Class: ClassWeb, Endpoint: "http://localhost:8265/search", Credibility: 0.4},
			{ID: "scraper", Kind: KindScrape, Class: ClassWeb, Endpoint: "http://localhost:8888/search", Credibility: 0.5, PageFetches: 3},
		},
		Personas: []Persona{
			{ID: "default", Interests: nil},
			{ID: "raven", Interests: []string{"security", "privacy", "opsec"}},
		},
		Knowledge: KnowledgeConfig{
			Backend: "bleve",
		},
		Summarizer: SummarizerConfig{
			Enabled:   false,
			Endpoint:  "http://localhost:11434/v1",
			Model:     "llama3.1",
			TimeoutMs: 4000,
		},
	}
}

// Load reads configuration from a YAML file, layering it over defaults
// and applying environment overrides.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fatherrors.New(fatherrors.ErrCodeConfigNotFound,
				fmt.Sprintf("config file not found: %s", path), err)
		}
		return nil, fatherrors.Wrap(fatherrors.ErrCodeConfigInvalid, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fatherrors.New(fatherrors.ErrCodeConfigInvalid,
			fmt.Sprintf("invalid config %s: %v", path, err), err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads the config from path, or from the first of
// ./fathom.yaml and ~/.config/fathom/config.yaml that exists, falling
// back to defaults when no file is found.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	candidates := []string{"fathom.yaml", GetUserConfigPath()}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return Load(c)
		}
	}

	cfg := NewConfig()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetUserConfigDir returns the directory holding the user config file,
// honoring XDG_CONFIG_HOME.
func GetUserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fathom")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fathom"
	}
	return filepath.Join(home, ".config", "fathom")
}

// GetUserConfigPath returns the path of the user config file.
func GetUserConfigPath() string {
	return filepath.Join(GetUserConfigDir(), "config.yaml")
}

// UserConfigExists reports whether the user config file is present.
func UserConfigExists() bool {
	_, err := os.Stat(GetUserConfigPath())
	return err == nil
}

// ApplyEnvOverrides applies FATHOM_* environment variables on top of the
// loaded configuration. Env vars take highest priority.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("FATHOM_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("FATHOM_KNOWLEDGE_BACKEND"); v != "" {
		c.Knowledge.Backend = v
	}
	if v := os.Getenv("FATHOM_SUMMARY_ENDPOINT"); v != "" {
		c.Summarizer.Endpoint = v
	}
	if v := os.Getenv("FATHOM_SUMMARY_MODEL"); v != "" {
		c.Summarizer.Model = v
	}
	if v := os.Getenv("FATHOM_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Search.CacheSize = n
		}
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	w := c.Search.Weights
	sum := w.Relevance + w.Freshness + w.Credibility + w.Persona
	if math.Abs(sum-1.0) > 1e-6 {
		return fatherrors.New(fatherrors.ErrCodeConfigInvalid,
			fmt.Sprintf("scoring weights must sum to 1.0, got %.4f", sum), nil)
	}

	if c.Search.NeutralFreshness <= 0 || c.Search.NeutralFreshness > 1 {
		return fatherrors.New(fatherrors.ErrCodeConfigInvalid,
			"neutral_freshness must be in (0, 1]", nil)
	}
	if c.Search.TitleSimilarity <= 0 || c.Search.TitleSimilarity > 1 {
		return fatherrors.New(fatherrors.ErrCodeConfigInvalid,
			"title_similarity must be in (0, 1]", nil)
	}
	if c.Search.ContentSimilarity <= 0 || c.Search.ContentSimilarity > 1 {
		return fatherrors.New(fatherrors.ErrCodeConfigInvalid,
			"content_similarity must be in (0, 1]", nil)
	}
	if c.Search.DefaultK <= 0 || c.Search.MaxK < c.Search.DefaultK {
		return fatherrors.New(fatherrors.ErrCodeConfigInvalid,
			"default_k must be positive and max_k >= default_k", nil)
	}

	known := make(map[string]struct{}, len(c.Providers))
	for _, p := range c.Providers {
		if p.ID == "" {
			return fatherrors.New(fatherrors.ErrCodeConfigInvalid, "provider id must not be empty", nil)
		}
		if p.Class != ClassInternal && p.Class != ClassWeb {
			return fatherrors.New(fatherrors.ErrCodeConfigInvalid,
				fmt.Sprintf("provider %q has invalid class %q", p.ID, p.Class), nil)
		}
		if p.Credibility < 0 || p.Credibility > 1 {
			return fatherrors.New(fatherrors.ErrCodeConfigInvalid,
				fmt.Sprintf("provider %q credibility must be in [0, 1]", p.ID), nil)
		}
		if _, dup := known[p.ID]; dup {
			return fatherrors.New(fatherrors.ErrCodeConfigInvalid,
				fmt.Sprintf("duplicate provider id %q", p.ID), nil)
		}
		known[p.ID] = struct{}{}
	}

	for name, m := range c.Modes {
		if len(m.Providers) == 0 {
			return fatherrors.New(fatherrors.ErrCodeConfigInvalid,
				fmt.Sprintf("mode %q has no providers", name), nil)
		}
		if m.ProviderTimeoutMs <= 0 || m.OverallDeadlineMs <= 0 {
			return fatherrors.New(fatherrors.ErrCodeConfigInvalid,
				fmt.Sprintf("mode %q timeouts must be positive", name), nil)
		}
		if m.BlendRatio < 0 || m.BlendRatio > 1 {
			return fatherrors.New(fatherrors.ErrCodeConfigInvalid,
				fmt.Sprintf("mode %q blend_ratio must be in [0, 1]", name), nil)
		}
		for _, id := range m.Providers {
			if _, ok := known[id]; !ok {
				return fatherrors.New(fatherrors.ErrCodeConfigInvalid,
					fmt.Sprintf("mode %q references unknown provider %q", name, id), nil)
			}
		}
	}

	return nil
}

// ProviderByID returns the provider registration with the given id.
func (c *Config) ProviderByID(id string) (Provider, bool) {
	for _, p := range c.Providers {
		if p.ID == id {
			return p, true
		}
	}
	return Provider{}, false
}
