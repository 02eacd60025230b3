package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/edilaw/normakit/ai"
	"gopkg.in/yaml.v3"
)

// AIConfig configures the embedding and re-ranking services.
type AIConfig struct {
	Host           string `yaml:"host"`
	EmbeddingModel string `yaml:"embedding_model"`
	EmbeddingDim   int    `yaml:"embedding_dim"`
	RerankModel    string `yaml:"rerank_model"`
	RerankHost     string `yaml:"rerank_host,omitempty"`
	Degraded       bool   `yaml:"degraded"` // skip the embedding service, keyword-only mode
}

// ChunkingConfig configures the document processor geometry.
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// RetrievalConfig configures the retrieval pipeline.
type RetrievalConfig struct {
	TopK           int     `yaml:"top_k"`
	KeywordWeight  float32 `yaml:"keyword_weight"`
	ScoreThreshold float32 `yaml:"score_threshold"`
	Rerank         bool    `yaml:"rerank"`
}

// AppConfig is the root application configuration.
type AppConfig struct {
	DataDir   string          `yaml:"data_dir"`
	AI        AIConfig        `yaml:"ai"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
}

// Load reads a config from path. A missing file returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Save writes the config to path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the configuration used when no file is present: a local
// OpenAI-compatible service and the retrieval tuning the system ships with.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.DataDir == "" {
		cfg.DataDir = "./data/normative"
	}
	if cfg.AI.Host == "" {
		cfg.AI.Host = "http://localhost:11434/v1"
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = "paraphrase-multilingual"
	}
	if cfg.AI.EmbeddingDim == 0 {
		cfg.AI.EmbeddingDim = ai.DefaultEmbeddingDim
	}
	if cfg.Chunking.ChunkSize == 0 {
		cfg.Chunking.ChunkSize = 1000
	}
	if cfg.Chunking.ChunkOverlap == 0 {
		cfg.Chunking.ChunkOverlap = 200
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.KeywordWeight == 0 {
		cfg.Retrieval.KeywordWeight = 0.3
	}
	if cfg.Retrieval.ScoreThreshold == 0 {
		cfg.Retrieval.ScoreThreshold = 0.7
	}
}

// AIServiceConfig translates the YAML AI section into the ai package's
// configuration. Returns nil in degraded mode, which callers treat as "no
// embedding service".
func (c *AppConfig) AIServiceConfig() *ai.Config {
	if c.AI.Degraded {
		return nil
	}
	opts := []ai.ConfigOption{
		ai.WithHost(c.AI.Host),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithEmbeddingDim(c.AI.EmbeddingDim),
		ai.WithRerankModel(c.AI.RerankModel),
	}
	if c.AI.RerankHost != "" {
		opts = append(opts, ai.WithRerankHost(c.AI.RerankHost))
	}
	cfg := ai.NewConfig(opts...)
	if c.AI.RerankModel == "" {
		cfg.RerankHost = ""
	}
	return cfg
}
