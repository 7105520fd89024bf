package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	LLM       LLMConfig       `toml:"llm"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Tutor     TutorConfig     `toml:"tutor"`
	Observer  ObserverConfig  `toml:"observer"`
}

type DatabaseConfig struct {
	Dir        string `toml:"dir"`
	MaxSizeKB  int64  `toml:"max_size_kb"`
	MaxReaders int    `toml:"max_readers"`
	DebugFlags int    `toml:"debug_flags"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
}

type EmbeddingConfig struct {
	Provider   string `toml:"provider"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
	APIKey     string `toml:"api_key"`
}

type TutorConfig struct {
	HistoryWindow int `toml:"history_window"`
	VectorTopK    int `toml:"vector_top_k"`
}

type ObserverConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Database:  DatabaseConfig{Dir: "data/sage", MaxSizeKB: 1024 * 1024, MaxReaders: 126},
		LLM:       LLMConfig{Provider: "gemini", Model: "gemini-2.5-flash"},
		Embedding: EmbeddingConfig{Provider: "gemini", Model: "gemini-embedding-001", Dimensions: 384},
		Tutor:     TutorConfig{HistoryWindow: 20, VectorTopK: 10},
	}
}

// Load reads config: defaults -> TOML file -> env vars (env wins).
func Load(path string) Config {
	cfg := Default()

	if path == "" {
		path = "sage.toml"
	}

	if data, err := os.ReadFile(path); err == nil {
		_ = toml.Unmarshal(data, &cfg)
	}

	// Env overrides
	if v := os.Getenv("SAGE_DB_DIR"); v != "" {
		cfg.Database.Dir = v
	}
	if v := os.Getenv("SAGE_DB_MAX_SIZE_KB"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Database.MaxSizeKB = n
		}
	}
	if v := os.Getenv("SAGE_DB_DEBUG_FLAGS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Database.DebugFlags = n
		}
	}
	if v := os.Getenv("SAGE_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("SAGE_EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("SAGE_OBSERVER_ENDPOINT"); v != "" {
		cfg.Observer.Endpoint = v
	}
	if os.Getenv("SAGE_OBSERVER_ENABLED") == "true" || os.Getenv("SAGE_OBSERVER_ENABLED") == "1" {
		cfg.Observer.Enabled = true
	}

	// Fallbacks
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = cfg.LLM.APIKey
	}
	if cfg.Embedding.Dimensions <= 0 {
		cfg.Embedding.Dimensions = 384
	}

	return cfg
}
