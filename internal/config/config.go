package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// LLMConfig configures one model endpoint, either the embedder or the chat model.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai" or "ollama"
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

// RAGConfig configures chunking and retrieval.
type RAGConfig struct {
	ChunkSize     int     `yaml:"chunk_size"`
	ChunkOverlap  int     `yaml:"chunk_overlap"`
	TopK          int     `yaml:"top_k"`
	MinSimilarity float32 `yaml:"min_similarity"`
	DataDir       string  `yaml:"data_dir"`
	InMemory      bool    `yaml:"in_memory"`
}

// DBConfig configures the optional Postgres archive.
type DBConfig struct {
	Enabled    bool   `yaml:"enabled"`
	URL        string `yaml:"url"`
	Key        string `yaml:"key"`
	Debug      bool   `yaml:"debug"`
	Retrieve   bool   `yaml:"retrieve"` // serve retrieval from Postgres instead of the in-memory index
	VectorSize int    `yaml:"vector_size"`
}

type Config struct {
	EmbedLLM LLMConfig `yaml:"embed_llm"`
	ChatLLM  LLMConfig `yaml:"chat_llm"`
	RAG      RAGConfig `yaml:"rag"`
	Database DBConfig  `yaml:"database"`
}

// defaultConfig is the baseline the yaml file is decoded over. Decoding only
// touches keys present in the file, so an explicit zero (chunk_overlap: 0,
// in_memory: false) survives as written.
func defaultConfig() *Config {
	return &Config{
		EmbedLLM: LLMConfig{Provider: "openai", Model: "text-embedding-3-small"},
		ChatLLM:  LLMConfig{Provider: "openai", Model: "gpt-4o-mini"},
		RAG: RAGConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			TopK:         5,
			DataDir:      "./data",
			InMemory:     true,
		},
		Database: DBConfig{VectorSize: 768},
	}
}

// LoadConfig reads the yaml config over the defaults. A missing file yields
// plain defaults so the tool runs with nothing but OPENAI_API_KEY in the
// environment.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fillEnvKeys(cfg)
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	// a persistent index needs somewhere to live
	if cfg.RAG.DataDir == "" {
		cfg.RAG.DataDir = "./data"
	}
	fillEnvKeys(cfg)
	return cfg, nil
}

func fillEnvKeys(cfg *Config) {
	if cfg.EmbedLLM.Key == "" {
		cfg.EmbedLLM.Key = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.ChatLLM.Key == "" {
		cfg.ChatLLM.Key = os.Getenv("OPENAI_API_KEY")
	}
}
