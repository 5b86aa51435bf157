// Package config loads the service configuration from a TOML file with
// environment variable overrides. There is no ambient global state: the
// loaded struct is passed explicitly into the pipeline constructors.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultHost                = "0.0.0.0"
	DefaultPort                = 8081
	DefaultChunkSize           = 1000
	DefaultChunkOverlap        = 200
	DefaultTopK                = 5
	DefaultSimilarityThreshold = 0.7
	DefaultDocumentsPath       = "./documents"
	DefaultRegistryPath        = "./data/registry.db"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ChunkingConfig configures how documents are split.
type ChunkingConfig struct {
	ChunkSize    int `toml:"chunk_size"`
	ChunkOverlap int `toml:"chunk_overlap"`
}

// SearchConfig holds retrieval defaults.
type SearchConfig struct {
	TopK                int     `toml:"top_k"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "ollama" (default) or "openai".
	Provider string `toml:"provider"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `toml:"base_url"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// APIKeyEnv names the environment variable holding the API key
	// (OpenAI only; default OPENAI_API_KEY).
	APIKeyEnv string `toml:"api_key_env"`

	// Dimensions is the embedding vector size. Zero means the provider's
	// default for the model.
	Dimensions int `toml:"dimensions"`

	// TimeoutSecs is the per-request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs"`

	// RequestsPerSecond throttles embedding calls (Ollama only).
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// QdrantConfig contains connection details for the Qdrant vector store.
type QdrantConfig struct {
	URL         string `toml:"url"`
	APIKey      string `toml:"api_key"`
	Collection  string `toml:"collection"`
	TimeoutSecs int    `toml:"timeout_secs"`
}

// DocumentsConfig configures the documents directory.
type DocumentsConfig struct {
	// Path is the directory holding loadable files, laid out as
	// <asignatura>/<tipo_documento>/<file>.
	Path string `toml:"path"`

	// Watch enables auto-indexing of files created under Path.
	Watch bool `toml:"watch"`
}

// RegistryConfig configures the document registry database.
type RegistryConfig struct {
	Path string `toml:"path"`
}

// Config is the root service configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Search    SearchConfig    `toml:"search"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Qdrant    QdrantConfig    `toml:"qdrant"`
	Documents DocumentsConfig `toml:"documents"`
	Registry  RegistryConfig  `toml:"registry"`
}

// Load reads configuration from the given TOML file, falling back to
// defaults when the file does not exist, then applies environment
// overrides. A .env file in the working directory is loaded first when
// present.
func Load(path string) (*Config, error) {
	// Missing .env is fine; malformed .env is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

// EmbeddingTimeout returns the configured embedding timeout.
func (c *Config) EmbeddingTimeout() time.Duration {
	return time.Duration(c.Embedding.TimeoutSecs) * time.Second
}

// QdrantTimeout returns the configured vector store timeout.
func (c *Config) QdrantTimeout() time.Duration {
	return time.Duration(c.Qdrant.TimeoutSecs) * time.Second
}

func defaults() *Config {
	return &Config{
		Server:    ServerConfig{Host: DefaultHost, Port: DefaultPort},
		Chunking:  ChunkingConfig{ChunkSize: DefaultChunkSize, ChunkOverlap: DefaultChunkOverlap},
		Search:    SearchConfig{TopK: DefaultTopK, SimilarityThreshold: DefaultSimilarityThreshold},
		Embedding: EmbeddingConfig{Provider: "ollama"},
		Documents: DocumentsConfig{Path: DefaultDocumentsPath},
		Registry:  RegistryConfig{Path: DefaultRegistryPath},
	}
}

// applyEnv overlays environment variables onto the config. Variable names
// match the original deployment environment.
func applyEnv(cfg *Config) {
	setString(&cfg.Qdrant.URL, "QDRANT_URL")
	setString(&cfg.Qdrant.APIKey, "QDRANT_API_KEY")
	setString(&cfg.Qdrant.Collection, "QDRANT_COLLECTION")
	setString(&cfg.Embedding.Provider, "EMBEDDING_PROVIDER")
	setString(&cfg.Embedding.BaseURL, "OLLAMA_URL")
	setString(&cfg.Embedding.Model, "OLLAMA_EMBEDDING_MODEL")
	setString(&cfg.Documents.Path, "DOCUMENTS_PATH")
	setString(&cfg.Registry.Path, "REGISTRY_PATH")
	setInt(&cfg.Server.Port, "RAG_API_PORT")
	setInt(&cfg.Chunking.ChunkSize, "CHUNK_SIZE")
	setInt(&cfg.Chunking.ChunkOverlap, "CHUNK_OVERLAP")
	setInt(&cfg.Search.TopK, "RAG_TOP_K")
	setFloat(&cfg.Search.SimilarityThreshold, "RAG_SIMILARITY_THRESHOLD")
}

// applyDefaults fills gaps left by a partial config file.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Chunking.ChunkSize == 0 {
		cfg.Chunking.ChunkSize = DefaultChunkSize
	}
	if cfg.Search.TopK == 0 {
		cfg.Search.TopK = DefaultTopK
	}
	if cfg.Search.SimilarityThreshold == 0 {
		cfg.Search.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "ollama"
	}
	if cfg.Embedding.Provider == "openai" && cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Documents.Path == "" {
		cfg.Documents.Path = DefaultDocumentsPath
	}
	if cfg.Registry.Path == "" {
		cfg.Registry.Path = DefaultRegistryPath
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
