package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Data      DataConfig      `yaml:"data"`
	Chunking  ChunkingConfig  `yaml:"chunking,omitempty"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Store     StoreConfig     `yaml:"store,omitempty"`
	Search    SearchConfig    `yaml:"search,omitempty"`
	Prompt    PromptConfig    `yaml:"prompt,omitempty"`
}

// DataConfig holds raw and cleaned dataset locations and batch sizing
type DataConfig struct {
	Input     string `yaml:"input,omitempty"`      // Raw complaint CSV (glob patterns allowed)
	Output    string `yaml:"output,omitempty"`     // Cleaned complaint CSV
	BatchSize int    `yaml:"batch_size,omitempty"` // Rows per batch when streaming the CSV
}

// ChunkingConfig holds narrative chunking parameters
type ChunkingConfig struct {
	ChunkSize    int  `yaml:"chunk_size,omitempty"`    // Max characters per chunk
	ChunkOverlap int  `yaml:"chunk_overlap,omitempty"` // Overlapping characters between chunks
	StripSpecial bool `yaml:"strip_special"`           // Strip characters outside the embedding-safe set
}

// EmbeddingConfig holds embedding service configuration
type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // "openai" | "volcengine"

	// VolcEngine specific
	APIKey   string `yaml:"api_key,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Model    string `yaml:"model,omitempty"`

	// OpenAI specific
	OpenAIAPIKey string `yaml:"openai_api_key,omitempty"`
	OpenAIModel  string `yaml:"openai_model,omitempty"`

	// Embedding parameters
	Dimensions int `yaml:"dimensions,omitempty"` // Vector dimension of the model
	BatchSize  int `yaml:"batch_size,omitempty"` // Batch size per embedding request
}

// ModelName returns the model identity recorded in the index manifest.
// Build-time and query-time embeddings must come from the same model.
func (c *EmbeddingConfig) ModelName() string {
	if c.Provider == "openai" {
		return c.OpenAIModel
	}
	return c.Model
}

// LLMConfig holds answer generation (chat completion) configuration
type LLMConfig struct {
	APIKey      string  `yaml:"api_key"`
	Endpoint    string  `yaml:"endpoint,omitempty"` // OpenAI-compatible chat completions endpoint
	Model       string  `yaml:"model,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
	TimeoutSecs int     `yaml:"timeout_secs,omitempty"`
}

// StoreConfig holds the persisted index location
type StoreConfig struct {
	// Directory holding the index; one sqlite file per collection.
	// If empty, uses ~/.complaintrag/data
	Location   string `yaml:"location,omitempty"`
	Collection string `yaml:"collection,omitempty"`
}

// SearchConfig holds retrieval configuration
type SearchConfig struct {
	DefaultTopK int `yaml:"default_top_k,omitempty"` // Default number of chunks to retrieve
}

// PromptConfig holds prompt assembly configuration
type PromptConfig struct {
	MaxContextChars int `yaml:"max_context_chars,omitempty"` // Character budget for the evidence block
}

// Load loads configuration from the default config file
// Default location: ~/.complaintrag/config/complaintrag.yaml
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".complaintrag", "config", "complaintrag.yaml")
	return LoadFromFile(configPath)
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			homeDir, _ := os.UserHomeDir()
			defaultPath := filepath.Join(homeDir, ".complaintrag", "config", "complaintrag.yaml")
			return nil, &ConfigNotFoundError{
				RequestedPath: path,
				DefaultPath:   defaultPath,
			}
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ConfigNotFoundError is returned when config file is not found
type ConfigNotFoundError struct {
	RequestedPath string
	DefaultPath   string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found at: %s\n\nDefault location: %s\n\nYou can:\n"+
		"  1. Create the config file at the default location\n"+
		"  2. Specify a custom path with -config flag",
		e.RequestedPath, e.DefaultPath)
}

// IsConfigNotFound checks if error is config not found
func IsConfigNotFound(err error) bool {
	_, ok := err.(*ConfigNotFoundError)
	return ok
}

// expandPath expands ~ and $HOME to the user's home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "$HOME/") || path == "$HOME" {
		homeDir := os.Getenv("HOME")
		if homeDir == "" {
			var err error
			homeDir, err = os.UserHomeDir()
			if err != nil {
				return path
			}
		}
		if path == "$HOME" {
			return homeDir
		}
		return filepath.Join(homeDir, path[6:])
	}

	if strings.HasPrefix(path, "~/") || path == "~" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return homeDir
		}
		return filepath.Join(homeDir, path[2:])
	}

	return path
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Data.BatchSize == 0 {
		c.Data.BatchSize = 100000
	}

	if c.Chunking.ChunkSize == 0 {
		c.Chunking.ChunkSize = 500
	}
	if c.Chunking.ChunkOverlap == 0 && c.Chunking.ChunkSize > 50 {
		c.Chunking.ChunkOverlap = 50
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Provider == "openai" && c.Embedding.OpenAIModel == "" {
		c.Embedding.OpenAIModel = "text-embedding-3-small"
	}
	if c.Embedding.Provider == "volcengine" && c.Embedding.Model == "" {
		c.Embedding.Model = "doubao-embedding-text-240715"
	}
	if c.Embedding.Dimensions == 0 {
		if c.Embedding.Provider == "openai" {
			c.Embedding.Dimensions = 1536
		} else {
			c.Embedding.Dimensions = 2048
		}
	}
	if c.Embedding.BatchSize == 0 {
		c.Embedding.BatchSize = 32
	}

	if c.LLM.Endpoint == "" {
		c.LLM.Endpoint = "https://api.openai.com/v1/chat/completions"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.2
	}
	if c.LLM.TimeoutSecs == 0 {
		c.LLM.TimeoutSecs = 120
	}

	if c.Store.Location == "" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			c.Store.Location = filepath.Join(homeDir, ".complaintrag", "data")
		}
	} else {
		c.Store.Location = expandPath(c.Store.Location)
	}
	if c.Store.Collection == "" {
		c.Store.Collection = "complaint_chunks"
	}

	if c.Search.DefaultTopK == 0 {
		c.Search.DefaultTopK = 5
	}

	if c.Prompt.MaxContextChars == 0 {
		c.Prompt.MaxContextChars = 3000
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case "volcengine":
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("volcengine provider requires api_key")
		}
	case "openai":
		if c.Embedding.OpenAIAPIKey == "" {
			return fmt.Errorf("openai provider requires openai_api_key")
		}
	default:
		return fmt.Errorf("unsupported embedding provider: %s", c.Embedding.Provider)
	}

	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive, got: %d", c.Embedding.Dimensions)
	}
	if c.Embedding.BatchSize <= 0 || c.Embedding.BatchSize > 2048 {
		return fmt.Errorf("embedding batch_size must be between 1 and 2048, got: %d", c.Embedding.BatchSize)
	}

	if c.Data.BatchSize <= 0 {
		return fmt.Errorf("data batch_size must be positive, got: %d", c.Data.BatchSize)
	}

	if c.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got: %d", c.Chunking.ChunkSize)
	}
	if c.Chunking.ChunkOverlap < 0 || c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("chunk_overlap must satisfy 0 <= overlap < chunk_size, got: %d", c.Chunking.ChunkOverlap)
	}

	if c.Search.DefaultTopK <= 0 {
		return fmt.Errorf("default_top_k must be positive, got: %d", c.Search.DefaultTopK)
	}
	if c.Prompt.MaxContextChars <= 0 {
		return fmt.Errorf("max_context_chars must be positive, got: %d", c.Prompt.MaxContextChars)
	}

	return nil
}

const defaultConfigTemplate = `# complaintrag configuration
#
# Copy and edit this file for your environment.
# Default location: $HOME/.complaintrag/config/complaintrag.yaml

data:
  # Raw CFPB complaint export(s); glob patterns like data/raw/*.csv work
  input: data/raw/complaints.csv
  output: data/interim/filtered_complaints.csv
  batch_size: 100000

chunking:
  chunk_size: 500
  chunk_overlap: 50
  strip_special: true

embedding:
  # Provider: "openai" or "volcengine"
  provider: openai
  openai_api_key: your-openai-api-key
  openai_model: text-embedding-3-small
  dimensions: 1536
  batch_size: 32

  # VolcEngine configuration (alternative)
  # provider: volcengine
  # api_key: your-volcengine-api-key
  # endpoint: https://ark.cn-beijing.volces.com/api/v3
  # model: doubao-embedding-text-240715
  # dimensions: 2048

llm:
  api_key: your-llm-api-key
  endpoint: https://api.openai.com/v1/chat/completions
  model: gpt-4o-mini
  temperature: 0.2

store:
  location: $HOME/.complaintrag/data
  collection: complaint_chunks

search:
  default_top_k: 5

prompt:
  max_context_chars: 3000
`

// WriteDefaultTemplate creates a default configuration file if it does not exist.
// It returns true if a file was created, false if it already existed.
func WriteDefaultTemplate(path string) (bool, error) {
	if path == "" {
		return false, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0644); err != nil {
		return false, fmt.Errorf("failed to write config template: %w", err)
	}

	return true, nil
}
