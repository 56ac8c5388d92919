package internal

import (
	"fmt"
	"os"

	"github.com/creditrust/complaintrag/internal/config"
)

// LoadConfig loads configuration from an explicit path, or from the
// default location when the path is empty.
func LoadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// PrintConfigExample writes a minimal starter configuration to stderr.
func PrintConfigExample() {
	homeDir, _ := os.UserHomeDir()
	configPath := fmt.Sprintf("%s/.complaintrag/config/complaintrag.yaml", homeDir)

	fmt.Fprintf(os.Stderr, `Create a configuration file at %s:

# Embedding service configuration (required)
embedding:
  # Provider: "openai" | "volcengine"
  provider: openai
  openai_api_key: your-openai-api-key
  openai_model: text-embedding-3-small
  dimensions: 1536
  batch_size: 32

# Completion model for answering questions
llm:
  api_key: your-openai-api-key
  model: gpt-4o-mini

# Data pipeline
data:
  input: complaints.csv
  output: cleaned.csv

Usage:
  1. Create the config file
  2. Clean the raw export: complaintrag clean
  3. Build the index: complaintrag index
  4. Ask: complaintrag ask "your question"
`, configPath)
}
