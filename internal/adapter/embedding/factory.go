package embedding

import (
	"fmt"

	"faqbot/config"
	"faqbot/internal/port"
)

// New creates the embedder selected by cfg.
func New(cfg config.EmbeddingConfig) (port.Embedder, error) {
	switch cfg.Provider {
	case "hashing", "":
		return NewHashingEmbedder(cfg.Dimension), nil
	case "openai":
		return NewOpenAICompatibleEmbedder(cfg.APIKeyEnv, cfg.Model, cfg.BaseURL)
	case "ollama":
		return NewOllamaEmbedder(cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
