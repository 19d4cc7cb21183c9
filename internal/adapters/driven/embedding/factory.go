// Package embedding provides factory functions for creating embedding
// service adapters.
package embedding

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/evidex/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/evidex/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/evidex/internal/core/domain"
	"github.com/custodia-labs/evidex/internal/core/ports/driven"
)

// Supported providers.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Settings selects and configures an embedding provider.
type Settings struct {
	Provider       string
	Model          string
	BaseURL        string
	APIKey         string
	Dimensions     int
	RequestsPerSec float64
}

// NewService creates the appropriate embedding service for the settings.
func NewService(settings Settings) (driven.EmbeddingService, error) {
	switch settings.Provider {
	case ProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:        settings.BaseURL,
			Model:          settings.Model,
			Dimensions:     settings.Dimensions,
			RequestsPerSec: settings.RequestsPerSec,
		}), nil

	case ProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:         settings.APIKey,
			BaseURL:        settings.BaseURL,
			Model:          settings.Model,
			Dimensions:     settings.Dimensions,
			RequestsPerSec: settings.RequestsPerSec,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %q", settings.Provider)
	}
}

// NewValidatedService creates an embedding service and validates
// connectivity before handing it out.
func NewValidatedService(settings Settings) (driven.EmbeddingService, error) {
	svc, err := NewService(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable: %v", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}
