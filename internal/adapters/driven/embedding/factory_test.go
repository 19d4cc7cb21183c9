package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServiceOllama(t *testing.T) {
	svc, err := NewService(Settings{Provider: ProviderOllama, Model: "nomic-embed-text", Dimensions: 768})
	require.NoError(t, err)
	defer svc.Close()
	assert.Equal(t, "nomic-embed-text", svc.ModelName())
	assert.Equal(t, 768, svc.Dimensions())
}

func TestNewServiceOpenAI(t *testing.T) {
	svc, err := NewService(Settings{Provider: ProviderOpenAI, APIKey: "test-key"})
	require.NoError(t, err)
	defer svc.Close()
	assert.Equal(t, "text-embedding-3-small", svc.ModelName())
}

func TestNewServiceOpenAIRequiresKey(t *testing.T) {
	_, err := NewService(Settings{Provider: ProviderOpenAI})
	assert.Error(t, err)
}

func TestNewServiceUnknownProvider(t *testing.T) {
	_, err := NewService(Settings{Provider: "huggingface"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported embedding provider")
}
