package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderFactory_ByName(t *testing.T) {
	factory := NewProviderFactory("openai-key", "gemini-key")

	provider, err := factory.GetProvider(context.Background(), "", "OpenAI")
	require.NoError(t, err)
	assert.Equal(t, "openai", provider.Name())

	provider, err = factory.GetProvider(context.Background(), "", "gemini")
	require.NoError(t, err)
	assert.Equal(t, "gemini", provider.Name())

	_, err = factory.GetProvider(context.Background(), "", "anthropic")
	assert.ErrorContains(t, err, "unknown provider")
}

func TestProviderFactory_ByModel(t *testing.T) {
	factory := NewProviderFactory("openai-key", "gemini-key")

	tests := []struct {
		model string
		want  string
	}{
		{model: "gpt-4o-mini", want: "openai"},
		{model: "o3-mini", want: "openai"},
		{model: "gemini-2.5-flash", want: "gemini"},
		{model: "", want: "gemini"},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			provider, err := factory.GetProvider(context.Background(), tt.model, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, provider.Name())
		})
	}
}

func TestProviderFactory_MissingKeys(t *testing.T) {
	factory := NewProviderFactory("", "")

	_, err := factory.GetProvider(context.Background(), "gpt-4o", "")
	assert.ErrorContains(t, err, "openai API key not configured")

	_, err = factory.GetProvider(context.Background(), "", "gemini")
	assert.ErrorContains(t, err, "gemini API key not configured")
}
