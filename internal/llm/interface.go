// internal/llm/interface.go
package llm

import (
	"context"
	"errors"
)

var ErrUnknownProvider = errors.New("unknown AI provider")

// CompletionRequest is the normalized request shape for every provider.
type CompletionRequest struct {
	Prompt       string   `json:"prompt"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
	MaxTokens    int      `json:"max_tokens,omitempty"`
	Temperature  float32  `json:"temperature,omitempty"`
	Model        string   `json:"model,omitempty"`
	StopWords    []string `json:"stop_words,omitempty"`

	// JSONMode asks the gateway to constrain output to a JSON object.
	JSONMode bool `json:"json_mode,omitempty"`
}

// CompletionResponse is the normalized response shape. FinishReason is
// surfaced so callers can treat truncation ("length") as a hard failure
// instead of silently accepting a cut-off document.
type CompletionResponse struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason,omitempty"`
	TokensUsed   int    `json:"tokens_used,omitempty"`
	PromptTokens int    `json:"prompt_tokens,omitempty"`
	OutputTokens int    `json:"output_tokens,omitempty"`
	ModelName    string `json:"model_name,omitempty"`
	ProviderName string `json:"provider_name,omitempty"`
}

// Provider is the contract every LLM backend implements.
type Provider interface {
	Initialize(config map[string]string) error
	GetName() string
	CompleteText(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

type ProviderFactory func() Provider

var providers = make(map[string]ProviderFactory)

// Register registers a provider factory under a name.
func Register(name string, factory ProviderFactory) {
	providers[name] = factory
}

// GetProvider creates and initializes the named provider.
func GetProvider(name string, config map[string]string) (Provider, error) {
	factory, exists := providers[name]
	if !exists {
		return nil, ErrUnknownProvider
	}

	provider := factory()
	if err := provider.Initialize(config); err != nil {
		return nil, err
	}
	return provider, nil
}

// ListProviders returns all registered provider names.
func ListProviders() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	return names
}
