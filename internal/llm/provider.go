package llm

import (
	"strings"
)

const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"

	openRouterKeyPrefix = "sk-or-"

	openAIBaseURL     = "https://api.openai.com/v1"
	openRouterBaseURL = "https://openrouter.ai/api/v1"

	openAIDefaultModel     = "gpt-4o-mini"
	openRouterDefaultModel = "openai/gpt-4o-mini"
)

// Provider is a resolved chat-completion endpoint.
type Provider struct {
	Name    string
	BaseURL string
	Model   string
	APIKey  string
	// Headers are extra request headers the provider expects.
	Headers map[string]string
}

// ResolveProvider picks the provider shape from the credential prefix.
// Keys starting with "sk-or-" select OpenRouter; any other key selects OpenAI.
// Non-empty model and baseURL override the shape defaults.
func ResolveProvider(apiKey, model, baseURL string) (Provider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return Provider{}, &UpstreamError{Kind: KindNotConfigured, Message: "LLM_API_KEY is empty"}
	}

	p := Provider{
		Name:    ProviderOpenAI,
		BaseURL: openAIBaseURL,
		Model:   openAIDefaultModel,
		APIKey:  apiKey,
	}
	if strings.HasPrefix(apiKey, openRouterKeyPrefix) {
		p.Name = ProviderOpenRouter
		p.BaseURL = openRouterBaseURL
		p.Model = openRouterDefaultModel
		p.Headers = map[string]string{"X-Title": "jobmatch-backend"}
	}
	if m := strings.TrimSpace(model); m != "" {
		p.Model = m
	}
	if u := strings.TrimSpace(baseURL); u != "" {
		p.BaseURL = strings.TrimRight(u, "/")
	}
	return p, nil
}

// ChatCompletionsURL returns the POST endpoint for the provider.
func (p Provider) ChatCompletionsURL() string {
	return strings.TrimRight(p.BaseURL, "/") + "/chat/completions"
}
