package llm

import (
	"context"
)

// Completer sends one prompt to a hosted chat-completion model and returns the reply text.
// Implementations return *UpstreamError for every failure.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// NotConfigured is the Completer used when no provider credentials are present.
// It never touches the network.
type NotConfigured struct{}

// Complete returns ErrNotConfigured.
func (NotConfigured) Complete(context.Context, string) (string, error) {
	return "", &UpstreamError{Kind: KindNotConfigured, Message: "no llm credentials configured"}
}

// Configured reports whether c can reach a provider.
func Configured(c Completer) bool {
	if c == nil {
		return false
	}
	_, placeholder := c.(NotConfigured)
	return !placeholder
}
