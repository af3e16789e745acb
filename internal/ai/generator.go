// Package ai wraps the LLM providers behind small generation interfaces.
package ai

import (
	"context"
	"strings"
)

// TextGenerator generates text from a system prompt and user prompt.
// All providers (Gemini, OpenAI-compatible) implement this interface.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// JSONGenerator is implemented by providers that can constrain the response
// to a JSON document.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// GenerateJSON uses the provider's JSON mode when available, otherwise falls
// back to plain generation and strips any markdown code fence.
func GenerateJSON(ctx context.Context, gen TextGenerator, systemPrompt, userPrompt string) (string, error) {
	if jg, ok := gen.(JSONGenerator); ok {
		return jg.GenerateJSON(ctx, systemPrompt, userPrompt)
	}
	out, err := gen.GenerateText(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}
	return StripCodeFence(out), nil
}

// StripCodeFence removes a surrounding ```json ... ``` fence if present.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
