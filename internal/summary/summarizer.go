// Package summary condenses a blended result set into a short prose
// summary via an OpenAI-compatible chat endpoint (Ollama, llama.cpp,
// vLLM, or hosted APIs).
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/fathom-search/fathom/internal/config"
	"github.com/fathom-search/fathom/internal/search"
)

const systemPrompt = `You summarize web and knowledge-base search results.
Write 2-3 plain sentences covering what the top results say about the query.
Mention disagreements between sources when they exist. No markdown, no preamble.`

// maxResultsInPrompt bounds the prompt size regardless of k.
const maxResultsInPrompt = 8

// Summarizer implements search.Summarizer against a chat model.
type Summarizer struct {
	client llms.Model
	model  string
}

// New builds a summarizer from configuration. The token defaults to
// "none" for local OpenAI-compatible services without authentication.
func New(cfg config.SummarizerConfig) (*Summarizer, error) {
	token := cfg.APIKey
	if token == "" {
		token = "none"
	}
	client, err := openai.New(
		openai.WithBaseURL(cfg.Endpoint),
		openai.WithToken(token),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("summarizer client: %w", err)
	}
	return &Summarizer{client: client, model: cfg.Model}, nil
}

// Summarize implements search.Summarizer.
func (s *Summarizer) Summarize(ctx context.Context, query string, results []search.Result) (string, error) {
	if len(results) == 0 {
		return "", nil
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(buildPrompt(query, results))},
		},
	}

	response, err := s.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}
	if len(response.Choices) == 0 {
		slog.Debug("summarizer returned no choices", slog.String("model", s.model))
		return "", nil
	}
	return strings.TrimSpace(response.Choices[0].Content), nil
}

// buildPrompt renders the query and top results as a compact plain-text
// block for the model.
func buildPrompt(query string, results []search.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n\nResults:\n", query)
	n := len(results)
	if n > maxResultsInPrompt {
		n = maxResultsInPrompt
	}
	for i := 0; i < n; i++ {
		r := results[i]
		fmt.Fprintf(&b, "%d. %s", i+1, r.Title)
		if r.URL != "" {
			fmt.Fprintf(&b, " (%s)", r.URL)
		}
		b.WriteString("\n")
		if r.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", r.Snippet)
		}
	}
	return b.String()
}
