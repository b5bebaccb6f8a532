package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/a-h/matchmaker/models"
	"github.com/tmc/langchaingo/llms"
)

const jsonInstructions = `

Reply with a single JSON object with the string fields "personality", "idealPartner" and "song", and the string array fields "mustHaves" and "nextSteps".`

func NewLLM(llm llms.Model, model, instructions string) LLM {
	return LLM{
		llm:          llm,
		model:        model,
		instructions: instructions,
		MaxTokens:    1500,
	}
}

// LLM summarises through any langchaingo model, for providers without
// structured output. If the model does not return a usable JSON profile, its
// text is used as the summary.
type LLM struct {
	llm          llms.Model
	model        string
	instructions string
	MaxTokens    int
}

func (s LLM) Summarize(ctx context.Context, history []models.ChatMessage) (summary string, err error) {
	payload, err := transcriptPayload(history)
	if err != nil {
		return "", err
	}
	opts := []llms.CallOption{
		llms.WithMaxTokens(s.MaxTokens),
		llms.WithJSONMode(),
	}
	if s.model != "" {
		opts = append(opts, llms.WithModel(s.model))
	}
	resp, err := s.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, s.instructions+jsonInstructions),
		llms.TextParts(llms.ChatMessageTypeHuman, payload),
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("summarizer: completion failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", fmt.Errorf("summarizer: completion returned no choices")
	}
	text := resp.Choices[0].Content
	var p Profile
	if err = decodeModelJSON(text, &p); err == nil && p.Personality != "" {
		return p.Render(), nil
	}
	if text = strings.TrimSpace(text); text == "" {
		return "", fmt.Errorf("summarizer: completion was empty")
	}
	return text, nil
}
