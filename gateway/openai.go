package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
	"github.com/tmc/langchaingo/llms"
)

// NewChatCompletions creates an llms.Model that calls the OpenAI chat
// completions endpoint. model is used when a call does not set one.
func NewChatCompletions(client *openai.Client, model string) *ChatCompletions {
	return &ChatCompletions{
		client: client,
		model:  model,
	}
}

// ChatCompletions sends every sampling parameter in the call options,
// including zero values, so top_p and frequency_penalty are always on the
// wire.
type ChatCompletions struct {
	client *openai.Client
	model  string
}

var _ llms.Model = (*ChatCompletions)(nil)

func (c *ChatCompletions) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var opts llms.CallOptions
	for _, o := range options {
		o(&opts)
	}
	model := opts.Model
	if model == "" {
		model = c.model
	}

	params := openai.ChatCompletionNewParams{
		Model:            shared.ChatModel(model),
		Messages:         make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
		Temperature:      openai.Float(opts.Temperature),
		TopP:             openai.Float(opts.TopP),
		FrequencyPenalty: openai.Float(opts.FrequencyPenalty),
		PresencePenalty:  openai.Float(opts.PresencePenalty),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	for i, m := range messages {
		text := textOf(m)
		switch m.Role {
		case llms.ChatMessageTypeSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(text))
		case llms.ChatMessageTypeHuman:
			params.Messages = append(params.Messages, openai.UserMessage(text))
		case llms.ChatMessageTypeAI:
			params.Messages = append(params.Messages, openai.AssistantMessage(text))
		default:
			return nil, fmt.Errorf("%w %q at index %d", ErrInvalidRole, m.Role, i)
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	out := &llms.ContentResponse{
		Choices: make([]*llms.ContentChoice, len(resp.Choices)),
	}
	for i, choice := range resp.Choices {
		out.Choices[i] = &llms.ContentChoice{
			Content:    choice.Message.Content,
			StopReason: string(choice.FinishReason),
		}
	}
	return out, nil
}

func (c *ChatCompletions) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, c, prompt, options...)
}

func textOf(m llms.MessageContent) string {
	var sb strings.Builder
	for _, p := range m.Parts {
		if tc, ok := p.(llms.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}
