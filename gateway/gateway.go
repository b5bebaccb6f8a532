// Package gateway forwards a chat history to the completion API behind a
// fixed persona, and shapes the reply depending on whether it is a profile
// summary. It holds no conversation state: every call carries the full
// history.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/a-h/matchmaker/classifier"
	"github.com/a-h/matchmaker/models"
	"github.com/tmc/langchaingo/llms"
)

// Sampling parameters are fixed for a deployment and are not exposed to
// callers.
type Sampling struct {
	Model            string
	Temperature      float64
	MaxTokens        int
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
}

func DefaultSampling(model string) Sampling {
	return Sampling{
		Model:            model,
		Temperature:      0.7,
		MaxTokens:        500,
		TopP:             1,
		FrequencyPenalty: 0,
		PresencePenalty:  0.6,
	}
}

func (s Sampling) options() []llms.CallOption {
	return []llms.CallOption{
		llms.WithModel(s.Model),
		llms.WithTemperature(s.Temperature),
		llms.WithMaxTokens(s.MaxTokens),
		llms.WithTopP(s.TopP),
		llms.WithFrequencyPenalty(s.FrequencyPenalty),
		llms.WithPresencePenalty(s.PresencePenalty),
	}
}

type Config struct {
	PersonaPrompt string
	Sampling      Sampling
	// Timeout bounds the upstream call. Zero means no limit beyond the
	// caller's context.
	Timeout time.Duration
}

var (
	ErrEmptyPersona = errors.New("gateway: persona prompt is empty")
	ErrInvalidRole  = errors.New("gateway: invalid message role")
	ErrNoChoices    = errors.New("gateway: completion returned no choices")
)

var roleToMessageType = map[models.Role]llms.ChatMessageType{
	models.RoleSystem:    llms.ChatMessageTypeSystem,
	models.RoleUser:      llms.ChatMessageTypeHuman,
	models.RoleAssistant: llms.ChatMessageTypeAI,
}

func New(log *slog.Logger, llm llms.Model, cfg Config) (*Gateway, error) {
	if cfg.PersonaPrompt == "" {
		return nil, ErrEmptyPersona
	}
	return &Gateway{
		log: log,
		llm: llm,
		cfg: cfg,
	}, nil
}

type Gateway struct {
	log *slog.Logger
	llm llms.Model
	cfg Config
}

// Messages builds the outbound message list: the persona prompt followed by
// msgs in order. Caller supplied system messages are kept as they are.
func (g *Gateway) Messages(msgs []models.ChatMessage) ([]llms.MessageContent, error) {
	out := make([]llms.MessageContent, 0, len(msgs)+1)
	out = append(out, llms.TextParts(llms.ChatMessageTypeSystem, g.cfg.PersonaPrompt))
	for i, m := range msgs {
		mt, ok := roleToMessageType[m.Role]
		if !ok {
			return nil, fmt.Errorf("%w %q at index %d", ErrInvalidRole, m.Role, i)
		}
		out = append(out, llms.TextParts(mt, m.Content))
	}
	return out, nil
}

// Complete makes a single upstream call and returns the text of the first
// choice. Missing content is returned as the empty string.
func (g *Gateway) Complete(ctx context.Context, msgs []models.ChatMessage) (text string, err error) {
	outbound, err := g.Messages(msgs)
	if err != nil {
		return "", err
	}
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}
	resp, err := g.llm.GenerateContent(ctx, outbound, g.cfg.Sampling.options()...)
	if err != nil {
		return "", fmt.Errorf("gateway: completion failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Content, nil
}

// Respond completes the chat and classifies the reply.
func (g *Gateway) Respond(ctx context.Context, msgs []models.ChatMessage) (resp models.ChatPostResponse, err error) {
	text, err := g.Complete(ctx, msgs)
	if err != nil {
		return resp, err
	}
	v := classifier.Classify(text)
	g.log.Debug("classified completion",
		slog.Bool("hasPersonality", v.HasPersonality),
		slog.Bool("hasPartner", v.HasPartner),
		slog.Bool("hasMustHave", v.HasMustHave),
		slog.Bool("hasSteps", v.HasSteps),
		slog.Bool("hasSong", v.HasSong),
		slog.Bool("isSummary", v.IsSummary))
	return models.NewChatPostResponse(text, v.IsSummary), nil
}
