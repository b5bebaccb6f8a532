package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/a-h/matchmaker/classifier"
	"github.com/a-h/matchmaker/models"
	"github.com/google/go-cmp/cmp"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tmc/langchaingo/llms"
)

var testHistory = []models.ChatMessage{
	{Role: models.RoleAssistant, Content: "Hi! I'm Violet. Want to talk?"},
	{Role: models.RoleUser, Content: "Sure, I spent the morning climbing."},
}

var testProfile = Profile{
	Personality:  "Adventurous and loyal.",
	IdealPartner: "Someone curious who enjoys the outdoors.",
	MustHaves:    []string{"Honesty", "A sense of humour"},
	NextSteps:    []string{"Ask about their last adventure."},
	Song:         "Home by Edward Sharpe and the Magnetic Zeros",
}

func TestRender(t *testing.T) {
	expected := `Here's a quick summary of what I have gathered from our conversation so far.

Personality
Adventurous and loyal.

Ideal partner
Someone curious who enjoys the outdoors.

Must-haves
- Honesty
- A sense of humour

Next steps
- Ask about their last adventure.

Song
Home by Edward Sharpe and the Magnetic Zeros`
	if diff := cmp.Diff(expected, testProfile.Render()); diff != "" {
		t.Error(diff)
	}
}

func TestRenderedProfilesAreSummaries(t *testing.T) {
	for _, p := range []Profile{{}, testProfile} {
		if v := classifier.Classify(p.Render()); !v.IsSummary {
			t.Errorf("expected rendered profile to be classified as a summary, got %+v", v)
		}
	}
}

func TestDecodeModelJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
	}{
		{
			name:  "plain JSON",
			input: `{"personality":"Kind."}`,
		},
		{
			name:  "surrounding whitespace",
			input: "\n  {\"personality\":\"Kind.\"}\n",
		},
		{
			name:  "surrounding prose",
			input: "Sure! Here it is: {\"personality\":\"Kind.\"} Hope that helps.",
		},
		{
			name:        "empty output",
			input:       "   ",
			expectError: true,
		},
		{
			name:        "no object",
			input:       "I can't do that.",
			expectError: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Profile
			err := decodeModelJSON(tt.input, &p)
			if tt.expectError {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Personality != "Kind." {
				t.Errorf("expected personality to be decoded, got %q", p.Personality)
			}
		})
	}
}

func TestProfileSchemaIsStrict(t *testing.T) {
	if profileSchema["additionalProperties"] != false {
		t.Errorf("expected additionalProperties false, got %v", profileSchema["additionalProperties"])
	}
	required, ok := profileSchema["required"].([]string)
	if !ok {
		t.Fatalf("expected required list, got %T", profileSchema["required"])
	}
	slices.Sort(required)
	expected := []string{"idealPartner", "mustHaves", "nextSteps", "personality", "song"}
	if diff := cmp.Diff(expected, required); diff != "" {
		t.Error(diff)
	}
}

type fakeLLM struct {
	text     string
	err      error
	messages []llms.MessageContent
}

func (f *fakeLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.text}}}, nil
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestLLM(t *testing.T) {
	profileJSON, err := json.Marshal(testProfile)
	if err != nil {
		t.Fatalf("failed to marshal profile: %v", err)
	}
	tests := []struct {
		name        string
		llm         *fakeLLM
		history     []models.ChatMessage
		expected    string
		expectedErr bool
	}{
		{
			name:     "JSON profiles are rendered",
			llm:      &fakeLLM{text: string(profileJSON)},
			history:  testHistory,
			expected: testProfile.Render(),
		},
		{
			name:     "plain text is used as it is",
			llm:      &fakeLLM{text: "  You are adventurous.  "},
			history:  testHistory,
			expected: "You are adventurous.",
		},
		{
			name:        "empty completions are errors",
			llm:         &fakeLLM{text: ""},
			history:     testHistory,
			expectedErr: true,
		},
		{
			name:        "upstream errors are returned",
			llm:         &fakeLLM{err: errors.New("boom")},
			history:     testHistory,
			expectedErr: true,
		},
		{
			name:        "empty history is rejected",
			llm:         &fakeLLM{text: "x"},
			expectedErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewLLM(tt.llm, "", "Summarise.")
			actual, err := s.Summarize(context.Background(), tt.history)
			if tt.expectedErr {
				if err == nil {
					t.Errorf("expected error, got %q", actual)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if actual != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, actual)
			}
			if len(tt.llm.messages) != 2 || tt.llm.messages[0].Role != llms.ChatMessageTypeSystem {
				t.Errorf("expected a system and a human message, got %d messages", len(tt.llm.messages))
			}
		})
	}
}

func TestLLMEmptyHistory(t *testing.T) {
	_, err := NewLLM(&fakeLLM{}, "", "x").Summarize(context.Background(), nil)
	if !errors.Is(err, ErrEmptyHistory) {
		t.Errorf("expected ErrEmptyHistory, got %v", err)
	}
}

func TestOpenAI(t *testing.T) {
	profileJSON, err := json.Marshal(testProfile)
	if err != nil {
		t.Fatalf("failed to marshal profile: %v", err)
	}
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/responses") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "resp_test",
			"object": "response",
			"status": "completed",
			"model":  "test-model",
			"output": []any{
				map[string]any{
					"type":   "message",
					"id":     "msg_test",
					"role":   "assistant",
					"status": "completed",
					"content": []any{
						map[string]any{
							"type":        "output_text",
							"text":        string(profileJSON),
							"annotations": []any{},
						},
					},
				},
			},
		})
	}))
	defer srv.Close()

	client := openai.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(srv.URL+"/"),
		option.WithMaxRetries(0),
	)
	s := NewOpenAI(&client, "test-model", "Summarise.")
	actual, err := s.Summarize(context.Background(), testHistory)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(testProfile.Render(), actual); diff != "" {
		t.Error(diff)
	}
	if received["model"] != "test-model" {
		t.Errorf("expected model test-model, got %v", received["model"])
	}
	if received["instructions"] != "Summarise." {
		t.Errorf("expected instructions to be sent, got %v", received["instructions"])
	}
}

func TestOpenAIUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := openai.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(srv.URL+"/"),
		option.WithMaxRetries(0),
	)
	if _, err := NewOpenAI(&client, "test-model", "x").Summarize(context.Background(), testHistory); err == nil {
		t.Error("expected error")
	}
}
