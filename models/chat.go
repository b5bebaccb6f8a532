package models

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type ChatPostRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// ChatPostResponse is the reply to a chat turn. GeneratesSummary and Summary
// are only present when the reply was classified as a profile summary.
type ChatPostResponse struct {
	Role             Role   `json:"role"`
	Content          string `json:"content"`
	GeneratesSummary bool   `json:"generatesSummary,omitempty"`
	Summary          string `json:"summary,omitempty"`
}

// NewChatPostResponse creates the success shape. When isSummary is set, the
// summary field is the same string as the content.
func NewChatPostResponse(text string, isSummary bool) (resp ChatPostResponse) {
	resp.Role = RoleAssistant
	resp.Content = text
	if isSummary {
		resp.GeneratesSummary = true
		resp.Summary = text
	}
	return resp
}

type ErrorResponse struct {
	Error string `json:"error"`
}

const (
	ErrorMessageChat    = "Failed to get response from AI"
	ErrorMessageSummary = "Failed to generate summary"
)
