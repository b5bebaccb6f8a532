package models

type GenerateSummaryPostRequest struct {
	ChatHistory []ChatMessage `json:"chatHistory"`
}

type GenerateSummaryPostResponse struct {
	Summary string `json:"summary"`
}
