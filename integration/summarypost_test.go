package integration

import (
	"context"
	"testing"

	"github.com/a-h/matchmaker/client"
	"github.com/a-h/matchmaker/models"
)

func TestGenerateSummaryPost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	c := client.New(serverURL, "")
	resp, err := c.GenerateSummaryPost(context.Background(), models.GenerateSummaryPostRequest{
		ChatHistory: []models.ChatMessage{
			{Role: models.RoleAssistant, Content: "Hi! Tell me a bit about yourself."},
			{Role: models.RoleUser, Content: "I'm a nurse, I love hiking and I want someone kind who makes me laugh."},
		},
	})
	if err != nil {
		t.Fatalf("failed to generate summary: %v", err)
	}
	if resp.Summary == "" {
		t.Error("expected a summary")
	}
}
