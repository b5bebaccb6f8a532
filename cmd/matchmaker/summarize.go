package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/a-h/matchmaker/client"
	"github.com/a-h/matchmaker/models"
)

type SummarizeCommand struct {
	ServerURL   string `help:"The URL of the matchmaker server." env:"MATCHMAKER_SERVER_URL" default:"http://localhost:9020"`
	APIKey      string `help:"The API key for the matchmaker server, used with --save-profile." env:"MATCHMAKER_API_KEY" default:""`
	File        string `help:"A JSON file containing an array of chat messages." arg:"" type:"existingfile"`
	SaveProfile bool   `help:"Store the summary as the profile of the API key's user." default:"false"`
}

func (c SummarizeCommand) Run(ctx context.Context) (err error) {
	history, err := readTranscript(c.File)
	if err != nil {
		return err
	}
	mc := client.New(c.ServerURL, c.APIKey)
	resp, err := mc.GenerateSummaryPost(ctx, models.GenerateSummaryPostRequest{
		ChatHistory: history,
	})
	if err != nil {
		return fmt.Errorf("failed to generate summary: %w", err)
	}
	fmt.Println(resp.Summary)
	if !c.SaveProfile {
		return nil
	}
	if _, err = mc.ProfilePut(ctx, models.ProfilePutRequest{Summary: resp.Summary}); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func readTranscript(name string) (history []models.ChatMessage, err error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer f.Close()
	if err = json.NewDecoder(f).Decode(&history); err != nil {
		return nil, fmt.Errorf("failed to decode transcript %s: %w", name, err)
	}
	return history, nil
}
