// Package summarizer writes a profile summary from a full chat history.
package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/matchmaker/models"
)

type Summarizer interface {
	Summarize(ctx context.Context, history []models.ChatMessage) (summary string, err error)
}

var ErrEmptyHistory = errors.New("summarizer: chat history is empty")

// Profile is the structured summary the model is asked to produce.
type Profile struct {
	Personality  string   `json:"personality" jsonschema:"required" jsonschema_description:"How the person thinks, what they value and how they approach relationships."`
	IdealPartner string   `json:"idealPartner" jsonschema:"required" jsonschema_description:"Character traits of a person who would complement them."`
	MustHaves    []string `json:"mustHaves" jsonschema:"required" jsonschema_description:"The two or three most important qualities, each with a short reason."`
	NextSteps    []string `json:"nextSteps" jsonschema:"required" jsonschema_description:"Things to look for or questions to ask when meeting someone new."`
	Song         string   `json:"song" jsonschema:"required" jsonschema_description:"One song recommendation with the artist."`
}

const renderIntro = "Here's a quick summary of what I have gathered from our conversation so far."

// Render formats the profile as headed sections. The headings are chosen so
// that a rendered profile is always classified as a summary.
func (p Profile) Render() string {
	var sb strings.Builder
	sb.WriteString(renderIntro)
	writeSection(&sb, "Personality", p.Personality)
	writeSection(&sb, "Ideal partner", p.IdealPartner)
	writeList(&sb, "Must-haves", p.MustHaves)
	writeList(&sb, "Next steps", p.NextSteps)
	writeSection(&sb, "Song", p.Song)
	return sb.String()
}

func writeSection(sb *strings.Builder, heading, text string) {
	sb.WriteString("\n\n")
	sb.WriteString(heading)
	sb.WriteString("\n")
	sb.WriteString(strings.TrimSpace(text))
}

func writeList(sb *strings.Builder, heading string, items []string) {
	sb.WriteString("\n\n")
	sb.WriteString(heading)
	for _, item := range items {
		sb.WriteString("\n- ")
		sb.WriteString(strings.TrimSpace(item))
	}
}

type transcript struct {
	Messages []models.ChatMessage `json:"messages"`
}

func transcriptPayload(history []models.ChatMessage) (string, error) {
	if len(history) == 0 {
		return "", ErrEmptyHistory
	}
	b, err := json.Marshal(transcript{Messages: history})
	if err != nil {
		return "", fmt.Errorf("summarizer: failed to marshal transcript: %w", err)
	}
	return string(b), nil
}

// decodeModelJSON unmarshals JSON from model output, tolerating whitespace
// and prose around the first top level object.
func decodeModelJSON(output string, v any) error {
	s := strings.TrimSpace(output)
	if s == "" {
		return io.ErrUnexpectedEOF
	}
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end <= start {
		return fmt.Errorf("summarizer: no JSON object found in model output (len=%d)", len(s))
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), v); err != nil {
		return fmt.Errorf("summarizer: failed to unmarshal model output: %w", err)
	}
	return nil
}
