package summarizer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/a-h/matchmaker/models"
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
)

var profileSchema = generateSchema[Profile]()

func NewOpenAI(client *openai.Client, model, instructions string) OpenAI {
	return OpenAI{
		client:          client,
		model:           model,
		instructions:    instructions,
		MaxOutputTokens: 1500,
	}
}

// OpenAI asks the Responses API for a Profile with a strict JSON schema.
type OpenAI struct {
	client          *openai.Client
	model           string
	instructions    string
	MaxOutputTokens int64
}

func (s OpenAI) Summarize(ctx context.Context, history []models.ChatMessage) (summary string, err error) {
	payload, err := transcriptPayload(history)
	if err != nil {
		return "", err
	}
	params := responses.ResponseNewParams{
		Model:           s.model,
		MaxOutputTokens: openai.Int(s.MaxOutputTokens),
		Instructions:    openai.String(s.instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(payload, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        "ProfileSummary",
					Schema:      profileSchema,
					Strict:      openai.Bool(true),
					Description: openai.String("Matchmaking profile summary"),
					Type:        "json_schema",
				},
			},
		},
	}
	resp, err := s.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("summarizer: response failed: %w", err)
	}
	var p Profile
	if err = decodeModelJSON(resp.OutputText(), &p); err != nil {
		return "", err
	}
	return p.Render(), nil
}

func generateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	b, err := reflector.Reflect(v).MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err = json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	makeStrict(m)
	return m
}

// makeStrict applies the structured output rules: objects allow no extra
// properties and every property is required.
func makeStrict(schema map[string]any) {
	properties, hasProperties := schema["properties"].(map[string]any)
	if t, ok := schema["type"].(string); ok && t == "object" {
		schema["additionalProperties"] = false
		if hasProperties {
			required := make([]string, 0, len(properties))
			for name := range properties {
				required = append(required, name)
			}
			schema["required"] = required
		}
	}
	for _, prop := range properties {
		if pm, ok := prop.(map[string]any); ok {
			makeStrict(pm)
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		makeStrict(items)
	}
}
