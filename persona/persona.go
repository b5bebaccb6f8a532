package persona

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed matchmaker.md
var defaultPrompt string

//go:embed summary.md
var defaultSummaryPrompt string

// Persona is the character the assistant plays for the lifetime of a
// deployment.
type Persona struct {
	Name string `yaml:"name"`
	// Prompt is sent as the system message ahead of every chat turn.
	Prompt string `yaml:"prompt"`
	// SummaryPrompt instructs the model that writes profile summaries.
	SummaryPrompt string `yaml:"summaryPrompt"`
}

func Default() Persona {
	return Persona{
		Name:          "Violet",
		Prompt:        defaultPrompt,
		SummaryPrompt: defaultSummaryPrompt,
	}
}

var ErrEmptyPrompt = errors.New("persona: prompt is empty")

func (p Persona) Validate() error {
	if strings.TrimSpace(p.Prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}

// Load reads a persona from a file. YAML files (.yaml, .yml) are decoded
// into a Persona, any other file is used verbatim as the prompt. Fields
// missing from the file are taken from Default.
func Load(name string) (p Persona, err error) {
	contents, err := os.ReadFile(name)
	if err != nil {
		return p, fmt.Errorf("persona: failed to read %s: %w", name, err)
	}
	p = Default()
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		var fromFile Persona
		if err = yaml.Unmarshal(contents, &fromFile); err != nil {
			return p, fmt.Errorf("persona: failed to decode %s: %w", name, err)
		}
		p.Prompt = fromFile.Prompt
		if fromFile.Name != "" {
			p.Name = fromFile.Name
		}
		if fromFile.SummaryPrompt != "" {
			p.SummaryPrompt = fromFile.SummaryPrompt
		}
	default:
		p.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
		p.Prompt = string(contents)
	}
	return p, p.Validate()
}
