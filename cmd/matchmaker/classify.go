package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/a-h/matchmaker/classifier"
)

type ClassifyCommand struct {
	Text   string `help:"The text to classify. Read from stdin if empty." default:""`
	Pretty bool   `help:"Pretty print the JSON output." default:"true" negatable:""`
}

func (c ClassifyCommand) Run(ctx context.Context) (err error) {
	return c.run(os.Stdin, os.Stdout)
}

func (c ClassifyCommand) run(stdin io.Reader, stdout io.Writer) (err error) {
	text := c.Text
	if text == "" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(b)
	}
	enc := json.NewEncoder(stdout)
	if c.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(classifier.Classify(text))
}
