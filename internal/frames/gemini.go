package frames

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/video-digest/internal/gemini"
)

const labelPrompt = `List the main objects, people and activities visible in this video frame.
Respond with a JSON array of short lowercase labels, most prominent first, at most 10 items.
Example: ["person", "whiteboard", "laptop"]`

// GeminiLabeler labels frames with a Gemini vision model
type GeminiLabeler struct {
	generator gemini.Generator
}

func NewGeminiLabeler(g gemini.Generator) *GeminiLabeler {
	return &GeminiLabeler{generator: g}
}

func (g *GeminiLabeler) Label(ctx context.Context, image []byte, mimeType string) ([]string, error) {
	var temperature float32
	cfg := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
	}

	out, err := g.generator.Generate(ctx, cfg,
		genai.NewPartFromText(labelPrompt),
		genai.NewPartFromBytes(image, mimeType),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini label: %w", err)
	}
	return parseLabels(out)
}

func parseLabels(out string) ([]string, error) {
	var raw []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &raw); err != nil {
		return nil, fmt.Errorf("parse labels %q: %w", out, err)
	}

	labels := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	return labels, nil
}
