package transcript

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/video-digest/internal/gemini"
)

const transcribePrompt = `Transcribe the speech in the attached audio clip verbatim.
The spoken language is %s.
Return only the transcript text with normal punctuation, no timestamps, no speaker labels, no commentary.
If the clip contains no speech, return an empty response.`

// GeminiTranscriber sends each clip inline to a Gemini model
type GeminiTranscriber struct {
	generator gemini.Generator
}

func NewGeminiTranscriber(g gemini.Generator) *GeminiTranscriber {
	return &GeminiTranscriber{generator: g}
}

func (g *GeminiTranscriber) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("read clip: %w", err)
	}

	var temperature float32
	cfg := &genai.GenerateContentConfig{Temperature: &temperature}

	text, err := g.generator.Generate(ctx, cfg,
		genai.NewPartFromText(fmt.Sprintf(transcribePrompt, language)),
		genai.NewPartFromBytes(audio, "audio/wav"),
	)
	if err != nil {
		return "", fmt.Errorf("gemini transcribe: %w", err)
	}
	return strings.TrimSpace(text), nil
}
