package transcript

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/video-digest/internal/logger"
	"github.com/nguyentantai21042004/video-digest/pkg/executor"
)

// whisper.cpp prints this marker instead of text for silent input
const blankAudio = "[BLANK_AUDIO]"

type WhisperOptions struct {
	BinaryPath string
	ModelPath  string
	Threads    int
	Prompt     string
}

// WhisperTranscriber runs the whisper.cpp CLI on each clip
type WhisperTranscriber struct {
	opts     WhisperOptions
	executor executor.Executor
	logger   logger.Logger
}

func NewWhisperTranscriber(opts WhisperOptions, exec executor.Executor, log logger.Logger) *WhisperTranscriber {
	return &WhisperTranscriber{opts: opts, executor: exec, logger: log}
}

// Transcribe returns the plain text whisper prints for audioPath
func (w *WhisperTranscriber) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	// -nt: no timestamps, -np: no progress/system prints, so stdout is only the text
	// -l: force language (prevents hallucination)
	args := []string{
		"-m", w.opts.ModelPath,
		"-f", audioPath,
		"-l", language,
		"-t", strconv.Itoa(w.opts.Threads),
		"-nt",
		"-np",
	}
	if w.opts.Prompt != "" {
		args = append(args, "--prompt", w.opts.Prompt)
	}

	w.logger.Debug(ctx, "Running whisper on %s", audioPath)

	out, err := w.executor.Execute(ctx, w.opts.BinaryPath, args...)
	if err != nil {
		return "", fmt.Errorf("whisper transcribe: %w", err)
	}
	return cleanWhisperOutput(out), nil
}

func cleanWhisperOutput(out string) string {
	var parts []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, blankAudio, ""))
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}
