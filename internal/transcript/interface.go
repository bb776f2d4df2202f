// Package transcript turns audio segments into text, one ledger record per finished segment.
package transcript

import (
	"context"
	"time"
)

// Transcriber is the external speech-to-text service.
// An empty string with a nil error means the clip held no speech.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) (string, error)
}

// ClipExtractor cuts [start, end) out of an audio file as PCM suitable for the Transcriber.
type ClipExtractor interface {
	ExtractClip(ctx context.Context, audioPath string, start, end time.Duration, dst string) error
}

// Ledger is the durable record consulted before and written after each segment.
type Ledger interface {
	Has(index int) bool
	Get(index int) (string, error)
	Append(index int, transcript string) error
}
