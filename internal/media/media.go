// Package media decodes the input video through ffmpeg and ffprobe.
package media

import (
	"context"
	"errors"
	"time"
)

// ErrSourceUnavailable is returned when the input cannot be opened or decoded.
var ErrSourceUnavailable = errors.New("media source unavailable")

// Decoder is the audio/video decoding surface a run needs.
type Decoder interface {
	Probe(ctx context.Context, path string) (time.Duration, error)
	ExtractAudio(ctx context.Context, videoPath, dst string) error
	ExtractClip(ctx context.Context, audioPath string, start, end time.Duration, dst string) error
	ExtractFrame(ctx context.Context, videoPath string, at time.Duration, dst string) error
}
