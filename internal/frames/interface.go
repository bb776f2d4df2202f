// Package frames samples still frames from the video at a fixed interval and labels them.
package frames

import (
	"context"
	"time"
)

// FrameExtractor writes the frame at offset at as a jpeg to dst.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, videoPath string, at time.Duration, dst string) error
}

// Labeler describes an image as a list of short labels.
type Labeler interface {
	Label(ctx context.Context, image []byte, mimeType string) ([]string, error)
}
