package processor

import (
	"context"

	"github.com/nguyentantai21042004/video-digest/internal/document"
	"github.com/nguyentantai21042004/video-digest/internal/frames"
	"github.com/nguyentantai21042004/video-digest/internal/logger"
	"github.com/nguyentantai21042004/video-digest/internal/media"
	"github.com/nguyentantai21042004/video-digest/internal/transcript"
	"github.com/nguyentantai21042004/video-digest/internal/translate"
)

// Processor turns one video into its summary document.
type Processor interface {
	Process(ctx context.Context, videoPath string) error
}

// Deps are the service handles a run uses. They are built once by the caller.
type Deps struct {
	Decoder     media.Decoder
	Transcriber transcript.Transcriber
	Translator  translate.Translator
	Labeler     frames.Labeler
	Writer      document.Writer
	Logger      logger.Logger
}
