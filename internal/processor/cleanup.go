package processor

import (
	"context"
	"errors"
	"os"
)

// releaseAudio removes the extracted audio once every segment is in the ledger.
// The ledger itself is kept so a rerun can rebuild the document without the service.
func (p *implProcessor) releaseAudio(ctx context.Context, audioPath string) {
	p.deps.Logger.Info(ctx, "All segments transcribed, removing audio: %s", audioPath)
	p.cleanupTempFile(ctx, audioPath)
}

// cleanupTempFile removes a temporary file, logs warning if fails
func (p *implProcessor) cleanupTempFile(ctx context.Context, filePath string) {
	err := os.Remove(filePath)
	switch {
	case err == nil:
		p.deps.Logger.Debug(ctx, "Cleaned up temp file: %s", filePath)
	case errors.Is(err, os.ErrNotExist):
	default:
		p.deps.Logger.Warn(ctx, "Failed to cleanup temp file %s: %v", filePath, err)
	}
}
