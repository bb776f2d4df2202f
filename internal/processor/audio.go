package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// artifacts are the per-video files kept in the work dir between runs.
type artifacts struct {
	audio   string
	partial string
	ledger  string
}

// artifacts names the work files of videoPath. The key mixes the base name with a hash of the
// absolute path so two videos called the same never share state. A ledger index is only
// meaningful for one window length, so the window is part of the ledger name.
func (p *implProcessor) artifacts(videoPath string) (artifacts, error) {
	abs, err := filepath.Abs(videoPath)
	if err != nil {
		return artifacts{}, fmt.Errorf("resolve %s: %w", videoPath, err)
	}
	key := baseName(videoPath) + "-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(abs)).String()[:8]
	window := strconv.FormatFloat(p.cfg.Window().Seconds(), 'f', -1, 64)

	return artifacts{
		audio:   filepath.Join(p.cfg.Paths.Work, key+".wav"),
		partial: filepath.Join(p.cfg.Paths.Work, key+".partial.wav"),
		ledger:  filepath.Join(p.cfg.Paths.Work, key+".w"+window+".ledger"),
	}, nil
}

// prepareAudio returns the extracted audio track of videoPath and its duration. A readable track
// left by an earlier run is reused; a new one is written under a temporary name and renamed once
// ffmpeg succeeds, so an interrupted extraction is never mistaken for a finished one.
func (p *implProcessor) prepareAudio(ctx context.Context, videoPath string, files artifacts) (string, time.Duration, error) {
	if info, err := os.Stat(files.audio); err == nil && info.Mode().IsRegular() {
		d, err := p.deps.Decoder.Probe(ctx, files.audio)
		if err == nil {
			p.deps.Logger.Info(ctx, "Reusing extracted audio: %s (%s)", files.audio, d)
			return files.audio, d, nil
		}
		p.deps.Logger.Warn(ctx, "Extracted audio %s is unreadable, extracting again: %v", files.audio, err)
		p.cleanupTempFile(ctx, files.audio)
	}

	defer p.cleanupTempFile(ctx, files.partial)

	if err := p.deps.Decoder.ExtractAudio(ctx, videoPath, files.partial); err != nil {
		return "", 0, err
	}
	if err := os.Rename(files.partial, files.audio); err != nil {
		return "", 0, fmt.Errorf("rename audio: %w", err)
	}

	d, err := p.deps.Decoder.Probe(ctx, files.audio)
	if err != nil {
		return "", 0, fmt.Errorf("probe audio: %w", err)
	}
	p.deps.Logger.Info(ctx, "Audio duration: %s", d)
	return files.audio, d, nil
}
