package media

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nguyentantai21042004/video-digest/internal/logger"
	"github.com/nguyentantai21042004/video-digest/pkg/executor"
)

// Options selects the binaries and the PCM layout handed to the transcriber.
type Options struct {
	FFmpegPath  string
	FFprobePath string
	SampleRate  int
	Channels    int
}

type FFmpeg struct {
	opts     Options
	executor executor.Executor
	logger   logger.Logger
}

// NewFFmpeg creates a Decoder backed by the ffmpeg and ffprobe binaries
func NewFFmpeg(opts Options, exec executor.Executor, log logger.Logger) *FFmpeg {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.FFprobePath == "" {
		opts.FFprobePath = "ffprobe"
	}
	if opts.SampleRate == 0 {
		opts.SampleRate = 16000
	}
	if opts.Channels == 0 {
		opts.Channels = 1
	}
	return &FFmpeg{opts: opts, executor: exec, logger: log}
}

// CheckBinaries fails when ffmpeg or ffprobe is not installed
func (f *FFmpeg) CheckBinaries() error {
	for _, bin := range []string{f.opts.FFmpegPath, f.opts.FFprobePath} {
		if err := f.executor.LookPath(bin); err != nil {
			return err
		}
	}
	return nil
}

// Probe returns the container duration of path
func (f *FFmpeg) Probe(ctx context.Context, path string) (time.Duration, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, path, err)
	}

	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
	out, err := f.executor.Execute(ctx, f.opts.FFprobePath, args...)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("%w: ffprobe %s: %w", ErrSourceUnavailable, path, err)
	}

	d, err := parseDuration(out)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, path, err)
	}
	return d, nil
}

// ExtractAudio writes the whole audio track of videoPath as PCM WAV at the configured rate and channels
func (f *FFmpeg) ExtractAudio(ctx context.Context, videoPath, dst string) error {
	f.logger.Info(ctx, "Extracting audio: %s", videoPath)

	// -vn: drop video; pcm_s16le: uncompressed 16-bit, what speech models expect
	args := []string{
		"-i", videoPath,
		"-vn",
		"-ar", strconv.Itoa(f.opts.SampleRate),
		"-ac", strconv.Itoa(f.opts.Channels),
		"-c:a", "pcm_s16le",
		"-threads", "0",
		"-f", "wav",
		"-y",
		dst,
	}
	if _, err := f.executor.Execute(ctx, f.opts.FFmpegPath, args...); err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w", err)
	}

	f.logger.Info(ctx, "Audio extracted successfully: %s", dst)
	return nil
}

// ExtractClip writes [start, end) of audioPath to dst
func (f *FFmpeg) ExtractClip(ctx context.Context, audioPath string, start, end time.Duration, dst string) error {
	if end <= start {
		return fmt.Errorf("ffmpeg extract clip: empty range [%s, %s)", start, end)
	}

	// -ss before -i seeks on the input, exact for PCM
	args := []string{
		"-ss", seconds(start),
		"-t", seconds(end - start),
		"-i", audioPath,
		"-ar", strconv.Itoa(f.opts.SampleRate),
		"-ac", strconv.Itoa(f.opts.Channels),
		"-c:a", "pcm_s16le",
		"-f", "wav",
		"-y",
		dst,
	}
	if _, err := f.executor.Execute(ctx, f.opts.FFmpegPath, args...); err != nil {
		return fmt.Errorf("ffmpeg extract clip: %w", err)
	}
	return nil
}

// ExtractFrame writes the frame shown at `at` as a JPEG
func (f *FFmpeg) ExtractFrame(ctx context.Context, videoPath string, at time.Duration, dst string) error {
	args := []string{
		"-ss", seconds(at),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		"-y",
		dst,
	}
	if _, err := f.executor.Execute(ctx, f.opts.FFmpegPath, args...); err != nil {
		return fmt.Errorf("ffmpeg extract frame: %w", err)
	}
	return nil
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

func parseDuration(out string) (time.Duration, error) {
	s := strings.TrimSpace(out)
	if s == "" || s == "N/A" {
		return 0, errors.New("no duration reported")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return time.Duration(math.Round(v * float64(time.Second))), nil
}
