package frames

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/video-digest/internal/logger"
	"github.com/nguyentantai21042004/video-digest/internal/scratch"
	"github.com/nguyentantai21042004/video-digest/internal/workpool"
)

const frameMIMEType = "image/jpeg"

// LabelError is a frame that could not be extracted or labeled.
type LabelError struct {
	Timestamp time.Duration
	Err       error
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("label frame at %s: %v", e.Timestamp, e.Err)
}

func (e *LabelError) Unwrap() error { return e.Err }

// Sample is one sampled frame. Labels is empty when Err is set.
type Sample struct {
	Timestamp time.Duration
	Labels    []string
	Err       *LabelError
}

// Timestamps returns every k*interval strictly before duration, starting at zero.
func Timestamps(duration, interval time.Duration) []time.Duration {
	if interval <= 0 {
		panic(fmt.Sprintf("frames: interval must be positive, got %s", interval))
	}
	var out []time.Duration
	for t := time.Duration(0); t < duration; t += interval {
		out = append(out, t)
	}
	return out
}

type Options struct {
	Interval    time.Duration
	Concurrency int
}

type Sampler struct {
	extractor FrameExtractor
	labeler   Labeler
	arena     *scratch.Arena
	opts      Options
	logger    logger.Logger
}

func NewSampler(ex FrameExtractor, lb Labeler, arena *scratch.Arena, opts Options, log logger.Logger) *Sampler {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Sampler{
		extractor: ex,
		labeler:   lb,
		arena:     arena,
		opts:      opts,
		logger:    log,
	}
}

// Sample labels one frame per interval, ordered by timestamp.
// Per-frame failures leave the labels empty; only cancellation is returned as an error.
func (s *Sampler) Sample(ctx context.Context, videoPath string, duration time.Duration) ([]Sample, error) {
	stamps := Timestamps(duration, s.opts.Interval)
	samples := make([]Sample, len(stamps))

	s.logger.Info(ctx, "Sampling %d frame(s) every %s", len(stamps), s.opts.Interval)

	err := workpool.Run(ctx, len(stamps), s.opts.Concurrency, func(ctx context.Context, i int) error {
		at := stamps[i]
		labels, err := s.label(ctx, videoPath, i, at)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn(ctx, "Frame at %s failed, leaving it without labels: %v", at, err)
			samples[i] = Sample{Timestamp: at, Labels: []string{}, Err: &LabelError{Timestamp: at, Err: err}}
			return nil
		}
		samples[i] = Sample{Timestamp: at, Labels: labels}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return samples, nil
}

func (s *Sampler) label(ctx context.Context, videoPath string, i int, at time.Duration) ([]string, error) {
	frame := s.arena.Acquire(fmt.Sprintf("frame_%06d.jpg", i))
	defer frame.Release()

	if err := s.extractor.ExtractFrame(ctx, videoPath, at, frame.Path()); err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	image, err := frame.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}

	labels, err := s.labeler.Label(ctx, image, frameMIMEType)
	if err != nil {
		return nil, err
	}
	if labels == nil {
		labels = []string{}
	}
	return labels, nil
}
