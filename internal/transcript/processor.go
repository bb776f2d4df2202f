package transcript

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/video-digest/internal/logger"
	"github.com/nguyentantai21042004/video-digest/internal/scratch"
	"github.com/nguyentantai21042004/video-digest/internal/segment"
	"github.com/nguyentantai21042004/video-digest/internal/workpool"
)

type Options struct {
	// AudioPath is the extracted audio track segments are cut from.
	AudioPath string
	// Language is passed to the Transcriber.
	Language string
	// Concurrency bounds in-flight segments; 1 processes them in order.
	Concurrency int
}

type Processor struct {
	ledger      Ledger
	clips       ClipExtractor
	transcriber Transcriber
	arena       *scratch.Arena
	opts        Options
	logger      logger.Logger
}

// NewProcessor wires the segment processor to its capabilities
func NewProcessor(l Ledger, clips ClipExtractor, tr Transcriber, arena *scratch.Arena, opts Options, log logger.Logger) *Processor {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Processor{
		ledger:      l,
		clips:       clips,
		transcriber: tr,
		arena:       arena,
		opts:        opts,
		logger:      log,
	}
}

// Process returns the transcript of seg, calling the service only when the ledger lacks it.
// Service failures are reported in the Outcome; the returned error is fatal for the run.
func (p *Processor) Process(ctx context.Context, seg segment.Segment) (Outcome, error) {
	if p.ledger.Has(seg.Index) {
		text, err := p.ledger.Get(seg.Index)
		if err != nil {
			return Outcome{}, fmt.Errorf("segment %d: %w", seg.Index, err)
		}
		return Outcome{Segment: seg, Text: text, Status: StatusCached}, nil
	}

	text, err := p.transcribe(ctx, seg)
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{}, ctx.Err()
		}
		p.logger.Warn(ctx, "Segment %d %s failed, it will be retried on the next run: %v",
			seg.Index, seg, err)
		return Outcome{
			Segment: seg,
			Status:  StatusFailed,
			Err:     &ServiceError{Index: seg.Index, Err: err},
		}, nil
	}

	if err := p.ledger.Append(seg.Index, text); err != nil {
		return Outcome{}, fmt.Errorf("record segment %d: %w", seg.Index, err)
	}
	return Outcome{Segment: seg, Text: text, Status: StatusTranscribed}, nil
}

// ProcessAll processes segs and returns their outcomes in the same order.
func (p *Processor) ProcessAll(ctx context.Context, segs []segment.Segment) ([]Outcome, error) {
	outcomes := make([]Outcome, len(segs))

	err := workpool.Run(ctx, len(segs), p.opts.Concurrency, func(ctx context.Context, i int) error {
		o, err := p.Process(ctx, segs[i])
		if err != nil {
			return err
		}
		outcomes[i] = o
		p.logger.Info(ctx, "[%d/%d] Segment %d: %s", i+1, len(segs), segs[i].Index, o.Status)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return outcomes, nil
}

func (p *Processor) transcribe(ctx context.Context, seg segment.Segment) (string, error) {
	clip := p.arena.Acquire(fmt.Sprintf("segment_%05d.wav", seg.Index))
	defer clip.Release()

	if err := p.clips.ExtractClip(ctx, p.opts.AudioPath, seg.Start, seg.End, clip.Path()); err != nil {
		return "", fmt.Errorf("extract audio: %w", err)
	}

	text, err := p.transcriber.Transcribe(ctx, clip.Path(), p.opts.Language)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
