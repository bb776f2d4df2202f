package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/video-digest/internal/document"
	"github.com/nguyentantai21042004/video-digest/internal/frames"
	"github.com/nguyentantai21042004/video-digest/internal/ledger"
	"github.com/nguyentantai21042004/video-digest/internal/scratch"
	"github.com/nguyentantai21042004/video-digest/internal/segment"
	"github.com/nguyentantai21042004/video-digest/internal/transcript"
	"github.com/nguyentantai21042004/video-digest/internal/translate"
)

// Process orchestrates the whole run: probe, audio, transcription, translation, frames, document.
// Unit failures degrade the output; the returned error means the run could not finish.
func (p *implProcessor) Process(ctx context.Context, videoPath string) error {
	startTime := time.Now()
	log := p.deps.Logger
	base := baseName(videoPath)

	log.Info(ctx, "========================================")
	log.Info(ctx, "Starting video processing: %s", videoPath)
	log.Info(ctx, "========================================")

	// Step 1: Probe the source before touching any segment state
	duration, err := p.deps.Decoder.Probe(ctx, videoPath)
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	log.Info(ctx, "Video duration: %s", duration)

	if err := os.MkdirAll(p.cfg.Paths.Work, 0755); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}

	files, err := p.artifacts(videoPath)
	if err != nil {
		return err
	}

	// Step 2: Extract audio, or reuse the track from an earlier run.
	// Segments follow the audio track, which can be shorter than the container.
	audioPath, audioDuration, err := p.prepareAudio(ctx, videoPath, files)
	if err != nil {
		return fmt.Errorf("extract audio: %w", err)
	}

	arena, err := scratch.New(p.cfg.Paths.Temp, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := arena.Close(); err != nil {
			log.Warn(ctx, "Failed to remove temp dir %s: %v", arena.Dir(), err)
		}
	}()

	// Step 3: Transcribe every segment through the ledger
	stats, text, err := p.transcribe(ctx, audioPath, files.ledger, audioDuration, arena)
	if err != nil {
		return fmt.Errorf("transcribe: %w", err)
	}

	// Step 4: Translate the aggregate transcript
	translated, err := p.translate(ctx, text)
	if err != nil {
		return fmt.Errorf("translate: %w", err)
	}

	// Step 5: Sample and label frames
	samples, err := p.sampleFrames(ctx, videoPath, duration, arena)
	if err != nil {
		return fmt.Errorf("sample frames: %w", err)
	}

	// Step 6: Assemble and write the document
	doc := document.Assemble(p.cfg.Document.Title, translated, samples)
	outputPath := document.OutputPath(p.cfg.Paths.Output, base, p.deps.Writer)
	if err := p.deps.Writer.Write(doc, outputPath); err != nil {
		return fmt.Errorf("write document: %w", err)
	}

	// Step 7: The audio track is only needed while segments are outstanding
	if stats.Complete() {
		p.releaseAudio(ctx, audioPath)
	} else {
		log.Warn(ctx, "%d segment(s) failed %v, keeping %s for the next run",
			stats.Failed, stats.FailedIndices, audioPath)
	}

	log.Info(ctx, "========================================")
	log.Info(ctx, "Processing completed successfully!")
	log.Info(ctx, "Segments: %d cached, %d transcribed, %d failed", stats.Cached, stats.Transcribed, stats.Failed)
	log.Info(ctx, "Output document: %s", outputPath)
	log.Info(ctx, "Processing time: %s", time.Since(startTime))
	log.Info(ctx, "========================================")

	return nil
}

func (p *implProcessor) transcribe(ctx context.Context, audioPath, ledgerPath string, duration time.Duration, arena *scratch.Arena) (transcript.Stats, string, error) {
	log := p.deps.Logger

	segs := segment.Split(duration, p.cfg.Window())
	log.Info(ctx, "Split into %d segment(s) of %s", len(segs), p.cfg.Window())

	led, err := ledger.Open(ctx, ledgerPath, log)
	if err != nil {
		return transcript.Stats{}, "", err
	}
	defer func() {
		if err := led.Close(); err != nil {
			log.Warn(ctx, "Failed to close ledger %s: %v", led.Path(), err)
		}
	}()
	log.Info(ctx, "Ledger %s holds %d of %d segment(s)", led.Path(), led.Len(), len(segs))

	tp := transcript.NewProcessor(led, p.deps.Decoder, p.deps.Transcriber, arena, transcript.Options{
		AudioPath:   audioPath,
		Language:    p.cfg.Transcription.Language,
		Concurrency: p.cfg.Performance.MaxConcurrent,
	}, log)

	outcomes, err := tp.ProcessAll(ctx, segs)
	if err != nil {
		return transcript.Stats{}, "", err
	}
	return transcript.Summarize(outcomes), transcript.Join(outcomes), nil
}

func (p *implProcessor) translate(ctx context.Context, text string) (string, error) {
	svc := translate.NewService(p.deps.Translator, translate.Options{
		Source:      p.cfg.Translation.SourceLanguage,
		Target:      p.cfg.Translation.TargetLanguage,
		ChunkSize:   p.cfg.Translation.ChunkSize,
		Concurrency: p.cfg.Performance.MaxConcurrent,
	}, p.deps.Logger)

	res, err := svc.Translate(ctx, text)
	if err != nil {
		return "", err
	}
	if len(res.Failures) > 0 {
		p.deps.Logger.Warn(ctx, "%d of %d translation chunk(s) failed and were left empty", len(res.Failures), res.Chunks)
	}
	return res.Text, nil
}

func (p *implProcessor) sampleFrames(ctx context.Context, videoPath string, duration time.Duration, arena *scratch.Arena) ([]document.FrameSample, error) {
	sampler := frames.NewSampler(p.deps.Decoder, p.deps.Labeler, arena, frames.Options{
		Interval:    p.cfg.FrameInterval(),
		Concurrency: p.cfg.Performance.MaxConcurrent,
	}, p.deps.Logger)

	samples, err := sampler.Sample(ctx, videoPath, duration)
	if err != nil {
		return nil, err
	}

	out := make([]document.FrameSample, len(samples))
	for i, s := range samples {
		out[i] = document.FrameSample{Timestamp: s.Timestamp, Labels: s.Labels}
	}
	return out, nil
}

func baseName(videoPath string) string {
	name := filepath.Base(videoPath)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
