package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/video-digest/internal/config"
	"github.com/nguyentantai21042004/video-digest/internal/document"
	"github.com/nguyentantai21042004/video-digest/internal/frames"
	"github.com/nguyentantai21042004/video-digest/internal/gemini"
	"github.com/nguyentantai21042004/video-digest/internal/logger"
	"github.com/nguyentantai21042004/video-digest/internal/media"
	"github.com/nguyentantai21042004/video-digest/internal/processor"
	"github.com/nguyentantai21042004/video-digest/internal/transcript"
	"github.com/nguyentantai21042004/video-digest/internal/translate"
	"github.com/nguyentantai21042004/video-digest/pkg/executor"
)

const usage = "usage: video-digest <video-path>"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, usage)
		return 1
	}
	videoPath := args[0]

	// Load API keys from .env before the config reads the environment
	if err := config.LoadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		return 1
	}

	cfg, err := config.LoadOrDefault(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	// Ctrl+C cancels in-flight units; finished segments are already in the ledger
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithRunID(ctx, uuid.NewString())

	log.Info(ctx, "========================================")
	log.Info(ctx, "Video Digest")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
	log.Info(ctx, "Transcription: %s (%s), window %s", cfg.Transcription.Backend, cfg.Transcription.Language, cfg.Window())
	log.Info(ctx, "Translation: %s -> %s, chunks of %d", cfg.Translation.SourceLanguage, cfg.Translation.TargetLanguage, cfg.Translation.ChunkSize)
	log.Info(ctx, "Frames every %s, %d Gemini key(s), max concurrent %d", cfg.FrameInterval(), len(cfg.Gemini.APIKeys), cfg.Performance.MaxConcurrent)

	proc, err := build(cfg, log)
	if err != nil {
		log.Error(ctx, "Failed to initialize: %v", err)
		return 1
	}

	if err := proc.Process(ctx, videoPath); err != nil {
		if ctx.Err() != nil {
			log.Warn(ctx, "Interrupted, completed segments are kept for the next run")
		}
		log.Error(ctx, "Processing failed: %v", err)
		return 1
	}
	return 0
}

// build wires every service handle from the config
func build(cfg *config.Config, log logger.Logger) (processor.Processor, error) {
	exec := executor.New()

	ffmpeg := media.NewFFmpeg(media.Options{
		FFmpegPath:  cfg.FFmpeg.BinaryPath,
		FFprobePath: cfg.FFmpeg.ProbePath,
		SampleRate:  cfg.Transcription.SampleRate,
		Channels:    cfg.Transcription.Channels,
	}, exec, log)
	if err := ffmpeg.CheckBinaries(); err != nil {
		return nil, err
	}

	client := gemini.New(cfg.Gemini.APIKeys, cfg.Gemini.Model, cfg.Gemini.MaxRetries, log)

	var tr transcript.Transcriber
	switch cfg.Transcription.Backend {
	case config.BackendWhisper:
		if err := exec.LookPath(cfg.Whisper.BinaryPath); err != nil {
			return nil, err
		}
		tr = transcript.NewWhisperTranscriber(transcript.WhisperOptions{
			BinaryPath: cfg.Whisper.BinaryPath,
			ModelPath:  cfg.Whisper.ModelPath,
			Threads:    cfg.Whisper.Threads,
			Prompt:     cfg.Whisper.Prompt,
		}, exec, log)
	case config.BackendGemini:
		tr = transcript.NewGeminiTranscriber(client)
	default:
		return nil, fmt.Errorf("unknown transcription backend %q", cfg.Transcription.Backend)
	}

	writer, err := document.NewWriter(cfg.Document.Format)
	if err != nil {
		return nil, err
	}

	return processor.New(cfg, processor.Deps{
		Decoder:     ffmpeg,
		Transcriber: tr,
		Translator:  translate.NewGeminiTranslator(client),
		Labeler:     frames.NewGeminiLabeler(client),
		Writer:      writer,
		Logger:      log,
	}), nil
}
