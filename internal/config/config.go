package config

import (
	"fmt"
	"time"
)

const (
	BackendWhisper = "whisper"
	BackendGemini  = "gemini"

	FormatDocx     = "docx"
	FormatMarkdown = "markdown"
)

type Config struct {
	Transcription TranscriptionConfig `yaml:"transcription"`
	Whisper       WhisperConfig       `yaml:"whisper"`
	Translation   TranslationConfig   `yaml:"translation"`
	Frames        FramesConfig        `yaml:"frames"`
	Gemini        GeminiConfig        `yaml:"gemini"`
	FFmpeg        FFmpegConfig        `yaml:"ffmpeg"`
	Paths         PathsConfig         `yaml:"paths"`
	Document      DocumentConfig      `yaml:"document"`
	Logging       LoggingConfig       `yaml:"logging"`
	Performance   PerformanceConfig   `yaml:"performance"`
}

type TranscriptionConfig struct {
	Backend       string  `yaml:"backend"`
	Language      string  `yaml:"language"`
	WindowSeconds float64 `yaml:"window_seconds"`
	SampleRate    int     `yaml:"sample_rate"`
	Channels      int     `yaml:"channels"`
}

type WhisperConfig struct {
	ModelPath  string `yaml:"model_path"`
	BinaryPath string `yaml:"binary_path"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads"`
}

type TranslationConfig struct {
	SourceLanguage string `yaml:"source_language"`
	TargetLanguage string `yaml:"target_language"`
	ChunkSize      int    `yaml:"chunk_size"`
}

type FramesConfig struct {
	IntervalSeconds float64 `yaml:"interval_seconds"`
}

type GeminiConfig struct {
	Model      string   `yaml:"model"`
	APIKeys    []string `yaml:"api_keys"`
	MaxRetries int      `yaml:"max_retries"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ProbePath  string `yaml:"probe_path"`
}

type PathsConfig struct {
	Work   string `yaml:"work"`
	Temp   string `yaml:"temp"`
	Output string `yaml:"output"`
}

type DocumentConfig struct {
	Format string `yaml:"format"`
	Title  string `yaml:"title"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// Window is the transcription segment length
func (c *Config) Window() time.Duration {
	return seconds(c.Transcription.WindowSeconds)
}

// FrameInterval is the distance between two sampled frames
func (c *Config) FrameInterval() time.Duration {
	return seconds(c.Frames.IntervalSeconds)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Validate fills defaults and rejects configurations a run cannot start with
func (c *Config) Validate() error {
	c.applyDefaults()

	switch c.Transcription.Backend {
	case BackendWhisper:
		if c.Whisper.ModelPath == "" {
			return fmt.Errorf("whisper.model_path is required for the whisper backend")
		}
	case BackendGemini:
	default:
		return fmt.Errorf("transcription.backend %q is not supported", c.Transcription.Backend)
	}

	if c.Transcription.WindowSeconds <= 0 {
		return fmt.Errorf("transcription.window_seconds must be positive")
	}
	if c.Frames.IntervalSeconds <= 0 {
		return fmt.Errorf("frames.interval_seconds must be positive")
	}
	if c.Translation.ChunkSize <= 0 {
		return fmt.Errorf("translation.chunk_size must be positive")
	}
	if len(c.Gemini.APIKeys) == 0 {
		return fmt.Errorf("gemini api key is required (GEMINI_API_KEYS or gemini.api_keys)")
	}

	switch c.Document.Format {
	case FormatDocx, FormatMarkdown:
	default:
		return fmt.Errorf("document.format %q is not supported", c.Document.Format)
	}

	return nil
}

func (c *Config) applyDefaults() {
	// whisper needs a local model; without one the Gemini keys cover transcription too
	if c.Transcription.Backend == "" {
		c.Transcription.Backend = BackendGemini
		if c.Whisper.ModelPath != "" {
			c.Transcription.Backend = BackendWhisper
		}
	}
	if c.Transcription.Language == "" {
		c.Transcription.Language = "en"
	}
	if c.Transcription.WindowSeconds == 0 {
		c.Transcription.WindowSeconds = 45
	}
	if c.Transcription.SampleRate == 0 {
		c.Transcription.SampleRate = 16000
	}
	if c.Transcription.Channels == 0 {
		c.Transcription.Channels = 1
	}
	if c.Whisper.BinaryPath == "" {
		c.Whisper.BinaryPath = "whisper-cli"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 8
	}
	if c.Translation.SourceLanguage == "" {
		c.Translation.SourceLanguage = c.Transcription.Language
	}
	if c.Translation.TargetLanguage == "" {
		c.Translation.TargetLanguage = "es"
	}
	if c.Translation.ChunkSize == 0 {
		c.Translation.ChunkSize = 10000
	}
	if c.Frames.IntervalSeconds == 0 {
		c.Frames.IntervalSeconds = 60
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Gemini.MaxRetries == 0 {
		c.Gemini.MaxRetries = 3
	}
	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.ProbePath == "" {
		c.FFmpeg.ProbePath = "ffprobe"
	}
	if c.Paths.Work == "" {
		c.Paths.Work = "data/work"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "data/output"
	}
	if c.Document.Format == "" {
		c.Document.Format = FormatDocx
	}
	if c.Document.Title == "" {
		c.Document.Title = "Video Summary"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Performance.MaxConcurrent <= 0 {
		c.Performance.MaxConcurrent = 1
	}
}
