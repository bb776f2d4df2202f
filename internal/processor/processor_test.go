package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/video-digest/internal/config"
	"github.com/nguyentantai21042004/video-digest/internal/document"
	"github.com/nguyentantai21042004/video-digest/internal/logger"
	"github.com/nguyentantai21042004/video-digest/internal/media"
)

// stubDecoder fakes ffmpeg: clips carry "seg<index>", frames carry the offset in seconds.
// The extracted audio reports audioDuration when set, the container duration otherwise.
type stubDecoder struct {
	duration      time.Duration
	audioDuration time.Duration
	window        time.Duration
	probeErr      error
	mu            sync.Mutex
	audioCalls    int
}

func (s *stubDecoder) Probe(ctx context.Context, path string) (time.Duration, error) {
	if s.probeErr != nil {
		return 0, s.probeErr
	}
	if strings.HasSuffix(path, ".wav") && s.audioDuration > 0 {
		return s.audioDuration, nil
	}
	return s.duration, nil
}

func (s *stubDecoder) ExtractAudio(ctx context.Context, videoPath, dst string) error {
	s.mu.Lock()
	s.audioCalls++
	s.mu.Unlock()
	return os.WriteFile(dst, []byte("RIFF"), 0644)
}

func (s *stubDecoder) ExtractClip(ctx context.Context, audioPath string, start, end time.Duration, dst string) error {
	if _, err := os.Stat(audioPath); err != nil {
		return err
	}
	return os.WriteFile(dst, []byte(fmt.Sprintf("seg%d", int(start/s.window))), 0644)
}

func (s *stubDecoder) ExtractFrame(ctx context.Context, videoPath string, at time.Duration, dst string) error {
	return os.WriteFile(dst, []byte(fmt.Sprintf("%d", int(at.Seconds()))), 0644)
}

type stubTranscriber struct {
	mu     sync.Mutex
	calls  int
	failOn string
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if string(data) == s.failOn {
		return "", errors.New("503 service unavailable")
	}
	return string(data), nil
}

type identityTranslator struct{}

func (identityTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	return text, nil
}

type stubLabeler struct{}

func (stubLabeler) Label(ctx context.Context, image []byte, mimeType string) ([]string, error) {
	return []string{"frame" + string(image)}, nil
}

type fixture struct {
	cfg         *config.Config
	decoder     *stubDecoder
	transcriber *stubTranscriber
	proc        Processor
	dir         string
	video       string
}

func newFixture(t *testing.T, duration time.Duration) *fixture {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{}
	cfg.Transcription.Backend = config.BackendGemini
	cfg.Gemini.APIKeys = []string{"key"}
	cfg.Document.Format = config.FormatMarkdown
	cfg.Paths = config.PathsConfig{
		Work:   filepath.Join(dir, "work"),
		Temp:   filepath.Join(dir, "temp"),
		Output: filepath.Join(dir, "output"),
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	video := filepath.Join(dir, "lecture.mp4")
	if err := os.WriteFile(video, []byte("video"), 0644); err != nil {
		t.Fatal(err)
	}

	f := &fixture{
		cfg:         cfg,
		decoder:     &stubDecoder{duration: duration, window: cfg.Window()},
		transcriber: &stubTranscriber{},
		dir:         dir,
		video:       video,
	}
	f.proc = New(cfg, Deps{
		Decoder:     f.decoder,
		Transcriber: f.transcriber,
		Translator:  identityTranslator{},
		Labeler:     stubLabeler{},
		Writer:      document.MarkdownWriter{},
		Logger:      logger.Nop(),
	})
	return f
}

func (f *fixture) output(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.cfg.Paths.Output, "lecture_summary.md"))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	return string(data)
}

func (f *fixture) files(t *testing.T) artifacts {
	t.Helper()
	files, err := f.proc.(*implProcessor).artifacts(f.video)
	if err != nil {
		t.Fatal(err)
	}
	return files
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestProcessEndToEnd(t *testing.T) {
	f := newFixture(t, 100*time.Second)

	if err := f.proc.Process(context.Background(), f.video); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	want := "# Video Summary\n\nseg0 seg1 seg2\n\n## Frame Descriptions\n\n" +
		"Time: 0s - Description: frame0\n\n" +
		"Time: 60s - Description: frame60\n\n"
	if got := f.output(t); got != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
	if !exists(f.files(t).ledger) {
		t.Error("ledger was removed")
	}
	if exists(f.files(t).audio) {
		t.Error("audio kept although every segment succeeded")
	}
	entries, _ := os.ReadDir(f.cfg.Paths.Temp)
	if len(entries) != 0 {
		t.Errorf("temp dir not cleaned: %d entries", len(entries))
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	f := newFixture(t, 100*time.Second)
	ctx := context.Background()

	if err := f.proc.Process(ctx, f.video); err != nil {
		t.Fatal(err)
	}
	first := f.output(t)

	if err := f.proc.Process(ctx, f.video); err != nil {
		t.Fatal(err)
	}
	if f.transcriber.calls != 3 {
		t.Errorf("transcriber called %d times over two runs, want 3", f.transcriber.calls)
	}
	if got := f.output(t); got != first {
		t.Errorf("second run summary = %q, want %q", got, first)
	}
}

func TestProcessRetriesFailedSegmentOnRerun(t *testing.T) {
	f := newFixture(t, 100*time.Second)
	ctx := context.Background()

	f.transcriber.failOn = "seg1"
	if err := f.proc.Process(ctx, f.video); err != nil {
		t.Fatalf("Process() error = %v, failed units must not abort the run", err)
	}
	if got := f.output(t); !strings.Contains(got, "\n\nseg0 seg2\n\n") {
		t.Errorf("summary = %q, want the failed segment left out", got)
	}
	if !exists(f.files(t).audio) {
		t.Fatal("audio removed while a segment is outstanding")
	}

	f.transcriber.failOn = ""
	if err := f.proc.Process(ctx, f.video); err != nil {
		t.Fatal(err)
	}
	if got := f.output(t); !strings.Contains(got, "\n\nseg0 seg1 seg2\n\n") {
		t.Errorf("summary after rerun = %q", got)
	}
	if f.transcriber.calls != 4 {
		t.Errorf("transcriber called %d times, want 4 (3 + the retried segment)", f.transcriber.calls)
	}
	if f.decoder.audioCalls != 1 {
		t.Errorf("audio extracted %d times, want the first track reused", f.decoder.audioCalls)
	}
	if exists(f.files(t).audio) {
		t.Error("audio kept after the rerun completed every segment")
	}
}

func TestProcessSourceUnavailable(t *testing.T) {
	f := newFixture(t, 0)
	f.decoder.probeErr = fmt.Errorf("%w: lecture.mp4", media.ErrSourceUnavailable)

	err := f.proc.Process(context.Background(), f.video)
	if !errors.Is(err, media.ErrSourceUnavailable) {
		t.Fatalf("Process() error = %v, want ErrSourceUnavailable", err)
	}
	if exists(f.files(t).ledger) || f.decoder.audioCalls != 0 {
		t.Error("segment work started for an unreadable source")
	}
}

func TestProcessIgnoresPartialAudio(t *testing.T) {
	f := newFixture(t, 30*time.Second)
	if err := os.MkdirAll(f.cfg.Paths.Work, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(f.files(t).partial, []byte("torn"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := f.proc.Process(context.Background(), f.video); err != nil {
		t.Fatal(err)
	}
	if f.decoder.audioCalls != 1 {
		t.Errorf("audio extracted %d times, want 1", f.decoder.audioCalls)
	}
	if exists(f.files(t).partial) {
		t.Error("partial audio left behind")
	}
}

func TestProcessCancelled(t *testing.T) {
	f := newFixture(t, 100*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := f.proc.Process(ctx, f.video); !errors.Is(err, context.Canceled) {
		t.Errorf("Process() error = %v, want context.Canceled", err)
	}
}

func TestProcessChangedWindowStartsNewLedger(t *testing.T) {
	f := newFixture(t, 100*time.Second)
	ctx := context.Background()

	if err := f.proc.Process(ctx, f.video); err != nil {
		t.Fatal(err)
	}
	first := f.files(t).ledger

	f.cfg.Transcription.WindowSeconds = 30
	f.decoder.window = 30 * time.Second
	if err := f.proc.Process(ctx, f.video); err != nil {
		t.Fatal(err)
	}

	if got := f.output(t); !strings.Contains(got, "\n\nseg0 seg1 seg2 seg3\n\n") {
		t.Errorf("summary = %q, want the four 30s segments", got)
	}
	if f.transcriber.calls != 7 {
		t.Errorf("transcriber called %d times, want 3 + 4 with no 45s entries reused", f.transcriber.calls)
	}
	if second := f.files(t).ledger; second == first || !exists(first) || !exists(second) {
		t.Errorf("ledgers %s and %s, want one per window", first, second)
	}
}

func TestProcessSameNameInOtherDirectory(t *testing.T) {
	f := newFixture(t, 100*time.Second)
	ctx := context.Background()

	if err := f.proc.Process(ctx, f.video); err != nil {
		t.Fatal(err)
	}
	firstFiles := f.files(t)

	other := filepath.Join(f.dir, "other", "lecture.mp4")
	if err := os.MkdirAll(filepath.Dir(other), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(other, []byte("another video"), 0644); err != nil {
		t.Fatal(err)
	}
	f.video = other
	if err := f.proc.Process(ctx, f.video); err != nil {
		t.Fatal(err)
	}

	if f.files(t).ledger == firstFiles.ledger {
		t.Errorf("both videos use ledger %s", firstFiles.ledger)
	}
	if f.transcriber.calls != 6 {
		t.Errorf("transcriber called %d times, want 6: the second video reuses nothing", f.transcriber.calls)
	}
}

func TestProcessSplitsByAudioDuration(t *testing.T) {
	f := newFixture(t, 130*time.Second)
	f.decoder.audioDuration = 50 * time.Second

	if err := f.proc.Process(context.Background(), f.video); err != nil {
		t.Fatal(err)
	}

	want := "# Video Summary\n\nseg0 seg1\n\n## Frame Descriptions\n\n" +
		"Time: 0s - Description: frame0\n\n" +
		"Time: 60s - Description: frame60\n\n" +
		"Time: 120s - Description: frame120\n\n"
	if got := f.output(t); got != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
	if exists(f.files(t).audio) {
		t.Error("audio kept although every segment of the track succeeded")
	}
}

func TestProcessReextractsUnreadableAudio(t *testing.T) {
	f := newFixture(t, 30*time.Second)
	files := f.files(t)
	if err := os.MkdirAll(f.cfg.Paths.Work, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(files.audio, []byte("junk"), 0644); err != nil {
		t.Fatal(err)
	}

	dec := &flakyProbe{stubDecoder: f.decoder, failPath: files.audio, failures: 1}
	proc := New(f.cfg, Deps{
		Decoder:     dec,
		Transcriber: f.transcriber,
		Translator:  identityTranslator{},
		Labeler:     stubLabeler{},
		Writer:      document.MarkdownWriter{},
		Logger:      logger.Nop(),
	})
	if err := proc.Process(context.Background(), f.video); err != nil {
		t.Fatal(err)
	}
	if f.decoder.audioCalls != 1 {
		t.Errorf("audio extracted %d times, want the unreadable track replaced", f.decoder.audioCalls)
	}
}

// flakyProbe fails the first probes of failPath.
type flakyProbe struct {
	*stubDecoder
	failPath string
	failures int
}

func (p *flakyProbe) Probe(ctx context.Context, path string) (time.Duration, error) {
	if path == p.failPath && p.failures > 0 {
		p.failures--
		return 0, fmt.Errorf("%w: invalid data", media.ErrSourceUnavailable)
	}
	return p.stubDecoder.Probe(ctx, path)
}
