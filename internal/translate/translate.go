// Package translate translates the aggregate transcript chunk by chunk.
package translate

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/video-digest/internal/chunker"
	"github.com/nguyentantai21042004/video-digest/internal/logger"
	"github.com/nguyentantai21042004/video-digest/internal/workpool"
)

// Translator is the external translation service. Input never exceeds the configured chunk size.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// ChunkError is a failed translation of one chunk.
type ChunkError struct {
	Index int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("translate chunk %d: %v", e.Index, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }

type Result struct {
	Text     string
	Chunks   int
	Failures []*ChunkError
}

type Options struct {
	Source      string
	Target      string
	ChunkSize   int
	Concurrency int
}

type Service struct {
	translator Translator
	opts       Options
	logger     logger.Logger
}

func NewService(tr Translator, opts Options, log logger.Logger) *Service {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Service{translator: tr, opts: opts, logger: log}
}

// Translate chunks text, translates each chunk and reassembles the answers in chunk order.
// A failed chunk contributes an empty string and is reported in Result.Failures.
func (s *Service) Translate(ctx context.Context, text string) (Result, error) {
	chunks := chunker.Chunk(text, s.opts.ChunkSize)
	translated := make([]string, len(chunks))
	failures := make([]*ChunkError, len(chunks))

	s.logger.Info(ctx, "Translating %d chunk(s) %s -> %s", len(chunks), s.opts.Source, s.opts.Target)

	err := workpool.Run(ctx, len(chunks), s.opts.Concurrency, func(ctx context.Context, i int) error {
		out, err := s.translator.Translate(ctx, chunks[i], s.opts.Source, s.opts.Target)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn(ctx, "Chunk %d translation failed, leaving it empty: %v", i, err)
			failures[i] = &ChunkError{Index: i, Err: err}
			return nil
		}
		translated[i] = out
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	res := Result{Text: chunker.Reassemble(translated), Chunks: len(chunks)}
	for _, f := range failures {
		if f != nil {
			res.Failures = append(res.Failures, f)
		}
	}
	return res, nil
}
