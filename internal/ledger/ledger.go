// Package ledger is the durable, append-only record of finished segment transcriptions.
//
// The store is a text file with one checksummed record per line. It is read in full by Open,
// every Append is written and fsynced before it returns, and a record torn by a crash is
// dropped on the next Open so the segment it belonged to gets transcribed again.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/nguyentantai21042004/video-digest/internal/logger"
)

// storeFile is the part of *os.File the ledger writes through.
type storeFile interface {
	io.Writer
	Sync() error
	Truncate(size int64) error
	Close() error
}

type Ledger struct {
	mu        sync.Mutex
	path      string
	file      storeFile
	size      int64
	broken    error
	entries   map[int]string
	discarded []error
	logger    logger.Logger
}

// Open loads the store at path, creating it when absent.
func Open(ctx context.Context, path string, log logger.Logger) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	created := errors.Is(err, os.ErrNotExist)

	entries, valid, discarded := parse(data)
	for _, d := range discarded {
		log.Warn(ctx, "Discarding ledger record in %s: %v", path, d)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	if valid < int64(len(data)) {
		if err := f.Truncate(valid); err != nil {
			f.Close()
			return nil, fmt.Errorf("drop torn ledger tail: %w", err)
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return nil, fmt.Errorf("sync ledger: %w", err)
		}
	}
	if created {
		syncDir(filepath.Dir(path))
	}

	log.Debug(ctx, "Ledger %s loaded: %d records, %d discarded", path, len(entries), len(discarded))

	return &Ledger{
		path:      path,
		file:      f,
		size:      valid,
		entries:   entries,
		discarded: discarded,
		logger:    log,
	}, nil
}

// Path returns the location of the store.
func (l *Ledger) Path() string {
	return l.path
}

// Has reports whether index is recorded.
func (l *Ledger) Has(index int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.entries[index]
	return ok
}

// Get returns the transcript recorded for index.
func (l *Ledger) Get(index int) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.entries[index]
	if !ok {
		return "", fmt.Errorf("%w: index %d", ErrNotFound, index)
	}
	return t, nil
}

// Entries returns a copy of every recorded transcript keyed by segment index.
func (l *Ledger) Entries() map[int]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[int]string, len(l.entries))
	for k, v := range l.entries {
		out[k] = v
	}
	return out
}

// Len returns the number of recorded entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Discarded returns the records dropped by Open, each a *MalformedRecordError.
func (l *Ledger) Discarded() []error {
	return append([]error(nil), l.discarded...)
}

// Append durably records transcript for index. Recording an index twice is an error.
func (l *Ledger) Append(index int, transcript string) error {
	if index < 0 {
		return fmt.Errorf("ledger: negative index %d", index)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return ErrClosed
	}
	if l.broken != nil {
		return l.broken
	}
	if _, ok := l.entries[index]; ok {
		return fmt.Errorf("%w: index %d", ErrDuplicateIndex, index)
	}

	rec := encodeRecord(index, transcript)
	if _, err := l.file.Write(rec); err != nil {
		l.rollback()
		return fmt.Errorf("write ledger record %d: %w", index, err)
	}
	if err := l.file.Sync(); err != nil {
		l.rollback()
		return fmt.Errorf("sync ledger record %d: %w", index, err)
	}

	l.size += int64(len(rec))
	l.entries[index] = transcript
	return nil
}

// Close releases the underlying file. Recorded entries stay readable.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// rollback cuts a partially written record. When that fails the tail of the file is unknown,
// so the ledger refuses further appends; the next Open drops the torn record.
func (l *Ledger) rollback() {
	if err := l.file.Truncate(l.size); err != nil {
		l.broken = fmt.Errorf("%w: truncate %s to %d bytes: %v", ErrBroken, l.path, l.size, err)
		l.logger.Error(context.Background(), "Failed to roll back ledger: %v", l.broken)
	}
}

func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	defer d.Close()
	_ = d.Sync()
}
