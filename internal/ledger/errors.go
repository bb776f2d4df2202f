package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Get for an index that was never recorded.
	ErrNotFound = errors.New("ledger: entry not found")
	// ErrDuplicateIndex is returned by Append for an index that is already recorded.
	ErrDuplicateIndex = errors.New("ledger: index already recorded")
	// ErrClosed is returned by Append after Close.
	ErrClosed = errors.New("ledger: closed")
	// ErrBroken is returned by Append once a failed write could not be rolled back.
	ErrBroken = errors.New("ledger: store left with a partial record")
)

// MalformedRecordError describes a record that was discarded while loading the store.
type MalformedRecordError struct {
	Line   int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("ledger: malformed record at line %d: %s", e.Line, e.Reason)
}
