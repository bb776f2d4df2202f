// Package segment partitions a media stream into fixed-length transcription windows.
package segment

import (
	"fmt"
	"time"
)

// Segment is the half-open interval [Start, End) of the stream with position Index.
type Segment struct {
	Index int
	Start time.Duration
	End   time.Duration
}

// Length returns End - Start.
func (s Segment) Length() time.Duration {
	return s.End - s.Start
}

func (s Segment) String() string {
	return fmt.Sprintf("#%d [%s, %s)", s.Index, s.Start, s.End)
}

// Count returns ceil(duration / window), or 0 for an empty stream.
func Count(duration, window time.Duration) int {
	if window <= 0 {
		panic("segment: window must be positive")
	}
	if duration <= 0 {
		return 0
	}
	return int((duration + window - 1) / window)
}

// Split covers [0, duration) with contiguous windows of at most window length.
// Only the last segment may be shorter, and none is empty.
func Split(duration, window time.Duration) []Segment {
	n := Count(duration, window)
	segs := make([]Segment, 0, n)
	for i := 0; i < n; i++ {
		start := time.Duration(i) * window
		segs = append(segs, Segment{
			Index: i,
			Start: start,
			End:   min(start+window, duration),
		})
	}
	return segs
}
