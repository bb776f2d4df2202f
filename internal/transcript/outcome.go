package transcript

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nguyentantai21042004/video-digest/internal/segment"
)

type Status int

const (
	// StatusCached: the ledger already held the segment, nothing was called.
	StatusCached Status = iota
	// StatusTranscribed: the service answered and the answer was recorded.
	StatusTranscribed
	// StatusFailed: the service call failed; the segment contributes no text and is retried next run.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusCached:
		return "cached"
	case StatusTranscribed:
		return "transcribed"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ServiceError is a failed transcription of one segment.
type ServiceError struct {
	Index int
	Err   error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("transcribe segment %d: %v", e.Index, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Outcome is the result of processing one segment. Text is empty when Status is StatusFailed,
// which keeps "the call failed" distinguishable from "the segment is silent".
type Outcome struct {
	Segment segment.Segment
	Text    string
	Status  Status
	Err     error
}

// Stats counts outcomes by status.
type Stats struct {
	Cached        int
	Transcribed   int
	Failed        int
	FailedIndices []int
}

// Complete reports whether every segment has a recorded transcript.
func (s Stats) Complete() bool {
	return s.Failed == 0
}

// Summarize tallies outcomes.
func Summarize(outcomes []Outcome) Stats {
	var st Stats
	for _, o := range outcomes {
		switch o.Status {
		case StatusCached:
			st.Cached++
		case StatusTranscribed:
			st.Transcribed++
		case StatusFailed:
			st.Failed++
			st.FailedIndices = append(st.FailedIndices, o.Segment.Index)
		}
	}
	return st
}

// Join concatenates the non-empty segment texts in ascending segment order, separated by one space.
func Join(outcomes []Outcome) string {
	ordered := append([]Outcome(nil), outcomes...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Segment.Index < ordered[j].Segment.Index
	})

	parts := make([]string, 0, len(ordered))
	for _, o := range ordered {
		if t := strings.TrimSpace(o.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
