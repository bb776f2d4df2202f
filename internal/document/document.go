// Package document assembles the summary and writes it as docx or markdown.
package document

import (
	"fmt"
	"strings"
	"time"
)

const frameHeading = "Frame Descriptions"

// FrameSample is one described frame as it appears in the document.
type FrameSample struct {
	Timestamp time.Duration
	Labels    []string
}

// Line renders the frame the way it is printed, e.g. "Time: 60s - Description: person, laptop".
func (f FrameSample) Line() string {
	return fmt.Sprintf("Time: %ds - Description: %s", int64(f.Timestamp/time.Second), strings.Join(f.Labels, ", "))
}

// SummaryDocument is the in-memory result of a run.
type SummaryDocument struct {
	Title                string
	TranslatedTranscript string
	Frames               []FrameSample
}

// Section is a heading or a paragraph. Level 0 is the title, -1 marks body text.
type Section struct {
	Level int
	Text  string
}

const bodyLevel = -1

func (s Section) IsHeading() bool {
	return s.Level >= 0
}

// Assemble builds the document from the translated transcript and the sampled frames.
// Inputs are copied; the result shares no memory with the caller.
func Assemble(title, translated string, frames []FrameSample) SummaryDocument {
	doc := SummaryDocument{
		Title:                title,
		TranslatedTranscript: translated,
		Frames:               make([]FrameSample, len(frames)),
	}
	for i, f := range frames {
		doc.Frames[i] = FrameSample{
			Timestamp: f.Timestamp,
			Labels:    append([]string(nil), f.Labels...),
		}
	}
	return doc
}

// Sections lays the document out: title, transcript, then one paragraph per frame
// under the frame heading.
func (d SummaryDocument) Sections() []Section {
	sections := []Section{
		{Level: 0, Text: d.Title},
		{Level: bodyLevel, Text: d.TranslatedTranscript},
		{Level: 1, Text: frameHeading},
	}
	for _, f := range d.Frames {
		sections = append(sections, Section{Level: bodyLevel, Text: f.Line()})
	}
	return sections
}
