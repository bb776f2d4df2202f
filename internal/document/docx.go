package document

import (
	"fmt"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName = "Times New Roman"
	fontSize = 13
)

// DocxWriter renders the document with godocx.
type DocxWriter struct{}

func (DocxWriter) Ext() string { return ".docx" }

func (DocxWriter) Write(doc SummaryDocument, path string) error {
	return writeAtomic(path, func(tmp string) error {
		d, err := godocx.NewDocument()
		if err != nil {
			return fmt.Errorf("new docx: %w", err)
		}

		for _, s := range doc.Sections() {
			p := d.AddParagraph("")
			if s.IsHeading() {
				addStyledRun(p, s.Text, true, headingSize(s.Level))
				continue
			}
			addStyledRun(p, s.Text, false, fontSize)
		}

		if err := d.SaveTo(tmp); err != nil {
			return fmt.Errorf("save docx: %w", err)
		}
		return nil
	})
}

func headingSize(level int) uint64 {
	switch level {
	case 0:
		return 16
	case 1:
		return 15
	case 2:
		return 14
	default:
		return fontSize
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}
