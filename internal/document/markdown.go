package document

import (
	"fmt"
	"os"
	"strings"
)

// MarkdownWriter renders the document as plain markdown.
type MarkdownWriter struct{}

func (MarkdownWriter) Ext() string { return ".md" }

func (MarkdownWriter) Write(doc SummaryDocument, path string) error {
	content := Markdown(doc)
	return writeAtomic(path, func(tmp string) error {
		if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
			return fmt.Errorf("write markdown: %w", err)
		}
		return nil
	})
}

// Markdown renders doc: the title as "#", level-1 headings as "##", body as paragraphs.
func Markdown(doc SummaryDocument) string {
	var b strings.Builder
	for _, s := range doc.Sections() {
		if s.IsHeading() {
			b.WriteString(strings.Repeat("#", s.Level+1))
			b.WriteString(" ")
		}
		b.WriteString(s.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}
