package document

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	FormatDocx     = "docx"
	FormatMarkdown = "markdown"
)

// Writer persists a SummaryDocument. A failed write never leaves a partial file at path.
type Writer interface {
	Write(doc SummaryDocument, path string) error
	Ext() string
}

// NewWriter returns the writer for format.
func NewWriter(format string) (Writer, error) {
	switch format {
	case FormatDocx, "":
		return DocxWriter{}, nil
	case FormatMarkdown:
		return MarkdownWriter{}, nil
	default:
		return nil, fmt.Errorf("unknown document format %q", format)
	}
}

// OutputPath is where the summary of the video named base goes inside dir.
func OutputPath(dir, base string, w Writer) string {
	return filepath.Join(dir, base+"_summary"+w.Ext())
}

// writeAtomic lets write fill a temp file next to dest, then renames it into place.
func writeAtomic(dest string, write func(tmp string) error) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*"+filepath.Ext(dest))
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	defer os.Remove(tmpName)

	if err := write(tmpName); err != nil {
		return err
	}
	if err := syncFile(tmpName); err != nil {
		return err
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("rename temp -> %s: %w", dest, err)
	}
	return nil
}

func syncFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	return nil
}
