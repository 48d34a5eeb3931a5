// Package render writes explained pages out as Markdown and HTML documents.
package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/langlang056/pdf-for-college/internal/domain"
)

// Output formats.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatBoth     = "both"
)

// Document is everything a writer needs.
type Document struct {
	Title     string
	Source    string
	Provider  string
	Generated time.Time
	Pages     []domain.PageResult
}

// page is a PageResult with its image path made relative to the output file.
type page struct {
	Number      int
	Image       string
	Explanation string
}

type view struct {
	Title     string
	Source    string
	Provider  string
	Generated string
	Pages     []page
}

// NewDocument builds a Document titled after the source file name.
func NewDocument(source, provider string, pages []domain.PageResult) Document {
	base := filepath.Base(source)
	return Document{
		Title:     strings.TrimSuffix(base, filepath.Ext(base)),
		Source:    base,
		Provider:  provider,
		Generated: time.Now(),
		Pages:     pages,
	}
}

// Write renders doc into outputDir in the requested format and returns the
// paths written.
func Write(outputDir, format string, doc Document) ([]string, error) {
	var formats []string
	switch format {
	case FormatMarkdown, FormatHTML:
		formats = []string{format}
	case FormatBoth, "":
		formats = []string{FormatMarkdown, FormatHTML}
	default:
		return nil, domain.ValidationError(fmt.Sprintf("unknown output format %q", format), nil)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, domain.IOError("Failed to create output directory", err)
	}

	var written []string
	for _, f := range formats {
		var (
			path   string
			render func(io.Writer, view) error
		)
		switch f {
		case FormatMarkdown:
			path = filepath.Join(outputDir, doc.Title+"_explained.md")
			render = renderMarkdown
		case FormatHTML:
			path = filepath.Join(outputDir, doc.Title+"_explained.html")
			render = renderHTML
		}

		if err := writeFile(path, doc, render); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, doc Document, render func(io.Writer, view) error) error {
	f, err := os.Create(path)
	if err != nil {
		return domain.IOError(fmt.Sprintf("Failed to create %s", path), err)
	}

	err = render(f, newView(filepath.Dir(path), doc))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return domain.IOError(fmt.Sprintf("Failed to write %s", path), err)
	}
	return nil
}

func newView(dir string, doc Document) view {
	v := view{
		Title:     doc.Title,
		Source:    doc.Source,
		Provider:  doc.Provider,
		Generated: doc.Generated.Format("2006-01-02 15:04:05"),
		Pages:     make([]page, 0, len(doc.Pages)),
	}
	for _, p := range doc.Pages {
		v.Pages = append(v.Pages, page{
			Number:      p.PageNumber,
			Image:       relativeImage(dir, p.ImagePath),
			Explanation: strings.TrimSpace(p.Explanation),
		})
	}
	return v
}

// relativeImage makes image usable as a link from a file in dir.
func relativeImage(dir, image string) string {
	if image == "" {
		return ""
	}
	absDir, err1 := filepath.Abs(dir)
	absImg, err2 := filepath.Abs(image)
	if err1 == nil && err2 == nil {
		if rel, err := filepath.Rel(absDir, absImg); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(image)
}
