package pdf

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/gen2brain/go-fitz"
	"github.com/langlang056/pdf-for-college/internal/domain"
)

// Opener opens PDFs with go-fitz.
type Opener struct{}

// NewOpener creates a new go-fitz backed opener
func NewOpener() *Opener {
	return &Opener{}
}

// Open validates pdfPath and opens it for rendering.
func (o *Opener) Open(pdfPath string) (domain.Renderer, error) {
	if _, err := CheckSource(pdfPath); err != nil {
		return nil, err
	}
	return NewConverter(pdfPath)
}

// Converter renders pages of one open PDF document using go-fitz
type Converter struct {
	mu  sync.Mutex
	doc *fitz.Document
}

// NewConverter opens the PDF at pdfPath
func NewConverter(pdfPath string) (*Converter, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, domain.ConversionError("Failed to open PDF", err)
	}
	return &Converter{doc: doc}, nil
}

// PageCount returns the number of pages in the document
func (c *Converter) PageCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil {
		return 0
	}
	return c.doc.NumPage()
}

// RenderPage renders a 1-indexed page at dpi and saves it as
// dir/page_NNNN.png.
func (c *Converter) RenderPage(ctx context.Context, pageNumber, dpi int, dir string) (domain.PageImage, error) {
	select {
	case <-ctx.Done():
		return domain.PageImage{}, ctx.Err()
	default:
	}

	if err := CheckDPI(dpi); err != nil {
		return domain.PageImage{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.doc == nil {
		return domain.PageImage{}, domain.ExtractionError("document is closed", nil)
	}
	if pageNumber < 1 || pageNumber > c.doc.NumPage() {
		return domain.PageImage{}, domain.ExtractionError(
			fmt.Sprintf("page %d out of range (1-%d)", pageNumber, c.doc.NumPage()), nil)
	}

	// go-fitz pages are 0-indexed
	img, err := c.doc.ImageDPI(pageNumber-1, float64(dpi))
	if err != nil {
		return domain.PageImage{}, domain.ExtractionError(fmt.Sprintf("Failed to render page %d", pageNumber), err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.PageImage{}, domain.IOError("Failed to create image directory", err)
	}

	outputPath := filepath.Join(dir, ImageFileName(pageNumber))
	outputFile, err := os.Create(outputPath)
	if err != nil {
		return domain.PageImage{}, domain.IOError(fmt.Sprintf("Failed to create output file for page %d", pageNumber), err)
	}

	err = png.Encode(outputFile, img)
	closeErr := outputFile.Close()
	if err != nil {
		return domain.PageImage{}, domain.ExtractionError(fmt.Sprintf("Failed to encode page %d as PNG", pageNumber), err)
	}
	if closeErr != nil {
		return domain.PageImage{}, domain.IOError(fmt.Sprintf("Failed to write page %d", pageNumber), closeErr)
	}

	bounds := img.Bounds()
	return domain.PageImage{
		PageNumber: pageNumber,
		ImagePath:  outputPath,
		DPI:        dpi,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
	}, nil
}

// PageText returns the text layer of a 1-indexed page
func (c *Converter) PageText(pageNumber int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.doc == nil {
		return "", domain.ExtractionError("document is closed", nil)
	}
	if pageNumber < 1 || pageNumber > c.doc.NumPage() {
		return "", domain.ExtractionError(fmt.Sprintf("page %d out of range", pageNumber), nil)
	}
	text, err := c.doc.Text(pageNumber - 1)
	if err != nil {
		return "", domain.ExtractionError(fmt.Sprintf("Failed to extract text of page %d", pageNumber), err)
	}
	return text, nil
}

// Close closes the PDF document. Safe to call more than once.
func (c *Converter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.doc == nil {
		return nil
	}
	err := c.doc.Close()
	c.doc = nil
	return err
}

// ImageFileName is the file name used for a rendered page.
func ImageFileName(pageNumber int) string {
	return fmt.Sprintf("page_%04d.png", pageNumber)
}
