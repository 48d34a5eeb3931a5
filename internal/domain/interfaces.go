package domain

import "context"

// Renderer produces page images from an open PDF document. One Renderer
// serves a bounded sequence of pages without reopening the document.
type Renderer interface {
	// PageCount returns the number of pages in the open document
	PageCount() int

	// RenderPage rasterises a 1-indexed page at dpi and writes it to dir
	RenderPage(ctx context.Context, pageNumber, dpi int, dir string) (PageImage, error)

	// PageText returns the embedded text of a 1-indexed page
	PageText(pageNumber int) (string, error)

	// Close releases the document handle
	Close() error
}

// Opener opens a PDF for rendering.
type Opener interface {
	Open(pdfPath string) (Renderer, error)
}

// AnalysisRequest is everything a provider needs for one page.
type AnalysisRequest struct {
	PageNumber    int
	ImagePath     string
	PriorContext  string
	AuxiliaryText string
}

// Analyzer sends one page image plus prompt to a vision model and returns
// its explanation text verbatim.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (string, error)
}
