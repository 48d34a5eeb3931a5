package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/langlang056/pdf-for-college/internal/domain"
)

// Render resolution bounds accepted by RenderPage.
const (
	MinDPI = 36
	MaxDPI = 600
)

var pdfMagic = []byte("%PDF-")

// CheckSource confirms path names a readable, non-empty file with a .pdf
// extension whose content starts with the PDF header.
func CheckSource(path string) (os.FileInfo, error) {
	if strings.TrimSpace(path) == "" {
		return nil, domain.ValidationError("no PDF path given", nil)
	}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return nil, domain.ValidationError(fmt.Sprintf("PDF not found: %s", path), err)
	case err != nil:
		return nil, domain.ValidationError(fmt.Sprintf("cannot stat %s", path), err)
	case !info.Mode().IsRegular():
		return nil, domain.ValidationError(fmt.Sprintf("%s is not a regular file", path), nil)
	case !strings.EqualFold(filepath.Ext(path), ".pdf"):
		return nil, domain.ValidationError(fmt.Sprintf("%s does not have a .pdf extension", path), nil)
	case info.Size() == 0:
		return nil, domain.ValidationError(fmt.Sprintf("%s is empty", path), nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, domain.ValidationError(fmt.Sprintf("cannot open %s", path), err)
	}
	defer f.Close()

	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, pdfMagic) {
		return nil, domain.ValidationError(fmt.Sprintf("%s is not a PDF document", path), err)
	}
	return info, nil
}

// CheckDPI rejects resolutions outside [MinDPI, MaxDPI].
func CheckDPI(dpi int) error {
	if dpi < MinDPI || dpi > MaxDPI {
		return domain.ValidationError(fmt.Sprintf("dpi must be between %d and %d, got %d", MinDPI, MaxDPI, dpi), nil)
	}
	return nil
}
