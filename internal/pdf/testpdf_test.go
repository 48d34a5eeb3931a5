package pdf

import (
	"testing"

	"github.com/langlang056/pdf-for-college/internal/pdf/pdftest"
)

func writeTestPDF(t *testing.T, texts ...string) string {
	t.Helper()
	return pdftest.Write(t, texts...)
}
