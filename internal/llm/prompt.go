package llm

import (
	"fmt"
	"strings"

	"github.com/langlang056/pdf-for-college/internal/domain"
)

// BuildPrompt assembles the text sent alongside a page image: a page tag,
// the instruction template, then any prior-page context and page text.
func BuildPrompt(template string, req domain.AnalysisRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Page %d]\n\n%s", req.PageNumber, template)

	if ctx := strings.TrimSpace(req.PriorContext); ctx != "" {
		b.WriteString("\n\n")
		b.WriteString(ctx)
	}
	if aux := strings.TrimSpace(req.AuxiliaryText); aux != "" {
		b.WriteString("\n\nAdditional context:\n")
		b.WriteString(aux)
	}
	return b.String()
}
