// Package rollup keeps the rolling window of prior-page summaries that is
// fed into each page's prompt.
package rollup

import (
	"fmt"
	"strings"

	"github.com/langlang056/pdf-for-college/internal/domain"
)

// SummaryLimit is the maximum number of runes kept in a PageSummary.
const SummaryLimit = 200

// Tracker holds at most K summaries in processing order. It belongs to a
// single run and is not safe for concurrent use.
type Tracker struct {
	max       int
	summaries []domain.PageSummary
}

// NewTracker returns a Tracker retaining k summaries. k <= 0 disables it.
func NewTracker(k int) *Tracker {
	if k < 0 {
		k = 0
	}
	return &Tracker{
		max:       k,
		summaries: make([]domain.PageSummary, 0, k),
	}
}

// Push appends s, evicting the oldest summary once more than K are held.
func (t *Tracker) Push(s domain.PageSummary) {
	if t.max == 0 {
		return
	}
	t.summaries = append(t.summaries, s)
	if over := len(t.summaries) - t.max; over > 0 {
		t.summaries = append(t.summaries[:0], t.summaries[over:]...)
	}
}

// Render formats the retained summaries oldest first, or returns "" when
// there are none.
func (t *Tracker) Render() string {
	if len(t.summaries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Summaries of preceding pages:")
	for _, s := range t.summaries {
		fmt.Fprintf(&b, "\n[Page %d] %s", s.PageNumber, s.Text)
	}
	return b.String()
}

// Len returns the number of retained summaries.
func (t *Tracker) Len() int {
	return len(t.summaries)
}

// Summaries returns a copy of the retained summaries.
func (t *Tracker) Summaries() []domain.PageSummary {
	out := make([]domain.PageSummary, len(t.summaries))
	copy(out, t.summaries)
	return out
}

// Summarize derives a short synopsis of an explanation: the non-empty,
// non-heading lines joined by single spaces and cut to SummaryLimit runes.
func Summarize(text string, pageNumber int) domain.PageSummary {
	var parts []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts = append(parts, strings.Join(strings.Fields(line), " "))
	}

	joined := strings.Join(parts, " ")
	if r := []rune(joined); len(r) > SummaryLimit {
		joined = strings.TrimSpace(string(r[:SummaryLimit])) + "..."
	}

	return domain.PageSummary{PageNumber: pageNumber, Text: joined}
}
