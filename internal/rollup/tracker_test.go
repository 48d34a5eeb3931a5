package rollup

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langlang056/pdf-for-college/internal/domain"
)

func summary(page int) domain.PageSummary {
	return domain.PageSummary{PageNumber: page, Text: "gist of page"}
}

func pages(ss []domain.PageSummary) []int {
	out := make([]int, len(ss))
	for i, s := range ss {
		out[i] = s.PageNumber
	}
	return out
}

func TestTracker_EvictsOldest(t *testing.T) {
	tests := []struct {
		name string
		k    int
		push []int
		want []int
	}{
		{name: "under capacity", k: 3, push: []int{1, 2}, want: []int{1, 2}},
		{name: "at capacity", k: 2, push: []int{1, 2}, want: []int{1, 2}},
		{name: "one over", k: 2, push: []int{1, 2, 3}, want: []int{2, 3}},
		{name: "k one", k: 1, push: []int{1, 2, 3}, want: []int{3}},
		{name: "disabled", k: 0, push: []int{1, 2, 3}, want: []int{}},
		{name: "negative disables", k: -1, push: []int{1}, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(tt.k)
			for _, p := range tt.push {
				tr.Push(summary(p))
				assert.LessOrEqual(t, tr.Len(), max(tt.k, 0))
			}
			assert.Equal(t, tt.want, pages(tr.Summaries()))
		})
	}
}

func TestTracker_Render(t *testing.T) {
	tr := NewTracker(2)
	assert.Equal(t, "", tr.Render())

	tr.Push(domain.PageSummary{PageNumber: 1, Text: "Intro to sets."})
	tr.Push(domain.PageSummary{PageNumber: 2, Text: "Set operations."})

	assert.Equal(t, "Summaries of preceding pages:\n[Page 1] Intro to sets.\n[Page 2] Set operations.", tr.Render())

	tr.Push(domain.PageSummary{PageNumber: 3, Text: "Functions."})
	out := tr.Render()
	assert.NotContains(t, out, "[Page 1]")
	assert.Contains(t, out, "[Page 2]")
	assert.Contains(t, out, "[Page 3]")
}

func TestTracker_SummariesIsCopy(t *testing.T) {
	tr := NewTracker(2)
	tr.Push(summary(1))

	got := tr.Summaries()
	got[0].PageNumber = 99

	assert.Equal(t, []int{1}, pages(tr.Summaries()))
}

func TestSummarize_SkipsHeadingsAndBlankLines(t *testing.T) {
	text := "# Page 4\n\n## Key idea\nA   derivative measures\n\n  rate of change.  \n### Example\nf(x) = x^2"
	s := Summarize(text, 4)

	assert.Equal(t, 4, s.PageNumber)
	assert.Equal(t, "A derivative measures rate of change. f(x) = x^2", s.Text)
}

func TestSummarize_Truncates(t *testing.T) {
	s := Summarize(strings.Repeat("word ", 100), 1)

	require.True(t, strings.HasSuffix(s.Text, "..."))
	assert.LessOrEqual(t, utf8.RuneCountInString(strings.TrimSuffix(s.Text, "...")), SummaryLimit)
}

func TestSummarize_CountsRunes(t *testing.T) {
	s := Summarize(strings.Repeat("导数", 150), 1)

	assert.True(t, utf8.ValidString(s.Text))
	assert.Equal(t, SummaryLimit, utf8.RuneCountInString(strings.TrimSuffix(s.Text, "...")))
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, "", Summarize("# Only a heading\n\n", 2).Text)
}
