package ui

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
)

// Fields prints label/value pairs as an aligned two-column block.
func Fields(pairs ...[2]string) {
	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	for _, p := range pairs {
		fmt.Fprintf(w, "  %s:\t%s\n", p[0], p[1])
	}
	_ = w.Flush()
}

// FormatDuration rounds to the second, or to the millisecond below one second.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

// FormatSize renders a byte count, e.g. "2.4 MB".
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.Bytes(uint64(bytes))
}

// FormatCost renders a USD estimate.
func FormatCost(usd float64) string {
	return fmt.Sprintf("$%.2f", usd)
}

// FormatTime renders a timestamp with its age, e.g. "2024-05-01 10:00 (3 hours ago)".
func FormatTime(t time.Time) string {
	return fmt.Sprintf("%s (%s)", t.Local().Format("2006-01-02 15:04"), humanize.Time(t))
}
