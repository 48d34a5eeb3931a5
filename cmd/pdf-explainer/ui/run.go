package ui

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/schollz/progressbar/v3"

	"github.com/langlang056/pdf-for-college/internal/domain"
)

// RunView draws a run's progress from its events: a spinner while pages
// render, then a page bar while they are explained.
type RunView struct {
	spin *spinner.Spinner
	bar  *progressbar.ProgressBar
}

// NewRunView returns an idle view.
func NewRunView() *RunView {
	return &RunView{}
}

// Watch consumes events until the channel closes.
func (v *RunView) Watch(events <-chan domain.StreamEvent) {
	for event := range events {
		v.Handle(event)
	}
	v.stopSpinner()
}

// Handle updates the display for one event.
func (v *RunView) Handle(event domain.StreamEvent) {
	switch event.Type {
	case domain.EventCacheHit:
		Success("%v", event.Payload)

	case domain.EventRangeSelected:
		v.startSpinner(fmt.Sprintf("Rendering %d page(s)", event.Total))

	case domain.EventPageExtracted:
		if v.spin != nil {
			v.spin.Suffix = fmt.Sprintf(" Rendered page %d", event.PageNumber)
		}

	case domain.EventPageProcessing:
		v.stopSpinner()
		if v.bar == nil {
			v.bar = newPageBar(event.Total)
		}
		v.bar.Describe(fmt.Sprintf("Page %d", event.PageNumber))

	case domain.EventPageComplete:
		v.advance()

	case domain.EventPageFailed:
		v.advance()
		if page, ok := event.Payload.(domain.PageResult); ok && Verbose() {
			Error("%s", page.Explanation)
		}

	case domain.EventError:
		v.stopSpinner()

	case domain.EventComplete:
		v.stopSpinner()
		if v.bar != nil {
			_ = v.bar.Finish()
		}
	}
}

func (v *RunView) startSpinner(msg string) {
	v.stopSpinner()
	v.spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(ErrOut))
	v.spin.Suffix = " " + msg
	v.spin.Start()
}

func (v *RunView) stopSpinner() {
	if v.spin != nil {
		v.spin.Stop()
		v.spin = nil
	}
}

func (v *RunView) advance() {
	if v.bar != nil {
		_ = v.bar.Add(1)
	}
}

func newPageBar(pages int) *progressbar.ProgressBar {
	return progressbar.NewOptions(pages,
		progressbar.OptionSetWriter(ErrOut),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(ErrOut) }),
		progressbar.OptionSetRenderBlankState(true),
	)
}
