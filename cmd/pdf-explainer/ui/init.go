// Package ui provides console output helpers for the pdf-explainer CLI.
package ui

import (
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	// Out receives user-facing output.
	Out io.Writer = os.Stdout
	// ErrOut receives progress displays and errors.
	ErrOut io.Writer = os.Stderr
	// In is read by the prompts.
	In io.Reader = os.Stdin

	verboseFlag bool
)

// InitUI initializes the UI with color and verbose settings.
func InitUI(noColor, verbose bool) {
	verboseFlag = verbose

	if noColor {
		color.NoColor = true
	}
}

// Verbose reports whether verbose output was requested.
func Verbose() bool {
	return verboseFlag
}
