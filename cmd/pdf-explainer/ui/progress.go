package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	warnMark = color.New(color.FgYellow).SprintFunc()
	errMark  = color.New(color.FgRed, color.Bold).SprintFunc()
	infoMark = color.New(color.FgCyan).SprintFunc()
	heading  = color.New(color.FgHiWhite, color.Bold).SprintFunc()
)

func line(w io.Writer, mark, format string, args []interface{}) {
	fmt.Fprintf(w, "%s %s\n", mark, fmt.Sprintf(format, args...))
}

// Error prints to ErrOut.
func Error(format string, args ...interface{}) { line(ErrOut, errMark("✗"), format, args) }

func Success(format string, args ...interface{}) { line(Out, okMark("✓"), format, args) }
func Warning(format string, args ...interface{}) { line(Out, warnMark("!"), format, args) }
func Info(format string, args ...interface{})    { line(Out, infoMark("•"), format, args) }

// Newline prints a blank line.
func Newline() {
	fmt.Fprintln(Out)
}

// Section prints an underlined title.
func Section(title string) {
	fmt.Fprintf(Out, "\n%s\n%s\n", heading(title), strings.Repeat("─", len([]rune(title))))
}
