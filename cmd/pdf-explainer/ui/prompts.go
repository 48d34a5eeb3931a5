package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

var answers = map[string]bool{"y": true, "yes": true, "n": false, "no": false}

// Buffered view of In, shared by consecutive prompts so piped answers are
// not swallowed by the first one.
var (
	inSource io.Reader
	inReader *bufio.Reader
)

func input() *bufio.Reader {
	if inReader == nil || inSource != In {
		inSource = In
		inReader = bufio.NewReader(In)
	}
	return inReader
}

// Confirm asks a yes/no question on Out and reads one line from In. An
// empty answer takes def; anything unrecognised counts as no. Input that
// ends before any answer is an error so unattended runs never proceed by
// accident.
func Confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(Out, "%s [%s]: ", question, hint)

	text, err := input().ReadString('\n')
	if err != nil && text == "" {
		if err == io.EOF {
			return false, io.ErrUnexpectedEOF
		}
		return false, err
	}

	reply := strings.ToLower(strings.TrimSpace(text))
	if reply == "" {
		return def, nil
	}
	return answers[reply], nil
}
