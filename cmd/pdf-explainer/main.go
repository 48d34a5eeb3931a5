package main

import (
	"os"

	"github.com/langlang056/pdf-for-college/cmd/pdf-explainer/commands"
	"github.com/langlang056/pdf-for-college/cmd/pdf-explainer/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		ui.Error("%v", err)
		os.Exit(1)
	}
}
