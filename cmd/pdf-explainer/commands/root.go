// Package commands implements the pdf-explainer command tree.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/langlang056/pdf-for-college/cmd/pdf-explainer/ui"
	"github.com/langlang056/pdf-for-college/internal/config"
	"github.com/langlang056/pdf-for-college/internal/observability"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	verbose    bool
	noColor    bool
}

var global globalOptions

var rootCmd = &cobra.Command{
	Use:   "pdf-explainer",
	Short: "Explain lecture slides page by page with a vision model",
	Long: `pdf-explainer renders each page of a PDF slide deck, asks a vision-capable
language model to explain it with the preceding pages as context, and writes
the explanations out as Markdown and HTML. Results are cached per file
content so a rerun costs nothing.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.InitUI(global.noColor, global.verbose)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&global.configPath, "config", "c", "", "YAML config file (defaults plus .env and environment when omitted)")
	pf.BoolVarP(&global.verbose, "verbose", "v", false, "debug logging and per-page failure details")
	pf.BoolVar(&global.noColor, "no-color", false, "disable colored output")
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

// readConfig loads configuration without validating it so flags can still
// fill in what the file and environment leave out.
func readConfig() (*config.Config, error) {
	return config.Read(global.configPath)
}

// newLogger builds the run logger; --verbose forces debug level.
func newLogger(cfg *config.Config) *observability.Logger {
	level := cfg.Observability.LogLevel
	if global.verbose {
		level = "debug"
	}
	return observability.NewLogger(observability.LogConfig{
		Level:       level,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "pdf-explainer",
	})
}
