package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/langlang056/pdf-for-college/cmd/pdf-explainer/ui"
	"github.com/langlang056/pdf-for-college/internal/cache"
	"github.com/langlang056/pdf-for-college/internal/domain"
	"github.com/langlang056/pdf-for-college/internal/explain"
	"github.com/langlang056/pdf-for-college/internal/pdf"
)

var cacheOutput string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear cached results",
}

var cacheShowCmd = &cobra.Command{
	Use:   "show <pdf>",
	Short: "Show the cached results for a PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheShow,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear <pdf>",
	Short: "Delete the cached results for a PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.PersistentFlags().StringVarP(&cacheOutput, "output", "o", "", "output directory holding the cache (default from config)")
	cacheCmd.AddCommand(cacheShowCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func cacheService() (*explain.Service, string, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	if cacheOutput != "" {
		cfg.Output.Dir = cacheOutput
	}
	return explain.NewService(cfg, pdf.NewOpener(), nil, newLogger(cfg)), cfg.Output.Dir, nil
}

func runCacheShow(cmd *cobra.Command, args []string) error {
	svc, outDir, err := cacheService()
	if err != nil {
		return err
	}

	rec, err := svc.CachedRecord(cmd.Context(), args[0], outDir)
	switch {
	case errors.Is(err, cache.ErrCacheMiss):
		ui.Info("No cached results for %s", args[0])
		return nil
	case errors.Is(err, domain.ErrCacheCorrupt):
		ui.Warning("Cached results for %s are unusable and will be ignored: %v", args[0], err)
		return nil
	case err != nil:
		return err
	}

	ui.Section("Cached results")
	ui.Fields(
		[2]string{"Fingerprint", rec.Fingerprint},
		[2]string{"Source", rec.Source},
		[2]string{"Provider", rec.Provider},
		[2]string{"Created", ui.FormatTime(rec.CreatedAt)},
		[2]string{"Pages", strconv.Itoa(len(rec.Pages))},
	)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	svc, outDir, err := cacheService()
	if err != nil {
		return err
	}

	if err := svc.ClearCache(cmd.Context(), args[0], outDir); err != nil {
		return err
	}
	ui.Success("Cleared cached results for %s", args[0])
	return nil
}
