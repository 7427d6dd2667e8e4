package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/docsync/internal/convert"
	"github.com/pdiddy/docsync/internal/logger"
	"github.com/pdiddy/docsync/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <input_dir> <output_dir>",
	Short: "Convert on every change to the input directory",
	Long: `Watch runs an incremental convert once, then keeps watching input_dir
and runs it again whenever a .docx file is created, written, or renamed.
Changes are debounced so a burst of saves triggers a single run. Runs never
overlap. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	addSyncFlags(watchCmd)
	addBackendFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period after a change before converting")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}

	cfg := syncConfig(args)
	cfg.Force = false
	if err := convert.CheckInputDir(cfg.InputDir); err != nil {
		return err
	}

	backend := backendConfig()
	conv, err := newConverter(backend)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := watch.Options{
		Dir:      cfg.InputDir,
		Match:    func(name string) bool { return strings.HasSuffix(name, cfg.SourceExt) },
		Debounce: viper.GetDuration("debounce"),
	}
	return watch.Run(ctx, opts, func() error {
		summary, err := convert.Sync(cfg, conv, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if summary.HasFailures() {
			logger.Log.Warn("documents failed conversion", zap.Int("failed", summary.Failed))
		}
		return persistRun(ctx, summary.Run(cfg, string(backend.Backend)), "")
	})
}
