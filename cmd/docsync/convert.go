package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docsync/internal/container"
	"github.com/pdiddy/docsync/internal/convert"
	"github.com/pdiddy/docsync/internal/history"
	"github.com/pdiddy/docsync/internal/report"
	"github.com/pdiddy/docsync/internal/secrets"
	"github.com/pdiddy/docsync/pkg/types"
)

const (
	defaultTimeout   = 2 * time.Minute
	defaultUserAgent = "docsync/0.1"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input_dir> <output_dir>",
	Short: "Convert DOCX files in a directory to PDF",
	Long: `Convert scans input_dir for .docx files and writes a PDF for each into
output_dir, creating output_dir if needed. A document is converted when its
PDF is missing or older than the document; up-to-date PDFs are skipped.
Use --force to convert every document regardless of timestamps.

A failing document is reported and counted but does not stop the run. The
command exits non-zero if the input directory is missing, the output
directory cannot be created, or any document failed.`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().Bool("force", false, "convert every document, ignoring timestamps")
	addSyncFlags(convertCmd)
	addBackendFlags(convertCmd)
	convertCmd.Flags().String("report", "", "write a YAML report of the run to this file")

	rootCmd.AddCommand(convertCmd)
}

// addSyncFlags registers the scan flags shared by convert and watch.
func addSyncFlags(cmd *cobra.Command) {
	cmd.Flags().String("source-ext", types.DefaultSourceExt, "suffix selecting source documents")
	cmd.Flags().String("target-ext", types.DefaultTargetExt, "suffix of rendered artifacts")
	cmd.Flags().String("history", "", "record runs in this SQLite database")
}

// addBackendFlags registers the converter flags shared by convert and watch.
func addBackendFlags(cmd *cobra.Command) {
	cmd.Flags().String("backend", string(types.BackendSoffice), "conversion backend: soffice, container, or gotenberg")
	cmd.Flags().String("soffice-bin", "soffice", "LibreOffice binary for the soffice backend")
	cmd.Flags().String("runtime", "", "container runtime for the container backend: docker or podman (default: detect)")
	cmd.Flags().String("image", convert.DefaultImage, "LibreOffice image for the container backend")
	cmd.Flags().String("gotenberg-url", "", "Gotenberg base URL for the gotenberg backend")
	cmd.Flags().Duration("timeout", 0, "HTTP timeout for the gotenberg backend (default 2m)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}

	cfg := syncConfig(args)
	if err := convert.CheckInputDir(cfg.InputDir); err != nil {
		return err
	}

	backend := backendConfig()
	conv, err := newConverter(backend)
	if err != nil {
		return err
	}

	summary, err := convert.Sync(cfg, conv, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	run := summary.Run(cfg, string(backend.Backend))
	if err := persistRun(cmd.Context(), run, viper.GetString("report")); err != nil {
		return err
	}

	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed conversion", summary.Failed)
	}
	return nil
}

func syncConfig(args []string) types.SyncConfig {
	return types.SyncConfig{
		InputDir:  args[0],
		OutputDir: args[1],
		Force:     viper.GetBool("force"),
		SourceExt: viper.GetString("source_ext"),
		TargetExt: viper.GetString("target_ext"),
	}.WithDefaults()
}

func backendConfig() types.BackendConfig {
	timeout := viper.GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return types.BackendConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		Backend:      types.ConversionBackend(viper.GetString("backend")),
		SofficeBin:   viper.GetString("soffice_bin"),
		Runtime:      viper.GetString("runtime"),
		Image:        viper.GetString("image"),
		GotenbergURL: viper.GetString("gotenberg_url"),
		Username:     loadedSecrets.Get(secrets.GotenbergUsername, viper.GetString("gotenberg_username")),
		Password:     loadedSecrets.Get(secrets.GotenbergPassword, viper.GetString("gotenberg_password")),
	}
}

// newConverter builds the backend selected by cfg.Backend.
func newConverter(cfg types.BackendConfig) (convert.Converter, error) {
	switch cfg.Backend {
	case types.BackendSoffice:
		return convert.NewSofficeConverter(cfg.SofficeBin)
	case types.BackendContainer:
		rt, err := container.DetectRuntime(cfg.Runtime)
		if err != nil {
			return nil, err
		}
		return convert.NewContainerConverter(rt, cfg.Image)
	case types.BackendGotenberg:
		client := &http.Client{Timeout: cfg.Timeout}
		return convert.NewGotenbergConverter(client, cfg)
	default:
		return nil, fmt.Errorf("unknown backend %q: want %s, %s, or %s",
			cfg.Backend, types.BackendSoffice, types.BackendContainer, types.BackendGotenberg)
	}
}

// persistRun writes the optional report file and history record.
func persistRun(ctx context.Context, run types.Run, reportPath string) error {
	if reportPath != "" {
		if err := report.Write(reportPath, run); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "report written to %s\n", reportPath)
	}

	dbPath := viper.GetString("history")
	if dbPath == "" {
		return nil
	}
	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := store.Record(ctx, run); err != nil {
		return fmt.Errorf("recording run history: %w", err)
	}
	return nil
}
