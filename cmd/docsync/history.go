package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docsync/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded convert runs",
	Long: `History lists runs recorded with --history, newest first. Use --run to
show the per-file outcomes of one run. The history database is an audit log
only; it never influences which documents are converted.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("history", "", "SQLite database written by convert --history")
	historyCmd.Flags().Int("limit", 10, "maximum number of runs to list")
	historyCmd.Flags().Int64("run", 0, "show the files of this run ID")
	historyCmd.Flags().Bool("json", false, "print JSON instead of a table")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}
	dbPath := viper.GetString("history")
	if dbPath == "" {
		return fmt.Errorf("no history database: pass --history or set history in the config file")
	}
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("history database %s: %w", dbPath, err)
	}

	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	jsonOutput, _ := cmd.Flags().GetBool("json")
	runID, _ := cmd.Flags().GetInt64("run")

	if runID > 0 {
		files, err := store.Files(cmd.Context(), runID)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(out, files)
		}
		if len(files) == 0 {
			fmt.Fprintf(out, "No files recorded for run %d.\n", runID)
			return nil
		}
		fmt.Fprintf(out, "%-10s  %-40s  %s\n", "Status", "Document", "Error")
		fmt.Fprintln(out, strings.Repeat("-", 80))
		for _, f := range files {
			fmt.Fprintf(out, "%-10s  %-40s  %s\n", f.Status, f.Name, f.Error)
		}
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(out, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(out, "%-5s  %-19s  %-9s  %5s  %9s  %7s  %6s  %s\n",
		"ID", "Started", "Backend", "Found", "Converted", "Skipped", "Failed", "Input")
	fmt.Fprintln(out, strings.Repeat("-", 100))
	for _, r := range runs {
		input := r.InputDir
		if r.Force {
			input += " (force)"
		}
		fmt.Fprintf(out, "%-5d  %-19s  %-9s  %5d  %9d  %7d  %6d  %s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Backend,
			r.Found, r.Converted, r.Skipped, r.Failed, input)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
