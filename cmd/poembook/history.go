// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/pdiddy/poembook/internal/journal"
	"github.com/pdiddy/poembook/pkg/types"
)

const historyWrap = 76

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the outcome of every topic in the latest pages run",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Bool("failed", false, "show only failed topics")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	path := cfg.Paths.JournalFile()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no journal at %s; run pages first", path)
	}

	store, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.LatestRun(cmd.Context())
	if err != nil {
		return err
	}
	entries, err := store.Outcomes(cmd.Context(), run.ID)
	if err != nil {
		return err
	}

	onlyFailed, _ := cmd.Flags().GetBool("failed")
	printHistory(cmd.OutOrStdout(), run, entries, onlyFailed)
	return nil
}

func printHistory(w io.Writer, run types.Run, entries []types.RunEntry, onlyFailed bool) {
	fmt.Fprintf(w, "run %s  %s  kind=%s mode=%s model=%s\n",
		run.ID, run.StartedAt.Local().Format(time.DateTime), run.Kind, run.Mode, run.Model)
	if run.FinishedAt.IsZero() {
		fmt.Fprintln(w, "  (unfinished)")
	}

	counts := make(map[types.OutcomeStatus]int)
	for _, e := range entries {
		counts[e.Status]++
		if onlyFailed && e.Status != types.StatusFailed {
			continue
		}
		fmt.Fprintf(w, "[%d] %-8s %s\n", e.Index, e.Status, e.Topic)
		if e.Error != "" {
			wrapped := wordwrap.String(e.Error, historyWrap)
			fmt.Fprintln(w, "      "+strings.ReplaceAll(wrapped, "\n", "\n      "))
		}
	}
	fmt.Fprintf(w, "%d written, %d renamed, %d skipped, %d failed\n",
		counts[types.StatusWritten], counts[types.StatusRenamed], counts[types.StatusSkipped], counts[types.StatusFailed])
}
