// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/poembook/internal/book"
	"github.com/pdiddy/poembook/internal/journal"
	"github.com/pdiddy/poembook/internal/logbook"
	"github.com/pdiddy/poembook/pkg/types"
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Generate a LaTeX fragment for every outline topic",
	Long: `Pages asks the model for one artifact per outline topic and writes it
to book/content/<kind>/NNN_topic.tex. Existing fragments are skipped unless
--overwrite is set; a fragment left under an old index is renamed into place.
One topic failing never stops the others.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGeneration(cmd.Context(), false)
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Write the skeleton and generate every fragment",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGeneration(cmd.Context(), true)
	},
}

func init() {
	for _, c := range []*cobra.Command{pagesCmd, buildCmd} {
		c.Flags().Bool("overwrite", false, "regenerate fragments that already exist")
		c.Flags().String("mode", "pool", "fan-out: sequential, pool, or concurrent")
		c.Flags().Int("workers", 5, "worker count for pool mode")
		c.Flags().String("kind", "poem", "artifact kind: poem or melody")
		c.Flags().Bool("proofread", false, "send each draft back for a corrective pass")
		c.Flags().Bool("no-migrate", false, "do not rename fragments left under an old index")
		c.Flags().String("provider", "anthropic", "AI provider: anthropic or openai")
		c.Flags().String("model", "claude-sonnet-4-0", "AI model identifier")
		c.Flags().Int("max-attempts", 3, "attempts per topic before giving up")
		c.Flags().Float64("temperature", 0.8, "sampling temperature; 0 is sent as 0")
		c.Flags().Int("rate-limit-retries", 0, "extra retries for a rate-limited call inside one attempt")
		c.Flags().String("outline", "", "outline file (default book/outline.json)")

		rootCmd.AddCommand(c)
	}
}

func runGeneration(ctx context.Context, withSkeleton bool) error {
	cfg := loadConfig()
	log, err := newLogbook(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	outline, err := book.LoadOutline(cfg.Paths.Outline())
	if err != nil {
		return err
	}

	gen, kind, err := newGenerator(cfg.Generation, log)
	if err != nil {
		return err
	}
	b := &book.Book{Paths: cfg.Paths, Kind: kind, Generator: gen, Log: log}

	if cfg.Generation.Journal {
		finish, err := attachJournal(ctx, b, cfg, log)
		if err != nil {
			return err
		}
		defer finish()
	}

	opts := book.PageOptions{
		Overwrite:     cfg.Generation.Overwrite,
		Mode:          cfg.Generation.Mode,
		Workers:       cfg.Generation.Workers,
		MigrateLegacy: cfg.Generation.MigrateLegacy,
	}
	log.Info("generating %d %s fragments (%s mode)", outline.Len(), kind, opts.Mode)

	var summary book.PageSummary
	if withSkeleton {
		summary, err = b.Build(ctx, outline, opts)
	} else {
		summary, err = b.BuildPages(ctx, outline, opts)
	}
	if err != nil {
		return err
	}

	log.Info("pages: %d written, %d renamed, %d skipped, %d failed (of %d)",
		summary.Written, summary.Renamed, summary.Skipped, summary.Failed, summary.Total())
	if summary.HasFailures() {
		return fmt.Errorf("%d topic(s) failed", summary.Failed)
	}
	return nil
}

// attachJournal opens the run ledger, starts a run, and wires its recorder
// into b. The returned func stamps the run finished and closes the ledger.
func attachJournal(ctx context.Context, b *book.Book, cfg types.BookConfig, log *logbook.Logbook) (func(), error) {
	store, err := journal.Open(cfg.Paths.JournalFile())
	if err != nil {
		return nil, err
	}
	run, err := store.BeginRun(ctx, types.Run{
		Kind:  string(b.Kind),
		Mode:  cfg.Generation.Mode,
		Model: cfg.Generation.Model,
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	b.Journal = store.Recorder(run.ID)

	return func() {
		if err := store.FinishRun(context.WithoutCancel(ctx), run.ID); err != nil {
			log.Warn("journal: %v", err)
		}
		store.Close()
	}, nil
}
