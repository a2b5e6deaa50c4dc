// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/poembook/internal/artifact"
	"github.com/pdiddy/poembook/internal/book"
)

var outlineCmd = &cobra.Command{
	Use:   "outline",
	Short: "Write the skeleton document from the outline",
	Long: `Outline reads book/outline.json (or the --outline file) and writes
book/outline.tex: one \part per chapter followed by an \input for every
topic's fragment. An existing skeleton is kept unless --overwrite is set.`,
	RunE: runOutline,
}

func init() {
	outlineCmd.Flags().Bool("overwrite", false, "replace an existing skeleton")
	outlineCmd.Flags().String("outline", "", "outline file (default book/outline.json)")
	outlineCmd.Flags().String("kind", "poem", "artifact kind whose fragments the skeleton includes: poem or melody")

	rootCmd.AddCommand(outlineCmd)
}

func runOutline(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log, err := newLogbook(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	kind, err := artifact.ParseKind(cfg.Generation.Kind)
	if err != nil {
		return err
	}
	outline, err := book.LoadOutline(cfg.Paths.Outline())
	if err != nil {
		return err
	}

	b := &book.Book{Paths: cfg.Paths, Kind: kind, Log: log}
	return b.BuildSkeleton(outline, cfg.Generation.Overwrite)
}
