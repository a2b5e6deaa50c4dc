// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/poembook/internal/compile"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile the book with the TeX engine",
	Long: `Compile runs the TeX engine (lualatex by default) on book/index.tex from
inside book/, writing output to out/. Use --draft for a fast pre-pass that
produces the index source without a PDF.`,
	RunE: runCompile,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the book index with makeindex",
	RunE:  runIndex,
}

func init() {
	compileCmd.Flags().Bool("draft", false, "draft-mode pre-pass; a failing exit is not an error")
	compileCmd.Flags().Bool("halt-on-error", true, "stop at the first TeX error")
	compileCmd.Flags().Bool("quiet", false, "batch interaction mode")
	compileCmd.Flags().String("engine", "lualatex", "TeX engine binary")

	indexCmd.Flags().String("indexer", "makeindex", "index tool binary")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(indexCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log, err := newLogbook(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	var console io.Writer = os.Stdout
	if cfg.Compile.Quiet {
		console = nil
	}
	d, err := compile.NewDriver(cfg.Paths, cfg.Compile, console)
	if err != nil {
		return err
	}
	if !d.Available(cmd.Context()) {
		log.Warn("%s not found or not working; install a TeX distribution", d.Engine)
	}

	opts := compile.Options{Draft: cfg.Compile.Draft, HaltOnError: cfg.Compile.HaltOnError, Quiet: cfg.Compile.Quiet}
	res, err := d.Compile(cmd.Context(), opts)
	if err != nil {
		log.Error("%v", err)
		return err
	}
	if opts.Draft {
		log.Done("draft pass finished in %s (exit %d)", res.Duration.Round(time.Millisecond), res.ExitCode)
		return nil
	}

	pages, err := compile.PageCount(cfg.Paths.OutputPDF())
	if err != nil {
		log.Warn("compiled, but could not read %s: %v", cfg.Paths.OutputPDF(), err)
		return nil
	}
	log.Done("compiled %s: %d pages in %s", cfg.Paths.OutputPDF(), pages, res.Duration.Round(time.Millisecond))
	return nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log, err := newLogbook(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	d, err := compile.NewDriver(cfg.Paths, cfg.Compile, os.Stdout)
	if err != nil {
		return err
	}
	if _, err := d.MakeIndex(cmd.Context()); err != nil {
		log.Error("%v", err)
		return err
	}
	log.Done("index built from %s", cfg.Paths.IndexSource())
	return nil
}
