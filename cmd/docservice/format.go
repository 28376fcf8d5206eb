package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vl4dimr/tesis-system-unap/internal/engine"
	"github.com/vl4dimr/tesis-system-unap/internal/formatting"
	"github.com/vl4dimr/tesis-system-unap/internal/observability"
	"github.com/vl4dimr/tesis-system-unap/internal/report"
)

type formatOptions struct {
	input  string
	output string
	title  string
	author string
}

func newFormatCmd(root *rootOptions) *cobra.Command {
	opts := &formatOptions{}
	cmd := &cobra.Command{
		Use:   "format",
		Short: "Correct the formatting of a thesis document",
		Long:  "Applies every auto-correctable rule to a .docx file and writes the corrected copy. Nothing is written when errors remain after correction.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFormat(cmd, root, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.input, "in", "i", "", "Path to the .docx file (required)")
	cmd.Flags().StringVarP(&opts.output, "out", "o", "", "Path of the corrected file (default: <in>_formateado.docx)")
	cmd.Flags().StringVar(&opts.title, "titulo", "", "Document title to store in the file properties")
	cmd.Flags().StringVar(&opts.author, "autor", "", "Author to store in the file properties")

	if err := cmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	return cmd
}

func runFormat(cmd *cobra.Command, root *rootOptions, opts *formatOptions) error {
	if !isDocx(opts.input) {
		return fmt.Errorf("solo se permiten archivos .docx: %s", opts.input)
	}
	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(opts.input, filepath.Ext(opts.input)) + "_formateado.docx"
	}

	cfg, cat, err := root.load()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(opts.input)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", opts.input, err)
	}

	eng := engine.New(cat, engine.Options{Workers: 1, MaxPartBytes: cfg.MaxPartBytes})
	printer := observability.NewPrinter(cmd.OutOrStdout(), root.verbose)
	name := filepath.Base(opts.input)

	res, err := eng.Format(cmd.Context(), data, formatting.Metadata{Title: opts.title, Author: opts.author})
	if err != nil {
		printer.PrintError(name, report.Detail(err))
		return fmt.Errorf("failed to format %s: %w", opts.input, err)
	}

	if err := os.WriteFile(output, res.Document, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	printer.PrintChanges(name, report.FromFormatting(res, filepath.Base(output), false))
	fmt.Fprintf(cmd.OutOrStdout(), "Documento formateado guardado en %s\n", output)
	return nil
}
